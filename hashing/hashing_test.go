package hashing

import (
	"errors"
	"hash"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBroken = errors.New("broken") //nolint:err113

type brokenHashable struct{}

func (brokenHashable) UpdateHash(hash.Hash) error {
	return errBroken
}

type pair struct {
	a, b string
}

func (p pair) UpdateHash(h hash.Hash) error {
	if err := WriteString(h, p.a); err != nil {
		return err
	}

	return WriteString(h, p.b)
}

func TestHashFuncs(t *testing.T) {
	t.Parallel()

	funcs := map[string]HashFunc{
		"xxh3":     Xxh3,
		"xxhash64": XXHash64,
		"sha256":   Sha256,
	}

	for name, fn := range funcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			first, err := fn(HashableString("q0"))
			require.NoError(t, err)

			again, err := fn(HashableString("q0"))
			require.NoError(t, err)
			assert.Equal(t, first, again, "hash must be deterministic")

			other, err := fn(HashableString("q1"))
			require.NoError(t, err)
			assert.NotEqual(t, first, other)

			left, err := fn(pair{"ab", "c"})
			require.NoError(t, err)
			right, err := fn(pair{"a", "bc"})
			require.NoError(t, err)
			assert.NotEqual(t, left, right, "field boundaries must be part of the hash")

			_, err = fn(brokenHashable{})
			require.ErrorIs(t, err, errBroken)
		})
	}
}

func TestHashableString(t *testing.T) {
	t.Parallel()

	s := HashableString("q0")

	assert.Equal(t, "q0", s.String())
	assert.True(t, s.Equals("q0"))
	assert.False(t, s.Equals("q1"))
}

func TestWriteInt(t *testing.T) {
	t.Parallel()

	a, err := Xxh3(intHashable(1))
	require.NoError(t, err)

	b, err := Xxh3(intHashable(-1))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

type intHashable int

func (i intHashable) UpdateHash(h hash.Hash) error {
	return WriteInt(h, int(i))
}
