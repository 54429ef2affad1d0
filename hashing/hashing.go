// Package hashing fingerprints values for the hashed sets used to remember
// explored machine configurations.
package hashing

import (
	"crypto/sha256"
	"encoding/binary"
	"hash"

	"github.com/OneOfOne/xxhash"
	"github.com/zeebo/xxh3"
)

// HashFunc reduces a Hashable to a 64-bit fingerprint. Fingerprints may
// collide; containers using them must confirm equality separately.
type HashFunc func(hashable Hashable) (uint64, error)

// Hashable is an interface that allows an object to feed its contents into a
// hash.Hash. Two equal values must write the same bytes.
type Hashable interface {
	UpdateHash(h hash.Hash) error
}

// Xxh3 fingerprints with XXH3-64. It is the default for configuration sets.
func Xxh3(hashable Hashable) (uint64, error) {
	h := xxh3.New()

	if err := hashable.UpdateHash(h); err != nil {
		return 0, err
	}

	return h.Sum64(), nil
}

// XXHash64 fingerprints with the classic XXH64 algorithm.
func XXHash64(hashable Hashable) (uint64, error) {
	h := xxhash.New64()

	if err := hashable.UpdateHash(h); err != nil {
		return 0, err
	}

	return h.Sum64(), nil
}

// Sha256 fingerprints with the first eight bytes of a SHA-256 digest.
func Sha256(hashable Hashable) (uint64, error) {
	h := sha256.New()

	if err := hashable.UpdateHash(h); err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint64(h.Sum(nil)[:8]), nil
}

// WriteString writes s followed by a zero separator, so that a sequence of
// fields hashes unambiguously ("ab","c" differs from "a","bc").
func WriteString(h hash.Hash, s string) error {
	if _, err := h.Write([]byte(s)); err != nil {
		return err
	}

	_, err := h.Write([]byte{0})

	return err
}

// WriteInt writes n as eight little-endian bytes.
func WriteInt(h hash.Hash, n int) error {
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], uint64(n)) //nolint:gosec // bit pattern only

	_, err := h.Write(buf[:])

	return err
}

// HashableString is a string usable wherever a Hashable is expected.
type HashableString string

func (s HashableString) String() string {
	return string(s)
}

func (s HashableString) UpdateHash(h hash.Hash) error {
	return WriteString(h, string(s))
}

func (s HashableString) Equals(other HashableString) bool {
	return s == other
}
