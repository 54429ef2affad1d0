package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errNoStates = errors.New("no states") //nolint:err113
	errNoStart  = errors.New("no start")  //nolint:err113
	errBadRule  = errors.New("bad rule")  //nolint:err113
)

func TestCollection_Add(t *testing.T) {
	t.Parallel()

	t.Run("keeps non-nil errors in order", func(t *testing.T) {
		t.Parallel()

		c := &Collection{}
		c.Add(errNoStates)
		c.Add(nil)
		c.Add(errNoStart)

		assert.True(t, c.HasError())
		assert.Equal(t, 2, c.Len())
		assert.Equal(t, []error{errNoStates, errNoStart}, c.Errors())
	})

	t.Run("Addf respects its condition", func(t *testing.T) {
		t.Parallel()

		c := &Collection{}
		c.Addf(false, errBadRule)
		assert.False(t, c.HasError())

		c.Addf(true, errBadRule)
		assert.Equal(t, 1, c.Len())
	})

	t.Run("Errors returns a copy", func(t *testing.T) {
		t.Parallel()

		c := &Collection{}
		c.Add(errNoStates)

		errs := c.Errors()
		errs[0] = errBadRule

		assert.Equal(t, []error{errNoStates}, c.Errors())
	})
}

func TestCollection_GetError(t *testing.T) {
	t.Parallel()

	t.Run("nil when empty", func(t *testing.T) {
		t.Parallel()

		c := &Collection{}

		assert.NoError(t, c.GetError())
	})

	t.Run("single error is returned as is", func(t *testing.T) {
		t.Parallel()

		c := &Collection{}
		c.Add(errNoStart)

		assert.Equal(t, errNoStart, c.GetError())
	})

	t.Run("multiple errors are joined", func(t *testing.T) {
		t.Parallel()

		c := &Collection{}
		c.Add(errNoStates)
		c.Add(errNoStart)
		c.Add(errBadRule)

		err := c.GetError()
		require.Error(t, err)
		require.ErrorIs(t, err, errNoStates)
		require.ErrorIs(t, err, errNoStart)
		require.ErrorIs(t, err, errBadRule)
	})

	t.Run("nil after clear", func(t *testing.T) {
		t.Parallel()

		c := &Collection{}
		c.Add(errBadRule)
		c.Clear()

		assert.NoError(t, c.GetError())
		assert.Zero(t, c.Len())
	})
}
