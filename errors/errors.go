// Package errors accumulates independent failures so that a caller can
// report every problem in a machine description at once instead of
// stopping at the first one.
package errors

import "errors"

// Collection is a thread-unsafe accumulator of errors.
// The zero value is ready to use.
type Collection struct {
	errors []error
}

// Add appends an error to the collection. Nil errors are ignored.
func (c *Collection) Add(err error) {
	if err != nil {
		c.errors = append(c.errors, err)
	}
}

// Addf appends err only when cond holds. It keeps validation code flat.
func (c *Collection) Addf(cond bool, err error) {
	if cond {
		c.Add(err)
	}
}

// Clear resets the collection to empty.
func (c *Collection) Clear() {
	c.errors = nil
}

// HasError returns true if the collection contains at least one error.
func (c *Collection) HasError() bool {
	return len(c.errors) > 0
}

// Len returns the number of collected errors.
func (c *Collection) Len() int {
	return len(c.errors)
}

// Errors returns a copy of the collected errors in insertion order.
func (c *Collection) Errors() []error {
	out := make([]error, len(c.errors))
	copy(out, c.errors)

	return out
}

// GetError returns nil for an empty collection, the error itself when there
// is exactly one, and errors.Join of all of them otherwise. The joined error
// still answers errors.Is / errors.As for every member.
func (c *Collection) GetError() error {
	switch len(c.errors) {
	case 0:
		return nil
	case 1:
		return c.errors[0]
	default:
		return errors.Join(c.errors...)
	}
}
