package turing

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDirection is returned by ParseDirection for unknown tokens.
var ErrInvalidDirection = errors.New("invalid head direction")

// Direction is a head movement.
type Direction int

const (
	Stay Direction = iota
	Left
	Right
)

// Offset is the change in head position.
func (d Direction) Offset() int {
	switch d {
	case Left:
		return -1
	case Right:
		return 1
	default:
		return 0
	}
}

func (d Direction) String() string {
	switch d {
	case Left:
		return "L"
	case Right:
		return "R"
	default:
		return "S"
	}
}

// ParseDirection accepts L/LEFT/←, R/RIGHT/→ and S/STAY/N/NONE/↓/-, case
// insensitively.
func ParseDirection(token string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case "L", "LEFT", "←":
		return Left, nil
	case "R", "RIGHT", "→":
		return Right, nil
	case "S", "STAY", "N", "NONE", "↓", "-":
		return Stay, nil
	default:
		return Stay, fmt.Errorf("%w: %q", ErrInvalidDirection, token)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}

	*d = parsed

	return nil
}
