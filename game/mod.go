package game

import (
	"fmt"
	"strings"
)

const Size = 4

// Direction is one of the four slide moves. The numeric order is the
// canonical enumeration order used by AvailableMoves.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Directions lists every move in canonical order.
var Directions = []Direction{Up, Down, Left, Right}

var directionNames = [...]string{
	Up:    "UP",
	Down:  "DOWN",
	Left:  "LEFT",
	Right: "RIGHT",
}

func (d Direction) String() string {
	if d < Up || d > Right {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

func (d Direction) MarshalText() ([]byte, error) {
	if d < Up || d > Right {
		return nil, fmt.Errorf("invalid direction %d", int(d))
	}
	return []byte(directionNames[d]), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDirection accepts a display name (case insensitive) or its first letter.
func ParseDirection(s string) (Direction, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for d, name := range directionNames {
		if s == name || (len(s) == 1 && s[0] == name[0]) {
			return Direction(d), nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// Position is a (row, column) cell coordinate.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}
