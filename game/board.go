package game

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

var ErrInvalidTile = errors.New("invalid tile")

type grid [Size][Size]int

// Board is the 4x4 tile grid, 0 meaning empty. A Board is a value: assigning
// or cloning it yields an independent copy.
type Board struct {
	grid grid
}

func NewBoard() Board {
	return Board{}
}

func NewBoardFromGrid(cells [Size][Size]int) Board {
	return Board{grid: cells}
}

// ParseBoard reads 16 whitespace separated values in row-major order.
func ParseBoard(s string) (Board, error) {
	fields := strings.Fields(s)
	if len(fields) != Size*Size {
		return Board{}, fmt.Errorf("expected %d cell values, got %d", Size*Size, len(fields))
	}

	var cells grid
	for i, field := range fields {
		v, err := strconv.Atoi(field)
		if err != nil {
			return Board{}, fmt.Errorf("failed to parse cell %d: %w", i, err)
		}
		cells[i/Size][i%Size] = v
	}

	b := Board{grid: cells}
	if err := b.Validate(); err != nil {
		return Board{}, err
	}
	return b, nil
}

// Validate reports the first cell that is neither empty nor a power of two >= 2.
func (b Board) Validate() error {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			v := b.grid[r][c]
			if v != 0 && (v < 2 || v&(v-1) != 0) {
				return fmt.Errorf("%w: %d at %v", ErrInvalidTile, v, Position{Row: r, Col: c})
			}
		}
	}
	return nil
}

func (b Board) Clone() Board {
	return Board{grid: b.grid}
}

// InsertTile places value on an empty cell. Inserting on an occupied cell is a
// caller bug and panics.
func (b *Board) InsertTile(pos Position, value int) {
	if b.grid[pos.Row][pos.Col] != 0 {
		panic(fmt.Sprintf("cannot insert tile at %v: cell holds %d", pos, b.grid[pos.Row][pos.Col]))
	}
	b.grid[pos.Row][pos.Col] = value
}

// AvailableCells returns the empty cells in row-major order.
func (b Board) AvailableCells() []Position {
	cells := make([]Position, 0, Size*Size)
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if b.grid[r][c] == 0 {
				cells = append(cells, Position{Row: r, Col: c})
			}
		}
	}
	return cells
}

func (b Board) EmptyCount() int {
	n := 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if b.grid[r][c] == 0 {
				n++
			}
		}
	}
	return n
}

func (b Board) MaxTile() int {
	maxTile := 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			maxTile = max(maxTile, b.grid[r][c])
		}
	}
	return maxTile
}

func (b Board) CellValue(pos Position) int {
	return b.grid[pos.Row][pos.Col]
}

// Grid returns a snapshot of the cells.
func (b Board) Grid() [Size][Size]int {
	return b.grid
}

func (b Board) Equal(other Board) bool {
	return b.grid == other.grid
}

// Move slides and merges the tiles in place and reports whether the grid changed.
func (b *Board) Move(dir Direction) bool {
	before := b.grid

	switch dir {
	case Left:
		b.grid = slide(b.grid)
	case Right:
		b.grid = mirror(slide(mirror(b.grid)))
	case Up:
		b.grid = mirror(transpose(slide(transpose(mirror(b.grid)))))
	case Down:
		b.grid = transpose(mirror(slide(mirror(transpose(b.grid)))))
	default:
		panic(fmt.Sprintf("unexpected direction %d", int(dir)))
	}

	return b.grid != before
}

// AvailableMoves returns the directions (all four by default) that change the
// board, in the order they were given.
func (b Board) AvailableMoves(dirs ...Direction) []Direction {
	if len(dirs) == 0 {
		dirs = Directions
	}

	proven := quickAvailable(b.grid)
	return lo.Filter(dirs, func(dir Direction, _ int) bool {
		if proven[dir] {
			return true
		}
		clone := b.Clone()
		return clone.Move(dir)
	})
}

func (b Board) String() string {
	line := "+------+------+------+------+"
	var sb strings.Builder
	sb.WriteString(line + "\n")
	for r := 0; r < Size; r++ {
		sb.WriteString("|")
		for c := 0; c < Size; c++ {
			if b.grid[r][c] == 0 {
				sb.WriteString("      |")
			} else {
				fmt.Fprintf(&sb, "%5d |", b.grid[r][c])
			}
		}
		sb.WriteString("\n" + line + "\n")
	}
	return sb.String()
}

// slide is the canonical leftward move: justify, merge, justify.
func slide(g grid) grid {
	return justifyLeft(merge(justifyLeft(g)))
}

func justifyLeft(g grid) grid {
	var out grid
	for r := 0; r < Size; r++ {
		c := 0
		for _, v := range g[r] {
			if v != 0 {
				out[r][c] = v
				c++
			}
		}
	}
	return out
}

// merge doubles each left cell of an equal pair in a single left-to-right
// pass, so a run of four equal tiles becomes two doubled tiles.
func merge(g grid) grid {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size-1; c++ {
			if g[r][c] != 0 && g[r][c] == g[r][c+1] {
				g[r][c] *= 2
				g[r][c+1] = 0
			}
		}
	}
	return g
}

// mirror reverses the column order.
func mirror(g grid) grid {
	var out grid
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			out[r][Size-1-c] = g[r][c]
		}
	}
	return out
}

func transpose(g grid) grid {
	var out grid
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			out[c][r] = g[r][c]
		}
	}
	return out
}

// quickAvailable proves a direction is available when some tile has an empty
// cell on its side of that direction within its row or column. A false entry
// is inconclusive.
func quickAvailable(g grid) [4]bool {
	var proven [4]bool
	var colSawEmpty, colSawTile [Size]bool

	for r := 0; r < Size; r++ {
		sawEmpty, sawTile := false, false
		for c := 0; c < Size; c++ {
			if g[r][c] == 0 {
				sawEmpty = true
				colSawEmpty[c] = true
				if sawTile {
					proven[Right] = true
				}
				if colSawTile[c] {
					proven[Down] = true
				}
			} else {
				sawTile = true
				colSawTile[c] = true
				if sawEmpty {
					proven[Left] = true
				}
				if colSawEmpty[c] {
					proven[Up] = true
				}
			}
		}
	}
	return proven
}
