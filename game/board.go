package game

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidMove    = errors.New("invalid move")
	ErrMalformedBoard = errors.New("malformed board")
	ErrInvalidPlayer  = errors.New("invalid player")
)

// Cell is one board position as exchanged with callers.
type Cell struct {
	Coord
	Index int
	Owner Player
}

// Board is a snapshot of cell ownership over a grid. Boards are never
// mutated once handed out; claiming a cell produces a new board.
type Board struct {
	grid   *Grid
	owners []Player
}

// NewBoard builds an empty board of the given radius. In three-player mode
// every non-corner edge cell is pre-owned by the player of that edge.
func NewBoard(radius int, mode Mode) *Board {
	if radius < 1 {
		panic("board radius must be at least 1")
	}
	grid := GridFor(radius)
	b := &Board{grid: grid, owners: make([]Player, grid.Len())}
	if mode == ThreePlayer {
		for i := range b.owners {
			b.owners[i] = grid.EdgeOwner(i)
		}
	}
	return b
}

// BoardFromCells validates an externally supplied snapshot and builds a board
// from it. Cells may arrive in any order; the index field is authoritative.
func BoardFromCells(cells []Cell) (*Board, error) {
	if len(cells) == 0 {
		return nil, fmt.Errorf("%w: no cells", ErrMalformedBoard)
	}

	radius := 0
	for _, c := range cells {
		if c.R+c.S+c.Q != 0 {
			return nil, fmt.Errorf("%w: cell %d has coordinate sum %d", ErrMalformedBoard, c.Index, c.R+c.S+c.Q)
		}
		radius = max(radius, c.Ring())
	}
	if radius < 1 || CellCount(radius) != len(cells) {
		return nil, fmt.Errorf("%w: %d cells do not form a hexagon of radius %d", ErrMalformedBoard, len(cells), radius)
	}

	coords := make([]Coord, len(cells))
	owners := make([]Player, len(cells))
	seenIndex := make([]bool, len(cells))
	seenCoord := make(map[Coord]struct{}, len(cells))
	for _, c := range cells {
		if c.Index < 0 || c.Index >= len(cells) {
			return nil, fmt.Errorf("%w: index %d out of range", ErrMalformedBoard, c.Index)
		}
		if seenIndex[c.Index] {
			return nil, fmt.Errorf("%w: duplicate index %d", ErrMalformedBoard, c.Index)
		}
		if _, ok := seenCoord[c.Coord]; ok {
			return nil, fmt.Errorf("%w: duplicate coordinate %+v", ErrMalformedBoard, c.Coord)
		}
		if c.Owner > Three {
			return nil, fmt.Errorf("%w: cell %d has owner %d", ErrMalformedBoard, c.Index, c.Owner)
		}
		seenIndex[c.Index] = true
		seenCoord[c.Coord] = struct{}{}
		coords[c.Index] = c.Coord
		owners[c.Index] = c.Owner
	}

	grid := GridFor(radius)
	if !grid.sameLayout(coords) {
		grid = newGrid(radius, coords)
	}
	return &Board{grid: grid, owners: owners}, nil
}

func (b *Board) Grid() *Grid { return b.grid }

func (b *Board) Radius() int { return b.grid.radius }

func (b *Board) Len() int { return len(b.owners) }

func (b *Board) Owner(index int) Player { return b.owners[index] }

func (b *Board) Cell(index int) Cell {
	return Cell{Coord: b.grid.coords[index], Index: index, Owner: b.owners[index]}
}

// Cells returns the snapshot in index order.
func (b *Board) Cells() []Cell {
	cells := make([]Cell, len(b.owners))
	for i := range b.owners {
		cells[i] = b.Cell(i)
	}
	return cells
}

// Empty returns the unclaimed indices in ascending order.
func (b *Board) Empty() []int {
	empty := make([]int, 0, len(b.owners))
	for i, owner := range b.owners {
		if owner == None {
			empty = append(empty, i)
		}
	}
	return empty
}

// Count returns how many cells p owns.
func (b *Board) Count(p Player) int {
	n := 0
	for _, owner := range b.owners {
		if owner == p {
			n++
		}
	}
	return n
}

func (b *Board) Clone() *Board {
	owners := make([]Player, len(b.owners))
	copy(owners, b.owners)
	return &Board{grid: b.grid, owners: owners}
}

// Equal reports whether both boards have the same layout and owners.
func (b *Board) Equal(other *Board) bool {
	if b.grid != other.grid && !b.grid.sameLayout(other.grid.coords) {
		return false
	}
	for i, owner := range b.owners {
		if other.owners[i] != owner {
			return false
		}
	}
	return true
}

// Diff returns the single index whose owner differs between the boards.
func (b *Board) Diff(other *Board) (int, bool) {
	found := -1
	for i, owner := range b.owners {
		if other.owners[i] != owner {
			if found >= 0 {
				return -1, false
			}
			found = i
		}
	}
	return found, found >= 0
}

func (b *Board) claim(index int, p Player) *Board {
	next := b.Clone()
	next.owners[index] = p
	return next
}

func (b *Board) validMove(index int) error {
	if index < 0 || index >= len(b.owners) {
		return fmt.Errorf("%w: index %d out of range [0, %d)", ErrInvalidMove, index, len(b.owners))
	}
	if b.owners[index] != None {
		return fmt.Errorf("%w: cell %d already owned by %s", ErrInvalidMove, index, b.owners[index])
	}
	return nil
}
