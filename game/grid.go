package game

import "sync"

// Coord is a cube coordinate; R+S+Q is always zero on a board.
type Coord struct {
	R, S, Q int
}

var directions = [6]Coord{
	{1, -1, 0}, {-1, 1, 0}, {0, 1, -1}, {0, -1, 1}, {1, 0, -1}, {-1, 0, 1},
}

func (c Coord) Add(o Coord) Coord {
	return Coord{R: c.R + o.R, S: c.S + o.S, Q: c.Q + o.Q}
}

// Ring returns the hex distance of c from the center.
func (c Coord) Ring() int {
	return max(abs(c.R), abs(c.S), abs(c.Q))
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b Coord) int {
	return max(abs(a.R-b.R), abs(a.S-b.S), abs(a.Q-b.Q))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Grid is the immutable geometry of a board: the coordinate of every
// index and the adjacency between indices. Grids are shared read-only
// by every board of the same layout.
type Grid struct {
	radius    int
	coords    []Coord
	lookup    map[Coord]int
	neighbors [][]int
	starts    [4][]int // cells on each player's starting edge
}

var grids sync.Map // radius -> *Grid

// GridFor returns the cached grid of the standard layout for radius.
func GridFor(radius int) *Grid {
	if g, ok := grids.Load(radius); ok {
		return g.(*Grid)
	}
	g, _ := grids.LoadOrStore(radius, newGrid(radius, layout(radius)))
	return g.(*Grid)
}

// CellCount is the number of cells of a hexagon of the given radius.
func CellCount(radius int) int {
	return 3*radius*(radius+1) + 1
}

// layout enumerates the hexagon row by row; a cell's position is its index.
func layout(radius int) []Coord {
	coords := make([]Coord, 0, CellCount(radius))
	for r := -radius; r <= radius; r++ {
		lo := max(-radius, -r-radius)
		hi := min(radius, -r+radius)
		for q := lo; q <= hi; q++ {
			coords = append(coords, Coord{R: r, S: -r - q, Q: q})
		}
	}
	return coords
}

func newGrid(radius int, coords []Coord) *Grid {
	g := &Grid{
		radius:    radius,
		coords:    coords,
		lookup:    make(map[Coord]int, len(coords)),
		neighbors: make([][]int, len(coords)),
	}
	for i, c := range coords {
		g.lookup[c] = i
	}
	for i, c := range coords {
		adjacent := make([]int, 0, len(directions))
		for _, d := range directions {
			if j, ok := g.lookup[c.Add(d)]; ok {
				adjacent = append(adjacent, j)
			}
		}
		g.neighbors[i] = adjacent
	}
	for _, p := range priority {
		for i := range coords {
			if g.IsStartingEdge(i, p) {
				g.starts[p] = append(g.starts[p], i)
			}
		}
	}
	return g
}

func (g *Grid) Radius() int { return g.radius }

func (g *Grid) Len() int { return len(g.coords) }

func (g *Grid) Coord(index int) Coord { return g.coords[index] }

// Index returns the index of the cell at c.
func (g *Grid) Index(c Coord) (int, bool) {
	i, ok := g.lookup[c]
	return i, ok
}

// Neighbors returns the indices adjacent to index. The slice must not be modified.
func (g *Grid) Neighbors(index int) []int {
	return g.neighbors[index]
}

// IsStartingEdge reports whether index lies on the edge p starts from.
func (g *Grid) IsStartingEdge(index int, p Player) bool {
	c := g.coords[index]
	switch p {
	case One:
		return c.Q == -g.radius
	case Two:
		return c.R == -g.radius
	case Three:
		return c.S == -g.radius
	}
	return false
}

// IsOppositeEdge reports whether index lies on the edge p has to reach.
func (g *Grid) IsOppositeEdge(index int, p Player) bool {
	c := g.coords[index]
	switch p {
	case One:
		return c.Q == g.radius
	case Two:
		return c.R == g.radius
	case Three:
		return c.S == g.radius
	}
	return false
}

// EdgeOwner returns the player whose edge pair contains index, or None for
// interior and corner cells.
func (g *Grid) EdgeOwner(index int) Player {
	owner := None
	for _, p := range priority {
		if g.IsStartingEdge(index, p) || g.IsOppositeEdge(index, p) {
			if owner != None {
				return None // corner
			}
			owner = p
		}
	}
	return owner
}

func (g *Grid) sameLayout(coords []Coord) bool {
	if len(coords) != len(g.coords) {
		return false
	}
	for i, c := range coords {
		if g.coords[i] != c {
			return false
		}
	}
	return true
}
