package player

import (
	"container/heap"
	"slices"

	"hexsquared/game"
)

// pathFinder looks for a route of own or empty cells between the player's
// edges and claims the empty cell nearest the middle of it. Without a route
// it plays the empty cell closest to its starting edge.
func pathFinder(state *game.GameState, moves []int) int {
	board := state.Board()
	p := state.Player()

	path := shortestPath(board, p)
	middle := len(path) / 2
	best, bestDist := -1, 0
	for k, i := range path {
		if board.Owner(i) != game.None {
			continue
		}
		if d := abs(k - middle); best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best >= 0 {
		return best
	}

	grid := board.Grid()
	return argBest(moves, func(i int) int { return -edgeDistance(grid, i, p, true) })
}

// edgeDistance is the ring distance from index to the player's starting
// edge, or to the opposite edge when start is false.
func edgeDistance(grid *game.Grid, index int, p game.Player, start bool) int {
	c := grid.Coord(index)
	var v int
	switch p {
	case game.One:
		v = c.Q
	case game.Two:
		v = c.R
	case game.Three:
		v = c.S
	}
	if start {
		return v + grid.Radius()
	}
	return grid.Radius() - v
}

type entry struct {
	index int
	cost  int
	seq   int
}

type frontier []entry

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].cost != f[j].cost {
		return f[i].cost < f[j].cost
	}
	return f[i].seq < f[j].seq
}
func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x any)   { *f = append(*f, x.(entry)) }
func (f *frontier) Pop() any {
	old := *f
	e := old[len(old)-1]
	*f = old[:len(old)-1]
	return e
}

// shortestPath runs a best-first search from the starting edge, ranking
// cells by distance to the center plus distance to the target edge. It
// returns the path from start to target, or nil when the opponents block
// every route.
func shortestPath(board *game.Board, p game.Player) []int {
	grid := board.Grid()
	passable := func(i int) bool {
		owner := board.Owner(i)
		return owner == game.None || owner == p
	}
	cost := func(i int) int {
		return grid.Coord(i).Ring() + edgeDistance(grid, i, p, false)
	}

	parent := make([]int, board.Len())
	for i := range parent {
		parent[i] = -2 // unseen
	}
	var f frontier
	seq := 0
	for i := 0; i < board.Len(); i++ {
		if grid.IsStartingEdge(i, p) && passable(i) {
			parent[i] = -1
			heap.Push(&f, entry{index: i, cost: cost(i), seq: seq})
			seq++
		}
	}

	for f.Len() > 0 {
		current := heap.Pop(&f).(entry).index
		if grid.IsOppositeEdge(current, p) {
			var path []int
			for i := current; i >= 0; i = parent[i] {
				path = append(path, i)
			}
			slices.Reverse(path)
			return path
		}
		for _, n := range grid.Neighbors(current) {
			if parent[n] == -2 && passable(n) {
				parent[n] = current
				heap.Push(&f, entry{index: n, cost: cost(n), seq: seq})
				seq++
			}
		}
	}
	return nil
}
