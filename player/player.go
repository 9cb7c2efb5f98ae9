// Package player holds rule-of-thumb opponents that pick a move without
// searching. They implement agent.Agent so engines and sessions can seat
// them next to MCTS agents.
package player

import (
	"context"
	"fmt"
	"sync"

	"hexsquared/game"
	"hexsquared/searcher/agent"

	"golang.org/x/exp/rand"
)

type Kind string

const (
	Random        Kind = "random"
	EdgeControl   Kind = "edge"
	CenterControl Kind = "center"
	PathFinder    Kind = "path"
)

var Kinds = []Kind{Random, EdgeControl, CenterControl, PathFinder}

// New returns the heuristic agent of the given kind.
func New(kind Kind, seed uint64) (agent.Agent, error) {
	switch kind {
	case Random:
		return NewRandom(seed), nil
	case EdgeControl:
		return heuristic{pick: edgeControl}, nil
	case CenterControl:
		return heuristic{pick: centerControl}, nil
	case PathFinder:
		return heuristic{pick: pathFinder}, nil
	}
	return nil, fmt.Errorf("unknown player kind %q", kind)
}

type random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom returns an agent that plays a uniformly random legal move.
func NewRandom(seed uint64) agent.Agent {
	return &random{rng: rand.New(rand.NewSource(seed))}
}

func (r *random) FindMove(ctx context.Context, state *game.GameState) (agent.Decision, error) {
	moves := state.LegalMoves()
	if len(moves) == 0 {
		return agent.Decision{Move: -1}, fmt.Errorf("%w: no legal move", game.ErrInvalidMove)
	}
	r.mu.Lock()
	move := moves[r.rng.Intn(len(moves))]
	r.mu.Unlock()
	return agent.Decision{Move: move}, nil
}

// heuristic adapts a deterministic move picker to agent.Agent.
type heuristic struct {
	pick func(state *game.GameState, moves []int) int
}

func (h heuristic) FindMove(ctx context.Context, state *game.GameState) (agent.Decision, error) {
	moves := state.LegalMoves()
	if len(moves) == 0 {
		return agent.Decision{Move: -1}, fmt.Errorf("%w: no legal move", game.ErrInvalidMove)
	}
	return agent.Decision{Move: h.pick(state, moves)}, nil
}

// edgeControl plays the empty cell farthest from the center.
func edgeControl(state *game.GameState, moves []int) int {
	grid := state.Board().Grid()
	return argBest(moves, func(i int) int { return grid.Coord(i).Ring() })
}

// centerControl plays the empty cell with the smallest |q|+|r|+|s|.
func centerControl(state *game.GameState, moves []int) int {
	grid := state.Board().Grid()
	return argBest(moves, func(i int) int {
		c := grid.Coord(i)
		return -(abs(c.Q) + abs(c.R) + abs(c.S))
	})
}

// argBest returns the first move with the highest score.
func argBest(moves []int, score func(int) int) int {
	best, bestScore := moves[0], score(moves[0])
	for _, move := range moves[1:] {
		if s := score(move); s > bestScore {
			best, bestScore = move, s
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
