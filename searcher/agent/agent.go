package agent

import (
	"context"

	"hexsquared/experiments/metrics"
	"hexsquared/game"
)

type Decision struct {
	Move   int
	Policy map[int]float64 // Visit share per expanded move, nil when no search ran
	Metric metrics.SearchMetric
}

type Agent interface {
	// FindMove returns the chosen move and performance metrics (if collected) for the player to move
	FindMove(ctx context.Context, state *game.GameState) (Decision, error)
}
