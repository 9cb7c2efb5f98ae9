package engine

import (
	"context"

	"hexsquared/experiments/metrics"
	"hexsquared/game"
)

type Engine interface {
	// Run plays a game till it is terminal or a max number of moves is reached
	Run(ctx context.Context) (winner game.Player, gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric, err error)
}

// Update is published after every move.
type Update struct {
	Step   int
	Player game.Player
	Move   int
	State  *game.GameState
}
