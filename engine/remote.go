package engine

import (
	"context"
	"fmt"
	"slices"

	"hexsquared/communication"
	"hexsquared/communication/client"
	"hexsquared/game"
	"hexsquared/searcher/agent"

	"github.com/rs/zerolog/log"
)

// RemoteAgent asks a move server for every decision.
type RemoteAgent struct {
	client     *client.Client
	iterations int
	workers    int
}

func NewRemoteAgent(c *client.Client, iterations, workers int) *RemoteAgent {
	if c == nil {
		panic("remote agent needs a client")
	}
	return &RemoteAgent{client: c, iterations: iterations, workers: workers}
}

var _ agent.Agent = (*RemoteAgent)(nil)

func (a *RemoteAgent) FindMove(ctx context.Context, state *game.GameState) (agent.Decision, error) {
	req := communication.BestMoveRequest{
		Board:      communication.FromBoard(state.Board()),
		Player:     int(state.Player()),
		IterLimit:  a.iterations,
		NumThreads: a.workers,
		Players:    int(state.Mode()),
	}
	move, err := a.client.BestMove(ctx, req)
	if err != nil {
		return agent.Decision{Move: -1}, fmt.Errorf("remote agent: %w", err)
	}

	legal := state.LegalMoves()
	if !slices.Contains(legal, move) {
		if len(legal) == 0 {
			return agent.Decision{Move: -1}, fmt.Errorf("remote agent returned %d: %w", move, game.ErrInvalidMove)
		}
		log.Warn().Msgf("remote agent returned illegal move %d, forcing %d", move, legal[0])
		move = legal[0]
	}
	return agent.Decision{Move: move}, nil
}
