package engine

import (
	"context"
	"fmt"
	"time"

	"hexsquared/experiments/metrics"
	"hexsquared/experiments/training"
	"hexsquared/game"
	"hexsquared/meta"
	"hexsquared/searcher/agent"

	"github.com/rs/zerolog/log"
)

type Option func(e *LocalEngine)

type LocalEngine struct {
	state    *game.GameState
	agents   []agent.Agent // Seat i+1 is played by agents[i]
	maxTurns int
	record   bool
	samples  []training.Sample
	observer func(Update)
}

func WithMaxTurns(turns int) Option {
	return func(e *LocalEngine) {
		if turns > 0 {
			e.maxTurns = turns
		}
	}
}

// WithSamples records a training sample for every searched move.
func WithSamples() Option {
	return func(e *LocalEngine) {
		e.record = true
	}
}

func WithObserver(observer func(Update)) Option {
	return func(e *LocalEngine) {
		e.observer = observer
	}
}

func NewLocalEngine(state *game.GameState, agents []agent.Agent, options ...Option) *LocalEngine {
	if len(agents) != len(state.Mode().Players()) {
		panic("number of agents does not match number of players")
	}
	for _, a := range agents {
		if a == nil {
			panic("nil agent")
		}
	}

	e := &LocalEngine{
		state:    state,
		agents:   agents,
		maxTurns: meta.MAX_TURNS,
	}
	for _, option := range options {
		option(e)
	}
	return e
}

func (e *LocalEngine) State() *game.GameState { return e.state }

// Samples returns the training samples of the last run, labelled with its outcome.
func (e *LocalEngine) Samples() []training.Sample { return e.samples }

// Run executes the entire game loop until the game is over.
func (e *LocalEngine) Run(ctx context.Context) (game.Player, metrics.GameMetric, []metrics.MoveMetric, error) {
	gameMetric := metrics.GameMetric{
		StartingPlayer: int(e.state.Player()),
		StartTime:      time.Now(),
	}
	var moveMetrics []metrics.MoveMetric
	e.samples = nil

	log.Info().Msgf("player %s is starting", e.state.Player())

	step := 1
	for !e.state.IsTerminal() && step <= e.maxTurns {
		if err := ctx.Err(); err != nil {
			return game.None, gameMetric, moveMetrics, err
		}

		player := e.state.Player()
		decision, err := e.agents[player-1].FindMove(ctx, e.state)
		if err != nil {
			return game.None, gameMetric, moveMetrics, fmt.Errorf("player %s failed to move: %w", player, err)
		}

		next, err := e.state.Play(decision.Move)
		if err != nil {
			return game.None, gameMetric, moveMetrics, fmt.Errorf("player %s played %d: %w", player, decision.Move, err)
		}
		log.Debug().Msgf("step %d: player %s claims cell %d", step, player, decision.Move)

		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         step,
			Player:       int(player),
			Move:         decision.Move,
			SearchMetric: decision.Metric,
		})
		if e.record && decision.Policy != nil {
			e.samples = append(e.samples, training.NewSample(e.state, step, decision.Move, decision.Policy))
		}

		e.state = next
		if e.observer != nil {
			e.observer(Update{Step: step, Player: player, Move: decision.Move, State: next})
		}
		step++
	}

	winner, draw := e.state.Outcome()
	gameMetric.Winner = int(winner)
	gameMetric.Draw = draw
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = len(moveMetrics)
	training.Label(e.samples, 0, winner)

	switch {
	case winner != game.None:
		log.Info().Msgf("game ended with winner %s after %d moves", winner, len(moveMetrics))
	case draw:
		log.Info().Msgf("game ended in a draw after %d moves", len(moveMetrics))
	default:
		log.Warn().Msgf("stopped after %d turns without a result", e.maxTurns)
	}

	return winner, gameMetric, moveMetrics, nil
}
