package agent

import (
	"context"
	"testing"

	"hexsquared/game"
	"hexsquared/searcher"

	"github.com/stretchr/testify/require"
)

func TestEvaluationAgent(t *testing.T) {
	t.Run("returns a legal move and its visit policy", func(t *testing.T) {
		a := NewEvaluationAgent(searcher.NewMCTS(2, searcher.WithEpisodes(30), searcher.WithSeed(1)))
		state := game.NewGame(2, game.ThreePlayer)

		decision, err := a.FindMove(context.Background(), state)

		require.NoError(t, err)
		require.Contains(t, state.LegalMoves(), decision.Move)
		require.Contains(t, decision.Policy, decision.Move)
	})

	t.Run("finished game is reported as an error", func(t *testing.T) {
		a := NewEvaluationAgent(searcher.NewMCTS(1))
		state := game.NewGame(1, game.TwoPlayer)
		for _, move := range []int{2, 0, 3, 6, 4} {
			var err error
			state, err = state.Play(move)
			require.NoError(t, err)
		}

		decision, err := a.FindMove(context.Background(), state)

		require.ErrorIs(t, err, searcher.ErrEmptyTree)
		require.Equal(t, -1, decision.Move)
	})
}

func TestTrainingAgent(t *testing.T) {
	t.Run("samples a legal move", func(t *testing.T) {
		a := NewTrainingAgent(searcher.NewMCTS(2, searcher.WithEpisodes(30)), 1.0, 7)
		state := game.NewGame(2, game.TwoPlayer)

		decision, err := a.FindMove(context.Background(), state)

		require.NoError(t, err)
		require.Contains(t, state.LegalMoves(), decision.Move)
		require.NotEmpty(t, decision.Policy)
	})
}

func TestAdjustTemperature(t *testing.T) {
	policy := map[int]float64{0: 0.25, 1: 0.75}

	t.Run("temperature one keeps the policy", func(t *testing.T) {
		adjusted := adjustTemperature(policy, 1.0)
		require.InDelta(t, 0.25, adjusted[0], 1e-9)
		require.InDelta(t, 0.75, adjusted[1], 1e-9)
	})

	t.Run("low temperature sharpens toward the most visited move", func(t *testing.T) {
		adjusted := adjustTemperature(policy, 0.5)
		require.InDelta(t, 0.1, adjusted[0], 1e-9)
		require.InDelta(t, 0.9, adjusted[1], 1e-9)
	})
}

func TestSample(t *testing.T) {
	policy := map[int]float64{4: 0.5, 1: 0.25, 9: 0.25}

	require.Equal(t, 1, sample(policy, 0.0))
	require.Equal(t, 4, sample(policy, 0.3))
	require.Equal(t, 9, sample(policy, 0.99))
	require.Equal(t, 9, sample(policy, 1.0), "Should fall back to the last move")
}
