package experiments

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"hexsquared/experiments/metrics"
	"hexsquared/experiments/training"
	"hexsquared/game"
	"hexsquared/meta"

	"github.com/stretchr/testify/require"
)

func TestRoundRobin(t *testing.T) {
	configs := []metrics.AgentConfig{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}

	require.Len(t, RoundRobin(configs, game.TwoPlayer), 6)
	require.Len(t, RoundRobin(configs, game.ThreePlayer), 4)
	for _, matchUp := range RoundRobin(configs, game.ThreePlayer) {
		require.Len(t, matchUp, 3)
		require.NotEqual(t, matchUp[0].ID, matchUp[1].ID)
	}
}

func TestRotate(t *testing.T) {
	matchUp := []metrics.AgentConfig{{ID: 1}, {ID: 2}, {ID: 3}}

	require.Equal(t, matchUp, rotate(matchUp, 0))
	require.Equal(t, []metrics.AgentConfig{{ID: 3}, {ID: 1}, {ID: 2}}, rotate(matchUp, 1))
	require.Equal(t, matchUp, rotate(matchUp, 3))
}

func TestNewAgent(t *testing.T) {
	for _, kind := range []string{"mcts", "train", "random", "edge", "center", "path"} {
		a, err := NewAgent(metrics.AgentConfig{Kind: kind, Episodes: 5}, 1)
		require.NoError(t, err, kind)
		require.NotNil(t, a)
	}

	_, err := NewAgent(metrics.AgentConfig{Kind: "oracle"}, 1)
	require.Error(t, err)
}

func TestCreateMCTS(t *testing.T) {
	t.Run("zero exploration is kept", func(t *testing.T) {
		m := createMCTS(metrics.AgentConfig{Kind: "mcts", Episodes: 5}, 1)
		require.Zero(t, m.Exploration())
	})

	t.Run("presets use the default exploration", func(t *testing.T) {
		tournament := Heuristics(2, game.TwoPlayer, 5, t.TempDir())
		m := createMCTS(tournament.Configs[0], 1)
		require.Equal(t, meta.EXPLORATION, m.Exploration())
	})

	t.Run("workers are at least one", func(t *testing.T) {
		require.Equal(t, 1, createMCTS(metrics.AgentConfig{}, 1).Workers())
	})
}

func TestRun(t *testing.T) {
	t.Run("heuristic round robin writes records", func(t *testing.T) {
		configs := []metrics.AgentConfig{
			{ID: 1, Kind: "random"},
			{ID: 2, Kind: "path"},
			{ID: 3, Kind: "center"},
		}
		tournament := Tournament{
			Name:     "unit",
			Radius:   2,
			Mode:     game.ThreePlayer,
			Games:    3,
			Configs:  configs,
			MatchUps: RoundRobin(configs, game.ThreePlayer),
			OutDir:   t.TempDir(),
		}

		summary, err := Run(context.Background(), tournament)

		require.NoError(t, err)
		require.Equal(t, 3, summary.Games)
		wins := summary.Draws
		for _, w := range summary.Wins {
			wins += w
		}
		require.Equal(t, 3, wins, "Every game should be counted once")
		for _, name := range []string{"agent_configs.csv", "game_records.csv", "move_records.csv"} {
			_, err := os.Stat(filepath.Join(summary.Dir, name))
			require.NoError(t, err, name)
		}
		require.Empty(t, summary.SamplesPath)
	})

	t.Run("self play exports samples", func(t *testing.T) {
		tournament := SelfPlay(2, game.TwoPlayer, 8, 1, t.TempDir())
		tournament.Seed = 42

		summary, err := Run(context.Background(), tournament)

		require.NoError(t, err)
		require.NotEmpty(t, summary.SamplesPath)
		samples, err := training.ReadSamples(summary.SamplesPath)
		require.NoError(t, err)
		require.NotEmpty(t, samples)
		for _, s := range samples {
			require.Equal(t, int32(1), s.Game)
			require.Equal(t, int32(2), s.Radius)
		}
	})
}
