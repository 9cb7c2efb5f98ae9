package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	t.Run("counts concurrent updates", func(t *testing.T) {
		c := NewCollector()
		c.Start(4)

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 25; j++ {
					c.AddEpisode()
					c.AddPlayout()
					c.AddNodes(2)
				}
			}()
		}
		wg.Wait()

		metric := c.Complete()
		require.Equal(t, 4, metric.Workers)
		require.Equal(t, 100, metric.Episodes)
		require.Equal(t, 100, metric.Playouts)
		require.Equal(t, 200, metric.TreeSize)
	})

	t.Run("start resets the counters", func(t *testing.T) {
		c := NewCollector()
		c.Start(1)
		c.AddEpisode()
		c.Start(1)

		require.Zero(t, c.Complete().Episodes)
	})

	t.Run("dummy collector reports nothing", func(t *testing.T) {
		c := NewDummyCollector()
		c.Start(3)
		c.AddEpisode()
		require.Equal(t, SearchMetric{}, c.Complete())
	})
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriter(t *testing.T) {
	w, err := NewWriter(t.TempDir(), "unit")
	require.NoError(t, err)

	require.NoError(t, w.WriteAgentConfigs([]AgentConfig{
		{ID: 1, Kind: "mcts", Workers: 2, Episodes: 50, Exploration: 1.4},
		{ID: 2, Kind: "random"},
	}))
	require.NoError(t, w.WriteGameRecords([]GameRecord{{
		ID:     1,
		Agents: []int{2, 1},
		GameMetric: GameMetric{
			StartingPlayer: 1,
			Winner:         2,
			TotalMoves:     17,
			Duration:       time.Second,
		},
	}}))
	require.NoError(t, w.WriteMoveRecords([]MoveRecord{{
		Game:       1,
		Agent:      1,
		MoveMetric: MoveMetric{Step: 2, Player: 2, Move: 8, SearchMetric: SearchMetric{Episodes: 50}},
	}}))

	configs := readCSV(t, filepath.Join(w.Dir(), "agent_configs.csv"))
	require.Len(t, configs, 3)
	require.Equal(t, []string{"1", "mcts", "2", "0s", "50", "1.4"}, configs[1])

	games := readCSV(t, filepath.Join(w.Dir(), "game_records.csv"))
	require.Len(t, games, 2)
	require.Equal(t, []string{"1", "2", "1", "0"}, games[1][:4], "Unused seat should be zero")
	require.Equal(t, "2", games[1][5])
	require.Equal(t, "17", games[1][7])

	moves := readCSV(t, filepath.Join(w.Dir(), "move_records.csv"))
	require.Len(t, moves, 2)
	require.Equal(t, "8", moves[1][4])
	require.Equal(t, "50", moves[1][7])
}
