// Package training exports self-play positions for offline policy training.
package training

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"hexsquared/game"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

const schema = "hex_samples_v1"

// Sample is one searched position of a self-play game.
type Sample struct {
	Game    int32  `parquet:"game" json:"game"`
	Step    int32  `parquet:"step" json:"step"`
	Radius  int32  `parquet:"radius" json:"radius"`
	Players int32  `parquet:"players" json:"players"`
	Player  int32  `parquet:"player" json:"player"`
	Board   []byte `parquet:"board" json:"board"` // Owner per cell index

	// Visit policy of the search, parallel slices sorted by move
	Moves  []int32   `parquet:"moves" json:"moves"`
	Policy []float32 `parquet:"policy" json:"policy"`

	Move   int32 `parquet:"move" json:"move"`
	Winner int32 `parquet:"winner" json:"winner"` // 0 for a draw or an unfinished game
}

// NewSample records the position before move was played.
func NewSample(state *game.GameState, step, move int, policy map[int]float64) Sample {
	board := state.Board()
	owners := make([]byte, board.Len())
	for i := range owners {
		owners[i] = byte(board.Owner(i))
	}

	moves := make([]int, 0, len(policy))
	for m := range policy {
		moves = append(moves, m)
	}
	slices.Sort(moves)
	s := Sample{
		Step:    int32(step),
		Radius:  int32(board.Radius()),
		Players: int32(state.Mode()),
		Player:  int32(state.Player()),
		Board:   owners,
		Moves:   make([]int32, len(moves)),
		Policy:  make([]float32, len(moves)),
		Move:    int32(move),
	}
	for i, m := range moves {
		s.Moves[i] = int32(m)
		s.Policy[i] = float32(policy[m])
	}
	return s
}

// Label stamps the game id and final outcome on every sample of a game.
func Label(samples []Sample, id int, winner game.Player) {
	for i := range samples {
		samples[i].Game = int32(id)
		samples[i].Winner = int32(winner)
	}
}

// WriteSamples writes samples to a new zstd compressed parquet file in outDir
// and returns its path. The file appears atomically.
func WriteSamples(outDir, name string, samples []Sample) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	file := fmt.Sprintf("%s_%d.parquet", name, time.Now().UnixNano())
	finalPath := filepath.Join(outDir, file)
	tmpPath := finalPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, samples,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", schema),
	); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("rename parquet: %w", err)
	}

	return finalPath, nil
}

func ReadSamples(path string) ([]Sample, error) {
	samples, err := parquet.ReadFile[Sample](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}
	return samples, nil
}
