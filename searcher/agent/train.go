package agent

import (
	"context"
	"math"
	"slices"
	"sync"

	"hexsquared/game"
	"hexsquared/searcher"

	"golang.org/x/exp/rand"
)

type trainingAgent struct {
	mcts        *searcher.MCTS
	temperature float64
	mu          sync.Mutex
	rng         *rand.Rand
}

// NewTrainingAgent returns a new agent for self-play during training. Moves
// are sampled from the visit policy sharpened by temperature.
func NewTrainingAgent(mcts *searcher.MCTS, temperature float64, seed uint64) Agent {
	if mcts == nil {
		panic("training agent needs a searcher")
	}
	if temperature <= 0 {
		temperature = 1.0
	}
	return &trainingAgent{
		mcts:        mcts,
		temperature: temperature,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

func (a *trainingAgent) FindMove(ctx context.Context, state *game.GameState) (Decision, error) {
	result, err := a.mcts.Search(ctx, state)
	if err != nil {
		return Decision{Move: -1}, err
	}
	policy := result.Policy()
	adjusted := adjustTemperature(policy, a.temperature)

	a.mu.Lock()
	move := sample(adjusted, a.rng.Float64())
	a.mu.Unlock()

	return Decision{Move: move, Policy: policy, Metric: result.Metric}, nil
}

func adjustTemperature(policy map[int]float64, temperature float64) map[int]float64 {
	// Compute temperature-adjusted move probabilities
	exponent := 1.0 / temperature
	sum := 0.0
	adjusted := make(map[int]float64, len(policy))
	for move, visit := range policy {
		prob := math.Pow(visit, exponent)
		sum += prob
		adjusted[move] = prob
	}
	if sum == 0 {
		return adjusted
	}
	// Normalize
	for move := range adjusted {
		adjusted[move] /= sum
	}
	return adjusted
}

// sample walks the moves in index order so a fixed draw picks a fixed move.
func sample(policy map[int]float64, sampled float64) int {
	moves := make([]int, 0, len(policy))
	for move := range policy {
		moves = append(moves, move)
	}
	slices.Sort(moves)

	cumulative := 0.0
	lastMove := -1
	for _, move := range moves {
		lastMove = move
		cumulative += policy[move]
		if sampled < cumulative {
			return move
		}
	}
	return lastMove // Fallback in case of rounding errors
}
