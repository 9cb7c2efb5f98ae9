package agent

import (
	"context"

	"hexsquared/game"
	"hexsquared/searcher"
)

type evaluationAgent struct {
	mcts *searcher.MCTS
}

// NewEvaluationAgent returns a new agent for actual game play during evaluation.
func NewEvaluationAgent(mcts *searcher.MCTS) Agent {
	if mcts == nil {
		panic("evaluation agent needs a searcher")
	}
	return evaluationAgent{mcts: mcts}
}

func (a evaluationAgent) FindMove(ctx context.Context, state *game.GameState) (Decision, error) {
	result, err := a.mcts.Search(ctx, state)
	if err != nil {
		return Decision{Move: -1}, err
	}
	return Decision{Move: result.Move, Policy: result.Policy(), Metric: result.Metric}, nil
}
