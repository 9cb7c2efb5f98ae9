package searcher

import "math"

// Hyperparameters for MCTS

const Win = 1.0  // Reward when the searching player wins the rollout
const Loss = 0.0 // Reward for a loss or a draw

const epsilon = 1e-6 // Keeps unvisited children finite and prevents division by zero

type ucb1 struct {
	c   float64
	lnN float64
}

func newUCB1(c float64, parentVisits int) ucb1 {
	return ucb1{c: c, lnN: math.Log(float64(parentVisits) + 1)}
}

// evaluate returns q/(n+e) + c*sqrt(ln(N+1)/(n+e)).
func (u ucb1) evaluate(rewards float64, visits int) float64 {
	n := float64(visits) + epsilon
	return rewards/n + u.c*math.Sqrt(u.lnN/n)
}

// mean is the exploitation term alone, i.e. UCB1 with c = 0.
func mean(rewards float64, visits int) float64 {
	return rewards / (float64(visits) + epsilon)
}
