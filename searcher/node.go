package searcher

import (
	"hexsquared/experiments/metrics"
	"hexsquared/game"

	"golang.org/x/exp/rand"
)

const root = 0

// node wraps one game state of the search tree. Parent and children are
// arena indices into tree.nodes.
type node struct {
	parent   int
	move     int // Cell claimed to reach this node, -1 at the root
	state    *game.GameState
	moves    []int // Untried moves are moves[len(children):]
	children []int
	terminal bool
	rewards  float64
	visits   int
}

// tree is owned by a single worker.
type tree struct {
	nodes       []node
	perspective game.Player
	exploration float64
	rng         *rand.Rand
	playout     *game.Playout
	metrics     metrics.Collector
}

func newTree(state *game.GameState, exploration float64, rng *rand.Rand, collector metrics.Collector) *tree {
	t := &tree{
		perspective: state.Player(),
		exploration: exploration,
		rng:         rng,
		playout:     game.NewPlayout(state),
		metrics:     collector,
	}
	t.add(-1, -1, state)
	return t
}

func (t *tree) add(parent, move int, state *game.GameState) int {
	n := node{parent: parent, move: move, state: state, terminal: state.IsTerminal()}
	if !n.terminal {
		n.moves = state.LegalMoves()
	}
	t.nodes = append(t.nodes, n)
	t.metrics.AddNodes(1)
	return len(t.nodes) - 1
}

func (t *tree) fullyExpanded(i int) bool {
	n := &t.nodes[i]
	return len(n.children) == len(n.moves)
}

// selects descends through fully expanded nodes by UCB1 until it reaches a
// terminal node or one with untried moves.
func (t *tree) selects() int {
	i := root
	for {
		n := &t.nodes[i]
		if n.terminal || !t.fullyExpanded(i) || len(n.children) == 0 {
			return i
		}
		i = t.bestChild(i, t.exploration)
	}
}

// bestChild returns the child maximizing UCB1 with weight c. Ties go to the
// earliest created child.
func (t *tree) bestChild(i int, c float64) int {
	n := &t.nodes[i]
	policy := newUCB1(c, n.visits)
	best, bestScore := -1, 0.0
	for _, child := range n.children {
		score := policy.evaluate(t.nodes[child].rewards, t.nodes[child].visits)
		if best < 0 || score > bestScore {
			best, bestScore = child, score
		}
	}
	return best
}

// expand creates the child for the first untried move.
func (t *tree) expand(i int) (int, error) {
	n := &t.nodes[i]
	if len(n.children) >= len(n.moves) {
		return -1, ErrNoExpandableMove
	}
	move := n.moves[len(n.children)]
	next, err := n.state.Play(move)
	if err != nil {
		return -1, err
	}
	child := t.add(i, move, next)
	t.nodes[i].children = append(t.nodes[i].children, child)
	return child, nil
}

// simulate plays uniformly random moves from node i and scores the result
// for the player to move at the root.
func (t *tree) simulate(i int) float64 {
	n := &t.nodes[i]
	var winner game.Player
	if n.terminal {
		winner = n.state.Winner()
	} else {
		t.playout.Load(n.state)
		winner = t.playout.Run(t.rng)
		t.metrics.AddPlayout()
	}
	if winner == t.perspective {
		return Win
	}
	return Loss
}

// backup adds the same reward to every node on the path to the root.
func (t *tree) backup(i int, reward float64) {
	for i >= 0 {
		n := &t.nodes[i]
		n.visits++
		n.rewards += reward
		i = n.parent
	}
}

func (t *tree) iterate() error {
	leaf := t.selects()
	if !t.nodes[leaf].terminal {
		child, err := t.expand(leaf)
		if err != nil {
			return err
		}
		leaf = child
	}
	t.backup(leaf, t.simulate(leaf))
	return nil
}

func (t *tree) visits() int {
	return t.nodes[root].visits
}

func (t *tree) stats() []MoveStat {
	children := t.nodes[root].children
	stats := make([]MoveStat, 0, len(children))
	for _, child := range children {
		n := &t.nodes[child]
		stats = append(stats, MoveStat{Move: n.move, Visits: n.visits, Rewards: n.rewards})
	}
	return stats
}
