package searcher

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"hexsquared/experiments/metrics"
	"hexsquared/game"
	"hexsquared/meta"

	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoExpandableMove = errors.New("searcher: node has no untried move")
	ErrEmptyTree        = errors.New("searcher: root has no children")
)

// TerminalError is returned when the search starts from a finished game.
type TerminalError struct {
	Winner game.Player
	Draw   bool
}

func (e *TerminalError) Error() string {
	if e.Draw {
		return fmt.Sprintf("%s: game is drawn", ErrEmptyTree)
	}
	return fmt.Sprintf("%s: game already won by %s", ErrEmptyTree, e.Winner)
}

func (e *TerminalError) Unwrap() error { return ErrEmptyTree }

type Option func(mcts *MCTS)

type MCTS struct {
	workers     int
	duration    time.Duration
	episodes    int
	exploration float64
	seed        uint64
	seeded      bool
	metrics     bool
}

// MoveStat aggregates the root child statistics of every worker for a move.
type MoveStat struct {
	Move    int
	Visits  int
	Rewards float64
}

func (s MoveStat) Mean() float64 {
	return mean(s.Rewards, s.Visits)
}

type Result struct {
	Move   int
	Visits int        // Root visits summed over workers
	Stats  []MoveStat // Sorted by move index
	Metric metrics.SearchMetric
}

// Policy returns the visit share of every expanded root move.
func (r Result) Policy() map[int]float64 {
	policy := make(map[int]float64, len(r.Stats))
	if r.Visits == 0 {
		return policy
	}
	for _, stat := range r.Stats {
		policy[stat.Move] = float64(stat.Visits) / float64(r.Visits)
	}
	return policy
}

func WithDuration(duration time.Duration) Option {
	return func(m *MCTS) {
		if duration > 0 {
			m.duration = duration
		}
	}
}

func WithEpisodes(episodes int) Option {
	return func(m *MCTS) {
		if episodes > 0 {
			m.episodes = episodes
		}
	}
}

func WithExploration(c float64) Option {
	return func(m *MCTS) {
		if c >= 0 {
			m.exploration = c
		}
	}
}

func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.seed = seed
		m.seeded = true
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = true
	}
}

func NewMCTS(workers int, options ...Option) *MCTS {
	if workers < 1 {
		panic("Must use at least one worker")
	}
	m := &MCTS{ // Default values
		workers:     workers,
		exploration: meta.EXPLORATION,
	}
	for _, option := range options {
		option(m)
	}
	if m.episodes <= 0 && m.duration <= 0 {
		m.episodes = meta.ITERATIONS
	}
	return m
}

func (m *MCTS) Workers() int { return m.workers }

func (m *MCTS) Exploration() float64 { return m.exploration }

// Search runs root-parallel MCTS from state and returns the move with the
// highest mean reward for the player to move. At least one iteration always
// runs, even if ctx is already done.
func (m *MCTS) Search(ctx context.Context, state *game.GameState) (Result, error) {
	if state.IsTerminal() {
		winner, draw := state.Outcome()
		return Result{Move: -1}, &TerminalError{Winner: winner, Draw: draw}
	}

	collector := metrics.NewDummyCollector()
	if m.metrics {
		collector = metrics.NewCollector()
	}
	collector.Start(m.workers)

	if m.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.duration)
		defer cancel()
	}

	seed := m.seed
	if !m.seeded {
		seed = uint64(time.Now().UnixNano())
	}
	trees := make([]*tree, m.workers)
	for i := range trees {
		rng := rand.New(rand.NewSource(seed + uint64(i)))
		trees[i] = newTree(state, m.exploration, rng, collector)
	}

	var err error
	if m.episodes > 0 {
		err = m.iterate(ctx, trees, collector)
	} else {
		err = m.countdown(ctx, trees, collector)
	}
	if err != nil {
		return Result{Move: -1}, err
	}

	result := merge(trees)
	result.Metric = collector.Complete()
	if len(result.Stats) == 0 {
		return result, ErrEmptyTree
	}
	result.Move = decide(result.Stats)
	return result, nil
}

// iterate shares a fixed budget of episodes between the workers.
func (m *MCTS) iterate(ctx context.Context, trees []*tree, collector metrics.Collector) error {
	task := make(chan struct{}, m.episodes)
	for i := 0; i < m.episodes; i++ {
		task <- struct{}{}
	}
	close(task)

	var g errgroup.Group
	for _, t := range trees {
		g.Go(func() error {
			for range task {
				if ctx.Err() != nil && t.visits() > 0 {
					return nil
				}
				if err := t.iterate(); err != nil {
					return err
				}
				collector.AddEpisode()
			}
			return nil
		})
	}
	return g.Wait()
}

// countdown runs every worker until ctx is done.
func (m *MCTS) countdown(ctx context.Context, trees []*tree, collector metrics.Collector) error {
	var g errgroup.Group
	for _, t := range trees {
		g.Go(func() error {
			for {
				if err := t.iterate(); err != nil {
					return err
				}
				collector.AddEpisode()

				select {
				case <-ctx.Done():
					return nil
				default:
				}
			}
		})
	}
	return g.Wait()
}

func merge(trees []*tree) Result {
	byMove := make(map[int]*MoveStat)
	var result Result
	for _, t := range trees {
		result.Visits += t.visits()
		for _, stat := range t.stats() {
			total, ok := byMove[stat.Move]
			if !ok {
				total = &MoveStat{Move: stat.Move}
				byMove[stat.Move] = total
			}
			total.Visits += stat.Visits
			total.Rewards += stat.Rewards
		}
	}

	result.Stats = make([]MoveStat, 0, len(byMove))
	for _, stat := range byMove {
		result.Stats = append(result.Stats, *stat)
	}
	slices.SortFunc(result.Stats, func(a, b MoveStat) int { return a.Move - b.Move })
	return result
}

// decide picks the highest mean reward. Ties go to more visits, then to the
// lower cell index.
func decide(stats []MoveStat) int {
	best := stats[0]
	for _, stat := range stats[1:] {
		if stat.Mean() > best.Mean() || (stat.Mean() == best.Mean() && stat.Visits > best.Visits) {
			best = stat
		}
	}
	return best.Move
}
