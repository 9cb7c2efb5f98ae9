package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Workers  int
	Duration time.Duration
	Episodes int
	Playouts int // rollouts that started from a non-terminal leaf
	TreeSize int
}

type MoveMetric struct {
	Step   int
	Player int // Player ID
	Move   int
	SearchMetric
}

type GameMetric struct {
	StartingPlayer int
	Winner         int // 0 for a draw or an unfinished game
	Draw           bool
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
}

// Collector is shared by every worker of one search.
type Collector interface {
	Start(workers int)
	AddEpisode()
	AddPlayout()
	AddNodes(n int)
	Complete() SearchMetric
}

type collector struct {
	workers   int
	startTime time.Time
	episodes  atomic.Int32
	playouts  atomic.Int32
	nodes     atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(workers int) {
	m.startTime = time.Now()
	m.workers = workers
	m.episodes.Store(0)
	m.playouts.Store(0)
	m.nodes.Store(0)
}

func (m *collector) AddEpisode() {
	m.episodes.Add(1)
}

func (m *collector) AddPlayout() {
	m.playouts.Add(1)
}

func (m *collector) AddNodes(n int) {
	m.nodes.Add(int32(n))
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Workers:  m.workers,
		Duration: time.Since(m.startTime),
		Episodes: int(m.episodes.Load()),
		Playouts: int(m.playouts.Load()),
		TreeSize: int(m.nodes.Load()),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(workers int)      {}
func (m *dummyCollector) AddEpisode()            {}
func (m *dummyCollector) AddPlayout()            {}
func (m *dummyCollector) AddNodes(n int)         {}
func (m *dummyCollector) Complete() SearchMetric { return SearchMetric{} }
