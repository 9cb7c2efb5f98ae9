package gamemaster

import (
	"context"
	"fmt"
	"sync"
	"time"

	"hexsquared/game"
	"hexsquared/searcher/agent"

	"github.com/rs/zerolog/log"
)

const subscriberBuffer = 16

// Snapshot is a consistent copy of a session.
type Snapshot struct {
	ID       string
	Config   Config
	State    *game.GameState
	Moves    int
	LastMove int // -1 before the first move
	Winner   game.Player
	Draw     bool
	Over     bool
	Conceded []game.Player
}

type session struct {
	mu       sync.Mutex
	id       string
	config   Config
	state    *game.GameState
	agents   []agent.Agent // nil for human seats
	conceded []bool
	winner   game.Player // Set when every opponent conceded
	moves    int
	lastMove int
	changed  time.Time // Last move or concession

	subMu       sync.Mutex
	subscribers map[int]chan Snapshot
	nextSub     int
}

func newSession(id string, config Config, agents []agent.Agent) *session {
	return &session{
		id:          id,
		config:      config,
		state:       game.NewGame(config.Radius, config.Mode),
		agents:      agents,
		conceded:    make([]bool, len(agents)),
		lastMove:    -1,
		changed:     time.Now(),
		subscribers: make(map[int]chan Snapshot),
	}
}

func (s *session) over() bool {
	return s.winner != game.None || s.state.IsTerminal()
}

func (s *session) play(index int) error {
	next, err := s.state.Play(index)
	if err != nil {
		return err
	}
	s.state = next
	s.moves++
	s.lastMove = index
	s.changed = time.Now()
	if !s.over() {
		if err := s.skipConceded(); err != nil {
			return err
		}
	}
	s.publish()
	return nil
}

func (s *session) concede(p game.Player) error {
	s.conceded[p-1] = true
	s.changed = time.Now()
	log.Info().Msgf("game %s: player %s conceded", s.id, p)

	var remaining []game.Player
	for _, q := range s.config.Mode.Players() {
		if !s.conceded[q-1] {
			remaining = append(remaining, q)
		}
	}
	if len(remaining) == 1 {
		s.winner = remaining[0]
	} else if s.state.Player() == p {
		if err := s.skipConceded(); err != nil {
			return err
		}
	}
	s.publish()
	return nil
}

// skipConceded hands the turn to the next seat still playing.
func (s *session) skipConceded() error {
	p := s.state.Player()
	for s.conceded[p-1] {
		p = s.config.Mode.Next(p)
	}
	if p == s.state.Player() {
		return nil
	}
	next, err := game.NewGameState(s.state.Board(), p, s.config.Mode)
	if err != nil {
		return err
	}
	s.state = next
	return nil
}

// advance plays AI seats until a human is to move or the game is over.
func (s *session) advance(ctx context.Context) error {
	for !s.over() {
		p := s.state.Player()
		a := s.agents[p-1]
		if a == nil {
			return nil
		}
		decision, err := a.FindMove(ctx, s.state)
		if err != nil {
			return fmt.Errorf("game %s: player %s failed to move: %w", s.id, p, err)
		}
		log.Debug().Msgf("game %s: player %s (%s) claims cell %d", s.id, p, s.config.Seats[p-1], decision.Move)
		if err := s.play(decision.Move); err != nil {
			return fmt.Errorf("game %s: player %s played %d: %w", s.id, p, decision.Move, err)
		}
	}
	return nil
}

// expired reports whether the session is over or has been idle longer than ttl.
func (s *session) expired(now time.Time, ttl time.Duration) bool {
	return s.over() || now.Sub(s.changed) > ttl
}

func (s *session) snapshot() Snapshot {
	snap := Snapshot{
		ID:       s.id,
		Config:   s.config,
		State:    s.state,
		Moves:    s.moves,
		LastMove: s.lastMove,
		Over:     s.over(),
	}
	if s.winner != game.None {
		snap.Winner = s.winner
	} else {
		snap.Winner, snap.Draw = s.state.Outcome()
	}
	for i, c := range s.conceded {
		if c {
			snap.Conceded = append(snap.Conceded, game.Player(i+1))
		}
	}
	return snap
}

func (s *session) subscribe() (<-chan Snapshot, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Snapshot, subscriberBuffer)
	s.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			if _, ok := s.subscribers[id]; ok {
				delete(s.subscribers, id)
				close(ch)
			}
		})
	}
}

// publish must be called with s.mu held. Slow subscribers miss updates.
func (s *session) publish() {
	snap := s.snapshot()
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			log.Warn().Msgf("game %s: subscriber %d is behind, dropping update", s.id, id)
		}
	}
}

// closeSubscribers ends every subscription of an evicted session.
func (s *session) closeSubscribers() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}
}
