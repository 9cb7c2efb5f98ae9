package gamemaster

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"hexsquared/game"
	"hexsquared/meta"
	"hexsquared/player"
	"hexsquared/searcher"
	"hexsquared/searcher/agent"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrNotYourTurn  = errors.New("not your turn")
	ErrGameOver     = errors.New("game is over")
)

const (
	Human = "human"
	MCTS  = "mcts"
)

type Config struct {
	Radius     int
	Mode       game.Mode
	Seats      []string // Human, MCTS or a player.Kind, one per player
	Iterations int
	Workers    int
}

// GameMaster keeps every running game session.
type GameMaster struct {
	mu    sync.RWMutex
	games map[string]*session
}

func NewGameMaster() *GameMaster {
	return &GameMaster{games: make(map[string]*session)}
}

// Create starts a new game and lets AI seats move until a human is to play.
func (gm *GameMaster) Create(ctx context.Context, config Config) (Snapshot, error) {
	config, agents, err := prepare(config)
	if err != nil {
		return Snapshot{}, err
	}

	s := newSession(uuid.NewString(), config, agents)
	gm.mu.Lock()
	gm.games[s.id] = s
	gm.mu.Unlock()

	log.Info().Msgf("created game %s: radius %d, %d players, seats %v", s.id, config.Radius, config.Mode, config.Seats)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.advance(ctx); err != nil {
		return s.snapshot(), err
	}
	return s.snapshot(), nil
}

func (gm *GameMaster) Get(id string) (Snapshot, error) {
	s, err := gm.session(id)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(), nil
}

// Play claims index for a human player and lets AI seats answer.
func (gm *GameMaster) Play(ctx context.Context, id string, p game.Player, index int) (Snapshot, error) {
	s, err := gm.session(id)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.over() {
		return s.snapshot(), ErrGameOver
	}
	if p != s.state.Player() || s.agents[p-1] != nil {
		return s.snapshot(), fmt.Errorf("%w: player %s, %s to move", ErrNotYourTurn, p, s.state.Player())
	}
	if err := s.play(index); err != nil {
		return s.snapshot(), err
	}
	if err := s.advance(ctx); err != nil {
		return s.snapshot(), err
	}
	return s.snapshot(), nil
}

// Concede removes p from the rotation. The last player standing wins.
func (gm *GameMaster) Concede(ctx context.Context, id string, p game.Player) (Snapshot, error) {
	s, err := gm.session(id)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.over() {
		return s.snapshot(), ErrGameOver
	}
	if !s.config.Mode.Valid(p) || s.conceded[p-1] {
		return s.snapshot(), fmt.Errorf("%w: player %s cannot concede", game.ErrInvalidPlayer, p)
	}
	if err := s.concede(p); err != nil {
		return s.snapshot(), err
	}
	if err := s.advance(ctx); err != nil {
		return s.snapshot(), err
	}
	return s.snapshot(), nil
}

// Subscribe streams a snapshot after every change of the game. The
// returned function cancels the subscription and closes the channel.
func (gm *GameMaster) Subscribe(id string) (<-chan Snapshot, func(), error) {
	s, err := gm.session(id)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.subscribe()
	return ch, cancel, nil
}

// Cleanup evicts finished or idle games every interval until ctx is done.
func (gm *GameMaster) Cleanup(ctx context.Context, every, ttl time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := gm.Evict(ttl); n > 0 {
				log.Info().Msgf("evicted %d games, %d remaining", n, gm.Len())
			}
		}
	}
}

// Evict removes every game that is over or has not changed for longer than
// ttl, closes its subscriptions and returns how many were removed.
func (gm *GameMaster) Evict(ttl time.Duration) int {
	now := time.Now()
	gm.mu.RLock()
	candidates := make([]*session, 0, len(gm.games))
	for _, s := range gm.games {
		candidates = append(candidates, s)
	}
	gm.mu.RUnlock()

	var expired []*session
	for _, s := range candidates {
		s.mu.Lock()
		if s.expired(now, ttl) {
			expired = append(expired, s)
		}
		s.mu.Unlock()
	}

	gm.mu.Lock()
	for _, s := range expired {
		delete(gm.games, s.id)
	}
	gm.mu.Unlock()

	for _, s := range expired {
		s.closeSubscribers()
		log.Debug().Msgf("evicted game %s", s.id)
	}
	return len(expired)
}

// Len returns the number of games held.
func (gm *GameMaster) Len() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.games)
}

func (gm *GameMaster) session(id string) (*session, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	s, ok := gm.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	return s, nil
}

// prepare fills defaults and builds an agent for every AI seat.
func prepare(config Config) (Config, []agent.Agent, error) {
	if config.Radius == 0 {
		config.Radius = meta.RADIUS
	}
	if config.Mode == 0 {
		config.Mode = game.ThreePlayer
	}
	if config.Iterations <= 0 {
		config.Iterations = meta.ITERATIONS
	}
	if config.Workers <= 0 {
		config.Workers = meta.WORKERS
	}
	if config.Radius < 1 {
		return config, nil, fmt.Errorf("%w: radius %d", game.ErrMalformedBoard, config.Radius)
	}
	if config.Mode != game.TwoPlayer && config.Mode != game.ThreePlayer {
		return config, nil, fmt.Errorf("%w: %d players", game.ErrInvalidPlayer, config.Mode)
	}

	seats := len(config.Mode.Players())
	if len(config.Seats) == 0 {
		config.Seats = make([]string, seats)
		for i := range config.Seats {
			config.Seats[i] = Human
		}
	}
	if len(config.Seats) != seats {
		return config, nil, fmt.Errorf("%w: %d seats for %d players", game.ErrInvalidPlayer, len(config.Seats), seats)
	}

	agents := make([]agent.Agent, seats)
	for i, seat := range config.Seats {
		switch seat {
		case Human:
		case MCTS:
			agents[i] = agent.NewEvaluationAgent(searcher.NewMCTS(config.Workers, searcher.WithEpisodes(config.Iterations)))
		default:
			a, err := player.New(player.Kind(seat), uint64(time.Now().UnixNano())+uint64(i))
			if err != nil {
				return config, nil, fmt.Errorf("%w: seat %d: %v", game.ErrInvalidPlayer, i+1, err)
			}
			agents[i] = a
		}
	}
	return config, agents, nil
}
