package experiments

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"hexsquared/engine"
	"hexsquared/experiments/metrics"
	"hexsquared/experiments/training"
	"hexsquared/game"
	"hexsquared/meta"
	"hexsquared/player"
	"hexsquared/searcher"
	"hexsquared/searcher/agent"

	"github.com/rs/zerolog/log"
)

const (
	NumGames   = 30 // Per match up
	TimeBudget = 10 * time.Millisecond
)

type Tournament struct {
	Name     string
	Radius   int
	Mode     game.Mode
	Games    int // Per match up, seats rotate between games
	Configs  []metrics.AgentConfig
	MatchUps [][]metrics.AgentConfig
	OutDir   string
	Samples  bool // Export self-play samples to parquet
	Seed     uint64
}

type Summary struct {
	Dir         string
	SamplesPath string
	Games       int
	Draws       int
	Wins        map[int]int // AgentConfig.ID -> games won
}

var parallelConfigs = []metrics.AgentConfig{
	{ID: 1, Kind: "mcts", Workers: 1, Duration: TimeBudget, Exploration: meta.EXPLORATION},
	{ID: 2, Kind: "mcts", Workers: 2, Duration: TimeBudget, Exploration: meta.EXPLORATION},
	{ID: 3, Kind: "mcts", Workers: 4, Duration: TimeBudget, Exploration: meta.EXPLORATION},
	{ID: 4, Kind: "mcts", Workers: 8, Duration: TimeBudget, Exploration: meta.EXPLORATION},
}

// ParallelizationToStrength pairs every parallel configuration against the
// sequential baseline.
func ParallelizationToStrength(radius int, outDir string) Tournament {
	baseline := metrics.AgentConfig{ID: 0, Kind: "mcts", Workers: 1, Duration: TimeBudget, Exploration: meta.EXPLORATION}
	matchUps := [][]metrics.AgentConfig{}
	for _, config := range parallelConfigs {
		matchUps = append(matchUps, []metrics.AgentConfig{baseline, config})
	}
	return Tournament{
		Name:     "parallelization_to_strength",
		Radius:   radius,
		Mode:     game.TwoPlayer,
		Games:    NumGames,
		Configs:  append([]metrics.AgentConfig{baseline}, parallelConfigs...),
		MatchUps: matchUps,
		OutDir:   outDir,
	}
}

// Heuristics plays a fixed-budget searcher against every heuristic player.
func Heuristics(radius int, mode game.Mode, episodes int, outDir string) Tournament {
	configs := []metrics.AgentConfig{{ID: 0, Kind: "mcts", Workers: 4, Episodes: episodes, Exploration: meta.EXPLORATION}}
	for i, kind := range player.Kinds {
		configs = append(configs, metrics.AgentConfig{ID: i + 1, Kind: string(kind)})
	}
	return Tournament{
		Name:     "heuristics",
		Radius:   radius,
		Mode:     mode,
		Games:    NumGames,
		Configs:  configs,
		MatchUps: RoundRobin(configs, mode),
		OutDir:   outDir,
	}
}

// SelfPlay runs training agents against each other and exports samples.
func SelfPlay(radius int, mode game.Mode, episodes, games int, outDir string) Tournament {
	config := metrics.AgentConfig{ID: 1, Kind: "train", Workers: 4, Episodes: episodes, Exploration: meta.EXPLORATION}
	matchUp := make([]metrics.AgentConfig, len(mode.Players()))
	for i := range matchUp {
		matchUp[i] = config
	}
	return Tournament{
		Name:     "self_play",
		Radius:   radius,
		Mode:     mode,
		Games:    games,
		Configs:  []metrics.AgentConfig{config},
		MatchUps: [][]metrics.AgentConfig{matchUp},
		OutDir:   outDir,
		Samples:  true,
	}
}

// RoundRobin returns every combination of distinct configurations with one
// entrant per seat.
func RoundRobin(configs []metrics.AgentConfig, mode game.Mode) [][]metrics.AgentConfig {
	seats := len(mode.Players())
	var matchUps [][]metrics.AgentConfig
	var pick func(start int, chosen []metrics.AgentConfig)
	pick = func(start int, chosen []metrics.AgentConfig) {
		if len(chosen) == seats {
			matchUps = append(matchUps, append([]metrics.AgentConfig(nil), chosen...))
			return
		}
		for i := start; i < len(configs); i++ {
			pick(i+1, append(chosen, configs[i]))
		}
	}
	pick(0, nil)
	return matchUps
}

func Run(ctx context.Context, t Tournament) (Summary, error) {
	if t.Games <= 0 {
		t.Games = NumGames
	}
	summary := Summary{Wins: make(map[int]int)}

	count := 0
	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}
	var samples []training.Sample

	log.Info().Msgf("starting %s experiment...", t.Name)

	for mi, matchUp := range t.MatchUps {
		log.Info().Msgf("starting matchup %d of %d: %+v", mi+1, len(t.MatchUps), matchUp)

		for i := 0; i < t.Games; i++ {
			seats := rotate(matchUp, i)
			count++

			e, err := newEngine(t, seats, uint64(count))
			if err != nil {
				return summary, err
			}
			winner, gameMetric, moveMetrics, err := e.Run(ctx)
			if err != nil {
				return summary, fmt.Errorf("matchup %d game %d: %w", mi+1, i+1, err)
			}

			ids := make([]int, len(seats))
			for s, config := range seats {
				ids[s] = config.ID
			}
			gameRecords = append(gameRecords, metrics.GameRecord{ID: count, Agents: ids, GameMetric: gameMetric})
			for _, mm := range moveMetrics {
				moveRecords = append(moveRecords, metrics.MoveRecord{Game: count, Agent: ids[mm.Player-1], MoveMetric: mm})
			}
			if t.Samples {
				gameSamples := e.Samples()
				training.Label(gameSamples, count, winner)
				samples = append(samples, gameSamples...)
			}

			summary.Games++
			if winner == game.None {
				summary.Draws++
				log.Info().Msgf("completed matchup %d game %d without a winner", mi+1, i+1)
			} else {
				summary.Wins[ids[winner-1]]++
				log.Info().Msgf("completed matchup %d game %d with winner: agent %d as %s", mi+1, i+1, ids[winner-1], winner)
			}
		}
	}

	log.Info().Msgf("completed %s experiment", t.Name)

	writer, err := metrics.NewWriter(t.OutDir, t.Name)
	if err != nil {
		return summary, fmt.Errorf("failed to create experiment writer: %w", err)
	}
	summary.Dir = writer.Dir()

	if err := writer.WriteAgentConfigs(t.Configs); err != nil {
		return summary, fmt.Errorf("failed to store agent configs: %w", err)
	}
	if err := writer.WriteGameRecords(gameRecords); err != nil {
		return summary, fmt.Errorf("failed to write game records: %w", err)
	}
	if err := writer.WriteMoveRecords(moveRecords); err != nil {
		return summary, fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msgf("stored records in %s", writer.Dir())

	if t.Samples && len(samples) > 0 {
		path, err := training.WriteSamples(filepath.Join(writer.Dir(), "samples"), t.Name, samples)
		if err != nil {
			return summary, fmt.Errorf("failed to write samples: %w", err)
		}
		summary.SamplesPath = path
		log.Info().Msgf("stored %d samples in %s", len(samples), path)
	}

	return summary, nil
}

// rotate moves every entrant one seat further per game.
func rotate(matchUp []metrics.AgentConfig, round int) []metrics.AgentConfig {
	n := len(matchUp)
	seats := make([]metrics.AgentConfig, n)
	for i := range matchUp {
		seats[(i+round)%n] = matchUp[i]
	}
	return seats
}

func newEngine(t Tournament, seats []metrics.AgentConfig, seed uint64) (*engine.LocalEngine, error) {
	agents := make([]agent.Agent, len(seats))
	for i, config := range seats {
		a, err := NewAgent(config, t.Seed+seed*10+uint64(i))
		if err != nil {
			return nil, err
		}
		agents[i] = a
	}

	options := []engine.Option{}
	if t.Samples {
		options = append(options, engine.WithSamples())
	}
	return engine.NewLocalEngine(game.NewGame(t.Radius, t.Mode), agents, options...), nil
}

// NewAgent builds the agent described by config.
func NewAgent(config metrics.AgentConfig, seed uint64) (agent.Agent, error) {
	switch config.Kind {
	case "mcts", "":
		return agent.NewEvaluationAgent(createMCTS(config, seed)), nil
	case "train":
		return agent.NewTrainingAgent(createMCTS(config, seed), 1.0, seed), nil
	}
	return player.New(player.Kind(config.Kind), seed)
}

// createMCTS uses config.Exploration as given, zero included.
func createMCTS(config metrics.AgentConfig, seed uint64) *searcher.MCTS {
	options := []searcher.Option{searcher.WithSeed(seed)}

	if config.Episodes > 0 {
		options = append(options, searcher.WithEpisodes(config.Episodes))
	}
	if config.Duration > 0 {
		options = append(options, searcher.WithDuration(config.Duration))
	}
	options = append(options, searcher.WithExploration(config.Exploration))

	options = append(options, searcher.WithMetrics())
	return searcher.NewMCTS(max(config.Workers, 1), options...)
}
