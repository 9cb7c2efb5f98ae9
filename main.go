package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"hexsquared/communication"
	"hexsquared/communication/client"
	"hexsquared/communication/server"
	"hexsquared/engine"
	"hexsquared/experiments"
	"hexsquared/experiments/metrics"
	"hexsquared/game"
	"hexsquared/gamemaster"
	"hexsquared/meta"
	"hexsquared/searcher/agent"
	"hexsquared/viewer"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const usage = `usage: hexsquared <command> [flags]

commands:
  serve       run the HTTP and websocket server
  play        play a local game between agents
  tournament  run an experiment and write CSV results
  bestmove    ask a running server for a move on an empty board
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "serve":
		err = runServe(ctx, args)
	case "play":
		err = runPlay(ctx, args)
	case "tournament":
		err = runTournament(ctx, args)
	case "bestmove":
		err = runBestMove(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg(os.Args[1] + " failed")
	}
}

// newFlagSet adds the flags every command shares.
func newFlagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	level := fs.String("log-level", "info", "Log level (debug, info, warn, error)")
	return fs, level
}

func setupLogging(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	return nil
}

func runServe(ctx context.Context, args []string) error {
	fs, level := newFlagSet("serve")
	addr := fs.String("addr", meta.ADDR, "Listen address")
	ttl := fs.Duration("game-ttl", meta.GAME_TTL, "Evict games idle for longer than this")
	every := fs.Duration("cleanup-interval", meta.CLEANUP_INTERVAL, "How often finished or idle games are evicted")
	fs.Parse(args)
	if err := setupLogging(*level); err != nil {
		return err
	}
	if *ttl <= 0 || *every <= 0 {
		return errors.New("game-ttl and cleanup-interval must be positive")
	}

	games := gamemaster.NewGameMaster()
	go games.Cleanup(ctx, *every, *ttl)

	s := server.NewServer(games)
	err := server.ListenAndServe(ctx, *addr, s.Handler())
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func runPlay(ctx context.Context, args []string) error {
	fs, level := newFlagSet("play")
	radius := fs.Int("radius", 5, "Board radius")
	players := fs.Int("players", 3, "Number of players (2 or 3)")
	seats := fs.String("seats", "mcts,random,path", "Comma separated agent kinds per seat (mcts, train, random, edge, center, path)")
	workers := fs.Int("workers", meta.WORKERS, "Search goroutines per MCTS agent")
	episodes := fs.Int("episodes", 200, "MCTS episodes per move")
	duration := fs.Duration("duration", 0, "MCTS time budget per move, also caps episodes")
	seed := fs.Uint64("seed", uint64(time.Now().UnixNano()), "Random seed")
	quiet := fs.Bool("quiet", false, "Only print the final board")
	fs.Parse(args)
	if err := setupLogging(*level); err != nil {
		return err
	}

	mode := game.Mode(*players)
	if err := validate(*radius, mode); err != nil {
		return err
	}
	kinds := strings.Split(*seats, ",")
	if len(kinds) != *players {
		return fmt.Errorf("%w: %d seats for %d players", game.ErrInvalidPlayer, len(kinds), *players)
	}

	agents := make([]agent.Agent, len(kinds))
	for i, kind := range kinds {
		config := metrics.AgentConfig{ID: i, Kind: strings.TrimSpace(kind), Workers: *workers, Episodes: *episodes, Duration: *duration}
		a, err := experiments.NewAgent(config, *seed+uint64(i))
		if err != nil {
			return err
		}
		agents[i] = a
	}

	render := viewer.NewRenderer(os.Stdout)
	options := []engine.Option{}
	if !*quiet {
		options = append(options, engine.WithObserver(func(u engine.Update) {
			fmt.Printf("\nmove %d: %s plays %d\n", u.Step, u.Player, u.Move)
			if err := render.Fprint(os.Stdout, u.State, u.Move); err != nil {
				log.Warn().Err(err).Msg("could not draw the board")
			}
		}))
	}

	e := engine.NewLocalEngine(game.NewGame(*radius, mode), agents, options...)
	winner, gameMetric, _, err := e.Run(ctx)
	if err != nil {
		return err
	}
	if *quiet {
		if err := render.Fprint(os.Stdout, e.State(), -1); err != nil {
			log.Warn().Err(err).Msg("could not draw the board")
		}
	}
	log.Info().Msgf("game over after %d moves in %v, winner %s", gameMetric.TotalMoves, gameMetric.Duration, winner)
	return nil
}

func runTournament(ctx context.Context, args []string) error {
	fs, level := newFlagSet("tournament")
	preset := fs.String("preset", "heuristics", "Experiment to run (parallel, heuristics, selfplay)")
	radius := fs.Int("radius", 4, "Board radius")
	players := fs.Int("players", 2, "Number of players (2 or 3)")
	episodes := fs.Int("episodes", 100, "MCTS episodes per move")
	games := fs.Int("games", experiments.NumGames, "Games per match up")
	out := fs.String("out", "results", "Output directory")
	seed := fs.Uint64("seed", 1, "Random seed")
	fs.Parse(args)
	if err := setupLogging(*level); err != nil {
		return err
	}

	mode := game.Mode(*players)
	if err := validate(*radius, mode); err != nil {
		return err
	}
	var t experiments.Tournament
	switch *preset {
	case "parallel":
		t = experiments.ParallelizationToStrength(*radius, *out)
	case "heuristics":
		t = experiments.Heuristics(*radius, mode, *episodes, *out)
	case "selfplay":
		t = experiments.SelfPlay(*radius, mode, *episodes, *games, *out)
	default:
		return fmt.Errorf("unknown preset %q", *preset)
	}
	t.Games = *games
	t.Seed = *seed

	summary, err := experiments.Run(ctx, t)
	if err != nil {
		return err
	}
	log.Info().Msgf("%d games (%d draws) written to %s", summary.Games, summary.Draws, summary.Dir)
	for id, wins := range summary.Wins {
		log.Info().Msgf("agent %d won %d games", id, wins)
	}
	if summary.SamplesPath != "" {
		log.Info().Msgf("samples written to %s", summary.SamplesPath)
	}
	return nil
}

func runBestMove(ctx context.Context, args []string) error {
	fs, level := newFlagSet("bestmove")
	url := fs.String("url", "http://localhost"+meta.ADDR, "Server URL")
	radius := fs.Int("radius", meta.RADIUS, "Board radius")
	players := fs.Int("players", 3, "Number of players (2 or 3)")
	iterations := fs.Int("iterations", meta.ITERATIONS, "MCTS iterations")
	workers := fs.Int("workers", meta.WORKERS, "Search goroutines")
	timeout := fs.Duration("timeout", 30*time.Second, "Request timeout")
	fs.Parse(args)
	if err := setupLogging(*level); err != nil {
		return err
	}

	if err := validate(*radius, game.Mode(*players)); err != nil {
		return err
	}
	board := game.NewBoard(*radius, game.Mode(*players))
	move, err := client.New(*url, *timeout).BestMove(ctx, communication.BestMoveRequest{
		Board:      communication.FromBoard(board),
		Player:     int(game.One),
		IterLimit:  *iterations,
		NumThreads: *workers,
		Players:    *players,
	})
	if err != nil {
		return err
	}
	fmt.Println(move)
	return nil
}

// validate rejects board settings that the game constructors panic on.
func validate(radius int, mode game.Mode) error {
	if radius < 1 {
		return fmt.Errorf("%w: radius %d", game.ErrMalformedBoard, radius)
	}
	if !mode.Valid(game.One) {
		return fmt.Errorf("%w: %d players", game.ErrInvalidPlayer, mode)
	}
	return nil
}
