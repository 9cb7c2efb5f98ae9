package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"hexsquared/communication"
	"hexsquared/game"
	"hexsquared/gamemaster"
	"hexsquared/player"
	"hexsquared/searcher"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	statusMessage = "Hex MCTS API is running"
	noMoveMessage = "No valid move found."

	// Upper bounds for a single /best-move/ request
	maxIterations = 1_000_000
	maxWorkers    = 64
)

type Server struct {
	games    *gamemaster.GameMaster
	upgrader websocket.Upgrader
}

func NewServer(games *gamemaster.GameMaster) *Server {
	if games == nil {
		games = gamemaster.NewGameMaster()
	}
	return &Server{
		games: games,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// RegisterRoutes sets up all routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleStatus)
	mux.HandleFunc("POST /best-move", s.handleBestMove)
	mux.HandleFunc("POST /best-move/{$}", s.handleBestMove)
	mux.HandleFunc("GET /ai", s.handleAIKinds)

	mux.HandleFunc("POST /games", s.handleCreateGame)
	mux.HandleFunc("GET /games/{id}", s.handleGetGame)
	mux.HandleFunc("POST /games/{id}/moves", s.handlePlay)
	mux.HandleFunc("POST /games/{id}/concede", s.handleConcede)
	mux.HandleFunc("GET /games/{id}/ws", s.handleWatch)
}

// Handler returns the routes wrapped with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return withLogging(mux)
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, communication.StatusResponse{Message: statusMessage})
}

// handleAIKinds lists the seat kinds a game can be created with besides humans.
func (s *Server) handleAIKinds(w http.ResponseWriter, r *http.Request) {
	kinds := []string{gamemaster.MCTS}
	for _, kind := range player.Kinds {
		kinds = append(kinds, string(kind))
	}
	writeJSON(w, http.StatusOK, kinds)
}

func (s *Server) handleBestMove(w http.ResponseWriter, r *http.Request) {
	var req communication.BestMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request: "+err.Error())
		return
	}
	req = req.WithDefaults()
	if req.IterLimit > maxIterations || req.NumThreads > maxWorkers {
		writeError(w, http.StatusBadRequest, "iter_limit or num_threads out of range")
		return
	}

	state, err := req.State()
	if err != nil {
		writeFailure(w, err)
		return
	}

	mcts := searcher.NewMCTS(req.NumThreads, searcher.WithEpisodes(req.IterLimit), searcher.WithMetrics())
	result, err := mcts.Search(r.Context(), state)
	if err != nil {
		var terminal *searcher.TerminalError
		if errors.As(err, &terminal) {
			log.Info().Msgf("best-move on a finished game: %v", err)
			writeError(w, http.StatusConflict, noMoveMessage)
			return
		}
		writeFailure(w, err)
		return
	}

	log.Debug().
		Int("move", result.Move).
		Int("episodes", result.Metric.Episodes).
		Dur("duration", result.Metric.Duration).
		Msgf("best move for player %s", state.Player())
	writeJSON(w, http.StatusOK, communication.BestMoveResponse{BestMove: result.Move})
}

// writeFailure maps domain errors to status codes.
func writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrMalformedBoard),
		errors.Is(err, game.ErrInvalidPlayer),
		errors.Is(err, game.ErrInvalidMove):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, gamemaster.ErrGameNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, gamemaster.ErrGameOver),
		errors.Is(err, gamemaster.ErrNotYourTurn),
		errors.Is(err, searcher.ErrEmptyTree):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, noMoveMessage)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, communication.ErrorResponse{Error: msg})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack lets websocket upgrades pass through the recorder.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		log.Info().
			Str("request_id", id).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("handled request")
	})
}
