package server

import (
	"encoding/json"
	"net/http"
	"time"

	"hexsquared/communication"
	"hexsquared/game"
	"hexsquared/gamemaster"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 10 * time.Second

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req communication.CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request: "+err.Error())
		return
	}
	if req.Iterations > maxIterations || req.Workers > maxWorkers {
		writeError(w, http.StatusBadRequest, "iterations or workers out of range")
		return
	}

	snap, err := s.games.Create(r.Context(), gamemaster.Config{
		Radius:     req.Radius,
		Mode:       game.Mode(req.Players),
		Seats:      req.Seats,
		Iterations: req.Iterations,
		Workers:    req.Workers,
	})
	if err != nil && snap.ID == "" {
		writeFailure(w, err)
		return
	}
	if err != nil {
		log.Error().Err(err).Msgf("game %s: AI seat failed", snap.ID)
	}
	writeJSON(w, http.StatusCreated, view(snap))
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	snap, err := s.games.Get(r.PathValue("id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view(snap))
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req communication.MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request: "+err.Error())
		return
	}
	if req.Player < 1 || req.Player > 3 {
		writeError(w, http.StatusBadRequest, "player out of range")
		return
	}

	snap, err := s.games.Play(r.Context(), r.PathValue("id"), game.Player(req.Player), req.Index)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view(snap))
}

func (s *Server) handleConcede(w http.ResponseWriter, r *http.Request) {
	var req communication.ConcedeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request: "+err.Error())
		return
	}
	if req.Player < 1 || req.Player > 3 {
		writeError(w, http.StatusBadRequest, "player out of range")
		return
	}

	snap, err := s.games.Concede(r.Context(), r.PathValue("id"), game.Player(req.Player))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view(snap))
}

// handleWatch streams the current game and every later change over a websocket.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	updates, cancel, err := s.games.Subscribe(id)
	if err != nil {
		writeFailure(w, err)
		return
	}
	defer cancel()
	current, err := s.games.Get(id)
	if err != nil {
		writeFailure(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msgf("game %s: websocket upgrade failed", id)
		return
	}
	defer conn.Close()

	// Reader drains control frames and notices when the viewer leaves.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(snap gamemaster.Snapshot) bool {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(view(snap)); err != nil {
			log.Debug().Err(err).Msgf("game %s: viewer gone", id)
			return false
		}
		return true
	}

	finish := func() {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game over"),
			time.Now().Add(writeWait))
	}

	if !send(current) {
		return
	}
	if current.Over {
		finish()
		return
	}
	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if !newer(snap, current) {
				continue
			}
			if !send(snap) {
				return
			}
			current = snap
			if snap.Over {
				finish()
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}

// newer reports whether snap happened after shown. Updates published between
// subscribing and taking the first snapshot are already part of it.
func newer(snap, shown gamemaster.Snapshot) bool {
	if snap.Moves != shown.Moves {
		return snap.Moves > shown.Moves
	}
	return len(snap.Conceded) > len(shown.Conceded)
}

func view(snap gamemaster.Snapshot) communication.GameView {
	v := communication.GameView{
		ID:       snap.ID,
		Radius:   snap.Config.Radius,
		Players:  int(snap.Config.Mode),
		Seats:    snap.Config.Seats,
		Moves:    snap.Moves,
		LastMove: snap.LastMove,
		Winner:   int(snap.Winner),
		Draw:     snap.Draw,
		Over:     snap.Over,
		Conceded: []int{},
	}
	if snap.State != nil {
		v.Board = communication.FromBoard(snap.State.Board())
		if !snap.Over {
			v.Player = int(snap.State.Player())
		}
	}
	for _, p := range snap.Conceded {
		v.Conceded = append(v.Conceded, int(p))
	}
	return v
}
