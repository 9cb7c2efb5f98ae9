// Package communication holds the JSON shapes shared by the HTTP server and
// its clients.
package communication

import (
	"fmt"

	"hexsquared/game"
	"hexsquared/meta"
)

// Hex is one cell of a board snapshot. Owner 0 is empty.
type Hex struct {
	R     int `json:"R"`
	S     int `json:"S"`
	Q     int `json:"Q"`
	Index int `json:"Index"`
	Owner int `json:"Owner"`
}

type BestMoveRequest struct {
	Board      []Hex `json:"board"`
	Player     int   `json:"player"`
	IterLimit  int   `json:"iter_limit,omitempty"`
	NumThreads int   `json:"num_threads,omitempty"`
	Players    int   `json:"players,omitempty"` // 2 or 3, defaults to 3
}

type BestMoveResponse struct {
	BestMove int `json:"BestMove"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type StatusResponse struct {
	Message string `json:"message"`
}

// WithDefaults fills unset search limits and mode.
func (r BestMoveRequest) WithDefaults() BestMoveRequest {
	if r.IterLimit <= 0 {
		r.IterLimit = meta.ITERATIONS
	}
	if r.NumThreads <= 0 {
		r.NumThreads = meta.WORKERS
	}
	if r.Players == 0 {
		r.Players = int(game.ThreePlayer)
	}
	return r
}

// State validates the snapshot and returns the position it describes.
func (r BestMoveRequest) State() (*game.GameState, error) {
	board, err := ToBoard(r.Board)
	if err != nil {
		return nil, err
	}
	if r.Player < 1 || r.Player > 3 {
		return nil, fmt.Errorf("%w: player %d", game.ErrInvalidPlayer, r.Player)
	}
	return game.NewGameState(board, game.Player(r.Player), game.Mode(r.Players))
}

func ToBoard(hexes []Hex) (*game.Board, error) {
	cells := make([]game.Cell, len(hexes))
	for i, h := range hexes {
		if h.Owner < 0 || h.Owner > 3 {
			return nil, fmt.Errorf("%w: cell %d has owner %d", game.ErrMalformedBoard, h.Index, h.Owner)
		}
		cells[i] = game.Cell{
			Coord: game.Coord{R: h.R, S: h.S, Q: h.Q},
			Index: h.Index,
			Owner: game.Player(h.Owner),
		}
	}
	return game.BoardFromCells(cells)
}

func FromBoard(b *game.Board) []Hex {
	cells := b.Cells()
	hexes := make([]Hex, len(cells))
	for i, c := range cells {
		hexes[i] = Hex{R: c.R, S: c.S, Q: c.Q, Index: c.Index, Owner: int(c.Owner)}
	}
	return hexes
}

// Session routes

type CreateGameRequest struct {
	Radius     int      `json:"radius"`
	Players    int      `json:"players"`
	Seats      []string `json:"seats"` // "human", "mcts" or a heuristic kind, one per player
	Iterations int      `json:"iterations,omitempty"`
	Workers    int      `json:"workers,omitempty"`
}

type MoveRequest struct {
	Player int `json:"player"`
	Index  int `json:"index"`
}

type ConcedeRequest struct {
	Player int `json:"player"`
}

type GameView struct {
	ID       string   `json:"id"`
	Radius   int      `json:"radius"`
	Players  int      `json:"players"`
	Seats    []string `json:"seats"`
	Board    []Hex    `json:"board"`
	Player   int      `json:"player"` // To move, 0 once the game is over
	Moves    int      `json:"moves"`
	LastMove int      `json:"last_move"`
	Winner   int      `json:"winner"`
	Draw     bool     `json:"draw"`
	Over     bool     `json:"over"`
	Conceded []int    `json:"conceded"`
}
