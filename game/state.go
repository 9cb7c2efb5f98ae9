package game

import "fmt"

// GameState is a board together with the seat to move. States are
// immutable; Play returns a new state.
type GameState struct {
	board  *Board
	player Player
	mode   Mode
}

// NewGameState validates that player takes turns in mode and that the
// board carries no owners outside the mode.
func NewGameState(board *Board, player Player, mode Mode) (*GameState, error) {
	if !mode.validMode() {
		return nil, fmt.Errorf("%w: unsupported mode %d", ErrInvalidPlayer, mode)
	}
	if !mode.Valid(player) {
		return nil, fmt.Errorf("%w: %d is not a seat in a %d-player game", ErrInvalidPlayer, player, mode)
	}
	if mode == TwoPlayer && board.Count(Three) > 0 {
		return nil, fmt.Errorf("%w: two-player board has cells owned by player 3", ErrMalformedBoard)
	}
	return &GameState{board: board, player: player, mode: mode}, nil
}

// NewGame starts a fresh game of the given radius with player one to move.
func NewGame(radius int, mode Mode) *GameState {
	return &GameState{board: NewBoard(radius, mode), player: One, mode: mode}
}

func (s *GameState) Board() *Board { return s.board }

// Player returns the seat to move.
func (s *GameState) Player() Player { return s.player }

func (s *GameState) Mode() Mode { return s.mode }

// LegalMoves returns every unclaimed index. Edge cells are legal whenever
// they are unclaimed.
func (s *GameState) LegalMoves() []int {
	return s.board.Empty()
}

// Play claims index for the player to move and hands the turn on.
func (s *GameState) Play(index int) (*GameState, error) {
	if err := s.board.validMove(index); err != nil {
		return nil, err
	}
	return &GameState{
		board:  s.board.claim(index, s.player),
		player: s.mode.Next(s.player),
		mode:   s.mode,
	}, nil
}

// Winner returns the first seat, in priority order, that has connected its
// edges, or None.
func (s *GameState) Winner() Player {
	c := newConnector(s.board.Len())
	for _, p := range s.mode.Players() {
		if c.hasWon(s.board, p) {
			return p
		}
	}
	return None
}

// IsDraw reports whether no seat can still connect its edges.
func (s *GameState) IsDraw() bool {
	return IsDraw(s.board, s.mode.Players())
}

// IsTerminal reports whether the game is over by a win or a draw. Every
// seat is checked, not only the one that just moved, so snapshots handed in
// by callers with an earlier win are still recognised.
func (s *GameState) IsTerminal() bool {
	return s.Winner() != None || s.IsDraw()
}

// Outcome classifies a terminal state: the winner, or None with draw set.
func (s *GameState) Outcome() (winner Player, draw bool) {
	if w := s.Winner(); w != None {
		return w, false
	}
	return None, s.IsDraw()
}
