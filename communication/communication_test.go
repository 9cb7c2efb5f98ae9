package communication

import (
	"encoding/json"
	"testing"

	"hexsquared/game"
	"hexsquared/meta"

	"github.com/stretchr/testify/require"
)

func TestWithDefaults(t *testing.T) {
	req := BestMoveRequest{Player: 1}.WithDefaults()

	require.Equal(t, meta.ITERATIONS, req.IterLimit)
	require.Equal(t, meta.WORKERS, req.NumThreads)
	require.Equal(t, 3, req.Players)

	req = BestMoveRequest{IterLimit: 50, NumThreads: 2, Players: 2}.WithDefaults()
	require.Equal(t, 50, req.IterLimit)
	require.Equal(t, 2, req.NumThreads)
	require.Equal(t, 2, req.Players)
}

func TestBoardConversion(t *testing.T) {
	t.Run("board survives a trip through the wire format", func(t *testing.T) {
		s := game.NewGame(2, game.ThreePlayer)
		s, err := s.Play(9)
		require.NoError(t, err)

		board, err := ToBoard(FromBoard(s.Board()))

		require.NoError(t, err)
		require.True(t, board.Equal(s.Board()))
	})

	t.Run("cell keys are capitalized", func(t *testing.T) {
		data, err := json.Marshal(FromBoard(game.NewBoard(1, game.TwoPlayer))[0])
		require.NoError(t, err)
		require.JSONEq(t, `{"R":-1,"S":1,"Q":0,"Index":0,"Owner":0}`, string(data))
	})

	t.Run("owner out of range", func(t *testing.T) {
		hexes := FromBoard(game.NewBoard(1, game.TwoPlayer))
		hexes[2].Owner = 4

		_, err := ToBoard(hexes)

		require.ErrorIs(t, err, game.ErrMalformedBoard)
	})
}

func TestState(t *testing.T) {
	hexes := FromBoard(game.NewBoard(1, game.TwoPlayer))
	hexes[3].Owner = 1

	s, err := BestMoveRequest{Board: hexes, Player: 2, Players: 2}.State()

	require.NoError(t, err)
	require.Equal(t, game.Two, s.Player())
	require.Equal(t, game.TwoPlayer, s.Mode())
	require.NotContains(t, s.LegalMoves(), 3)

	_, err = BestMoveRequest{Board: hexes, Player: 0, Players: 2}.State()
	require.ErrorIs(t, err, game.ErrInvalidPlayer)
}
