package game

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestPlayoutUndo(t *testing.T) {
	t.Run("play and undo restore the position", func(t *testing.T) {
		state := NewGame(2, ThreePlayer)
		playout := NewPlayout(state)
		legal := state.LegalMoves()

		require.NoError(t, playout.Play(legal[0]))
		require.NoError(t, playout.Play(legal[3]))
		require.Equal(t, Three, playout.Player())
		require.Equal(t, len(legal)-2, playout.Moves())
		require.Equal(t, One, playout.State().Board().Owner(legal[0]))
		require.Equal(t, Two, playout.State().Board().Owner(legal[3]))

		index, ok := playout.Undo()
		require.True(t, ok)
		require.Equal(t, legal[3], index)
		require.Equal(t, Two, playout.Player())

		playout.Reset()
		require.Zero(t, playout.Depth())
		require.True(t, state.Board().Equal(playout.State().Board()))
		require.Equal(t, One, playout.Player())
		require.Equal(t, len(legal), playout.Moves())
	})

	t.Run("claimed cells cannot be played again", func(t *testing.T) {
		playout := NewPlayout(NewGame(1, TwoPlayer))

		require.NoError(t, playout.Play(3))
		require.ErrorIs(t, playout.Play(3), ErrInvalidMove)
		require.ErrorIs(t, playout.Play(99), ErrInvalidMove)
	})

	t.Run("undo on a fresh playout reports nothing", func(t *testing.T) {
		_, ok := NewPlayout(NewGame(1, TwoPlayer)).Undo()
		require.False(t, ok)
	})

	t.Run("working position never leaks into the source state", func(t *testing.T) {
		state := NewGame(3, TwoPlayer)
		before := state.Board().Clone()
		playout := NewPlayout(state)

		playout.Run(rand.New(rand.NewSource(7)))

		require.True(t, before.Equal(state.Board()))
	})
}

func TestPlayoutRun(t *testing.T) {
	t.Run("random game ends with the reported winner", func(t *testing.T) {
		for seed := uint64(1); seed <= 20; seed++ {
			playout := NewPlayout(NewGame(3, TwoPlayer))

			winner := playout.Run(rand.New(rand.NewSource(seed)))

			final := playout.State()
			require.Equal(t, winner, final.Winner(), "seed %d", seed)
			if winner == None {
				require.Zero(t, playout.Moves())
			}
		}
	})

	t.Run("reset allows another rollout from the same position", func(t *testing.T) {
		state := NewGame(4, TwoPlayer)
		playout := NewPlayout(state)
		rng := rand.New(rand.NewSource(42))
		for i := 0; i < 10; i++ {
			playout.Run(rng)
			playout.Reset()
			require.True(t, state.Board().Equal(playout.State().Board()))
		}
	})

	t.Run("same seed same game", func(t *testing.T) {
		a := NewPlayout(NewGame(3, ThreePlayer))
		b := NewPlayout(NewGame(3, ThreePlayer))

		require.Equal(t, a.Run(rand.New(rand.NewSource(9))), b.Run(rand.New(rand.NewSource(9))))
		require.True(t, a.State().Board().Equal(b.State().Board()))
	})

	t.Run("load swaps in another state", func(t *testing.T) {
		playout := NewPlayout(NewGame(2, TwoPlayer))
		other := NewGame(3, ThreePlayer)

		playout.Load(other)

		require.True(t, other.Board().Equal(playout.State().Board()))
		require.Equal(t, len(other.LegalMoves()), playout.Moves())
	})
}
