package main

import (
	"testing"

	"hexsquared/game"

	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	require.NoError(t, validate(1, game.TwoPlayer))
	require.NoError(t, validate(10, game.ThreePlayer))

	require.ErrorIs(t, validate(0, game.TwoPlayer), game.ErrMalformedBoard)
	require.ErrorIs(t, validate(-3, game.ThreePlayer), game.ErrMalformedBoard)
	require.ErrorIs(t, validate(4, game.Mode(4)), game.ErrInvalidPlayer)
	require.ErrorIs(t, validate(4, game.Mode(1)), game.ErrInvalidPlayer)
}

func TestRunTournamentRejectsBadSettings(t *testing.T) {
	out := t.TempDir()

	err := runTournament(t.Context(), []string{"-players", "4", "-out", out})
	require.ErrorIs(t, err, game.ErrInvalidPlayer)

	err = runTournament(t.Context(), []string{"-radius", "0", "-out", out})
	require.ErrorIs(t, err, game.ErrMalformedBoard)
}

func TestRunPlayRejectsBadSettings(t *testing.T) {
	err := runPlay(t.Context(), []string{"-radius", "0", "-players", "2", "-seats", "random,random"})
	require.ErrorIs(t, err, game.ErrMalformedBoard)

	err = runPlay(t.Context(), []string{"-players", "4", "-seats", "random,random,random,random"})
	require.ErrorIs(t, err, game.ErrInvalidPlayer)

	err = runPlay(t.Context(), []string{"-players", "2", "-seats", "random"})
	require.ErrorIs(t, err, game.ErrInvalidPlayer)
}

func TestRunPlay(t *testing.T) {
	err := runPlay(t.Context(), []string{"-radius", "2", "-players", "2", "-seats", "random,center", "-seed", "3", "-quiet"})
	require.NoError(t, err)
}
