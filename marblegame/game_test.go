package marblegame

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marblering/circring"
)

func TestPlayKnownGames(t *testing.T) {
	cases := []struct {
		game   Game
		high   uint64
		winner int
	}{
		{Game{Players: 9, LastMarble: 25}, 32, 5},
		{Game{Players: 10, LastMarble: 1618}, 8317, 10},
		{Game{Players: 13, LastMarble: 7999}, 146373, 12},
		{Game{Players: 17, LastMarble: 1104}, 2764, 16},
		{Game{Players: 21, LastMarble: 6111}, 54718, 5},
		{Game{Players: 30, LastMarble: 5807}, 37305, 20},
	}

	for _, tc := range cases {
		t.Run(tc.game.String(), func(t *testing.T) {
			res, err := Play(context.Background(), tc.game, Options{})
			require.NoError(t, err)
			assert.Equal(t, tc.high, res.HighScore)
			assert.Equal(t, tc.winner, res.Winner)
			assert.Equal(t, tc.game.LastMarble, res.Marbles)
			assert.Len(t, res.Scores, tc.game.Players)
		})
	}
}

func TestPlaySizeLawAndScoreTotals(t *testing.T) {
	res, err := Play(context.Background(), Game{Players: 9, LastMarble: 25}, Options{})
	require.NoError(t, err)

	// 25 marbles, one removal turn (23) taking two marbles out of play.
	assert.Equal(t, uint64(1), res.Removals)
	assert.Equal(t, 1+24-1, res.RingLen)

	var total uint64
	for _, s := range res.Scores {
		total += s
	}
	assert.Equal(t, uint64(32), total)
}

type recorder struct {
	turns, removals int
	score           uint64
}

func (r *recorder) Turn(_, score uint64, removed bool) {
	r.turns++
	r.score += score
	if removed {
		r.removals++
	}
}

func TestPlayObserverAndMultiplier(t *testing.T) {
	rec := &recorder{}
	res, err := Play(context.Background(), Game{Players: 9, LastMarble: 25}, Options{
		Multiplier: 4,
		Observer:   rec,
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(100), res.Marbles)
	assert.Equal(t, 100, rec.turns)
	assert.Equal(t, 4, rec.removals) // 23, 46, 69, 92
	assert.Equal(t, uint64(rec.removals), res.Removals)

	var total uint64
	for _, s := range res.Scores {
		total += s
	}
	assert.Equal(t, rec.score, total)
}

func TestPlayCustomPolicy(t *testing.T) {
	cfg := circring.Config{InsertSkip: 1, RemoveWalk: 1, IsRemove: circring.MultipleOf(5)}
	res, err := Play(context.Background(), Game{Players: 1, LastMarble: 5}, Options{Ring: cfg})
	require.NoError(t, err)
	// 0 1 2 3 (4); marble 5 takes 3.
	assert.Equal(t, uint64(8), res.HighScore)
	assert.Equal(t, 4, res.RingLen)
}

func TestPlayRejectsPartialConfig(t *testing.T) {
	partial := []circring.Config{
		{RemoveWalk: 3, IsRemove: circring.MultipleOf(5)},
		{IsRemove: circring.MultipleOf(23)},
		{RemoveWalk: 7},
	}
	for _, cfg := range partial {
		_, err := Play(context.Background(), Game{Players: 9, LastMarble: 25}, Options{Ring: cfg})
		assert.ErrorIs(t, err, circring.ErrInvalidConfig)
	}

	res, err := Play(context.Background(), Game{Players: 9, LastMarble: 25}, Options{Ring: circring.Config{}})
	require.NoError(t, err)
	assert.Equal(t, uint64(32), res.HighScore)
}

func TestPlayDeterministicDigest(t *testing.T) {
	g := Game{Players: 13, LastMarble: 7999}
	a, err := Play(context.Background(), g, Options{})
	require.NoError(t, err)
	b, err := Play(context.Background(), g, Options{})
	require.NoError(t, err)
	assert.Equal(t, a.Digest, b.Digest)
}

func TestPlayRejectsInvalidGames(t *testing.T) {
	for _, g := range []Game{{Players: 0, LastMarble: 10}, {Players: 3, LastMarble: 0}} {
		_, err := Play(context.Background(), g, Options{})
		assert.ErrorIs(t, err, ErrInvalidGame)
	}

	_, err := Play(context.Background(), Game{Players: 1, LastMarble: 1 << 40}, Options{Multiplier: 1 << 40})
	assert.ErrorIs(t, err, ErrInvalidGame)
}

func TestPlayUnderflowIsFatal(t *testing.T) {
	// Removing on marble 2 with a walk of 7 can never be satisfied.
	cfg := circring.Config{InsertSkip: 2, RemoveWalk: 7, IsRemove: circring.MultipleOf(2)}
	_, err := Play(context.Background(), Game{Players: 2, LastMarble: 10}, Options{Ring: cfg})
	require.Error(t, err)
	assert.True(t, errors.Is(err, circring.ErrUnderflow))
}

func TestPlayHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Play(ctx, Game{Players: 9, LastMarble: 1 << 17}, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLongGame(t *testing.T) {
	if testing.Short() {
		t.Skip("long game")
	}
	res, err := Play(context.Background(), Game{Players: 10, LastMarble: 1618}, Options{Multiplier: 100})
	require.NoError(t, err)
	assert.Equal(t, uint64(161800), res.Marbles)
	assert.NotZero(t, res.HighScore)
}
