// Package marblegame drives a circring.Ring through the elves' marble game:
// marbles 1..N are played in turn order, each turn belongs to one player,
// and every score the ring returns is credited to that player.
package marblegame

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marblering/circring"
	"marblering/constants"
)

// ErrInvalidGame reports a game description that cannot be played.
var ErrInvalidGame = errors.New("marblegame: invalid game")

// Game describes one match.
type Game struct {
	Players    int
	LastMarble uint64
}

func (g Game) String() string {
	return fmt.Sprintf("%d players; last marble is worth %d points", g.Players, g.LastMarble)
}

// Validate rejects games without players or marbles.
func (g Game) Validate() error {
	if g.Players < 1 {
		return fmt.Errorf("%w: %d players", ErrInvalidGame, g.Players)
	}
	if g.LastMarble < 1 {
		return fmt.Errorf("%w: last marble %d", ErrInvalidGame, g.LastMarble)
	}
	return nil
}

// Observer sees every turn of a run. Implementations must be cheap: Turn is
// called on the hot path.
type Observer interface {
	Turn(value, score uint64, removed bool)
}

// Options tune a run. The zero value plays the published rules once.
type Options struct {
	// Ring overrides the ring policy. Only the zero Config selects
	// circring.DefaultConfig(); a partial one is rejected by circring.New.
	Ring circring.Config

	// Multiplier stretches LastMarble; 0 is treated as 1.
	Multiplier uint64

	Observer Observer
}

// Result is the outcome of one run.
type Result struct {
	Players    int
	LastMarble uint64
	Marbles    uint64 // marbles actually played: LastMarble * Multiplier

	Scores    []uint64 // Scores[i] belongs to elf i+1
	HighScore uint64
	Winner    int // 1-based elf number; lowest number wins ties

	RingLen  int
	Removals uint64
	Digest   [32]byte
	Elapsed  time.Duration
}

// Play runs g to completion. Turn t belongs to elf t % Players (elf
// Players when the remainder is 0). ctx is polled between turns every
// constants.CancelCheckMask+1 marbles; a cancelled run returns ctx.Err()
// and no result.
func Play(ctx context.Context, g Game, opts Options) (Result, error) {
	if err := g.Validate(); err != nil {
		return Result{}, err
	}

	mult := opts.Multiplier
	if mult == 0 {
		mult = 1
	}
	marbles := g.LastMarble * mult
	if marbles/mult != g.LastMarble {
		return Result{}, fmt.Errorf("%w: %d x %d marbles overflows", ErrInvalidGame, g.LastMarble, mult)
	}

	cfg := opts.Ring
	if cfg.IsRemove == nil && cfg.InsertSkip == 0 && cfg.RemoveWalk == 0 {
		cfg = circring.DefaultConfig()
	}

	ring, err := circring.New(cfg, capacityFor(marbles))
	if err != nil {
		return Result{}, err
	}

	scores := make([]uint64, g.Players)
	players := uint64(g.Players)
	var removals uint64
	obs := opts.Observer

	start := time.Now()
	for v := uint64(1); v <= marbles; v++ {
		if v&constants.CancelCheckMask == 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
		}

		score, err := ring.Play(v)
		if err != nil {
			return Result{}, fmt.Errorf("marblegame: marble %d: %w", v, err)
		}
		// A removal scores at least v, and v starts at 1.
		removed := score != 0
		if removed {
			removals++
			scores[(v+players-1)%players] += score
		}
		if obs != nil {
			obs.Turn(v, score, removed)
		}
	}

	res := Result{
		Players:    g.Players,
		LastMarble: g.LastMarble,
		Marbles:    marbles,
		Scores:     scores,
		RingLen:    ring.Len(),
		Removals:   removals,
		Digest:     ring.Digest(),
		Elapsed:    time.Since(start),
	}
	res.HighScore, res.Winner = best(scores)
	return res, nil
}

// capacityFor sizes the arena for the peak ring. Removals keep the ring
// below the marble count, so the count is a safe upper bound; very large
// runs start smaller and grow.
func capacityFor(marbles uint64) int {
	const maxPresize = 1 << 26
	if marbles+1 > maxPresize {
		return maxPresize
	}
	return int(marbles + 1)
}

func best(scores []uint64) (uint64, int) {
	var high uint64
	winner := 0
	for i, s := range scores {
		if winner == 0 || s > high {
			high, winner = s, i+1
		}
	}
	return high, winner
}
