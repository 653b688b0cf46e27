package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"

	"marblering/marblegame"
	"marblering/utils"
)

// ============================================================================
// GAME INPUT PARSER
// ============================================================================
//
// One game per line. Both spellings seen in puzzle inputs are accepted:
//
//   9;25
//   10 players; last marble is worth 1618 points
//
// The parser does not care about the words: it takes the first decimal
// number as the player count and the second as the last marble. Blank
// lines are skipped; anything else without two numbers is an error.
//
// ============================================================================

var (
	// ErrMissingField reports a line with fewer than two numbers.
	ErrMissingField = errors.New("parser: expected player count and last marble")

	// ErrOverflow reports a number that does not fit its field.
	ErrOverflow = errors.New("parser: number out of range")
)

// LineError locates a parse failure in the input.
type LineError struct {
	Line int // 1-based
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// ParseLine decodes a single game description.
func ParseLine(line string) (marblegame.Game, error) {
	b := []byte(line)

	players, next, err := scanNumber(b, 0)
	if err != nil {
		return marblegame.Game{}, err
	}
	last, _, err := scanNumber(b, next)
	if err != nil {
		return marblegame.Game{}, err
	}
	if players > math.MaxInt32 {
		return marblegame.Game{}, fmt.Errorf("%w: %d players", ErrOverflow, players)
	}

	g := marblegame.Game{Players: int(players), LastMarble: last}
	if err := g.Validate(); err != nil {
		return marblegame.Game{}, err
	}
	return g, nil
}

// scanNumber finds the next decimal number at or after i and returns it
// with the index just past it.
func scanNumber(b []byte, i int) (uint64, int, error) {
	start := utils.NextDigit(b, i)
	if start < 0 {
		return 0, 0, ErrMissingField
	}
	v, n, ok := utils.ParseDecU64(b[start:])
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrOverflow, utils.B2s(b[start:]))
	}
	return v, start + n, nil
}

// Parse reads every game in r.
func Parse(r io.Reader) ([]marblegame.Game, error) {
	var games []marblegame.Game
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		text := sc.Text()
		if isBlank(text) {
			continue
		}
		g, err := ParseLine(text)
		if err != nil {
			return nil, &LineError{Line: lineNo, Text: text, Err: err}
		}
		games = append(games, g)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("parser: read input: %w", err)
	}
	return games, nil
}

func isBlank(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\r':
		default:
			return false
		}
	}
	return true
}
