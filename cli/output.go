package cli

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/sugawarayuuta/sonnet"

	"marblering/marblegame"
	"marblering/store"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Run failed (underflow, exhaustion, cancelled)
	ExitCommandError = 2 // Bad flags, unreadable input, database unavailable
)

// ExitError carries the exit code a failed command should produce.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

// WrapExitError wraps err with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error; plain errors map to
// ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// runView is the JSON shape of a finished run.
type runView struct {
	ID         string   `json:"id,omitempty"`
	Players    int      `json:"players"`
	LastMarble uint64   `json:"last_marble"`
	Marbles    uint64   `json:"marbles"`
	HighScore  uint64   `json:"high_score"`
	Winner     int      `json:"winner"`
	RingLen    int      `json:"ring_len"`
	Digest     string   `json:"digest"`
	ElapsedMs  float64  `json:"elapsed_ms"`
	Scores     []uint64 `json:"scores,omitempty"`
}

func viewResult(res marblegame.Result) runView {
	return runView{
		Players:    res.Players,
		LastMarble: res.LastMarble,
		Marbles:    res.Marbles,
		HighScore:  res.HighScore,
		Winner:     res.Winner,
		RingLen:    res.RingLen,
		Digest:     hex.EncodeToString(res.Digest[:]),
		ElapsedMs:  float64(res.Elapsed.Microseconds()) / 1000,
	}
}

func viewRun(run store.Run) runView {
	return runView{
		ID:         run.ID,
		Players:    run.Players,
		LastMarble: run.LastMarble,
		Marbles:    run.Marbles,
		HighScore:  run.HighScore,
		Winner:     run.Winner,
		RingLen:    run.RingLen,
		Digest:     run.Digest,
		ElapsedMs:  float64(run.Elapsed.Microseconds()) / 1000,
		Scores:     run.Scores,
	}
}

// formatter writes command output as text or JSON.
type formatter struct {
	format string
	w      io.Writer
}

func (f formatter) json() bool { return f.format == "json" }

// writeJSON emits v as one JSON document per line.
func (f formatter) writeJSON(v any) error {
	data, err := sonnet.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	data = append(data, '\n')
	_, err = f.w.Write(data)
	return err
}

func (f formatter) writeRun(v runView) error {
	if f.json() {
		return f.writeJSON(v)
	}
	_, err := fmt.Fprintf(f.w, "players: %d, marbles: %d, high score: %d (elf %d)\n",
		v.Players, v.Marbles, v.HighScore, v.Winner)
	return err
}
