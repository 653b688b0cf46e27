// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: debug.go — Cold-path diagnostics for runs and CLI plumbing
//
// Purpose:
//   - Logs run lifecycle events (start, finish, store writes, metrics server).
//   - Never called per turn: the ring engine itself does no I/O.
//
// Notes:
//   - Without a logger installed, messages go straight to stderr through
//     utils.PrintWarning, avoiding fmt.
//   - The CLI installs a log/slog logger so --verbose and handler choice
//     apply uniformly.
//
// ⚠️ Never invoke in hot loops — use only for lifecycle and failure diagnostics.
// ─────────────────────────────────────────────────────────────────────────────

package debug

import (
	"context"
	"log/slog"
	"sync/atomic"

	"marblering/utils"
)

var logger atomic.Pointer[slog.Logger]

// SetLogger routes DropMessage and DropError through l. Passing nil restores
// raw stderr output.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

// DropError logs an error under prefix. A nil err logs the bare prefix,
// useful as a cheap trace tag.
func DropError(prefix string, err error) {
	if l := logger.Load(); l != nil {
		if err != nil {
			l.Error(prefix, "err", err)
		} else {
			l.Warn(prefix)
		}
		return
	}

	if err != nil {
		utils.PrintWarning(prefix + ": " + err.Error() + "\n")
	} else {
		utils.PrintWarning(prefix + "\n")
	}
}

// DropMessage logs an informational message under prefix.
func DropMessage(prefix, message string) {
	if l := logger.Load(); l != nil {
		l.Info(message, "tag", prefix)
		return
	}
	utils.PrintWarning(prefix + ": " + message + "\n")
}

// DropDebug logs a message only when the installed logger has debug
// enabled. Without a logger it is silent.
func DropDebug(prefix, message string) {
	if l := logger.Load(); l != nil && l.Enabled(context.Background(), slog.LevelDebug) {
		l.Debug(message, "tag", prefix)
	}
}
