// ════════════════════════════════════════════════════════════════════════════════════════════════
// Marble Ring Simulator - Main Entry Point
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Marble Ring Simulator
// Component: Main Entry Point
//
// Description:
//   Hands control to the cobra command tree and converts its error into the process exit code.
//
// Architecture:
//   - circring / slotarena: the ring engine (no I/O)
//   - marblegame / parser:  the game driver and its input format
//   - store / metrics / config / cli: outer surfaces
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import (
	"os"

	"marblering/cli"
	"marblering/debug"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		debug.DropError("marblering", err)
		os.Exit(cli.GetExitCode(err))
	}
}
