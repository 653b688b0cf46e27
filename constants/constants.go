// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: constants.go — Ring Game Tunables & Runtime Defaults
//
// Purpose:
//   - Defines the default hop distances and removal trigger of the marble game.
//   - Holds the defaults the CLI and config layer fall back to.
//
// Notes:
//   - Every value here can be overridden by config file or flag; these are the
//     published puzzle rules, not engine limits.
//
// ⚠️ No runtime logic here — all values must be compile-time resolvable
// ─────────────────────────────────────────────────────────────────────────────

package constants

// ───────────────────────────── Ring Policy ──────────────────────────────

const (
	// DefaultInsertSkip places each new marble two positions clockwise of the
	// current one, i.e. between its first and second clockwise neighbours.
	DefaultInsertSkip = 2

	// DefaultRemoveWalk is how far counter-clockwise the removed marble sits.
	DefaultRemoveWalk = 7

	// DefaultMagic marks scoring marbles: multiples of 23 are never placed.
	DefaultMagic = 23
)

// ───────────────────────────── Game Runs ────────────────────────────────

const (
	// DefaultMultiplier stretches the last marble for the long game.
	DefaultMultiplier = 100

	// CancelCheckMask controls how often a run polls its context:
	// once every 64Ki turns keeps the check off the per-turn path.
	CancelCheckMask = 1<<16 - 1
)

// ───────────────────────────── Outer Surfaces ───────────────────────────

const (
	// DefaultDBPath is the run history database created next to the binary
	// when --db is given without a value in the config file.
	DefaultDBPath = "marblering.db"

	// DefaultMetricsAddr is empty: metrics are only served on request.
	DefaultMetricsAddr = ""
)
