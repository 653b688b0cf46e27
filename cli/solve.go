package cli

import (
	"os"

	"github.com/spf13/cobra"

	"marblering/parser"
)

// SolveOptions holds flags for the solve command.
type SolveOptions struct {
	*RootOptions
	Database    string
	MetricsAddr string
}

// NewSolveCommand creates the solve command.
func NewSolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "solve <input-file>",
		Short: "Play every game in an input file, short and long",
		Long: `Play every game listed in the input file twice: once up to the last
marble, and once with the last marble multiplied by game.multiplier
(100 unless configured otherwise).

Input lines look like "9;25" or "9 players; last marble is worth 25 points".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "record every run in this SQLite database")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while solving")

	return cmd
}

func runSolve(cmd *cobra.Command, opts *SolveOptions, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "open input", err)
	}
	games, err := parser.Parse(f)
	f.Close()
	if err != nil {
		return WrapExitError(ExitCommandError, "parse input", err)
	}

	sess, err := newSession(cmd, opts.RootOptions, opts.Database, opts.MetricsAddr)
	if err != nil {
		return err
	}
	defer sess.close()

	out := formatter{format: opts.Format, w: cmd.OutOrStdout()}
	for _, multiplier := range []uint64{1, opts.Config.Game.Multiplier} {
		for _, g := range games {
			res, err := sess.play(g, multiplier)
			if err != nil {
				return err
			}
			if err := out.writeRun(viewResult(res)); err != nil {
				return err
			}
		}
	}
	return nil
}
