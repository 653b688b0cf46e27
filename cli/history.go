package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"marblering/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite database holding run history")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum runs to list (0 for all)")
	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	path := opts.Database
	if path == "" {
		path = opts.Config.Store.Path
	}
	if path == "" {
		return WrapExitError(ExitCommandError, "bad flags", errors.New("no database: pass --db or set store.path"))
	}

	st, err := store.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "open store", err)
	}
	defer st.Close()

	runs, err := st.ListRuns(cmd.Context(), opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "list runs", err)
	}

	out := formatter{format: opts.Format, w: cmd.OutOrStdout()}
	for _, run := range runs {
		if out.json() {
			if err := out.writeJSON(viewRun(run)); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(out.w, "%s  players: %d, marbles: %d, high score: %d (elf %d)\n",
			run.ID, run.Players, run.Marbles, run.HighScore, run.Winner); err != nil {
			return err
		}
	}
	return nil
}
