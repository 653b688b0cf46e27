package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"marblering/circring"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Marbles uint64
}

type showView struct {
	Marbles uint64   `json:"marbles"`
	Current uint64   `json:"current"`
	Ring    []uint64 `json:"ring"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the ring after a number of marbles",
		Long: `Print the ring clockwise from marble 0 after playing the given number of
marbles, with the current marble in parentheses.

Example:
  marblering show --marbles 25`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, opts)
		},
	}

	cmd.Flags().Uint64Var(&opts.Marbles, "marbles", 25, "number of marbles to play")
	return cmd
}

func runShow(cmd *cobra.Command, opts *ShowOptions) error {
	ring, err := circring.New(opts.Config.RingConfig(), int(min(opts.Marbles, 1<<20))+1)
	if err != nil {
		return WrapExitError(ExitCommandError, "bad config", err)
	}
	for v := uint64(1); v <= opts.Marbles; v++ {
		if _, err := ring.Play(v); err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("marble %d", v), err)
		}
	}

	out := formatter{format: opts.Format, w: cmd.OutOrStdout()}
	if out.json() {
		return out.writeJSON(showView{Marbles: opts.Marbles, Current: ring.Current(), Ring: ring.Values()})
	}
	_, err = fmt.Fprintln(out.w, ring.Render())
	return err
}
