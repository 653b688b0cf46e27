package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"marblering/debug"
	"marblering/marblegame"
	"marblering/metrics"
	"marblering/store"
	"marblering/utils"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Players     int
	LastMarble  uint64
	Multiplier  uint64
	Database    string
	MetricsAddr string
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play one game and report the winning score",
		Long: `Play one marble game and report the winning elf's score.

Example:
  marblering play --players 9 --last 25
  marblering play --players 405 --last 71700 --multiplier 100 --db runs.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Players, "players", 0, "number of players (required)")
	cmd.Flags().Uint64Var(&opts.LastMarble, "last", 0, "value of the last marble (required)")
	cmd.Flags().Uint64Var(&opts.Multiplier, "multiplier", 1, "stretch the last marble by this factor")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address during the run")
	_ = cmd.MarkFlagRequired("players")
	_ = cmd.MarkFlagRequired("last")

	return cmd
}

func runPlay(cmd *cobra.Command, opts *PlayOptions) error {
	g := marblegame.Game{Players: opts.Players, LastMarble: opts.LastMarble}
	if err := g.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "bad flags", err)
	}

	sess, err := newSession(cmd, opts.RootOptions, opts.Database, opts.MetricsAddr)
	if err != nil {
		return err
	}
	defer sess.close()

	res, err := sess.play(g, opts.Multiplier)
	if err != nil {
		return err
	}
	return formatter{format: opts.Format, w: cmd.OutOrStdout()}.writeRun(viewResult(res))
}

// ============================================================================
// RUN SESSION
// ============================================================================

// session bundles what every game of one command invocation shares: the
// cancellation context, the optional store, and the optional metrics.
type session struct {
	ctx    context.Context
	cancel context.CancelFunc
	opts   *RootOptions
	store  *store.Store
	rec    *metrics.Recorder
	served chan error
}

func newSession(cmd *cobra.Command, opts *RootOptions, dbPath, metricsAddr string) (*session, error) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	s := &session{ctx: ctx, cancel: cancel, opts: opts}

	if dbPath == "" {
		dbPath = opts.Config.Store.Path
	}
	if dbPath != "" {
		st, err := store.Open(dbPath)
		if err != nil {
			cancel()
			return nil, WrapExitError(ExitCommandError, "open store", err)
		}
		s.store = st
	}

	if metricsAddr == "" {
		metricsAddr = opts.Config.Metrics.Addr
	}
	if metricsAddr != "" {
		ln, err := metrics.Listen(metricsAddr)
		if err != nil {
			s.close()
			return nil, WrapExitError(ExitCommandError, "serve metrics", err)
		}
		reg := prometheus.NewRegistry()
		s.rec = metrics.New(reg)
		s.served = make(chan error, 1)
		go func() { s.served <- metrics.Serve(ctx, ln, reg) }()
	}
	return s, nil
}

func (s *session) close() {
	s.cancel()
	if s.served != nil {
		if err := <-s.served; err != nil {
			debug.DropError("METRICS", err)
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			debug.DropError("STORE", err)
		}
	}
}

// play runs one game and records it.
func (s *session) play(g marblegame.Game, multiplier uint64) (marblegame.Result, error) {
	gopts := marblegame.Options{
		Ring:       s.opts.Config.RingConfig(),
		Multiplier: multiplier,
	}
	if s.rec != nil {
		s.rec.Reset()
		gopts.Observer = s.rec
	}

	debug.DropDebug("RUN", g.String()+" x"+utils.Utoa(multiplier))
	res, err := marblegame.Play(s.ctx, g, gopts)
	if s.rec != nil {
		s.rec.ObserveRun(res, err)
	}
	if err != nil {
		return marblegame.Result{}, WrapExitError(ExitFailure, "game "+g.String(), err)
	}
	debug.DropDebug("RUN", "high score "+utils.Utoa(res.HighScore)+" in "+res.Elapsed.String())

	if s.store != nil {
		run, err := store.NewRun(res)
		if err == nil {
			err = s.store.SaveRun(s.ctx, run)
		}
		if err != nil {
			return res, WrapExitError(ExitCommandError, "record run", err)
		}
	}
	return res, nil
}
