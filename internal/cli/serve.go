package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/stackdock/internal/gateway"
	"github.com/roach88/stackdock/internal/model"
	"github.com/roach88/stackdock/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr        string
	FailureRate float64
	Seed        uint64

	// ready, when set, receives the bound address once the server listens.
	ready chan<- string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference remote gateway over HTTP",
		Long: `Run the reference remote gateway over HTTP.

The server keeps accepted stacks and cards in memory, starting from the
records of the local database so existing records can be edited. Point a
config with gateway.mode "http" at it to sync against a real transport.
--failure-rate rejects that share of mutations with 503.

Example:
  stackdock serve --addr :8080 --failure-rate 0.2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", ":8080", "listen address")
	cmd.Flags().Float64Var(&opts.FailureRate, "failure-rate", 0, "share of mutations rejected with 503 (0-1)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 1, "seed for the failure sequence")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	if opts.FailureRate < 0 || opts.FailureRate > 1 {
		return NewExitError(ExitCommandError, fmt.Sprintf("failure rate %v is outside [0, 1]", opts.FailureRate))
	}

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	logger := newLogger(opts.RootOptions, cfg, cmd.ErrOrStderr())

	records, err := loadRecords(cmd.Context(), cfg.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load records", err)
	}

	srv := gateway.NewServer(
		gateway.WithServerLogger(logger),
		gateway.WithRecords(records),
		gateway.WithFailureRate(opts.FailureRate, opts.Seed),
	)

	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to listen", err)
	}
	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- httpSrv.Serve(ln) }()

	logger.Info("gateway listening", "addr", ln.Addr().String(),
		"stacks", len(records.Stacks), "cards", len(records.Cards), "failure_rate", opts.FailureRate)
	fmt.Fprintf(cmd.OutOrStdout(), "Gateway listening on %s. Press Ctrl-C to stop.\n", ln.Addr())
	if opts.ready != nil {
		opts.ready <- ln.Addr().String()
	}

	select {
	case err := <-errc:
		return WrapExitError(ExitFailure, "server error", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "shutdown failed", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return WrapExitError(ExitFailure, "server error", err)
	}
	logger.Info("gateway stopped gracefully")
	return nil
}

// loadRecords reads the stored snapshot; a database without one yields an
// empty snapshot.
func loadRecords(ctx context.Context, path string) (*model.Snapshot, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	snap, err := st.LoadSnapshot(ctx)
	if errors.Is(err, store.ErrNoSnapshot) {
		return model.EmptySnapshot(), nil
	}
	return snap, err
}
