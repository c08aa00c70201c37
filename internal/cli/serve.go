package cli

import (
    "context"
    "errors"
    "fmt"
    "net"
    "net/http"
    "os/signal"
    "syscall"
    "time"

    "github.com/spf13/cobra"

    "github.com/jaminalder/octagon-tictactoe/internal/app"
    "github.com/jaminalder/octagon-tictactoe/internal/web"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
    *RootOptions
    Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
    opts := &ServeOptions{RootOptions: rootOpts}

    cmd := &cobra.Command{
        Use:   "serve",
        Short: "Serve the game over HTTP",
        Args:  cobra.NoArgs,
        RunE: func(cmd *cobra.Command, args []string) error {
            if cmd.Flags().Changed("addr") {
                opts.Config.Addr = opts.Addr
            }
            ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
            defer stop()
            return runServe(ctx, opts, nil)
        },
    }
    cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides config)")
    return cmd
}

// newHTTPServer builds the handler stack for svc.
func (o *ServeOptions) newHTTPServer(svc *app.Service) *http.Server {
    h := web.NewServer(svc,
        web.WithLogger(o.Logger),
        web.WithHeartbeat(o.Config.Heartbeat),
        web.WithDefaultDifficulty(o.Config.DefaultDifficulty()),
    )
    return &http.Server{
        Addr:              o.Config.Addr,
        Handler:           h,
        ReadHeaderTimeout: 10 * time.Second,
    }
}

// runServe serves until ctx ends. When ready is non-nil it receives the bound address.
func runServe(ctx context.Context, opts *ServeOptions, ready chan<- string) error {
    scores, closeScores, err := opts.openScores(ctx)
    if err != nil {
        return err
    }
    defer closeScores()

    svc := app.NewService(app.WithScoreStore(scores), app.WithLogger(opts.Logger))
    srv := opts.newHTTPServer(svc)
    // cancel in-flight event streams when ctx ends so Shutdown can finish
    srv.BaseContext = func(net.Listener) context.Context { return ctx }

    ln, err := net.Listen("tcp", srv.Addr)
    if err != nil {
        return WrapExitError(ExitCommandError, "listen", err)
    }
    opts.Logger.Info("server listening", "addr", ln.Addr().String(), "db", opts.Config.DBPath)
    if ready != nil {
        ready <- ln.Addr().String()
    }

    errc := make(chan error, 1)
    go func() { errc <- srv.Serve(ln) }()

    select {
    case err := <-errc:
        if errors.Is(err, http.ErrServerClosed) {
            return nil
        }
        return fmt.Errorf("serve: %w", err)
    case <-ctx.Done():
    }

    opts.Logger.Info("server shutting down")
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := srv.Shutdown(shutdownCtx); err != nil {
        return fmt.Errorf("shutdown: %w", err)
    }
    return nil
}
