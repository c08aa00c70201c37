// Package cli implements the octagon command line: a web server, a terminal
// hot-seat game, and a score report.
package cli

import (
    "context"
    "log/slog"

    "github.com/spf13/cobra"

    "github.com/jaminalder/octagon-tictactoe/internal/app"
    "github.com/jaminalder/octagon-tictactoe/internal/config"
    "github.com/jaminalder/octagon-tictactoe/internal/store"
)

// RootOptions holds global flags and the resolved configuration.
type RootOptions struct {
    ConfigPath string
    LogLevel   string
    DBPath     string

    Config config.Config
    Logger *slog.Logger
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
    opts := &RootOptions{}

    cmd := &cobra.Command{
        Use:           "octagon",
        Short:         "Three-piece octagon tic-tac-toe",
        Long:          "Place three pieces each, then slide them along the octagon until someone lines up three.",
        SilenceUsage:  true,
        SilenceErrors: true,
        PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
            cfg, err := config.Load(opts.ConfigPath)
            if err != nil {
                return WrapExitError(ExitCommandError, "load config", err)
            }
            flags := cmd.Flags()
            if flags.Changed("log-level") {
                cfg.LogLevel = opts.LogLevel
            }
            if flags.Changed("db") {
                cfg.DBPath = opts.DBPath
            }
            if err := cfg.Validate(); err != nil {
                return WrapExitError(ExitCommandError, "invalid config", err)
            }
            opts.Config = cfg
            opts.Logger = cfg.NewLogger(cmd.ErrOrStderr())
            return nil
        },
    }

    cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")
    cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "log level (debug|info|warn|error)")
    cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "SQLite score database (empty keeps scores in memory)")

    cmd.AddCommand(NewServeCommand(opts))
    cmd.AddCommand(NewPlayCommand(opts))
    cmd.AddCommand(NewScoresCommand(opts))

    return cmd
}

// openScores returns the configured score store and a func releasing it.
func (o *RootOptions) openScores(ctx context.Context) (app.ScoreStore, func() error, error) {
    if o.Config.DBPath == "" {
        return app.NewMemoryScores(), func() error { return nil }, nil
    }
    st, err := store.Open(ctx, o.Config.DBPath)
    if err != nil {
        return nil, nil, WrapExitError(ExitCommandError, "open score database", err)
    }
    return st, st.Close, nil
}
