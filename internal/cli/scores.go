package cli

import (
    "context"
    "fmt"

    "github.com/spf13/cobra"
)

// ScoresOptions holds flags for the scores command.
type ScoresOptions struct {
    *RootOptions
    Reset bool
}

type scoreResetter interface {
    ResetScores(ctx context.Context) error
}

// NewScoresCommand creates the scores command.
func NewScoresCommand(rootOpts *RootOptions) *cobra.Command {
    opts := &ScoresOptions{RootOptions: rootOpts}

    cmd := &cobra.Command{
        Use:   "scores",
        Short: "Show or clear cumulative scores",
        Args:  cobra.NoArgs,
        RunE: func(cmd *cobra.Command, args []string) error {
            ctx := cmd.Context()
            if ctx == nil {
                ctx = context.Background()
            }
            st, closeScores, err := opts.openScores(ctx)
            if err != nil {
                return err
            }
            defer closeScores()

            if opts.Reset {
                if r, ok := st.(scoreResetter); ok {
                    if err := r.ResetScores(ctx); err != nil {
                        return err
                    }
                }
            }
            sc, err := st.Load(ctx)
            if err != nil {
                return err
            }
            out := cmd.OutOrStdout()
            fmt.Fprintf(out, "Player 1: %d\n", sc.One)
            fmt.Fprintf(out, "Player 2: %d\n", sc.Two)
            return nil
        },
    }
    cmd.Flags().BoolVar(&opts.Reset, "reset", false, "set all scores to zero first")
    return cmd
}
