package cli

import (
    "bufio"
    "context"
    "fmt"
    "io"
    "strconv"
    "strings"

    "github.com/spf13/cobra"

    "github.com/jaminalder/octagon-tictactoe/internal/app"
    "github.com/jaminalder/octagon-tictactoe/internal/domain"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
    *RootOptions
    Bot        string
    Difficulty string
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
    opts := &PlayOptions{RootOptions: rootOpts}

    cmd := &cobra.Command{
        Use:   "play",
        Short: "Play a hot-seat game in the terminal",
        Long: `Play a hot-seat game in the terminal.

Enter a position number (0-8) to place, select or move a piece.
"r" restarts the game, "q" quits.`,
        Args: cobra.NoArgs,
        RunE: func(cmd *cobra.Command, args []string) error {
            gameOpts, err := opts.gameOptions()
            if err != nil {
                return WrapExitError(ExitCommandError, "invalid flags", err)
            }
            return runPlay(cmd.Context(), opts.RootOptions, gameOpts, cmd.InOrStdin(), cmd.OutOrStdout())
        },
    }
    cmd.Flags().StringVar(&opts.Bot, "bot", "", "player reserved for a bot (1|2); its turns cannot be played")
    cmd.Flags().StringVar(&opts.Difficulty, "difficulty", "", "bot difficulty (easy|medium|hard); defaults to config")
    return cmd
}

func (o *PlayOptions) gameOptions() (domain.Options, error) {
    bot, err := domain.ParsePlayer(o.Bot)
    if err != nil {
        return domain.Options{}, err
    }
    diff := o.Config.DefaultDifficulty()
    if o.Difficulty != "" {
        if diff, err = domain.ParseDifficulty(o.Difficulty); err != nil {
            return domain.Options{}, err
        }
    }
    return domain.Options{BotPlayer: bot, Difficulty: diff}, nil
}

func runPlay(ctx context.Context, opts *RootOptions, gameOpts domain.Options, in io.Reader, out io.Writer) error {
    if ctx == nil {
        ctx = context.Background()
    }
    scores, closeScores, err := opts.openScores(ctx)
    if err != nil {
        return err
    }
    defer closeScores()

    svc := app.NewService(app.WithScoreStore(scores), app.WithLogger(opts.Logger))
    gs, err := svc.CreateGame(ctx, gameOpts)
    if err != nil {
        return err
    }
    renderBoard(out, gs.Game)

    sc := bufio.NewScanner(in)
    for {
        fmt.Fprint(out, "> ")
        if !sc.Scan() {
            fmt.Fprintln(out)
            return sc.Err()
        }
        input := strings.TrimSpace(sc.Text())
        switch strings.ToLower(input) {
        case "":
            continue
        case "q", "quit":
            return nil
        case "r", "restart":
            if gs, err = svc.Start(ctx, gs.ID, gameOpts); err != nil {
                return err
            }
            renderBoard(out, gs.Game)
            continue
        }
        pos, perr := strconv.Atoi(input)
        if perr != nil {
            fmt.Fprintf(out, "enter a position 0-8, r or q\n")
            continue
        }
        var moveErr error
        gs, moveErr = svc.Play(ctx, gs.ID, domain.Position(pos))
        if gs == nil {
            return moveErr
        }
        if moveErr != nil {
            fmt.Fprintf(out, "rejected: %v\n", moveErr)
        }
        renderBoard(out, gs.Game)
        if gs.Game.Over() && moveErr == nil {
            total, err := svc.Scores(ctx)
            if err != nil {
                opts.Logger.Error("load scores failed", "err", err)
                continue
            }
            fmt.Fprintf(out, "Scores: %d - %d\n", total.One, total.Two)
        }
    }
}
