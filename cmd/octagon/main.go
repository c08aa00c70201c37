package main

import (
    "context"
    "fmt"
    "os"

    "github.com/jaminalder/octagon-tictactoe/internal/cli"
)

func main() {
    cmd := cli.NewRootCommand()
    if err := cmd.ExecuteContext(context.Background()); err != nil {
        fmt.Fprintln(os.Stderr, "error:", err)
        os.Exit(cli.GetExitCode(err))
    }
}
