package cli

import (
    "fmt"
    "io"
    "strings"

    "github.com/jaminalder/octagon-tictactoe/internal/domain"
)

// boardRows lays the octagon on a 3x3 grid: 6 at the top, 0 on the right, 2 at the bottom, 4 on the left.
var boardRows = [3][3]domain.Position{
    {5, 6, 7},
    {4, 8, 0},
    {3, 2, 1},
}

// renderBoard writes the board and a status line. Empty cells show their
// position number; the selected piece is wrapped in () and a winning line in [].
func renderBoard(w io.Writer, st domain.State) {
    winning := map[domain.Position]bool{}
    if st.Over() {
        for _, p := range st.WinningLine {
            winning[p] = true
        }
    }
    var b strings.Builder
    for _, row := range boardRows {
        cells := make([]string, 0, len(row))
        for _, p := range row {
            mark := fmt.Sprintf("%d", p)
            switch st.Board[p] {
            case domain.PlayerOne:
                mark = "X"
            case domain.PlayerTwo:
                mark = "O"
            }
            switch {
            case winning[p]:
                mark = "[" + mark + "]"
            case p == st.Selected:
                mark = "(" + mark + ")"
            default:
                mark = " " + mark + " "
            }
            cells = append(cells, mark)
        }
        b.WriteString(strings.Join(cells, " "))
        b.WriteString("\n")
    }
    b.WriteString(st.Status())
    b.WriteString("\n")
    _, _ = io.WriteString(w, b.String())
}
