package web

import (
    "bytes"
    "fmt"
    "html/template"
    "math"

    "github.com/jaminalder/octagon-tictactoe/internal/app"
    "github.com/jaminalder/octagon-tictactoe/internal/domain"
)

type templates struct {
    base  *template.Template
    game  *template.Template
    board *template.Template
    index *template.Template
}

func funcs() template.FuncMap {
    return template.FuncMap{
        "playerSymbol": func(p domain.Player) string {
            switch p {
            case domain.PlayerOne:
                return "X"
            case domain.PlayerTwo:
                return "O"
            default:
                return ""
            }
        },
    }
}

func loadTemplates() *templates {
    base := template.Must(template.New("base").Funcs(funcs()).Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Octagon Tic-Tac-Toe</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
<style>
.octagon{position:relative;width:360px;height:360px}
.octagon form{position:absolute;transform:translate(-50%,-50%)}
.cell{width:56px;height:56px;border-radius:50%;font-size:28px}
.cell.selected{outline:3px solid #36c}
.cell.target{background:#dfd}
.cell.winning{background:#fd6}
</style>
</head><body>{{template "content" .}}</body></html>`))
    template.Must(base.New("board").Funcs(funcs()).Parse(boardTemplate))
    index := template.Must(template.Must(base.Clone()).New("content").Parse(indexTemplate))
    game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<h1>Octagon Tic-Tac-Toe</h1>
<div hx-ext="sse" sse-connect="/game/{{.ID}}/events">
  <div sse-swap="board" hx-swap="innerHTML">{{template "board" .Board}}</div>
</div>
<p><a href="/">New game</a></p>`))
    // Standalone board template used for fragment rendering
    board := template.Must(template.New("board_only").Funcs(funcs()).Parse(boardTemplate))
    return &templates{base: base, game: game, board: board, index: index}
}

func renderTemplate(t *template.Template, name string, data any) []byte {
    var buf bytes.Buffer
    if name == "" {
        _ = t.Execute(&buf, data)
    } else {
        _ = t.ExecuteTemplate(&buf, name, data)
    }
    return buf.Bytes()
}

const indexTemplate = `<h1>Octagon Tic-Tac-Toe</h1>
<form action="/game" method="post">
  <label>Difficulty
    <select name="difficulty">
      {{range .Difficulties}}<option value="{{.}}"{{if eq . $.Default}} selected{{end}}>{{.}}</option>{{end}}
    </select>
  </label>
  <label>Bot
    <select name="bot"><option value="">none</option><option value="1">player 1</option><option value="2">player 2</option></select>
  </label>
  <button>Create</button>
</form>`

const boardTemplate = `
<div id="board" data-phase="{{.Phase}}">
  {{if .Error}}<div class="alert">{{.Error}}</div>{{end}}
  <p class="status">{{.Status}}</p>
  <div class="octagon">
  {{range .Cells}}
    <form hx-post="/game/{{$.ID}}/play" hx-target="#board" hx-swap="outerHTML" method="post" action="/game/{{$.ID}}/play" style="left:{{.X}}%;top:{{.Y}}%">
      <input type="hidden" name="pos" value="{{.Pos}}">
      <button type="submit" class="cell{{if .Selected}} selected{{end}}{{if .Target}} target{{end}}{{if .Winning}} winning{{end}}" data-pos="{{.Pos}}">{{playerSymbol .Mark}}</button>
    </form>
  {{end}}
  </div>
  <div class="controls">
    <form hx-post="/game/{{.ID}}/reset" hx-target="#board" hx-swap="outerHTML" method="post" action="/game/{{.ID}}/reset"><button>Reset</button></form>
    <form hx-post="/game/{{.ID}}/start" hx-target="#board" hx-swap="outerHTML" method="post" action="/game/{{.ID}}/start">
      <input type="hidden" name="bot" value="{{.Bot}}">
      <input type="hidden" name="difficulty" value="{{.Difficulty}}">
      <button>Start</button>
    </form>
  </div>
</div>
`

type cellView struct {
    Pos      domain.Position
    Mark     domain.Player
    X, Y     string
    Selected bool
    Target   bool
    Winning  bool
}

type boardView struct {
    ID         string
    Phase      domain.Phase
    Status     string
    Error      string
    Bot        string
    Difficulty domain.Difficulty
    Cells      []cellView
}

// cellCoords places ring positions on an octagon, 0 on the right going clockwise, and the hub in the middle.
func cellCoords(p domain.Position) (x, y float64) {
    if p == domain.Center {
        return 50, 50
    }
    a := float64(p) * math.Pi / 4
    return 50 + 40*math.Cos(a), 50 + 40*math.Sin(a)
}

func newBoardView(gs app.GameState, errMsg string) boardView {
    st := gs.Game
    bv := boardView{
        ID:         gs.ID,
        Phase:      st.Phase,
        Status:     st.Status(),
        Error:      errMsg,
        Difficulty: st.Difficulty,
    }
    if st.BotPlayer != domain.NoPlayer {
        bv.Bot = st.BotPlayer.String()
    }
    targets := map[domain.Position]bool{}
    if st.Selected != domain.NoPosition {
        for _, p := range domain.ValidMoves(st.Board, st.Selected) {
            targets[p] = true
        }
    }
    winning := map[domain.Position]bool{}
    if st.Over() {
        for _, p := range st.WinningLine {
            winning[p] = true
        }
    }
    for p := domain.Position(0); p < domain.BoardSize; p++ {
        x, y := cellCoords(p)
        bv.Cells = append(bv.Cells, cellView{
            Pos:      p,
            Mark:     st.Board[p],
            X:        fmt.Sprintf("%.1f", x),
            Y:        fmt.Sprintf("%.1f", y),
            Selected: p == st.Selected,
            Target:   targets[p],
            Winning:  winning[p],
        })
    }
    return bv
}
