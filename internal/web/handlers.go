package web

import (
    "encoding/json"
    "errors"
    "io"
    "log/slog"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/gorilla/websocket"

    "github.com/jaminalder/octagon-tictactoe/internal/app"
    "github.com/jaminalder/octagon-tictactoe/internal/domain"
)

type handlers struct {
    svc       *app.Service
    tpl       *templates
    log       *slog.Logger
    heartbeat time.Duration
    diff      domain.Difficulty
    upgrader  websocket.Upgrader
}

func (h *handlers) renderBoard(gs app.GameState, errMsg string) []byte {
    return renderTemplate(h.tpl.board, "", newBoardView(gs, errMsg))
}

func (h *handlers) writeBoard(w http.ResponseWriter, gs app.GameState, errMsg string) {
    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    _, _ = w.Write(h.renderBoard(gs, errMsg))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    _ = json.NewEncoder(w).Encode(v)
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
    data := struct {
        Difficulties []string
        Default      string
    }{
        Difficulties: []string{domain.Easy.String(), domain.Medium.String(), domain.Hard.String()},
        Default:      h.diff.String(),
    }
    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    w.WriteHeader(http.StatusOK)
    _, _ = w.Write(renderTemplate(h.tpl.index, "", data))
}

// startOptions reads bot and difficulty form fields. A missing difficulty uses the server default.
func (h *handlers) startOptions(r *http.Request) (domain.Options, error) {
    _ = r.ParseForm()
    bot, err := domain.ParsePlayer(r.Form.Get("bot"))
    if err != nil {
        return domain.Options{}, err
    }
    opts := domain.Options{BotPlayer: bot, Difficulty: h.diff}
    if d := r.Form.Get("difficulty"); d != "" {
        if opts.Difficulty, err = domain.ParseDifficulty(d); err != nil {
            return domain.Options{}, err
        }
    }
    return opts, nil
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
    opts, err := h.startOptions(r)
    if err != nil {
        http.Error(w, err.Error(), http.StatusBadRequest)
        return
    }
    gs, err := h.svc.CreateGame(r.Context(), opts)
    if err != nil {
        http.Error(w, "failed to create", http.StatusInternalServerError)
        return
    }
    http.Redirect(w, r, "/game/"+gs.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
    gs, ok := h.svc.Get(chi.URLParam(r, "id"))
    if !ok {
        http.NotFound(w, r)
        return
    }
    data := struct {
        ID    string
        Board boardView
    }{ID: gs.ID, Board: newBoardView(*gs, "")}

    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    w.WriteHeader(http.StatusOK)
    _, _ = w.Write(renderTemplate(h.tpl.game, "", data))
}

func moveError(err error) string {
    switch {
    case err == nil:
        return ""
    case errors.Is(err, domain.ErrNotStarted):
        return "Game has not started"
    case errors.Is(err, domain.ErrGameOver):
        return "Game is over"
    case errors.Is(err, domain.ErrBotTurn):
        return "Waiting for the bot"
    case errors.Is(err, domain.ErrOutOfBounds):
        return "Out of bounds"
    case errors.Is(err, domain.ErrOccupied):
        return "Cell is occupied"
    case errors.Is(err, domain.ErrNoPiecesLeft):
        return "All pieces placed"
    case errors.Is(err, domain.ErrNotYourPiece):
        return "Select one of your pieces"
    case errors.Is(err, domain.ErrNoLegalMoves):
        return "That piece cannot move"
    case errors.Is(err, domain.ErrIllegalMove):
        return "Pieces move to an adjacent empty cell"
    default:
        return "Invalid move"
    }
}

func (h *handlers) play(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    _ = r.ParseForm()
    pos, err := strconv.Atoi(r.Form.Get("pos"))
    if err != nil {
        pos = int(domain.NoPosition)
    }
    gs, err := h.svc.Play(r.Context(), id, domain.Position(pos))
    if gs == nil {
        http.NotFound(w, r)
        return
    }
    h.writeBoard(w, *gs, moveError(err))
}

func (h *handlers) start(w http.ResponseWriter, r *http.Request) {
    opts, err := h.startOptions(r)
    if err != nil {
        http.Error(w, err.Error(), http.StatusBadRequest)
        return
    }
    gs, err := h.svc.Start(r.Context(), chi.URLParam(r, "id"), opts)
    if err != nil {
        http.NotFound(w, r)
        return
    }
    h.writeBoard(w, *gs, "")
}

func (h *handlers) reset(w http.ResponseWriter, r *http.Request) {
    gs, err := h.svc.Reset(r.Context(), chi.URLParam(r, "id"))
    if err != nil {
        http.NotFound(w, r)
        return
    }
    h.writeBoard(w, *gs, "")
}

func (h *handlers) state(w http.ResponseWriter, r *http.Request) {
    gs, ok := h.svc.Get(chi.URLParam(r, "id"))
    if !ok {
        http.NotFound(w, r)
        return
    }
    writeJSON(w, http.StatusOK, gs.Game.View())
}

func (h *handlers) scores(w http.ResponseWriter, r *http.Request) {
    sc, err := h.svc.Scores(r.Context())
    if err != nil {
        h.log.ErrorContext(r.Context(), "load scores failed", "err", err)
        http.Error(w, "scores unavailable", http.StatusInternalServerError)
        return
    }
    writeJSON(w, http.StatusOK, sc)
}

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    if _, ok := h.svc.Get(id); !ok {
        http.NotFound(w, r)
        return
    }
    w.Header().Set("Content-Type", "text/event-stream")
    w.Header().Set("Cache-Control", "no-cache")
    w.Header().Set("X-Accel-Buffering", "no")
    // In tests or non-EventSource requests, just acknowledge headers and return
    if r.Header.Get("Accept") != "text/event-stream" {
        w.WriteHeader(http.StatusOK)
        return
    }
    flusher, ok := w.(http.Flusher)
    if !ok {
        w.WriteHeader(http.StatusOK)
        return
    }
    ctx := r.Context()
    ch, unsub, err := h.svc.Subscribe(ctx, id)
    if err != nil {
        http.NotFound(w, r)
        return
    }
    defer unsub()
    ticker := time.NewTicker(h.heartbeat)
    defer ticker.Stop()
    w.WriteHeader(http.StatusOK)
    flusher.Flush()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            _, _ = io.WriteString(w, ": ping\n\n")
            flusher.Flush()
        case gs, ok := <-ch:
            if !ok {
                return
            }
            writeSSE(w, "board", h.renderBoard(gs, ""))
            flusher.Flush()
        }
    }
}

// writeSSE emits one event; every payload line gets its own data field.
func writeSSE(w io.Writer, event string, payload []byte) {
    var b strings.Builder
    b.WriteString("event: " + event + "\n")
    for _, line := range strings.Split(strings.TrimRight(string(payload), "\n"), "\n") {
        b.WriteString("data: " + line + "\n")
    }
    b.WriteString("\n")
    _, _ = io.WriteString(w, b.String())
}

const wsWriteWait = 10 * time.Second

// ws streams the read model as JSON text frames: once on connect, then after every change.
func (h *handlers) ws(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    ctx := r.Context()
    // Subscribe before reading the first snapshot so no move falls between them.
    ch, unsub, err := h.svc.Subscribe(ctx, id)
    if err != nil {
        http.NotFound(w, r)
        return
    }
    defer unsub()
    gs, ok := h.svc.Get(id)
    if !ok {
        http.NotFound(w, r)
        return
    }
    conn, err := h.upgrader.Upgrade(w, r, nil)
    if err != nil {
        h.log.WarnContext(ctx, "websocket upgrade failed", "game", id, "err", err)
        return
    }
    defer conn.Close()

    // Reader: drain control frames and notice the client going away.
    closed := make(chan struct{})
    go func() {
        defer close(closed)
        for {
            if _, _, err := conn.ReadMessage(); err != nil {
                return
            }
        }
    }()

    send := func(st domain.State) error {
        _ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
        return conn.WriteJSON(st.View())
    }
    if err := send(gs.Game); err != nil {
        return
    }
    ticker := time.NewTicker(h.heartbeat)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            return
        case <-closed:
            return
        case <-ticker.C:
            if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
                return
            }
        case snap, ok := <-ch:
            if !ok {
                _ = conn.WriteControl(websocket.CloseMessage,
                    websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "too slow"),
                    time.Now().Add(wsWriteWait))
                return
            }
            if err := send(snap.Game); err != nil {
                h.log.DebugContext(ctx, "websocket write failed", "game", id, "err", err)
                return
            }
        }
    }
}
