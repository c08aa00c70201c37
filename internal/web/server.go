package web

import (
    "io"
    "log/slog"
    "net/http"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/chi/v5/middleware"
    "github.com/gorilla/websocket"

    "github.com/jaminalder/octagon-tictactoe/internal/app"
    "github.com/jaminalder/octagon-tictactoe/internal/domain"
)

// Option configures the HTTP server.
type Option func(*handlers)

// WithLogger sets the request and handler logger.
func WithLogger(l *slog.Logger) Option {
    return func(h *handlers) {
        if l != nil {
            h.log = l
        }
    }
}

// WithHeartbeat sets the keep-alive interval of event streams.
func WithHeartbeat(d time.Duration) Option {
    return func(h *handlers) {
        if d > 0 {
            h.heartbeat = d
        }
    }
}

// WithDefaultDifficulty sets the difficulty used when a form leaves it out.
func WithDefaultDifficulty(d domain.Difficulty) Option {
    return func(h *handlers) { h.diff = d }
}

// NewServer wires routes and returns an http.Handler.
func NewServer(s *app.Service, opts ...Option) http.Handler {
    h := &handlers{
        svc:       s,
        tpl:       loadTemplates(),
        log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
        heartbeat: 15 * time.Second,
        diff:      domain.Medium,
        upgrader:  websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
    }
    for _, o := range opts {
        o(h)
    }

    r := chi.NewRouter()
    r.Use(middleware.RequestID)
    r.Use(requestLogger(h.log))
    r.Use(middleware.Recoverer)

    r.Get("/", h.index)
    r.Get("/scores", h.scores)
    r.Post("/game", h.create)
    r.Route("/game/{id}", func(r chi.Router) {
        r.Get("/", h.view)
        r.Post("/play", h.play)
        r.Post("/start", h.start)
        r.Post("/reset", h.reset)
        r.Get("/state", h.state)
        r.Get("/events", h.events)
        r.Get("/ws", h.ws)
    })
    return r
}

func requestLogger(l *slog.Logger) func(http.Handler) http.Handler {
    return func(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
            start := time.Now()
            next.ServeHTTP(ww, r)
            l.DebugContext(r.Context(), "http request",
                "method", r.Method,
                "path", r.URL.Path,
                "status", ww.Status(),
                "bytes", ww.BytesWritten(),
                "dur", time.Since(start),
                "req_id", middleware.GetReqID(r.Context()),
            )
        })
    }
}
