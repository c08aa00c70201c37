package app

import (
    "context"
    "errors"
    "io"
    "log/slog"
    "sync"
    "time"

    "github.com/google/uuid"
    "github.com/jaminalder/octagon-tictactoe/internal/domain"
)

// Errors exposed by the service layer.
var (
    ErrNotFound = errors.New("game not found")
)

// GameState is the in-memory state tracked per game.
type GameState struct {
    ID      string
    Game    domain.State
    Created time.Time
    Updated time.Time
}

type subscriber struct {
    ch        chan GameState
    closeOnce sync.Once
}

func (s *subscriber) close() { s.closeOnce.Do(func() { close(s.ch) }) }

// Service owns one engine state per game and serializes every change to it.
type Service struct {
    mu     sync.Mutex
    games  map[string]*GameState
    subs   map[string]map[*subscriber]struct{}
    scores ScoreStore
    log    *slog.Logger
    now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithScoreStore sets where wins are recorded. Defaults to memory.
func WithScoreStore(st ScoreStore) Option {
    return func(s *Service) {
        if st != nil {
            s.scores = st
        }
    }
}

// WithLogger sets the service logger. Defaults to a discarding logger.
func WithLogger(l *slog.Logger) Option {
    return func(s *Service) {
        if l != nil {
            s.log = l
        }
    }
}

// NewService creates a service with in-memory scores.
func NewService(opts ...Option) *Service {
    s := &Service{
        games:  make(map[string]*GameState),
        subs:   make(map[string]map[*subscriber]struct{}),
        scores: NewMemoryScores(),
        log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
        now:    time.Now,
    }
    for _, o := range opts {
        o(s)
    }
    return s
}

// CreateGame creates and registers a started game.
func (s *Service) CreateGame(ctx context.Context, opts domain.Options) (*GameState, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    id := uuid.NewString()
    now := s.now()
    gs := &GameState{ID: id, Game: domain.Start(opts), Created: now, Updated: now}
    s.games[id] = gs
    s.log.InfoContext(ctx, "game created", "game", id, "bot", opts.BotPlayer, "difficulty", opts.Difficulty)
    cp := *gs
    return &cp, nil
}

// Get returns a copy of the game state if present.
func (s *Service) Get(id string) (*GameState, bool) {
    s.mu.Lock()
    defer s.mu.Unlock()
    gs, ok := s.games[id]
    if !ok {
        return nil, false
    }
    cp := *gs
    return &cp, true
}

// Play acts for the current player at pos. The returned snapshot is always the
// latest state of an existing game; a non-nil domain error tells why the input was
// rejected.
func (s *Service) Play(ctx context.Context, id string, pos domain.Position) (*GameState, error) {
    var won domain.Player
    cp, err := s.update(ctx, id, func(st domain.State) (domain.State, error) {
        next, err := domain.Play(st, pos)
        if !st.Over() && next.Over() {
            won = next.Winner
        }
        return next, err
    })
    if cp == nil {
        return nil, err
    }
    if err != nil {
        s.log.DebugContext(ctx, "move rejected", "game", id, "pos", pos, "reason", err)
    } else {
        s.log.DebugContext(ctx, "move accepted", "game", id, "pos", pos, "phase", cp.Game.Phase, "next", cp.Game.Current)
    }
    if won != domain.NoPlayer {
        s.log.InfoContext(ctx, "game won", "game", id, "winner", won, "line", cp.Game.WinningLine)
        if _, serr := s.scores.RecordWin(ctx, won); serr != nil {
            s.log.ErrorContext(ctx, "record win failed", "game", id, "err", serr)
        }
    }
    return cp, err
}

// Start replaces the game with a fresh started one.
func (s *Service) Start(ctx context.Context, id string, opts domain.Options) (*GameState, error) {
    cp, err := s.update(ctx, id, func(domain.State) (domain.State, error) {
        return domain.Start(opts), nil
    })
    if err == nil {
        s.log.InfoContext(ctx, "game started", "game", id, "bot", opts.BotPlayer, "difficulty", opts.Difficulty)
    }
    return cp, err
}

// Reset puts the game back to its initial, not yet started, state.
func (s *Service) Reset(ctx context.Context, id string) (*GameState, error) {
    cp, err := s.update(ctx, id, func(domain.State) (domain.State, error) {
        return domain.Reset(), nil
    })
    if err == nil {
        s.log.InfoContext(ctx, "game reset", "game", id)
    }
    return cp, err
}

// Scores returns the cumulative scores.
func (s *Service) Scores(ctx context.Context) (Scores, error) {
    return s.scores.Load(ctx)
}

// update runs fn on the stored state under the lock and broadcasts when it changed.
func (s *Service) update(ctx context.Context, id string, fn func(domain.State) (domain.State, error)) (*GameState, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    gs, ok := s.games[id]
    if !ok {
        return nil, ErrNotFound
    }
    next, err := fn(gs.Game)
    cp := *gs
    if next == gs.Game {
        return &cp, err
    }
    gs.Game = next
    gs.Updated = s.now()
    cp = *gs
    s.broadcastLocked(ctx, cp)
    return &cp, err
}

// broadcastLocked never blocks: a subscriber whose buffer is full is closed and dropped.
func (s *Service) broadcastLocked(ctx context.Context, gs GameState) {
    set := s.subs[gs.ID]
    dropped := 0
    for sub := range set {
        select {
        case sub.ch <- gs:
        default:
            sub.close()
            delete(set, sub)
            dropped++
        }
    }
    if dropped > 0 {
        s.log.WarnContext(ctx, "dropped slow subscribers", "game", gs.ID, "count", dropped)
    }
}

// Subscribe registers a subscriber for a game. Returns a channel of snapshots and an unsubscribe func.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan GameState, func(), error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.games[id]; !ok {
        return nil, nil, ErrNotFound
    }
    set := s.subs[id]
    if set == nil {
        set = make(map[*subscriber]struct{})
        s.subs[id] = set
    }
    sub := &subscriber{ch: make(chan GameState, 1)}
    set[sub] = struct{}{}

    unsubOnce := &sync.Once{}
    unsub := func() {
        unsubOnce.Do(func() {
            s.mu.Lock()
            if set, ok := s.subs[id]; ok {
                delete(set, sub)
                if len(set) == 0 {
                    delete(s.subs, id)
                }
            }
            sub.close()
            s.mu.Unlock()
        })
    }
    go func() {
        <-ctx.Done()
        unsub()
    }()
    return sub.ch, unsub, nil
}
