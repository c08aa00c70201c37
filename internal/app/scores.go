package app

import (
    "context"
    "fmt"
    "sync"

    "github.com/jaminalder/octagon-tictactoe/internal/domain"
)

// Scores counts wins per player across games.
type Scores struct {
    One int `json:"one"`
    Two int `json:"two"`
}

// Of returns the wins recorded for p.
func (s Scores) Of(p domain.Player) int {
    switch p {
    case domain.PlayerOne:
        return s.One
    case domain.PlayerTwo:
        return s.Two
    }
    return 0
}

// ScoreStore persists cumulative scores.
type ScoreStore interface {
    Load(ctx context.Context) (Scores, error)
    RecordWin(ctx context.Context, winner domain.Player) (Scores, error)
}

// MemoryScores keeps scores in process memory.
type MemoryScores struct {
    mu     sync.Mutex
    scores Scores
}

// NewMemoryScores returns an empty in-memory score store.
func NewMemoryScores() *MemoryScores { return &MemoryScores{} }

func (m *MemoryScores) Load(ctx context.Context) (Scores, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    return m.scores, nil
}

func (m *MemoryScores) RecordWin(ctx context.Context, winner domain.Player) (Scores, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    switch winner {
    case domain.PlayerOne:
        m.scores.One++
    case domain.PlayerTwo:
        m.scores.Two++
    default:
        return m.scores, fmt.Errorf("record win: unknown player %v", winner)
    }
    return m.scores, nil
}
