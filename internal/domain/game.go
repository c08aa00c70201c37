package domain

import (
    "errors"
    "fmt"
    "strings"
)

// PiecesPerPlayer is how many marks each side places before the movement phase.
const PiecesPerPlayer = 3

// Phase is the stage of a game.
type Phase uint8

const (
    Placement Phase = iota
    Movement
)

func (p Phase) String() string {
    if p == Movement {
        return "movement"
    }
    return "placement"
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Phase) UnmarshalText(b []byte) error {
    switch string(b) {
    case "placement":
        *p = Placement
    case "movement":
        *p = Movement
    default:
        return fmt.Errorf("unknown phase %q", b)
    }
    return nil
}

// Difficulty is kept for a future bot opponent; it has no effect on the rules.
type Difficulty uint8

const (
    Easy Difficulty = iota
    Medium
    Hard
)

func (d Difficulty) String() string {
    switch d {
    case Easy:
        return "easy"
    case Hard:
        return "hard"
    default:
        return "medium"
    }
}

// ParseDifficulty accepts easy, medium or hard. Empty input yields Medium.
func ParseDifficulty(s string) (Difficulty, error) {
    switch strings.ToLower(strings.TrimSpace(s)) {
    case "easy":
        return Easy, nil
    case "", "medium":
        return Medium, nil
    case "hard":
        return Hard, nil
    }
    return Medium, fmt.Errorf("unknown difficulty %q", s)
}

func (d Difficulty) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Difficulty) UnmarshalText(b []byte) error {
    v, err := ParseDifficulty(string(b))
    if err != nil {
        return err
    }
    *d = v
    return nil
}

// State is a full game snapshot. It holds only arrays and scalars, so assignment
// copies it and == compares it deeply.
type State struct {
    Board       Board
    Current     Player
    Selected    Position
    Phase       Phase
    Placed      [2]int
    Winner      Player
    WinningLine Line
    BotPlayer   Player
    Difficulty  Difficulty
    Started     bool
}

// Options configure a new game.
type Options struct {
    BotPlayer  Player
    Difficulty Difficulty
}

// Rejection reasons returned by Play. The state returned alongside them is still
// the one to keep.
var (
    ErrNotStarted   = errors.New("game not started")
    ErrGameOver     = errors.New("game over")
    ErrBotTurn      = errors.New("not a human turn")
    ErrOutOfBounds  = errors.New("out of bounds")
    ErrOccupied     = errors.New("cell occupied")
    ErrNoPiecesLeft = errors.New("all pieces placed")
    ErrNotYourPiece = errors.New("not your piece")
    ErrNoLegalMoves = errors.New("piece cannot move")
    ErrIllegalMove  = errors.New("illegal move")
)

// Reset returns the initial state: empty board, player one to move, not started.
func Reset() State {
    return State{
        Current:    PlayerOne,
        Selected:   NoPosition,
        Phase:      Placement,
        Difficulty: Medium,
    }
}

// Start returns a fresh started game.
func Start(opts Options) State {
    s := Reset()
    s.BotPlayer = opts.BotPlayer
    s.Difficulty = opts.Difficulty
    s.Started = true
    return s
}

// Over reports whether the game has a winner.
func (s State) Over() bool { return s.Winner != NoPlayer }

// PiecesPlaced returns how many marks p has put on the board during placement.
func (s State) PiecesPlaced(p Player) int {
    if p != PlayerOne && p != PlayerTwo {
        return 0
    }
    return s.Placed[p-1]
}

// ApplyMove is Play without the rejection reason.
func ApplyMove(s State, pos Position) State {
    next, _ := Play(s, pos)
    return next
}

// Play acts for the current player on pos and returns the next state. Illegal input
// never fails: the returned state is s itself, or s with the selection cleared, and
// the error says why.
func Play(s State, pos Position) (State, error) {
    if !s.Started {
        return s, ErrNotStarted
    }
    if s.Over() {
        return s, ErrGameOver
    }
    if s.BotPlayer != NoPlayer && s.BotPlayer == s.Current {
        return s, ErrBotTurn
    }
    if !pos.Valid() {
        return s, ErrOutOfBounds
    }

    next := s
    if s.Phase == Placement {
        if s.PiecesPlaced(s.Current) >= PiecesPerPlayer {
            return s, ErrNoPiecesLeft
        }
        if s.Board[pos] != NoPlayer {
            return s, ErrOccupied
        }
        next.Board[pos] = s.Current
        next.Placed[s.Current-1]++
        if next.Placed[0] == PiecesPerPlayer && next.Placed[1] == PiecesPerPlayer {
            next.Phase = Movement
        }
    } else {
        if s.Selected == NoPosition {
            if s.Board[pos] != s.Current {
                return s, ErrNotYourPiece
            }
            if !hasMoves(s.Board, pos) {
                return s, ErrNoLegalMoves
            }
            next.Selected = pos
            return next, nil
        }
        if !IsValidMove(s.Board, s.Selected, pos) {
            next.Selected = NoPosition
            if s.Board[pos] != s.Current {
                return next, ErrIllegalMove
            }
            if !hasMoves(s.Board, pos) {
                return next, ErrNoLegalMoves
            }
            next.Selected = pos
            return next, nil
        }
        next.Board[s.Selected] = NoPlayer
        next.Board[pos] = s.Current
        next.Selected = NoPosition
    }

    if winner, line, ok := CheckWin(next.Board); ok {
        next.Winner = winner
        next.WinningLine = line
        return next, nil
    }
    next.Current = s.Current.Opponent()
    return next, nil
}

// View is the read model handed to presentation code.
type View struct {
    Board            Board     `json:"board"`
    CurrentPlayer    Player    `json:"currentPlayer"`
    SelectedPosition *Position `json:"selectedPosition"`
    Phase            Phase     `json:"phase"`
    Winner           Player    `json:"winner"`
    WinningLine      *Line     `json:"winningLine"`
}

// View returns the read model of s.
func (s State) View() View {
    v := View{
        Board:         s.Board,
        CurrentPlayer: s.Current,
        Phase:         s.Phase,
        Winner:        s.Winner,
    }
    if s.Selected != NoPosition {
        sel := s.Selected
        v.SelectedPosition = &sel
    }
    if s.Over() {
        ln := s.WinningLine
        v.WinningLine = &ln
    }
    return v
}

// Status describes whose turn it is and what they should do.
func (s State) Status() string {
    switch {
    case !s.Started:
        return "Press Start to play"
    case s.Over():
        return fmt.Sprintf("Player %v wins", s.Winner)
    case s.BotPlayer != NoPlayer && s.BotPlayer == s.Current:
        return fmt.Sprintf("Player %v (bot) to move", s.Current)
    case s.Phase == Placement:
        return fmt.Sprintf("Player %v: place a piece (%d left)", s.Current, PiecesPerPlayer-s.PiecesPlaced(s.Current))
    case s.Selected != NoPosition:
        return fmt.Sprintf("Player %v: choose where to move", s.Current)
    default:
        return fmt.Sprintf("Player %v: select a piece to move", s.Current)
    }
}
