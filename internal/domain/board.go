package domain

import (
    "fmt"
    "strings"
)

// Position identifies a board cell: 0..7 around the octagon ring, 8 in the center.
type Position int

const (
    NoPosition Position = -1
    Center     Position = 8
)

// BoardSize is the number of cells on the board.
const BoardSize = 9

// Valid reports whether p is a board index.
func (p Position) Valid() bool { return p >= 0 && p < BoardSize }

// Player identifies a side. NoPlayer marks an empty cell.
type Player uint8

const (
    NoPlayer Player = iota
    PlayerOne
    PlayerTwo
)

// Opponent returns the other side.
func (p Player) Opponent() Player {
    switch p {
    case PlayerOne:
        return PlayerTwo
    case PlayerTwo:
        return PlayerOne
    default:
        return NoPlayer
    }
}

func (p Player) String() string {
    switch p {
    case PlayerOne:
        return "1"
    case PlayerTwo:
        return "2"
    default:
        return "-"
    }
}

// MarshalJSON encodes NoPlayer as null and the sides as 1 and 2.
func (p Player) MarshalJSON() ([]byte, error) {
    if p == NoPlayer {
        return []byte("null"), nil
    }
    return []byte(p.String()), nil
}

func (p *Player) UnmarshalJSON(b []byte) error {
    if string(b) == "null" {
        *p = NoPlayer
        return nil
    }
    v, err := ParsePlayer(string(b))
    if err != nil {
        return err
    }
    *p = v
    return nil
}

// ParsePlayer accepts "1", "2" and "" (no player).
func ParsePlayer(s string) (Player, error) {
    switch strings.TrimSpace(s) {
    case "", "0", "none":
        return NoPlayer, nil
    case "1":
        return PlayerOne, nil
    case "2":
        return PlayerTwo, nil
    }
    return NoPlayer, fmt.Errorf("unknown player %q", s)
}

// Board is the ring of 8 cells followed by the center.
type Board [BoardSize]Player

// Empty returns the number of unoccupied cells.
func (b Board) Empty() int {
    n := 0
    for _, c := range b {
        if c == NoPlayer {
            n++
        }
    }
    return n
}

// Line is a winning triple.
type Line [3]Position

// WinningLines in the order they are checked: ring triples first, then lines through the center.
var WinningLines = [8]Line{
    {0, 1, 2}, {2, 3, 4}, {4, 5, 6}, {6, 7, 0},
    {0, 8, 4}, {1, 8, 5}, {2, 8, 6}, {3, 8, 7},
}

var adjacency = [BoardSize][]Position{
    0: {1, 7, 8},
    1: {0, 2, 8},
    2: {1, 3, 8},
    3: {2, 4, 8},
    4: {3, 5, 8},
    5: {4, 6, 8},
    6: {5, 7, 8},
    7: {6, 0, 8},
    8: {0, 1, 2, 3, 4, 5, 6, 7},
}

// Adjacent returns the fixed neighbours of p. The result must not be modified.
func Adjacent(p Position) []Position {
    if !p.Valid() {
        return nil
    }
    return adjacency[p]
}

// IsAdjacent reports whether a and b are neighbours.
func IsAdjacent(a, b Position) bool {
    for _, n := range Adjacent(a) {
        if n == b {
            return true
        }
    }
    return false
}

// IsValidMove reports whether a piece at from may slide to to.
func IsValidMove(b Board, from, to Position) bool {
    if !to.Valid() || b[to] != NoPlayer {
        return false
    }
    return IsAdjacent(from, to)
}

// ValidMoves lists the empty neighbours of p.
func ValidMoves(b Board, p Position) []Position {
    var out []Position
    for _, n := range Adjacent(p) {
        if b[n] == NoPlayer {
            out = append(out, n)
        }
    }
    return out
}

func hasMoves(b Board, p Position) bool {
    for _, n := range Adjacent(p) {
        if b[n] == NoPlayer {
            return true
        }
    }
    return false
}

// CheckWin returns the owner of the first uniformly marked line.
func CheckWin(b Board) (Player, Line, bool) {
    for _, ln := range WinningLines {
        side := b[ln[0]]
        if side != NoPlayer && b[ln[1]] == side && b[ln[2]] == side {
            return side, ln, true
        }
    }
    return NoPlayer, Line{}, false
}
