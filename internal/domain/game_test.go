package domain

import (
    "encoding/json"
    "errors"
    "testing"

    "github.com/sebdah/goldie/v2"
)

// helper to apply a sequence of accepted moves
func playMoves(t *testing.T, s State, moves ...Position) State {
    t.Helper()
    for i, m := range moves {
        next, err := Play(s, m)
        if err != nil {
            t.Fatalf("move %d (%d) failed: %v", i, m, err)
        }
        s = next
    }
    return s
}

// movementGame reaches the movement phase without a winner:
// player one on 0, 2, 5 and player two on 1, 3, 6.
func movementGame(t *testing.T) State {
    t.Helper()
    s := playMoves(t, Start(Options{}), 0, 1, 2, 3, 5, 6)
    if s.Phase != Movement || s.Over() {
        t.Fatalf("expected movement phase without winner, phase=%v winner=%v", s.Phase, s.Winner)
    }
    return s
}

func TestResetInitialState(t *testing.T) {
    s := Reset()
    if s.Started {
        t.Fatalf("expected reset game not started")
    }
    if s.Current != PlayerOne {
        t.Fatalf("expected player one to move, got %v", s.Current)
    }
    if s.Selected != NoPosition || s.Phase != Placement || s.Winner != NoPlayer {
        t.Fatalf("unexpected initial state: %+v", s)
    }
    if s.Difficulty != Medium {
        t.Fatalf("expected medium difficulty, got %v", s.Difficulty)
    }
    if s.Board.Empty() != BoardSize {
        t.Fatalf("expected empty board, got %v", s.Board)
    }
}

func TestResetIgnoresHistory(t *testing.T) {
    s := movementGame(t)
    s = playMoves(t, s, 5, 4)
    if s == Reset() {
        t.Fatalf("played game should differ from reset")
    }
    want := State{Current: PlayerOne, Selected: NoPosition, Phase: Placement, Difficulty: Medium}
    if got := Reset(); got != want {
        t.Fatalf("reset state differs from canonical initial state: %+v", got)
    }
}

func TestStartSetsOptions(t *testing.T) {
    s := Start(Options{BotPlayer: PlayerTwo, Difficulty: Hard})
    if !s.Started || s.BotPlayer != PlayerTwo || s.Difficulty != Hard {
        t.Fatalf("unexpected start state: %+v", s)
    }
    want := Reset()
    want.Started, want.BotPlayer, want.Difficulty = true, PlayerTwo, Hard
    if s != want {
        t.Fatalf("start should only differ from reset by options: %+v", s)
    }
}

func TestNotStartedRejects(t *testing.T) {
    s := Reset()
    next, err := Play(s, 0)
    if !errors.Is(err, ErrNotStarted) || next != s {
        t.Fatalf("expected ErrNotStarted and unchanged state, got %v", err)
    }
}

func TestOutOfBoundsIsNoop(t *testing.T) {
    s := Start(Options{})
    for _, p := range []Position{-1, 9, 42} {
        next, err := Play(s, p)
        if !errors.Is(err, ErrOutOfBounds) || next != s {
            t.Fatalf("expected ErrOutOfBounds for %d, got %v", p, err)
        }
    }
}

func TestBotTurnRejects(t *testing.T) {
    s := Start(Options{BotPlayer: PlayerOne})
    next, err := Play(s, 0)
    if !errors.Is(err, ErrBotTurn) || next != s {
        t.Fatalf("expected ErrBotTurn, got %v", err)
    }
    s = Start(Options{BotPlayer: PlayerTwo})
    s = playMoves(t, s, 0)
    if _, err := Play(s, 1); !errors.Is(err, ErrBotTurn) {
        t.Fatalf("expected ErrBotTurn on bot's turn, got %v", err)
    }
}

func TestPlacementOccupied(t *testing.T) {
    s := playMoves(t, Start(Options{}), 0)
    next, err := Play(s, 0)
    if !errors.Is(err, ErrOccupied) || next != s {
        t.Fatalf("expected ErrOccupied and unchanged state, got %v", err)
    }
}

func TestPlacementQuota(t *testing.T) {
    // Only reachable by hand-built states: a side with three pieces still in placement.
    s := Start(Options{})
    s.Board[0], s.Board[2], s.Board[4] = PlayerOne, PlayerOne, PlayerOne
    s.Placed[0] = 3
    next, err := Play(s, 6)
    if !errors.Is(err, ErrNoPiecesLeft) || next != s {
        t.Fatalf("expected ErrNoPiecesLeft, got %v", err)
    }
}

func TestTurnAlternatesAndCountsPlacements(t *testing.T) {
    s := Start(Options{})
    s = playMoves(t, s, 8)
    if s.Current != PlayerTwo || s.PiecesPlaced(PlayerOne) != 1 || s.PiecesPlaced(PlayerTwo) != 0 {
        t.Fatalf("unexpected state after first move: %+v", s)
    }
    s = playMoves(t, s, 0)
    if s.Current != PlayerOne || s.PiecesPlaced(PlayerTwo) != 1 {
        t.Fatalf("unexpected state after second move: %+v", s)
    }
}

func TestPhaseTransitionAfterSixPlacements(t *testing.T) {
    s := Start(Options{})
    moves := []Position{0, 1, 2, 3, 5, 6}
    for i, m := range moves {
        if s.Phase != Placement {
            t.Fatalf("phase changed early before move %d", i)
        }
        s = playMoves(t, s, m)
    }
    if s.Phase != Movement {
        t.Fatalf("expected movement phase, got %v", s.Phase)
    }
    if s.Current != PlayerOne {
        t.Fatalf("expected player one to move first in movement, got %v", s.Current)
    }
    // placing is over
    if _, err := Play(s, 8); !errors.Is(err, ErrNotYourPiece) {
        t.Fatalf("expected placement attempt to be rejected, got %v", err)
    }
    s = playMoves(t, s, 5, 4, 1, 8)
    if s.Phase != Movement {
        t.Fatalf("phase should stay movement, got %v", s.Phase)
    }
}

func TestSelectOwnPiece(t *testing.T) {
    s := movementGame(t)
    next, err := Play(s, 5)
    if err != nil {
        t.Fatalf("select failed: %v", err)
    }
    if next.Selected != 5 || next.Current != PlayerOne || next.Board != s.Board {
        t.Fatalf("expected selection without turn change: %+v", next)
    }
}

func TestSelectOpponentPieceRejected(t *testing.T) {
    s := movementGame(t)
    for _, p := range []Position{1, 4} {
        next, err := Play(s, p)
        if !errors.Is(err, ErrNotYourPiece) || next != s {
            t.Fatalf("expected ErrNotYourPiece for %d, got %v", p, err)
        }
    }
}

func TestSelectBlockedPieceRejected(t *testing.T) {
    s := Start(Options{})
    s.Phase = Movement
    s.Placed = [2]int{3, 3}
    // piece on 0 is boxed in by 1, 7 and 8
    s.Board = Board{PlayerOne, PlayerTwo, NoPlayer, PlayerOne, NoPlayer, PlayerOne, NoPlayer, PlayerTwo, PlayerTwo}
    next, err := Play(s, 0)
    if !errors.Is(err, ErrNoLegalMoves) || next != s {
        t.Fatalf("expected ErrNoLegalMoves, got %v", err)
    }
}

func TestMoveToAdjacentEmpty(t *testing.T) {
    s := movementGame(t)
    s = playMoves(t, s, 5)
    next, err := Play(s, 4)
    if err != nil {
        t.Fatalf("move failed: %v", err)
    }
    if next.Board[5] != NoPlayer || next.Board[4] != PlayerOne {
        t.Fatalf("piece not moved: %v", next.Board)
    }
    if next.Selected != NoPosition || next.Current != PlayerTwo {
        t.Fatalf("expected selection cleared and turn passed: %+v", next)
    }
}

func TestReselectOwnPiece(t *testing.T) {
    s := movementGame(t)
    s = playMoves(t, s, 5)
    next, err := Play(s, 2)
    if err != nil || next.Selected != 2 || next.Current != PlayerOne {
        t.Fatalf("expected reselect to 2, got sel=%d err=%v", next.Selected, err)
    }
    // clicking the selected piece again keeps it selected
    again, err := Play(next, 2)
    if err != nil || again != next {
        t.Fatalf("expected reselecting same piece to be stable, err=%v", err)
    }
}

func TestReselectBlockedPieceClearsSelection(t *testing.T) {
    s := Start(Options{})
    s.Phase = Movement
    s.Placed = [2]int{3, 3}
    s.Board = Board{PlayerOne, PlayerTwo, NoPlayer, PlayerOne, NoPlayer, PlayerOne, NoPlayer, PlayerTwo, PlayerTwo}
    s = playMoves(t, s, 5)
    next, err := Play(s, 0)
    if !errors.Is(err, ErrNoLegalMoves) {
        t.Fatalf("expected ErrNoLegalMoves, got %v", err)
    }
    want := s
    want.Selected = NoPosition
    if next != want {
        t.Fatalf("expected only the selection cleared: %+v", next)
    }
}

func TestOpponentTargetClearsSelection(t *testing.T) {
    s := movementGame(t)
    s = playMoves(t, s, 5)
    next, err := Play(s, 6)
    if !errors.Is(err, ErrIllegalMove) {
        t.Fatalf("expected ErrIllegalMove, got %v", err)
    }
    if next.Selected != NoPosition || next.Board != s.Board || next.Current != PlayerOne {
        t.Fatalf("expected only selection cleared: %+v", next)
    }
}

func TestAdjacencyEnforced(t *testing.T) {
    for from := Position(0); from < BoardSize; from++ {
        for to := Position(0); to < BoardSize; to++ {
            if to == from || IsAdjacent(from, to) {
                continue
            }
            s := Start(Options{})
            s.Phase = Movement
            s.Placed = [2]int{3, 3}
            s.Board[from] = PlayerOne
            s.Selected = from
            next, err := Play(s, to)
            if !errors.Is(err, ErrIllegalMove) {
                t.Fatalf("%d->%d: expected ErrIllegalMove, got %v", from, to, err)
            }
            if next.Board != s.Board || next.Selected != NoPosition {
                t.Fatalf("%d->%d: board changed or selection kept", from, to)
            }
        }
    }
}

func TestAdjacencyTable(t *testing.T) {
    for p := Position(0); p < Center; p++ {
        adj := Adjacent(p)
        if len(adj) != 3 {
            t.Fatalf("ring position %d should have 3 neighbours, got %v", p, adj)
        }
        left, right := (p+7)%8, (p+1)%8
        if !IsAdjacent(p, left) || !IsAdjacent(p, right) || !IsAdjacent(p, Center) {
            t.Fatalf("ring position %d has wrong neighbours %v", p, adj)
        }
        if !IsAdjacent(Center, p) {
            t.Fatalf("center should touch %d", p)
        }
    }
    if len(Adjacent(Center)) != 8 {
        t.Fatalf("center should touch every ring position")
    }
    if Adjacent(9) != nil || Adjacent(NoPosition) != nil {
        t.Fatalf("invalid positions have no neighbours")
    }
}

func TestValidMoves(t *testing.T) {
    var b Board
    b[1], b[8] = PlayerTwo, PlayerOne
    got := ValidMoves(b, 0)
    if len(got) != 1 || got[0] != 7 {
        t.Fatalf("expected [7], got %v", got)
    }
    if len(ValidMoves(b, 8)) != 7 {
        t.Fatalf("center should reach 7 empty ring cells, got %v", ValidMoves(b, 8))
    }
    if !IsValidMove(b, 8, 3) || IsValidMove(b, 8, 1) || IsValidMove(b, 0, 4) {
        t.Fatalf("IsValidMove disagrees with adjacency")
    }
}

func TestCheckWinRingLine(t *testing.T) {
    b := Board{PlayerOne, PlayerOne, PlayerOne}
    w, ln, ok := CheckWin(b)
    if !ok || w != PlayerOne || ln != (Line{0, 1, 2}) {
        t.Fatalf("expected player one on [0 1 2], got %v %v %v", w, ln, ok)
    }
}

func TestCheckWinCenterLine(t *testing.T) {
    var b Board
    b[2], b[8], b[6] = PlayerTwo, PlayerTwo, PlayerTwo
    w, ln, ok := CheckWin(b)
    if !ok || w != PlayerTwo || ln != (Line{2, 8, 6}) {
        t.Fatalf("expected player two on [2 8 6], got %v %v %v", w, ln, ok)
    }
}

func TestCheckWinFirstLineWins(t *testing.T) {
    // 0,1,2 and 0,8,4 both complete; the ring triple is listed first
    var b Board
    for _, p := range []Position{0, 1, 2, 8, 4} {
        b[p] = PlayerOne
    }
    _, ln, ok := CheckWin(b)
    if !ok || ln != (Line{0, 1, 2}) {
        t.Fatalf("expected first canonical line, got %v", ln)
    }
}

func TestCheckWinNone(t *testing.T) {
    var b Board
    if _, _, ok := CheckWin(b); ok {
        t.Fatalf("empty board has no winner")
    }
    b = Board{PlayerOne, PlayerTwo, PlayerOne, PlayerTwo, PlayerOne, PlayerTwo}
    if _, _, ok := CheckWin(b); ok {
        t.Fatalf("mixed lines should not win")
    }
}

func TestWinConditionsForEachLine(t *testing.T) {
    for _, line := range WinningLines {
        for _, side := range []Player{PlayerOne, PlayerTwo} {
            s := Start(Options{})
            s.Phase = Movement
            s.Placed = [2]int{3, 3}
            // two pieces on the line, the third one step away
            s.Board[line[0]], s.Board[line[1]] = side, side
            var from Position = NoPosition
            for _, n := range Adjacent(line[2]) {
                if n != line[0] && n != line[1] {
                    from = n
                    break
                }
            }
            s.Board[from] = side
            s.Current = side
            s = playMoves(t, s, from, line[2])
            if s.Winner != side || s.WinningLine != line {
                t.Fatalf("expected %v to win on %v, got winner=%v line=%v", side, line, s.Winner, s.WinningLine)
            }
        }
    }
}

func TestWinDuringPlacementKeepsTurn(t *testing.T) {
    s := playMoves(t, Start(Options{}), 0, 4, 1, 5, 2)
    if s.Winner != PlayerOne || s.WinningLine != (Line{0, 1, 2}) {
        t.Fatalf("expected player one win, got %+v", s)
    }
    if s.Current != PlayerOne {
        t.Fatalf("turn should not pass after a win, got %v", s.Current)
    }
    for _, p := range []Position{3, 6, 7, 8, 0} {
        next, err := Play(s, p)
        if !errors.Is(err, ErrGameOver) || next != s {
            t.Fatalf("expected ErrGameOver after win, got %v", err)
        }
    }
}

func TestWinDuringMovement(t *testing.T) {
    s := movementGame(t)
    s = playMoves(t, s, 5, 4) // one: 5 -> 4
    s = playMoves(t, s, 6, 7) // two: 6 -> 7
    s = playMoves(t, s, 2, 8) // one: 2 -> 8 completes 0,8,4
    if s.Winner != PlayerOne || s.WinningLine != (Line{0, 8, 4}) {
        t.Fatalf("expected player one on [0 8 4], got winner=%v line=%v", s.Winner, s.WinningLine)
    }
    if s.Current != PlayerOne || s.Selected != NoPosition {
        t.Fatalf("unexpected state after winning move: %+v", s)
    }
}

func TestIllegalInputIsIdempotent(t *testing.T) {
    s := movementGame(t)
    s = playMoves(t, s, 5)
    first := ApplyMove(s, 6)
    for i := 0; i < 5; i++ {
        if got := ApplyMove(first, 6); got != first {
            t.Fatalf("repeat %d changed state: %+v", i, got)
        }
    }
    placed := playMoves(t, Start(Options{}), 0)
    once := ApplyMove(placed, 0)
    if ApplyMove(once, 0) != once || once != placed {
        t.Fatalf("occupied placement should be stable")
    }
}

func TestMovementNeverFillsBoard(t *testing.T) {
    s := movementGame(t)
    moves := 0
    for turn := 0; moves < 300; turn++ {
        var from Position = NoPosition
        var dests []Position
        for k := 0; k < BoardSize; k++ {
            p := Position((turn + k) % BoardSize)
            if s.Board[p] != s.Current {
                continue
            }
            if vm := ValidMoves(s.Board, p); len(vm) > 0 {
                from, dests = p, vm
                break
            }
        }
        if from == NoPosition {
            s = movementGame(t)
            continue
        }
        to := dests[turn%len(dests)]

        sel, err := Play(s, from)
        if err != nil || sel.Selected != from {
            t.Fatalf("select %d: err=%v selected=%v", from, err, sel.Selected)
        }
        next, err := Play(sel, to)
        if err != nil {
            t.Fatalf("move %d->%d: %v", from, to, err)
        }
        if next.Board[from] != NoPlayer || next.Board[to] != s.Current {
            t.Fatalf("move %d->%d not applied: %v", from, to, next.Board)
        }
        moves++
        if next.Phase != Movement {
            t.Fatalf("phase left movement after move %d", moves)
        }
        if next.Board.Empty() != BoardSize-2*PiecesPerPlayer {
            t.Fatalf("expected exactly %d empty cells, got %d", BoardSize-2*PiecesPerPlayer, next.Board.Empty())
        }
        s = next
        if s.Over() {
            s = movementGame(t)
        }
    }
}

func TestParseDifficulty(t *testing.T) {
    cases := map[string]Difficulty{"easy": Easy, "": Medium, "Medium": Medium, " hard ": Hard}
    for in, want := range cases {
        got, err := ParseDifficulty(in)
        if err != nil || got != want {
            t.Fatalf("ParseDifficulty(%q) = %v, %v", in, got, err)
        }
    }
    if _, err := ParseDifficulty("impossible"); err == nil {
        t.Fatalf("expected error for unknown difficulty")
    }
}

func TestParsePlayer(t *testing.T) {
    if p, err := ParsePlayer("2"); err != nil || p != PlayerTwo {
        t.Fatalf("expected player two, got %v %v", p, err)
    }
    if p, err := ParsePlayer(""); err != nil || p != NoPlayer {
        t.Fatalf("expected no player, got %v %v", p, err)
    }
    if _, err := ParsePlayer("3"); err == nil {
        t.Fatalf("expected error for unknown player")
    }
}

func TestViewGolden(t *testing.T) {
    s := playMoves(t, Start(Options{}), 0, 4, 1, 5, 2)
    g := goldie.New(t)
    g.AssertJson(t, "view_won", s.View())
}

func TestViewEncodesEmptyAsNull(t *testing.T) {
    s := playMoves(t, Start(Options{}), 8)
    b, err := json.Marshal(s.View())
    if err != nil {
        t.Fatalf("marshal: %v", err)
    }
    want := `{"board":[null,null,null,null,null,null,null,null,1],"currentPlayer":2,"selectedPosition":null,"phase":"placement","winner":null,"winningLine":null}`
    if string(b) != want {
        t.Fatalf("unexpected encoding\n got %s\nwant %s", b, want)
    }

    var v View
    if err := json.Unmarshal(b, &v); err != nil {
        t.Fatalf("unmarshal: %v", err)
    }
    if v.Board != s.Board || v.Winner != NoPlayer || v.CurrentPlayer != PlayerTwo {
        t.Fatalf("decoded view differs: %+v", v)
    }
    if err := json.Unmarshal([]byte(`{"winner":3}`), &v); err == nil {
        t.Fatalf("expected error for unknown player")
    }
}

func TestViewSelection(t *testing.T) {
    s := movementGame(t)
    v := s.View()
    if v.SelectedPosition != nil || v.WinningLine != nil {
        t.Fatalf("expected empty selection and line, got %+v", v)
    }
    s = playMoves(t, s, 5)
    v = s.View()
    if v.SelectedPosition == nil || *v.SelectedPosition != 5 || v.Phase != Movement {
        t.Fatalf("expected selection 5 in view, got %+v", v)
    }
}
