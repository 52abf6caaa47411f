package board

import "fmt"

// Status classifies a game's termination state.
type Status uint8

const (
	InProgress Status = iota
	Checkmate
	Stalemate
	DrawByRepetition
	DrawByFiftyMoves
	DrawByInsufficientMaterial
	DrawByAdjudication
)

func (s Status) String() string {
	switch s {
	case InProgress:
		return "in progress"
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case DrawByRepetition:
		return "draw by repetition"
	case DrawByFiftyMoves:
		return "draw by fifty-move rule"
	case DrawByInsufficientMaterial:
		return "draw by insufficient material"
	case DrawByAdjudication:
		return "draw by adjudication"
	}
	return "unknown"
}

// Outcome is the result of a finished (or running) game.
type Outcome struct {
	Status Status
	Winner Color // meaningful only when Status == Checkmate
}

// Over reports whether the game has ended.
func (o Outcome) Over() bool { return o.Status != InProgress }

// Draw reports whether the game ended without a winner.
func (o Outcome) Draw() bool { return o.Over() && o.Status != Checkmate }

func (o Outcome) String() string {
	if o.Status == Checkmate {
		return fmt.Sprintf("checkmate, %s wins", o.Winner)
	}
	return o.Status.String()
}

// Game is a position plus the bookkeeping the bare position cannot carry:
// the hash history used for threefold-repetition detection. The history is
// truncated whenever an irreversible move (capture or pawn move) resets the
// halfmove clock, so repetition scans stay short.
type Game struct {
	pos     *Position
	history []uint64 // hashes since the last irreversible move, current last
}

// NewGame starts a game from the standard initial position.
func NewGame() *Game {
	return newGame(StartPosition())
}

// GameFromFEN starts a game from an arbitrary position.
func GameFromFEN(fen string) (*Game, error) {
	pos, err := ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	return newGame(pos), nil
}

func newGame(pos *Position) *Game {
	return &Game{pos: pos, history: []uint64{pos.Hash}}
}

// Position exposes the underlying position. Callers must not mutate it;
// use Play.
func (g *Game) Position() *Position { return g.pos }

// SideToMove returns the color to move.
func (g *Game) SideToMove() Color { return g.pos.SideToMove }

// LegalMoves returns the legal moves in stable generation order.
func (g *Game) LegalMoves() []Move { return g.pos.LegalMoves() }

// Clone returns an independent copy of the game.
func (g *Game) Clone() *Game {
	pos := *g.pos
	history := make([]uint64, len(g.history))
	copy(history, g.history)
	return &Game{pos: &pos, history: history}
}

// Play applies a move. It rejects moves once the game is over and moves
// that are not legal in the current position.
func (g *Game) Play(m Move) error {
	if out := g.Outcome(); out.Over() {
		return fmt.Errorf("game is over (%s)", out)
	}
	found := false
	for _, legal := range g.pos.LegalMoves() {
		if legal == m {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("illegal move %s", m)
	}

	g.pos.MakeMove(m)
	if g.pos.HalfMove == 0 {
		// Irreversible: nothing before this position can repeat.
		g.history = g.history[:0]
	}
	g.history = append(g.history, g.pos.Hash)
	return nil
}

// Repetitions counts how often the current position has occurred since the
// last irreversible move.
func (g *Game) Repetitions() int {
	n := 0
	for _, h := range g.history {
		if h == g.pos.Hash {
			n++
		}
	}
	return n
}

// Outcome evaluates the termination state of the current position. It is a
// pure query; the order of checks follows the rules' precedence: mate and
// stalemate first, then the fifty-move rule, repetition, and insufficient
// material.
func (g *Game) Outcome() Outcome {
	if !g.pos.HasLegalMove() {
		if g.pos.InCheck(g.pos.SideToMove) {
			return Outcome{Status: Checkmate, Winner: g.pos.SideToMove.Other()}
		}
		return Outcome{Status: Stalemate}
	}
	if g.pos.HalfMove >= 100 {
		return Outcome{Status: DrawByFiftyMoves}
	}
	if g.Repetitions() >= 3 {
		return Outcome{Status: DrawByRepetition}
	}
	if g.pos.InsufficientMaterial() {
		return Outcome{Status: DrawByInsufficientMaterial}
	}
	return Outcome{Status: InProgress}
}
