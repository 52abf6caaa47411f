// Package search implements the classical engines: depth-limited negamax
// with alpha-beta and quiescence, in two strengths. Classic mode is the
// plain algorithm; enhanced mode layers a transposition table, principal
// variation search, null-move pruning, and delta pruning on top.
package search

import (
	"sort"

	"github.com/hailam/chessarena/internal/board"
	"github.com/hailam/chessarena/internal/eval"
)

// Mode selects the search algorithm.
type Mode uint8

const (
	Classic Mode = iota
	Enhanced
)

func (m Mode) String() string {
	if m == Enhanced {
		return "enhanced"
	}
	return "classic"
}

// Score limits. Mate scores stay well inside int range so negation is
// safe. A mate found at ply p scores MateScore-p, so faster mates win.
const (
	MateScore = 100000
	DrawScore = 0
	maxPly    = 128
)

// IsMateScore reports whether a score encodes a forced mate.
func IsMateScore(score int) bool {
	return score > MateScore-maxPly || score < -MateScore+maxPly
}

const ttPower = 20 // 2^20 entries, ~24 MB

// maxKillerPly bounds the killer move table.
const maxKillerPly = 64

// ScoredMove pairs a root move with its exact search score.
type ScoredMove struct {
	Move  board.Move
	Score int
}

// Searcher runs searches for one bot instance. It owns its transposition
// table and heuristic state; nothing here is shared between goroutines.
type Searcher struct {
	mode    Mode
	eval    func(*board.Position) int
	tt      *ttTable
	killers [maxKillerPly][2]board.Move
	history [64][64]int
}

// New creates a searcher. Enhanced mode allocates the transposition table.
func New(mode Mode) *Searcher {
	s := &Searcher{mode: mode, eval: eval.Evaluate}
	if mode == Enhanced {
		s.tt = newTTTable(ttPower)
	}
	return s
}

// SetEval replaces the leaf evaluation, e.g. with eval.EvaluateSimple.
func (s *Searcher) SetEval(f func(*board.Position) int) { s.eval = f }

// Search returns the best move and its score for the side to move. Among
// equal scores the first move in generation order wins, which keeps the
// search deterministic.
func (s *Searcher) Search(pos *board.Position, depth int) (board.Move, int) {
	scored := s.RootScores(pos, depth)
	if len(scored) == 0 {
		return board.NoMove, s.terminalScore(pos, 0)
	}
	// RootScores returns moves in search order; rank ties by generation
	// order instead.
	genIndex := make(map[board.Move]int, len(scored))
	for i, m := range pos.LegalMoves() {
		genIndex[m] = i
	}
	best := scored[0]
	for _, sm := range scored[1:] {
		if sm.Score > best.Score || (sm.Score == best.Score && genIndex[sm.Move] < genIndex[best.Move]) {
			best = sm
		}
	}
	return best.Move, best.Score
}

// RootScores searches every root move with a full window and returns exact
// scores, in the root move order. Callers use this for candidate windows.
func (s *Searcher) RootScores(pos *board.Position, depth int) []ScoredMove {
	if depth < 1 {
		depth = 1
	}
	if s.mode == Enhanced {
		s.tt.nextSearch()
	}

	moves := s.rootOrder(pos)
	scored := make([]ScoredMove, 0, len(moves))
	for _, m := range moves {
		undo := pos.MakeMove(m)
		var score int
		if s.mode == Enhanced {
			score = -s.negamaxEnhanced(pos, depth-1, -MateScore, MateScore, 1, true)
		} else {
			score = -s.negamaxClassic(pos, depth-1, -MateScore, MateScore, 1)
		}
		pos.UnmakeMove(undo)
		scored = append(scored, ScoredMove{Move: m, Score: score})
	}
	return scored
}

// rootOrder returns the legal root moves in search order.
func (s *Searcher) rootOrder(pos *board.Position) []board.Move {
	moves := pos.LegalMoves()
	ttMove := board.NoMove
	if s.mode == Enhanced {
		if e, ok := s.tt.probe(pos.Hash); ok {
			ttMove = e.best
		}
	}
	s.orderMoves(pos, moves, 0, ttMove)
	return moves
}

// terminalScore scores a position with no legal moves. Mates further from
// the root score lower, so the search prefers the fastest mate.
func (s *Searcher) terminalScore(pos *board.Position, ply int) int {
	if pos.InCheck(pos.SideToMove) {
		return -(MateScore - ply)
	}
	return DrawScore
}

// negamaxClassic is plain fail-hard negamax with alpha-beta.
func (s *Searcher) negamaxClassic(pos *board.Position, depth, alpha, beta, ply int) int {
	moves := pos.LegalMoves()
	if len(moves) == 0 {
		return s.terminalScore(pos, ply)
	}
	if pos.HalfMove >= 100 || pos.InsufficientMaterial() {
		return DrawScore
	}
	if depth <= 0 {
		return s.quiesce(pos, alpha, beta, ply, false)
	}

	s.orderMoves(pos, moves, -1, board.NoMove)
	for _, m := range moves {
		undo := pos.MakeMove(m)
		score := -s.negamaxClassic(pos, depth-1, -beta, -alpha, ply+1)
		pos.UnmakeMove(undo)
		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}
	return alpha
}

// deltaMargin guards whole-position delta pruning in enhanced quiescence: a
// queen plus promotion upside.
const deltaMargin = 1100

// deltaCaptureSlack is added to a capture's material gain before giving up
// on it in delta pruning.
const deltaCaptureSlack = 200

// quiesce resolves captures until the position is quiet. Both modes share
// it; delta pruning applies only in enhanced mode.
func (s *Searcher) quiesce(pos *board.Position, alpha, beta, ply int, delta bool) int {
	if !pos.HasLegalMove() {
		return s.terminalScore(pos, ply)
	}
	if pos.HalfMove >= 100 || pos.InsufficientMaterial() {
		return DrawScore
	}

	standPat := s.eval(pos)
	if standPat >= beta {
		return beta
	}
	if delta && standPat+deltaMargin < alpha {
		return alpha
	}
	if standPat > alpha {
		alpha = standPat
	}

	captures := pos.LegalCaptures()
	s.orderCaptures(pos, captures)
	for _, m := range captures {
		if delta {
			gain := captureValue(pos, m)
			if standPat+gain+deltaCaptureSlack < alpha {
				continue
			}
		}
		undo := pos.MakeMove(m)
		score := -s.quiesce(pos, -beta, -alpha, ply+1, delta)
		pos.UnmakeMove(undo)
		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}
	return alpha
}

// captureValue is the optimistic material gain of a capture or promotion.
func captureValue(pos *board.Position, m board.Move) int {
	gain := 0
	if m.IsEnPassant() {
		gain = eval.PawnValue
	} else if victim := pos.PieceAt(m.To()); victim != board.NoPiece {
		gain = eval.PieceValue[victim.Type()]
	}
	if m.IsPromotion() {
		gain += eval.PieceValue[m.Promotion()] - eval.PawnValue
	}
	return gain
}

// orderMoves sorts moves in place: transposition move, captures by
// MVV/LVA, killers, then quiets by history. The sort is stable so equal
// scores keep generation order.
func (s *Searcher) orderMoves(pos *board.Position, moves []board.Move, ply int, ttMove board.Move) {
	type ranked struct {
		move  board.Move
		score int
	}
	order := make([]ranked, len(moves))
	for i, m := range moves {
		order[i] = ranked{move: m, score: s.moveOrderScore(pos, m, ply, ttMove)}
	}
	sort.SliceStable(order, func(i, j int) bool { return order[i].score > order[j].score })
	for i := range order {
		moves[i] = order[i].move
	}
}

func (s *Searcher) moveOrderScore(pos *board.Position, m board.Move, ply int, ttMove board.Move) int {
	if m != board.NoMove && m == ttMove {
		return 1 << 30
	}
	if isCapture(pos, m) || m.IsPromotion() {
		// MVV/LVA: prefer valuable victims, cheap attackers. Promotions
		// add the promoted piece's value minus a pawn as a victim surrogate.
		victim := captureValue(pos, m)
		attacker := eval.PieceValue[pos.PieceAt(m.From()).Type()]
		return 1<<20 + victim*16 - attacker/100
	}
	if ply >= 0 && ply < maxKillerPly {
		if s.killers[ply][0] == m {
			return 1 << 19
		}
		if s.killers[ply][1] == m {
			return 1<<19 - 1
		}
	}
	return s.history[m.From()][m.To()]
}

func (s *Searcher) orderCaptures(pos *board.Position, moves []board.Move) {
	s.orderMoves(pos, moves, -1, board.NoMove)
}

func isCapture(pos *board.Position, m board.Move) bool {
	return m.IsEnPassant() || pos.PieceAt(m.To()) != board.NoPiece
}
