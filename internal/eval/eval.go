// Package eval scores chess positions in centipawns from the side to
// move's perspective. The evaluation is tapered: a middlegame and an
// endgame score are blended by the amount of material left on the board.
package eval

import "github.com/hailam/chessarena/internal/board"

// Material values in centipawns.
const (
	PawnValue   = 100
	KnightValue = 320
	BishopValue = 330
	RookValue   = 500
	QueenValue  = 900
)

// PieceValue maps a piece type to its material value (king = 0).
var PieceValue = [6]int{PawnValue, KnightValue, BishopValue, RookValue, QueenValue, 0}

// Game phase weights: total 24 with full material, scaled into 0..256.
const (
	knightPhase = 1
	bishopPhase = 1
	rookPhase   = 2
	queenPhase  = 4
	totalPhase  = 2 * (2*knightPhase + 2*bishopPhase + 2*rookPhase + queenPhase)
	phaseScale  = 256
)

// King safety.
var kingAttackerPenalty = [7]int{0, -5, -20, -45, -80, -120, -160}

const (
	shieldPawnBonus     = 15
	openFilePenalty     = -20
	semiOpenFilePenalty = -10
)

// Passed pawn bonus by relative rank (index 1 = pawn on its second rank).
var passedPawnBonus = [8]int{0, 10, 20, 40, 70, 120, 200, 0}

// Mobility weight per destination square, by piece type.
var (
	mobilityMG = [6]int{0, 4, 5, 2, 1, 0}
	mobilityEG = [6]int{0, 3, 4, 4, 2, 0}
)

// Pawn structure penalties.
const (
	doubledPawnMG  = -15
	doubledPawnEG  = -20
	isolatedPawnMG = -20
	isolatedPawnEG = -25
	backwardPawnMG = -15
	backwardPawnEG = -10
)

// Evaluate returns the full tapered score: material, piece-square tables,
// king safety, passed pawns, mobility, and pawn structure.
func Evaluate(p *board.Position) int {
	return evaluate(p, false)
}

// EvaluateSimple scores material and piece-square tables only. Used as the
// weaker baseline variant.
func EvaluateSimple(p *board.Position) int {
	return evaluate(p, true)
}

func evaluate(p *board.Position, simple bool) int {
	phase := gamePhase(p)
	us := p.SideToMove

	var mg, eg int
	for c := board.White; c <= board.Black; c++ {
		sign := 1
		if c != us {
			sign = -1
		}

		for pt := board.Pawn; pt <= board.King; pt++ {
			bb := p.Pieces[c][pt]
			for bb != 0 {
				sq := bb.PopFirst()
				idx := pstIndex(sq, c)
				mat := PieceValue[pt]
				mg += sign * (mat + pstMG[pt][idx])
				eg += sign * (mat + pstEG[pt][idx])
			}
		}

		if simple {
			continue
		}

		// King safety matters while there is attacking material; it is
		// blended out towards the endgame by contributing to mg only.
		mg += sign * kingSafety(p, c)

		pp := passedPawns(p, c)
		mg += sign * pp / 2
		eg += sign * pp

		mobMG, mobEG := mobility(p, c)
		mg += sign * mobMG
		eg += sign * mobEG

		psMG, psEG := pawnStructure(p, c)
		mg += sign * psMG
		eg += sign * psEG
	}

	return (mg*phase + eg*(phaseScale-phase)) / phaseScale
}

// gamePhase maps remaining non-pawn material to 0 (endgame) .. 256
// (middlegame), rounding to nearest and clamping promoted material.
func gamePhase(p *board.Position) int {
	phase := 0
	for c := board.White; c <= board.Black; c++ {
		phase += p.Pieces[c][board.Knight].Count() * knightPhase
		phase += p.Pieces[c][board.Bishop].Count() * bishopPhase
		phase += p.Pieces[c][board.Rook].Count() * rookPhase
		phase += p.Pieces[c][board.Queen].Count() * queenPhase
	}
	scaled := (phase*phaseScale + totalPhase/2) / totalPhase
	if scaled > phaseScale {
		scaled = phaseScale
	}
	return scaled
}

// pstIndex maps a square into the tables, which are written rank 8 first.
func pstIndex(sq board.Square, c board.Color) int {
	rankFromTop := 7 - sq.Rank()
	if c == board.Black {
		rankFromTop = sq.Rank()
	}
	return rankFromTop*8 + sq.File()
}

func kingSafety(p *board.Position, c board.Color) int {
	them := c.Other()
	king := p.KingSquare(c)
	score := 0

	// Pawn shield: only while the king sits on its back two ranks.
	kingRank := king.Rank()
	onHomeRanks := kingRank <= 1
	shieldRank := kingRank + 1
	if c == board.Black {
		onHomeRanks = kingRank >= 6
		shieldRank = kingRank - 1
	}
	if onHomeRanks {
		pawns := p.Pieces[c][board.Pawn]
		for f := maxInt(king.File()-1, 0); f <= minInt(king.File()+1, 7); f++ {
			if pawns.Has(board.Sq(f, shieldRank)) {
				score += shieldPawnBonus
			}
		}
	}

	// Open and half-open files around the king.
	ours := p.Pieces[c][board.Pawn]
	theirs := p.Pieces[them][board.Pawn]
	for f := maxInt(king.File()-1, 0); f <= minInt(king.File()+1, 7); f++ {
		file := board.FileBB[f]
		switch {
		case ours&file == 0 && theirs&file == 0:
			score += openFilePenalty
		case ours&file == 0:
			score += semiOpenFilePenalty
		}
	}

	// Count enemy pieces bearing on the king zone; the penalty grows
	// faster than linearly.
	zone := board.KingAttacks(king) | board.Bit(king)
	attackers := 0
	for bb := p.Pieces[them][board.Knight]; bb != 0; {
		if board.KnightAttacks(bb.PopFirst())&zone != 0 {
			attackers++
		}
	}
	for bb := p.Pieces[them][board.Bishop]; bb != 0; {
		if board.BishopAttacks(bb.PopFirst(), p.All)&zone != 0 {
			attackers++
		}
	}
	for bb := p.Pieces[them][board.Rook]; bb != 0; {
		if board.RookAttacks(bb.PopFirst(), p.All)&zone != 0 {
			attackers++
		}
	}
	for bb := p.Pieces[them][board.Queen]; bb != 0; {
		if board.QueenAttacks(bb.PopFirst(), p.All)&zone != 0 {
			attackers++
		}
	}
	for bb := p.Pieces[them][board.Pawn]; bb != 0; {
		if board.PawnCaptures(bb.PopFirst(), them)&zone != 0 {
			attackers++
		}
	}
	if attackers >= len(kingAttackerPenalty) {
		attackers = len(kingAttackerPenalty) - 1
	}
	score += kingAttackerPenalty[attackers]

	return score
}

// passedPawns sums the rank-scaled bonus for pawns with no enemy pawn ahead
// on their own or adjacent files.
func passedPawns(p *board.Position, c board.Color) int {
	them := c.Other()
	enemyPawns := p.Pieces[them][board.Pawn]
	bonus := 0

	for bb := p.Pieces[c][board.Pawn]; bb != 0; {
		sq := bb.PopFirst()
		if enemyPawns&frontSpan(sq, c) == 0 {
			rel := sq.Rank()
			if c == board.Black {
				rel = 7 - rel
			}
			bonus += passedPawnBonus[rel]
		}
	}
	return bonus
}

// frontSpan is the set of squares in front of sq (from c's view) on sq's
// file and the adjacent files.
func frontSpan(sq board.Square, c board.Color) board.Bitboard {
	files := board.FileBB[sq.File()]
	if sq.File() > 0 {
		files |= board.FileBB[sq.File()-1]
	}
	if sq.File() < 7 {
		files |= board.FileBB[sq.File()+1]
	}
	var ahead board.Bitboard
	if c == board.White {
		for r := sq.Rank() + 1; r < 8; r++ {
			ahead |= board.RankBB[r]
		}
	} else {
		for r := 0; r < sq.Rank(); r++ {
			ahead |= board.RankBB[r]
		}
	}
	return files & ahead
}

// mobility counts pseudo-legal destination squares for the non-pawn,
// non-king pieces.
func mobility(p *board.Position, c board.Color) (mg, eg int) {
	free := ^p.Occupied[c]
	add := func(pt board.PieceType, targets board.Bitboard) {
		n := targets.Count()
		mg += n * mobilityMG[pt]
		eg += n * mobilityEG[pt]
	}
	for bb := p.Pieces[c][board.Knight]; bb != 0; {
		add(board.Knight, board.KnightAttacks(bb.PopFirst())&free)
	}
	for bb := p.Pieces[c][board.Bishop]; bb != 0; {
		add(board.Bishop, board.BishopAttacks(bb.PopFirst(), p.All)&free)
	}
	for bb := p.Pieces[c][board.Rook]; bb != 0; {
		add(board.Rook, board.RookAttacks(bb.PopFirst(), p.All)&free)
	}
	for bb := p.Pieces[c][board.Queen]; bb != 0; {
		add(board.Queen, board.QueenAttacks(bb.PopFirst(), p.All)&free)
	}
	return mg, eg
}

func pawnStructure(p *board.Position, c board.Color) (mg, eg int) {
	pawns := p.Pieces[c][board.Pawn]
	enemyPawns := p.Pieces[c.Other()][board.Pawn]

	for bb := pawns; bb != 0; {
		sq := bb.PopFirst()
		file := sq.File()

		// Doubled: count each extra pawn on the file once, on the pawn
		// that stands behind.
		onFile := pawns & board.FileBB[file]
		if onFile.Count() > 1 {
			rear := onFile.First()
			if c == board.Black {
				rear = onFile.Last()
			}
			if sq == rear {
				mg += doubledPawnMG * (onFile.Count() - 1)
				eg += doubledPawnEG * (onFile.Count() - 1)
			}
		}

		var adjacent board.Bitboard
		if file > 0 {
			adjacent |= board.FileBB[file-1]
		}
		if file < 7 {
			adjacent |= board.FileBB[file+1]
		}

		if pawns&adjacent == 0 {
			mg += isolatedPawnMG
			eg += isolatedPawnEG
			continue // an isolated pawn cannot also be backward
		}

		// Backward: every neighbor pawn is further advanced and the stop
		// square is covered by an enemy pawn.
		if isBackward(sq, c, pawns&adjacent, enemyPawns) {
			mg += backwardPawnMG
			eg += backwardPawnEG
		}
	}
	return mg, eg
}

func isBackward(sq board.Square, c board.Color, neighbors, enemyPawns board.Bitboard) bool {
	var behind board.Bitboard
	if c == board.White {
		for r := 0; r <= sq.Rank(); r++ {
			behind |= board.RankBB[r]
		}
	} else {
		for r := sq.Rank(); r < 8; r++ {
			behind |= board.RankBB[r]
		}
	}
	if neighbors&behind != 0 {
		return false // some neighbor is level or behind; pawn has support
	}
	stop := board.Square(int(sq) + 8)
	if c == board.Black {
		stop = board.Square(int(sq) - 8)
	}
	if !stop.Valid() {
		return false
	}
	return board.PawnCaptures(stop, c)&enemyPawns != 0
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
