package search

import "github.com/hailam/chessarena/internal/board"

// Null-move depth reduction.
const nullMoveReduction = 2

// negamaxEnhanced is negamax with a transposition table, principal
// variation search, null-move pruning, and killer/history move ordering.
// Quiescence at the horizon applies delta pruning.
func (s *Searcher) negamaxEnhanced(pos *board.Position, depth, alpha, beta, ply int, allowNull bool) int {
	moves := pos.LegalMoves()
	if len(moves) == 0 {
		return s.terminalScore(pos, ply)
	}
	if pos.HalfMove >= 100 || pos.InsufficientMaterial() {
		return DrawScore
	}

	origAlpha := alpha
	key := pos.Hash
	ttMove := board.NoMove
	if e, ok := s.tt.probe(key); ok {
		ttMove = e.best
		if int(e.depth) >= depth {
			score := scoreFromTT(int(e.score), ply)
			switch e.bound {
			case BoundExact:
				return score
			case BoundLower:
				if score >= beta {
					return score
				}
			case BoundUpper:
				if score <= alpha {
					return score
				}
			}
		}
	}

	if depth <= 0 {
		return s.quiesce(pos, alpha, beta, ply, true)
	}

	// Null move: hand the opponent a free move; if the reduced search
	// still reaches beta, the real position surely does. Skipped in check
	// and in pawn-only endgames where zugzwang breaks the reasoning.
	if allowNull && depth >= 3 && !pos.InCheck(pos.SideToMove) && pos.HasNonPawnMaterial() {
		undo := pos.MakeNull()
		score := -s.negamaxEnhanced(pos, depth-1-nullMoveReduction, -beta, -beta+1, ply+1, false)
		pos.UnmakeMove(undo)
		if score >= beta {
			return beta
		}
	}

	s.orderMoves(pos, moves, ply, ttMove)

	bestScore := -MateScore - 1
	bestMove := moves[0]
	for i, m := range moves {
		undo := pos.MakeMove(m)
		var score int
		if i == 0 {
			score = -s.negamaxEnhanced(pos, depth-1, -beta, -alpha, ply+1, true)
		} else {
			// PVS: probe later moves with a null window, re-search on a
			// fail-high inside the window.
			score = -s.negamaxEnhanced(pos, depth-1, -alpha-1, -alpha, ply+1, true)
			if score > alpha && score < beta {
				score = -s.negamaxEnhanced(pos, depth-1, -beta, -alpha, ply+1, true)
			}
		}
		pos.UnmakeMove(undo)

		if score > bestScore {
			bestScore = score
			bestMove = m
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			if !isCapture(pos, m) && !m.IsPromotion() {
				s.recordQuietCutoff(m, depth, ply)
			}
			break
		}
	}

	bound := BoundExact
	switch {
	case bestScore >= beta:
		bound = BoundLower
	case bestScore <= origAlpha:
		bound = BoundUpper
	}
	s.tt.store(key, depth, scoreToTT(bestScore, ply), bound, bestMove)

	return bestScore
}

// Mate scores are stored relative to the storing node and re-based on
// probe, so a cached mate keeps the right distance from the new root.
func scoreToTT(score, ply int) int {
	if score > MateScore-maxPly {
		return score + ply
	}
	if score < -MateScore+maxPly {
		return score - ply
	}
	return score
}

func scoreFromTT(score, ply int) int {
	if score > MateScore-maxPly {
		return score - ply
	}
	if score < -MateScore+maxPly {
		return score + ply
	}
	return score
}

// recordQuietCutoff remembers a quiet move that refuted the line, so
// sibling nodes try it early.
func (s *Searcher) recordQuietCutoff(m board.Move, depth, ply int) {
	if ply >= 0 && ply < maxKillerPly && s.killers[ply][0] != m {
		s.killers[ply][1] = s.killers[ply][0]
		s.killers[ply][0] = m
	}
	s.history[m.From()][m.To()] += depth * depth
}
