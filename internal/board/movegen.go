package board

// Move generation. Moves are produced pseudo-legally in a fixed order
// (pawns, knights, bishops, rooks, queens, king, castling; squares scanned
// low to high) and filtered with make/test/unmake, so the move order for a
// given position never changes between runs.

// LegalMoves returns every legal move for the side to move.
func (p *Position) LegalMoves() []Move {
	buf := make([]Move, 0, 64)
	buf = p.pseudoLegal(buf, false)
	return p.filterLegal(buf)
}

// LegalCaptures returns legal captures and promotions, for quiescence.
func (p *Position) LegalCaptures() []Move {
	buf := make([]Move, 0, 32)
	buf = p.pseudoLegal(buf, true)
	return p.filterLegal(buf)
}

// HasLegalMove reports whether any legal move exists, without building the
// full move list.
func (p *Position) HasLegalMove() bool {
	buf := make([]Move, 0, 64)
	buf = p.pseudoLegal(buf, false)
	us := p.SideToMove
	for _, m := range buf {
		undo := p.MakeMove(m)
		legal := !p.InCheck(us)
		p.UnmakeMove(undo)
		if legal {
			return true
		}
	}
	return false
}

func (p *Position) filterLegal(moves []Move) []Move {
	us := p.SideToMove
	legal := moves[:0]
	for _, m := range moves {
		undo := p.MakeMove(m)
		if !p.InCheck(us) {
			legal = append(legal, m)
		}
		p.UnmakeMove(undo)
	}
	return legal
}

// pseudoLegal appends pseudo-legal moves to buf. With capturesOnly it emits
// captures, en passant, and promotions (push promotions included so
// quiescence sees them).
func (p *Position) pseudoLegal(buf []Move, capturesOnly bool) []Move {
	us := p.SideToMove
	enemies := p.Occupied[us.Other()]
	targets := ^p.Occupied[us]
	if capturesOnly {
		targets = enemies
	}

	buf = p.pawnMoves(buf, capturesOnly)

	for knights := p.Pieces[us][Knight]; knights != 0; {
		from := knights.PopFirst()
		buf = appendTargets(buf, from, KnightAttacks(from)&targets)
	}
	for bishops := p.Pieces[us][Bishop]; bishops != 0; {
		from := bishops.PopFirst()
		buf = appendTargets(buf, from, BishopAttacks(from, p.All)&targets)
	}
	for rooks := p.Pieces[us][Rook]; rooks != 0; {
		from := rooks.PopFirst()
		buf = appendTargets(buf, from, RookAttacks(from, p.All)&targets)
	}
	for queens := p.Pieces[us][Queen]; queens != 0; {
		from := queens.PopFirst()
		buf = appendTargets(buf, from, QueenAttacks(from, p.All)&targets)
	}

	king := p.KingSquare(us)
	buf = appendTargets(buf, king, KingAttacks(king)&targets)

	if !capturesOnly {
		buf = p.castleMoves(buf)
	}
	return buf
}

func appendTargets(buf []Move, from Square, targets Bitboard) []Move {
	for targets != 0 {
		buf = append(buf, NewMove(from, targets.PopFirst()))
	}
	return buf
}

func (p *Position) pawnMoves(buf []Move, capturesOnly bool) []Move {
	us := p.SideToMove
	enemies := p.Occupied[us.Other()]
	empty := ^p.All

	forward := 8
	startRank, promoRank := 1, 6
	if us == Black {
		forward = -8
		startRank, promoRank = 6, 1
	}

	for pawns := p.Pieces[us][Pawn]; pawns != 0; {
		from := pawns.PopFirst()
		promoting := from.Rank() == promoRank

		// Captures (and capture promotions).
		caps := PawnCaptures(from, us) & enemies
		for caps != 0 {
			to := caps.PopFirst()
			if promoting {
				buf = appendPromotions(buf, from, to)
			} else {
				buf = append(buf, NewMove(from, to))
			}
		}

		// En passant.
		if p.EnPassant != NoSquare && PawnCaptures(from, us).Has(p.EnPassant) {
			buf = append(buf, NewEnPassant(from, p.EnPassant))
		}

		// Pushes. In captures-only mode keep just push promotions.
		to := Square(int(from) + forward)
		if !empty.Has(to) {
			continue
		}
		switch {
		case promoting:
			buf = appendPromotions(buf, from, to)
		case !capturesOnly:
			buf = append(buf, NewMove(from, to))
			if from.Rank() == startRank {
				to2 := Square(int(to) + forward)
				if empty.Has(to2) {
					buf = append(buf, NewMove(from, to2))
				}
			}
		}
	}
	return buf
}

func appendPromotions(buf []Move, from, to Square) []Move {
	for _, promo := range [4]PieceType{Queen, Rook, Bishop, Knight} {
		buf = append(buf, NewPromotion(from, to, promo))
	}
	return buf
}

func (p *Position) castleMoves(buf []Move) []Move {
	us := p.SideToMove
	them := us.Other()

	type castleSide struct {
		right       Castling
		kingTo      Square
		mustBeEmpty Bitboard
		noAttack    [3]Square // king path: current, crossed, destination
	}
	var sides [2]castleSide
	if us == White {
		sides = [2]castleSide{
			{CastleWhiteKing, G1, Bit(F1) | Bit(G1), [3]Square{E1, F1, G1}},
			{CastleWhiteQueen, C1, Bit(B1) | Bit(C1) | Bit(D1), [3]Square{E1, D1, C1}},
		}
	} else {
		sides = [2]castleSide{
			{CastleBlackKing, G8, Bit(F8) | Bit(G8), [3]Square{E8, F8, G8}},
			{CastleBlackQueen, C8, Bit(B8) | Bit(C8) | Bit(D8), [3]Square{E8, D8, C8}},
		}
	}

	for _, side := range sides {
		if p.Castling&side.right == 0 || p.All&side.mustBeEmpty != 0 {
			continue
		}
		attacked := false
		for _, sq := range side.noAttack {
			if p.AttackedBy(sq, them) {
				attacked = true
				break
			}
		}
		if !attacked {
			buf = append(buf, NewCastle(side.noAttack[0], side.kingTo))
		}
	}
	return buf
}

// InsufficientMaterial reports whether neither side can possibly deliver
// mate: K vs K, K+minor vs K, or same-colored single bishops.
func (p *Position) InsufficientMaterial() bool {
	if p.Pieces[White][Pawn]|p.Pieces[Black][Pawn]|
		p.Pieces[White][Rook]|p.Pieces[Black][Rook]|
		p.Pieces[White][Queen]|p.Pieces[Black][Queen] != 0 {
		return false
	}

	wMinor := p.Pieces[White][Knight] | p.Pieces[White][Bishop]
	bMinor := p.Pieces[Black][Knight] | p.Pieces[Black][Bishop]

	if wMinor.Count()+bMinor.Count() <= 1 {
		return true // K vs K, or a lone minor piece
	}

	// K+B vs K+B with both bishops on the same square color.
	if p.Pieces[White][Knight]|p.Pieces[Black][Knight] == 0 &&
		wMinor.Count() == 1 && bMinor.Count() == 1 {
		wb, bb := wMinor.First(), bMinor.First()
		return (wb.File()+wb.Rank())%2 == (bb.File()+bb.Rank())%2
	}

	return false
}
