// Package nn implements the neural-network player: the canonical board
// encoding, the evaluator boundary, and the move selection policies that
// sit on top of an opaque model.
package nn

import "github.com/hailam/chessarena/internal/board"

// EncodingSize is the length of one encoded position: 12 channels of 64
// squares.
const EncodingSize = 12 * 64

// Encode converts a position into the model's input vector. The view is
// always relative to the side to move: channels 0-5 hold the mover's
// pieces (P, N, B, R, Q, K), channels 6-11 the opponent's, and when Black
// is to move every square is rank-flipped (s XOR 56) so both players "see"
// their pieces starting from rank one. Files are never flipped.
func Encode(p *board.Position) []float32 {
	us := p.SideToMove
	them := us.Other()
	flip := us == board.Black

	v := make([]float32, EncodingSize)
	for pt := board.Pawn; pt <= board.King; pt++ {
		fill(v, int(pt)*64, p.Pieces[us][pt], flip)
		fill(v, (int(pt)+6)*64, p.Pieces[them][pt], flip)
	}
	return v
}

func fill(v []float32, base int, bb board.Bitboard, flip bool) {
	for bb != 0 {
		sq := bb.PopFirst()
		if flip {
			sq = sq.Mirror()
		}
		v[base+int(sq)] = 1.0
	}
}

// relativeSquare maps a real square into the side-to-move frame used by
// the encoding and by policy-head move indexing.
func relativeSquare(sq board.Square, stm board.Color) board.Square {
	if stm == board.Black {
		return sq.Mirror()
	}
	return sq
}
