package board

// Zobrist keys. Generated once from a fixed-seed xorshift so hashes are
// identical across runs and platforms.

var (
	zPiece  [2][6][64]uint64
	zCastle [16]uint64
	zEPFile [8]uint64
	zSide   uint64
)

func init() {
	state := uint64(0x6C078965A3F2D1E7)
	next := func() uint64 {
		state ^= state >> 12
		state ^= state << 25
		state ^= state >> 27
		return state * 0x2545F4914F6CDD1D
	}
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			for sq := A1; sq <= H8; sq++ {
				zPiece[c][pt][sq] = next()
			}
		}
	}
	for i := range zCastle {
		zCastle[i] = next()
	}
	for i := range zEPFile {
		zEPFile[i] = next()
	}
	zSide = next()
}

// computeHash derives the Zobrist hash from scratch. MakeMove keeps the
// hash incrementally; this is used after FEN parsing and in tests.
func (p *Position) computeHash() uint64 {
	var h uint64
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			bb := p.Pieces[c][pt]
			for bb != 0 {
				h ^= zPiece[c][pt][bb.PopFirst()]
			}
		}
	}
	if p.SideToMove == Black {
		h ^= zSide
	}
	h ^= zCastle[p.Castling]
	if p.EnPassant != NoSquare {
		h ^= zEPFile[p.EnPassant.File()]
	}
	return h
}
