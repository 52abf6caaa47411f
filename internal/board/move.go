package board

import "fmt"

// Move packs a chess move into 16 bits:
//
//	bits 0-5   from square
//	bits 6-11  to square
//	bits 12-13 promotion piece index (Knight..Queen)
//	bits 14-15 kind (normal / promotion / en passant / castle)
type Move uint16

const (
	kindNormal    Move = 0 << 14
	kindPromotion Move = 1 << 14
	kindEnPassant Move = 2 << 14
	kindCastle    Move = 3 << 14
	kindMask      Move = 3 << 14
)

// NoMove is the zero move, used as a sentinel.
const NoMove Move = 0

// NewMove builds a plain move.
func NewMove(from, to Square) Move {
	return Move(from) | Move(to)<<6
}

// NewPromotion builds a promotion to promo (Knight..Queen).
func NewPromotion(from, to Square, promo PieceType) Move {
	return Move(from) | Move(to)<<6 | Move(promo-Knight)<<12 | kindPromotion
}

// NewEnPassant builds an en passant capture.
func NewEnPassant(from, to Square) Move {
	return Move(from) | Move(to)<<6 | kindEnPassant
}

// NewCastle builds a castling move expressed as the king's two-square step.
func NewCastle(from, to Square) Move {
	return Move(from) | Move(to)<<6 | kindCastle
}

// From returns the origin square.
func (m Move) From() Square { return Square(m & 0x3F) }

// To returns the destination square.
func (m Move) To() Square { return Square(m >> 6 & 0x3F) }

// Promotion returns the promotion piece; meaningful only when IsPromotion.
func (m Move) Promotion() PieceType { return PieceType(m>>12&3) + Knight }

// IsPromotion reports whether the move promotes a pawn.
func (m Move) IsPromotion() bool { return m&kindMask == kindPromotion }

// IsEnPassant reports whether the move is an en passant capture.
func (m Move) IsEnPassant() bool { return m&kindMask == kindEnPassant }

// IsCastle reports whether the move is castling.
func (m Move) IsCastle() bool { return m&kindMask == kindCastle }

// String renders the move in UCI form ("e2e4", "e7e8q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string("nbrq"[m.Promotion()-Knight])
	}
	return s
}

// ParseUCIMove parses a UCI move string against a position, restoring the
// castle/en-passant flags the text form does not carry.
func ParseUCIMove(s string, p *Position) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NoMove, fmt.Errorf("bad move %q", s)
	}
	from, err := ParseSquare(s[:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}
	if len(s) == 5 {
		var promo PieceType
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("bad promotion in %q", s)
		}
		return NewPromotion(from, to, promo), nil
	}
	piece := p.PieceAt(from)
	if piece == NoPiece {
		return NoMove, fmt.Errorf("no piece on %s", from)
	}
	switch {
	case piece.Type() == King && (int(to)-int(from) == 2 || int(from)-int(to) == 2):
		return NewCastle(from, to), nil
	case piece.Type() == Pawn && to == p.EnPassant:
		return NewEnPassant(from, to), nil
	}
	return NewMove(from, to), nil
}
