// Package board implements the chess position model: bitboard piece sets,
// move generation, make/unmake, Zobrist hashing, and game termination.
package board

import "fmt"

// Square indexes a board square 0..63 using Little-Endian Rank-File
// mapping: A1=0, B1=1, ..., H1=7, A2=8, ..., H8=63.
type Square uint8

const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7
	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8
	NoSquare Square = 64
)

// Sq builds a square from file and rank, both 0-indexed.
func Sq(file, rank int) Square {
	return Square(rank<<3 | file)
}

// File returns the file 0..7 (0 = a-file).
func (sq Square) File() int { return int(sq) & 7 }

// Rank returns the rank 0..7 (0 = first rank).
func (sq Square) Rank() int { return int(sq) >> 3 }

// Mirror flips the square vertically (a1 <-> a8).
func (sq Square) Mirror() Square { return sq ^ 56 }

// Valid reports whether sq is on the board.
func (sq Square) Valid() bool { return sq < NoSquare }

// String returns algebraic notation ("e4"), or "-" for NoSquare.
func (sq Square) String() string {
	if !sq.Valid() {
		return "-"
	}
	return string([]byte{byte('a' + sq.File()), byte('1' + sq.Rank())})
}

// ParseSquare parses algebraic notation into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return NoSquare, fmt.Errorf("bad square %q", s)
	}
	return Sq(int(s[0]-'a'), int(s[1]-'1')), nil
}
