package board

import "testing"

// Positions used across the make/unmake and hashing tests.
var testFENs = []string{
	StartFEN,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 2",
	"r1bq1rk1/pppp1ppp/2n2n2/2b1p3/2B1P3/2NP1N2/PPP2PPP/R1BQ1RK1 w - - 0 6",
	"8/P6k/8/8/8/8/7K/8 w - - 0 1",
}

func TestMakeUnmakeRoundTrip(t *testing.T) {
	for _, fen := range testFENs {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("%s: %v", fen, err)
		}
		before := *pos
		for _, m := range pos.LegalMoves() {
			undo := pos.MakeMove(m)
			pos.UnmakeMove(undo)
			if *pos != before {
				t.Fatalf("%s: position differs after make/unmake of %s", fen, m)
			}
		}
	}
}

func TestIncrementalHashMatchesRecompute(t *testing.T) {
	for _, fen := range testFENs {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("%s: %v", fen, err)
		}
		for _, m := range pos.LegalMoves() {
			undo := pos.MakeMove(m)
			if pos.Hash != pos.computeHash() {
				t.Errorf("%s: hash drift after %s: incremental %016x, recomputed %016x",
					fen, m, pos.Hash, pos.computeHash())
			}
			pos.UnmakeMove(undo)
		}
	}
}

func TestHashIgnoresMoveCounters(t *testing.T) {
	a, _ := ParseFEN("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	b, _ := ParseFEN("4k3/8/8/8/8/8/8/4K3 w - - 37 95")
	if a.Hash != b.Hash {
		t.Error("hash should depend only on placement, side, castling, and en passant")
	}
}

func TestHashDiffersOnSideAndCastling(t *testing.T) {
	base, _ := ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	blackToMove, _ := ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1")
	noCastle, _ := ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w - - 0 1")
	if base.Hash == blackToMove.Hash {
		t.Error("side to move must be hashed")
	}
	if base.Hash == noCastle.Hash {
		t.Error("castling rights must be hashed")
	}
}

func TestOneKingPerColorThroughoutMoves(t *testing.T) {
	pos := StartPosition()
	for _, m := range pos.LegalMoves() {
		undo := pos.MakeMove(m)
		for c := White; c <= Black; c++ {
			if n := pos.Pieces[c][King].Count(); n != 1 {
				t.Fatalf("after %s: %s has %d kings", m, c, n)
			}
		}
		pos.UnmakeMove(undo)
	}
}

func TestLegalMovesNeverLeaveOwnKingInCheck(t *testing.T) {
	for _, fen := range testFENs {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatal(err)
		}
		us := pos.SideToMove
		for _, m := range pos.LegalMoves() {
			undo := pos.MakeMove(m)
			if pos.InCheck(us) {
				t.Errorf("%s: move %s leaves own king in check", fen, m)
			}
			pos.UnmakeMove(undo)
		}
	}
}

func TestLegalMoveOrderIsStable(t *testing.T) {
	pos, _ := ParseFEN(testFENs[1])
	first := pos.LegalMoves()
	for i := 0; i < 10; i++ {
		again := pos.LegalMoves()
		if len(first) != len(again) {
			t.Fatal("move count changed between calls")
		}
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("move order changed at index %d: %s vs %s", j, first[j], again[j])
			}
		}
	}
}

func TestCastlingRightsNeverComeBack(t *testing.T) {
	pos, _ := ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	// Move the white king out and back; rights must stay lost.
	for _, uci := range []string{"e1d1", "e8d8", "d1e1", "d8e8"} {
		m, err := ParseUCIMove(uci, pos)
		if err != nil {
			t.Fatal(err)
		}
		pos.MakeMove(m)
	}
	if pos.Castling&(CastleWhiteKing|CastleWhiteQueen) != 0 {
		t.Error("white castling rights regained after king moved")
	}
	if pos.Castling&(CastleBlackKing|CastleBlackQueen) != 0 {
		t.Error("black castling rights regained after king moved")
	}
}

func TestFENRoundTrip(t *testing.T) {
	for _, fen := range testFENs {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatal(err)
		}
		if got := pos.FEN(); got != fen {
			t.Errorf("FEN round trip: got %q, want %q", got, fen)
		}
	}
}

func TestEnPassantCaptureRemovesPawn(t *testing.T) {
	pos, err := ParseFEN("4k3/8/8/3Pp3/8/8/8/4K3 w - e6 0 1")
	if err != nil {
		t.Fatal(err)
	}
	m := NewEnPassant(D5, E6)
	pos.MakeMove(m)
	if pos.PieceAt(E5) != NoPiece {
		t.Error("captured pawn should be removed from e5, not e6")
	}
	if pos.PieceAt(E6) != MakePiece(Pawn, White) {
		t.Error("capturing pawn should land on e6")
	}
}
