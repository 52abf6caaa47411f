package search

import (
	"testing"

	"github.com/hailam/chessarena/internal/board"
)

func mustPos(t *testing.T, fen string) *board.Position {
	t.Helper()
	p, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestFindsMateInOne(t *testing.T) {
	for _, mode := range []Mode{Classic, Enhanced} {
		s := New(mode)
		pos := mustPos(t, "6k1/8/6K1/8/8/8/8/4Q3 w - - 0 1")
		move, score := s.Search(pos, 3)
		if move.String() != "e1e8" {
			t.Errorf("%s: best move = %s, want e1e8", mode, move)
		}
		if score != MateScore-1 {
			t.Errorf("%s: score = %d, want %d", mode, score, MateScore-1)
		}
		if !IsMateScore(score) {
			t.Errorf("%s: %d should register as a mate score", mode, score)
		}
	}
}

func TestTakesHangingQueen(t *testing.T) {
	// Black queen on d5 is free for the rook on d1.
	for _, mode := range []Mode{Classic, Enhanced} {
		s := New(mode)
		pos := mustPos(t, "4k3/8/8/3q4/8/8/8/3RK3 w - - 0 1")
		move, _ := s.Search(pos, 3)
		if move.String() != "d1d5" {
			t.Errorf("%s: best move = %s, want d1d5", mode, move)
		}
	}
}

func TestSearchIsDeterministic(t *testing.T) {
	fens := []string{
		board.StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	}
	for _, mode := range []Mode{Classic, Enhanced} {
		for _, fen := range fens {
			m1, s1 := New(mode).Search(mustPos(t, fen), 3)
			m2, s2 := New(mode).Search(mustPos(t, fen), 3)
			if m1 != m2 || s1 != s2 {
				t.Errorf("%s %s: runs disagree: (%s,%d) vs (%s,%d)", mode, fen, m1, s1, m2, s2)
			}
		}
	}
}

func TestSearchLeavesPositionUntouched(t *testing.T) {
	pos := mustPos(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	before := *pos
	New(Enhanced).Search(pos, 3)
	if *pos != before {
		t.Error("search mutated the position")
	}
}

func TestRootScoresCoverAllLegalMoves(t *testing.T) {
	pos := board.StartPosition()
	scored := New(Classic).RootScores(pos, 2)
	if len(scored) != 20 {
		t.Fatalf("root scores = %d moves, want 20", len(scored))
	}
	seen := make(map[board.Move]bool)
	for _, sm := range scored {
		seen[sm.Move] = true
	}
	for _, m := range pos.LegalMoves() {
		if !seen[m] {
			t.Errorf("legal move %s missing from root scores", m)
		}
	}
}

func TestQuiescenceResolvesCaptures(t *testing.T) {
	// White to move; QxP would be met by a recapture. A depth-1 search
	// without quiescence would grab the pawn; with quiescence the loss is
	// visible and the capture scores badly.
	s := New(Classic)
	pos := mustPos(t, "4k3/8/3p4/4p3/8/8/4Q3/4K3 w - - 0 1")
	scored := s.RootScores(pos, 1)
	for _, sm := range scored {
		if sm.Move.String() == "e2e5" {
			if sm.Score > 0 {
				t.Errorf("QxE5 scored %d, quiescence should see the recapture", sm.Score)
			}
		}
	}
}

func TestEnhancedAgreesWithClassicOnForcedLine(t *testing.T) {
	// Forced material win: both modes must pick the same capture.
	pos := mustPos(t, "4k3/8/8/3q4/8/8/8/3RK3 w - - 0 1")
	mc, _ := New(Classic).Search(pos, 4)
	me, _ := New(Enhanced).Search(pos, 4)
	if mc != me {
		t.Errorf("classic picked %s, enhanced picked %s", mc, me)
	}
}

func TestStalematePositionScoresDraw(t *testing.T) {
	s := New(Classic)
	pos := mustPos(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	move, score := s.Search(pos, 3)
	if move != board.NoMove {
		t.Errorf("stalemate search returned move %s", move)
	}
	if score != DrawScore {
		t.Errorf("stalemate score = %d, want %d", score, DrawScore)
	}
}

func TestTTProbeRespectsDepth(t *testing.T) {
	tt := newTTTable(4)
	tt.store(0xABCD, 5, 42, BoundExact, board.NoMove)
	e, ok := tt.probe(0xABCD)
	if !ok || e.score != 42 || e.depth != 5 {
		t.Fatalf("probe = %+v, %v", e, ok)
	}
	// A shallower entry from the same search must not evict a deeper one.
	tt.store(0xABCD, 2, 7, BoundExact, board.NoMove)
	if e, _ := tt.probe(0xABCD); e.score != 42 {
		t.Error("shallower entry evicted deeper one")
	}
	// After aging, replacement is allowed.
	tt.nextSearch()
	tt.store(0xABCD, 2, 7, BoundExact, board.NoMove)
	if e, _ := tt.probe(0xABCD); e.score != 7 {
		t.Error("stale entry should be replaced")
	}
}
