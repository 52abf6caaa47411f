package nn

import (
	"testing"

	"github.com/hailam/chessarena/internal/board"
)

// stubEval gives every position the fallback score and counts calls and
// batched rows.
type stubEval struct {
	table    map[uint64]float32
	fallback float32
	calls    int
	batched  int
}

func (s *stubEval) Evaluate(batch [][]float32) ([]float32, error) {
	s.calls++
	s.batched += len(batch)
	out := make([]float32, len(batch))
	for i := range batch {
		out[i] = s.fallback
	}
	return out, nil
}

// hashEval looks up scores by each row's encoding, through a map the test
// fills from the child positions before the bot runs.
type hashEval struct {
	byEncoding map[string]float32
}

func key(enc []float32) string {
	b := make([]byte, len(enc))
	for i, v := range enc {
		if v != 0 {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
	}
	return string(b)
}

func (h *hashEval) Evaluate(batch [][]float32) ([]float32, error) {
	out := make([]float32, len(batch))
	for i, enc := range batch {
		out[i] = h.byEncoding[key(enc)]
	}
	return out, nil
}

func TestEncodeStartPosition(t *testing.T) {
	enc := Encode(board.StartPosition())
	if len(enc) != EncodingSize {
		t.Fatalf("encoding length = %d, want %d", len(enc), EncodingSize)
	}
	ones := 0
	for _, v := range enc {
		if v == 1.0 {
			ones++
		} else if v != 0 {
			t.Fatalf("encoding must be 0/1, saw %f", v)
		}
	}
	if ones != 32 {
		t.Errorf("start position has %d set cells, want 32", ones)
	}
	// White to move: own pawn channel 0 covers rank 2 (squares 8..15).
	for sq := 8; sq < 16; sq++ {
		if enc[sq] != 1.0 {
			t.Errorf("own pawn missing at input cell %d", sq)
		}
	}
	// Opponent king (black, e8) in channel 11 at its real square.
	if enc[11*64+int(board.E8)] != 1.0 {
		t.Error("opponent king not encoded at e8")
	}
}

func TestEncodeMirrorSymmetry(t *testing.T) {
	// A position and its color-mirrored counterpart (ranks flipped,
	// colors swapped, side to move swapped) encode identically.
	pairs := [][2]string{
		{
			"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1",
			"rnbqkbnr/pppp1ppp/8/4p3/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		},
		{
			"4k3/8/8/3q4/8/8/8/3RK3 w - - 0 1",
			"3rk3/8/8/8/3Q4/8/8/4K3 b - - 0 1",
		},
	}
	for _, pair := range pairs {
		a, err := board.ParseFEN(pair[0])
		if err != nil {
			t.Fatal(err)
		}
		b, err := board.ParseFEN(pair[1])
		if err != nil {
			t.Fatal(err)
		}
		ea, eb := Encode(a), Encode(b)
		for i := range ea {
			if ea[i] != eb[i] {
				t.Fatalf("mirror pair %q / %q differ at cell %d", pair[0], pair[1], i)
			}
		}
	}
}

func TestEvalBotPrefersCheckmateWithoutAskingEvaluator(t *testing.T) {
	stub := &stubEval{fallback: 5}
	b := NewEvalBot(stub, false)
	g, err := board.GameFromFEN("6k1/8/6K1/8/8/8/8/4Q3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	m, err := b.ChooseMove(g)
	if err != nil {
		t.Fatal(err)
	}
	if m.String() != "e1e8" {
		t.Errorf("bot played %s, want mate e1e8", m)
	}
	if stub.calls != 0 {
		t.Errorf("evaluator consulted %d times before a found mate", stub.calls)
	}
}

func TestEvalBotBatchesNonTerminalChildren(t *testing.T) {
	stub := &stubEval{}
	b := NewEvalBot(stub, false)
	g := board.NewGame()
	if _, err := b.ChooseMove(g); err != nil {
		t.Fatal(err)
	}
	if stub.calls != 1 {
		t.Errorf("evaluator called %d times, want one batched call", stub.calls)
	}
	if stub.batched != 20 {
		t.Errorf("batch covered %d children, want 20", stub.batched)
	}
}

func TestEvalBotPicksArgmaxOfNegatedChildScores(t *testing.T) {
	g := board.NewGame()
	legal := g.LegalMoves()

	// Give every child a high (good-for-opponent) score except the one
	// after e2e4, which the bot should therefore choose.
	he := &hashEval{byEncoding: make(map[string]float32)}
	var want board.Move
	for _, m := range legal {
		child := g.Clone()
		if err := child.Play(m); err != nil {
			t.Fatal(err)
		}
		score := float32(1.0)
		if m.String() == "e2e4" {
			score = -3.0
			want = m
		}
		he.byEncoding[key(Encode(child.Position()))] = score
	}

	b := NewEvalBot(he, false)
	got, err := b.ChooseMove(g)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("bot played %s, want %s", got, want)
	}
}

func TestEvalBotTiesBreakByGenerationOrder(t *testing.T) {
	stub := &stubEval{fallback: 0}
	b := NewEvalBot(stub, false)
	g := board.NewGame()
	m, err := b.ChooseMove(g)
	if err != nil {
		t.Fatal(err)
	}
	if m != g.LegalMoves()[0] {
		t.Errorf("all-equal scores should pick the first generated move, got %s", m)
	}
}

func TestQuiesceVariantSeesRecapture(t *testing.T) {
	// Queen takes a defended pawn: pure depth-1 scoring with a constant
	// evaluator cannot tell, but quiescence must follow the recapture and
	// not crash; the chosen move must at least be legal.
	stub := &stubEval{fallback: 0}
	b := NewEvalBot(stub, true)
	g, err := board.GameFromFEN("4k3/8/3p4/4p3/8/8/4Q3/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	m, err := b.ChooseMove(g)
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Play(m); err != nil {
		t.Errorf("quiesce bot played illegal move %s: %v", m, err)
	}
}

// stubPolicy returns fixed logits.
type stubPolicy struct {
	logits []float32
}

func (s *stubPolicy) Policy(enc []float32) ([]float32, error) {
	return s.logits, nil
}

func TestPolicyBotMasksIllegalMoves(t *testing.T) {
	logits := make([]float32, PolicySize)
	// Push an illegal move (a1 to h8) as the global maximum.
	logits[int(board.A1)*64+int(board.H8)] = 99
	// Favor e2e4 among the legal ones.
	logits[int(board.E2)*64+int(board.E4)] = 5

	b := NewPolicyBot(&stubPolicy{logits: logits})
	m, err := b.ChooseMove(board.NewGame())
	if err != nil {
		t.Fatal(err)
	}
	if m.String() != "e2e4" {
		t.Errorf("policy bot played %s, want e2e4", m)
	}
}

func TestPolicyBotUsesRelativeFrameForBlack(t *testing.T) {
	g := board.NewGame()
	if err := g.Play(board.NewMove(board.E2, board.E4)); err != nil {
		t.Fatal(err)
	}
	// Black to move. In the relative frame, e7e5 looks like e2e4.
	logits := make([]float32, PolicySize)
	logits[int(board.E2)*64+int(board.E4)] = 7

	b := NewPolicyBot(&stubPolicy{logits: logits})
	m, err := b.ChooseMove(g)
	if err != nil {
		t.Fatal(err)
	}
	if m.String() != "e7e5" {
		t.Errorf("policy bot played %s, want e7e5", m)
	}
}
