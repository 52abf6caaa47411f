package bot

import (
	"testing"

	"github.com/hailam/chessarena/internal/board"
	"github.com/hailam/chessarena/internal/search"
)

func expertConfig(seed int64) Config {
	return Config{
		Name:  "expert",
		Depth: 3,
		Mode:  search.Enhanced,
		Seed:  seed,
	}
}

func TestSameSeedSameMoves(t *testing.T) {
	// Two bots with the same config and seed must agree on a whole
	// sequence of positions, including blunder decisions.
	cfg := Config{Name: "wobbly", Depth: 2, Mode: search.Classic, WindowCP: 60, BlunderRate: 0.3, Seed: 42}
	a := NewBaseline(cfg)
	b := NewBaseline(cfg)

	g1 := board.NewGame()
	g2 := board.NewGame()
	for i := 0; i < 12 && !g1.Outcome().Over(); i++ {
		ma, err := a.ChooseMove(g1)
		if err != nil {
			t.Fatal(err)
		}
		mb, err := b.ChooseMove(g2)
		if err != nil {
			t.Fatal(err)
		}
		if ma != mb {
			t.Fatalf("move %d: bots with equal seeds diverged (%s vs %s)", i, ma, mb)
		}
		if err := g1.Play(ma); err != nil {
			t.Fatal(err)
		}
		if err := g2.Play(mb); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDeterministicFirstMoveSeed42(t *testing.T) {
	cfg := Config{Name: "fixed", Depth: 3, Mode: search.Enhanced, WindowCP: 0, BlunderRate: 0, Seed: 42}
	g := board.NewGame()
	first, err := NewBaseline(cfg).ChooseMove(g)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		m, err := NewBaseline(cfg).ChooseMove(board.NewGame())
		if err != nil {
			t.Fatal(err)
		}
		if m != first {
			t.Fatalf("run %d returned %s, first run returned %s", i, m, first)
		}
	}
}

func TestChooseMoveIsLegal(t *testing.T) {
	b := NewBaseline(expertConfig(7))
	g := board.NewGame()
	for i := 0; i < 8 && !g.Outcome().Over(); i++ {
		m, err := b.ChooseMove(g)
		if err != nil {
			t.Fatal(err)
		}
		if err := g.Play(m); err != nil {
			t.Fatalf("bot produced illegal move %s: %v", m, err)
		}
	}
}

func TestBlunderRateOneIsUniformRandomButLegal(t *testing.T) {
	cfg := Config{Name: "drunk", Depth: 1, Mode: search.Classic, BlunderRate: 1.0, Seed: 9}
	b := NewBaseline(cfg)
	g := board.NewGame()
	seen := make(map[board.Move]bool)
	for i := 0; i < 40; i++ {
		m, err := b.ChooseMove(g)
		if err != nil {
			t.Fatal(err)
		}
		legal := false
		for _, lm := range g.LegalMoves() {
			if lm == m {
				legal = true
			}
		}
		if !legal {
			t.Fatalf("blunder produced illegal move %s", m)
		}
		seen[m] = true
	}
	if len(seen) < 5 {
		t.Errorf("40 pure blunders produced only %d distinct moves", len(seen))
	}
}

func TestTakesObviousMaterial(t *testing.T) {
	g, err := board.GameFromFEN("4k3/8/8/3q4/8/8/8/3RK3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	m, err := NewBaseline(expertConfig(1)).ChooseMove(g)
	if err != nil {
		t.Fatal(err)
	}
	if m.String() != "d1d5" {
		t.Errorf("expert bot played %s, want d1d5", m)
	}
}

func TestWindowZeroStillDeterministic(t *testing.T) {
	// With no window and no blunders, different seeds must not change the
	// chosen move unless there is a genuine full-depth score tie.
	g, err := board.GameFromFEN("4k3/8/8/3q4/8/8/8/3RK3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	m1, _ := NewBaseline(expertConfig(1)).ChooseMove(g.Clone())
	m2, _ := NewBaseline(expertConfig(999)).ChooseMove(g.Clone())
	if m1 != m2 {
		t.Errorf("seeds changed a forced choice: %s vs %s", m1, m2)
	}
}
