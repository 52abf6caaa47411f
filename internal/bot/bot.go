// Package bot defines the move-choosing capability shared by every player
// and implements the classical baseline bot.
package bot

import (
	"fmt"
	"math/rand"

	"github.com/hailam/chessarena/internal/board"
	"github.com/hailam/chessarena/internal/eval"
	"github.com/hailam/chessarena/internal/search"
)

// Bot chooses moves for the side to move. Implementations must be
// deterministic given their construction-time seed and the same sequence
// of positions.
type Bot interface {
	// ChooseMove returns the move to play. It is only called on positions
	// with at least one legal move; calling it on a finished game is an
	// error.
	ChooseMove(g *board.Game) (board.Move, error)
}

// Config describes a baseline bot.
type Config struct {
	Name        string
	Depth       int
	Mode        search.Mode
	WindowCP    int     // candidate window in centipawns
	BlunderRate float64 // probability of a uniformly random move
	SimpleEval  bool    // material + PST only
	Seed        int64
}

// WithSeed returns a copy of the config with the seed replaced. The driver
// uses this to schedule per-game seeds.
func (c Config) WithSeed(seed int64) Config {
	c.Seed = seed
	return c
}

func (c Config) String() string {
	return fmt.Sprintf("%s: depth %d %s, window %dcp, blunder %.0f%%",
		c.Name, c.Depth, c.Mode, c.WindowCP, c.BlunderRate*100)
}

// Baseline is the handcrafted alpha-beta player. All randomness (blunders,
// candidate picks) comes from its own seeded generator, so two bots built
// from the same config play identically.
type Baseline struct {
	cfg      Config
	rng      *rand.Rand
	searcher *search.Searcher
}

// NewBaseline builds a baseline bot from a config.
func NewBaseline(cfg Config) *Baseline {
	if cfg.Depth < 1 {
		cfg.Depth = 1
	}
	s := search.New(cfg.Mode)
	if cfg.SimpleEval {
		s.SetEval(eval.EvaluateSimple)
	}
	b := &Baseline{
		cfg:      cfg,
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		searcher: s,
	}
	return b
}

// Config returns the bot's configuration.
func (b *Baseline) Config() Config { return b.cfg }

// ChooseMove picks a move in three stages: a possible configured blunder, a
// shallow candidate filter, then a full-depth search over the candidates.
func (b *Baseline) ChooseMove(g *board.Game) (board.Move, error) {
	legal := g.LegalMoves()
	if len(legal) == 0 {
		return board.NoMove, fmt.Errorf("no legal moves in position %s", g.Position().FEN())
	}

	if b.cfg.BlunderRate > 0 && b.rng.Float64() < b.cfg.BlunderRate {
		return legal[b.rng.Intn(len(legal))], nil
	}

	pos := g.Position()

	// Shallow pass: keep every move within the window of the best
	// depth-1 score.
	shallow := b.searcher.RootScores(pos, 1)
	bestShallow := shallow[0].Score
	for _, sm := range shallow[1:] {
		if sm.Score > bestShallow {
			bestShallow = sm.Score
		}
	}
	candidates := make(map[board.Move]bool, len(shallow))
	for _, sm := range shallow {
		if sm.Score >= bestShallow-b.cfg.WindowCP {
			candidates[sm.Move] = true
		}
	}
	if len(candidates) == 1 {
		for m := range candidates {
			return m, nil
		}
	}

	// Full-depth pass over the candidates; ties break uniformly at
	// random from the bot's own generator.
	scored := b.searcher.RootScores(pos, b.cfg.Depth)
	best := make([]board.Move, 0, 4)
	bestScore := -search.MateScore - 1
	for _, sm := range scored {
		if !candidates[sm.Move] {
			continue
		}
		switch {
		case sm.Score > bestScore:
			bestScore = sm.Score
			best = best[:0]
			best = append(best, sm.Move)
		case sm.Score == bestScore:
			best = append(best, sm.Move)
		}
	}
	if len(best) == 0 {
		// Candidates always come from the legal move list, so the full
		// search must have scored at least one of them.
		return board.NoMove, fmt.Errorf("candidate scoring lost all moves in %s", pos.FEN())
	}
	return best[b.rng.Intn(len(best))], nil
}
