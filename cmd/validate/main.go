// validate measures baseline strength against a reference engine driven
// over UCI. The reference plays at fixed depths with nominal ratings; the
// baseline's score per level is converted to an Elo estimate with
//
//	elo = reference + 400 * log10(score / (1 - score))
//
// Results are appended to the per-user ratings history.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/freeeve/uci"

	"github.com/hailam/chessarena/internal/board"
	"github.com/hailam/chessarena/internal/bot"
	"github.com/hailam/chessarena/internal/logx"
	"github.com/hailam/chessarena/internal/ratings"
	"github.com/hailam/chessarena/internal/search"
)

const maxPlies = 300

// referenceLevel pairs a search depth for the reference engine with a
// nominal rating for that depth.
type referenceLevel struct {
	depth int
	elo   int
}

var levels = []referenceLevel{
	{depth: 1, elo: 1350},
	{depth: 2, elo: 1550},
	{depth: 3, elo: 1750},
	{depth: 4, elo: 1950},
}

func main() {
	os.Exit(run())
}

func run() int {
	enginePath := flag.String("engine", os.Getenv("STOCKFISH_PATH"), "path to the UCI reference engine")
	games := flag.Int("games", 10, "games per reference level (paired colors)")
	depth := flag.Int("depth", 4, "baseline search depth")
	seed := flag.Int64("seed", 1, "baseline seed")
	noHistory := flag.Bool("no-history", false, "skip the persistent ratings history")
	flag.Parse()

	log := logx.New()
	if *enginePath == "" {
		log.Error().Msg("no reference engine: set --engine or STOCKFISH_PATH")
		return 1
	}

	cfg := bot.Config{Name: "expert", Depth: *depth, Mode: search.Enhanced, Seed: *seed}

	var store *ratings.Store
	if !*noHistory {
		dir, err := ratings.DefaultDir()
		if err == nil {
			store, err = ratings.Open(dir)
		}
		if err != nil {
			log.Warn().Err(err).Msg("ratings history unavailable")
			store = nil
		} else {
			defer store.Close()
		}
	}

	for _, level := range levels {
		score, played, err := playLevel(cfg, *enginePath, level.depth, *games)
		if err != nil {
			log.Error().Err(err).Int("ref_depth", level.depth).Msg("level aborted")
			return 1
		}
		frac := score / float64(played)
		elo := estimateElo(float64(level.elo), frac)
		fmt.Printf("ref depth %d (~%d): score %.1f/%d (%.0f%%), estimated Elo %.0f\n",
			level.depth, level.elo, score, played, frac*100, elo)

		if store != nil {
			err := store.Record(ratings.Result{
				When:         time.Now(),
				Baseline:     cfg.String(),
				ReferenceElo: level.elo,
				Games:        played,
				Score:        score,
				EstimatedElo: elo,
			})
			if err != nil {
				log.Warn().Err(err).Msg("could not persist result")
			}
		}
	}
	return 0
}

// estimateElo inverts the expected-score formula. Shutout scores are
// clamped so the logarithm stays finite.
func estimateElo(referenceElo, score float64) float64 {
	const epsilon = 0.01
	if score < epsilon {
		score = epsilon
	}
	if score > 1-epsilon {
		score = 1 - epsilon
	}
	return referenceElo + 400*math.Log10(score/(1-score))
}

// playLevel runs the allotted games against the reference at one depth,
// alternating the baseline's color each game.
func playLevel(cfg bot.Config, enginePath string, refDepth, games int) (float64, int, error) {
	eng, err := uci.NewEngine(enginePath)
	if err != nil {
		return 0, 0, fmt.Errorf("start reference engine: %w", err)
	}
	defer eng.Close()

	if err := eng.SetOptions(uci.Options{Hash: 64, Threads: 1, MultiPV: 1, Ponder: false, OwnBook: false}); err != nil {
		return 0, 0, fmt.Errorf("configure reference engine: %w", err)
	}

	score := 0.0
	played := 0
	for i := 0; i < games; i++ {
		baselineWhite := i%2 == 0
		baseline := bot.NewBaseline(cfg.WithSeed(cfg.Seed + int64(i)))
		result, err := playGame(baseline, eng, refDepth, baselineWhite)
		if err != nil {
			return 0, 0, err
		}
		score += result
		played++
	}
	return score, played, nil
}

// playGame plays one baseline-versus-reference game and returns the
// baseline's points.
func playGame(baseline *bot.Baseline, eng *uci.Engine, refDepth int, baselineWhite bool) (float64, error) {
	g := board.NewGame()
	baselineColor := board.White
	if !baselineWhite {
		baselineColor = board.Black
	}

	plies := 0
	for {
		out := g.Outcome()
		if out.Over() {
			return scoreFor(out, baselineColor), nil
		}
		if plies >= maxPlies {
			return 0.5, nil
		}

		var m board.Move
		if g.SideToMove() == baselineColor {
			var err error
			m, err = baseline.ChooseMove(g)
			if err != nil {
				return 0, err
			}
		} else {
			var err error
			m, err = referenceMove(eng, g, refDepth)
			if err != nil {
				return 0, err
			}
		}
		if err := g.Play(m); err != nil {
			return 0, fmt.Errorf("rejected move %s: %w", m, err)
		}
		plies++
	}
}

// referenceMove asks the engine for its move in the current position.
func referenceMove(eng *uci.Engine, g *board.Game, depth int) (board.Move, error) {
	if err := eng.SetFEN(g.Position().FEN()); err != nil {
		return board.NoMove, fmt.Errorf("set position: %w", err)
	}
	results, err := eng.GoDepth(depth, uci.HighestDepthOnly)
	if err != nil {
		return board.NoMove, fmt.Errorf("reference search: %w", err)
	}
	if len(results.Results) == 0 || len(results.Results[0].BestMoves) == 0 {
		return board.NoMove, fmt.Errorf("reference engine returned no move")
	}
	return board.ParseUCIMove(results.Results[0].BestMoves[0], g.Position())
}

func scoreFor(out board.Outcome, c board.Color) float64 {
	switch {
	case out.Status == board.Checkmate && out.Winner == c:
		return 1.0
	case out.Draw():
		return 0.5
	}
	return 0.0
}
