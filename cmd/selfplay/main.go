// selfplay pits baseline configurations against each other: a depth
// ladder for sanity-checking that deeper search actually wins, and an
// enhanced-versus-classic match for judging what the search upgrades are
// worth.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hailam/chessarena/internal/arena"
	"github.com/hailam/chessarena/internal/board"
	"github.com/hailam/chessarena/internal/bot"
	"github.com/hailam/chessarena/internal/logx"
	"github.com/hailam/chessarena/internal/search"
)

func main() {
	os.Exit(run())
}

func run() int {
	openingsPath := flag.String("openings", "data/openings.txt", "opening book")
	games := flag.Int("games", 20, "games per pairing (paired colors)")
	seed := flag.Int64("seed", 1, "master seed")
	flag.Parse()

	log := logx.New()
	openings, err := arena.LoadOpenings(*openingsPath)
	if err != nil {
		log.Error().Err(err).Msg("opening book rejected")
		return 1
	}

	pairings := []struct {
		name string
		a, b bot.Config
	}{
		{
			name: "depth 2 vs depth 3 (classic)",
			a:    bot.Config{Name: "classic-d2", Depth: 2, Mode: search.Classic},
			b:    bot.Config{Name: "classic-d3", Depth: 3, Mode: search.Classic},
		},
		{
			name: "depth 3 vs depth 4 (classic)",
			a:    bot.Config{Name: "classic-d3", Depth: 3, Mode: search.Classic},
			b:    bot.Config{Name: "classic-d4", Depth: 4, Mode: search.Classic},
		},
		{
			name: "classic vs enhanced (depth 4)",
			a:    bot.Config{Name: "classic-d4", Depth: 4, Mode: search.Classic},
			b:    bot.Config{Name: "enhanced-d4", Depth: 4, Mode: search.Enhanced},
		},
	}

	for _, p := range pairings {
		scoreA, played := runPairing(p.a, p.b, openings, *games, *seed)
		fmt.Printf("%-32s %s scored %.1f/%d (%.0f%%)\n",
			p.name, p.a.Name, scoreA, played, 100*scoreA/float64(played))
	}
	return 0
}

// runPairing plays a-versus-b with alternating colors and returns a's
// score.
func runPairing(a, b bot.Config, openings []string, games int, seed int64) (float64, int) {
	pairs := (games + 1) / 2
	score := 0.0
	played := 0
	for pair := 0; pair < pairs; pair++ {
		opening := openings[pair%len(openings)]
		for _, aWhite := range []bool{true, false} {
			idx := int64(played)
			botA := bot.NewBaseline(a.WithSeed(seed + idx*2))
			botB := bot.NewBaseline(b.WithSeed(seed + idx*2 + 1))

			aColor := board.White
			white, black := bot.Bot(botA), bot.Bot(botB)
			if !aWhite {
				aColor = board.Black
				white, black = botB, botA
			}
			out := playGame(white, black, opening)
			switch {
			case out.Status == board.Checkmate && out.Winner == aColor:
				score += 1.0
			case out.Draw():
				score += 0.5
			}
			played++
		}
	}
	return score, played
}

func playGame(white, black bot.Bot, opening string) board.Outcome {
	g, err := board.GameFromFEN(opening)
	if err != nil {
		return board.Outcome{Status: board.DrawByAdjudication}
	}
	plies := 0
	for {
		out := g.Outcome()
		if out.Over() {
			return out
		}
		if plies >= arena.MaxPlies {
			return board.Outcome{Status: board.DrawByAdjudication}
		}
		mover := white
		if g.SideToMove() == board.Black {
			mover = black
		}
		m, err := mover.ChooseMove(g)
		if err != nil {
			return board.Outcome{Status: board.Checkmate, Winner: g.SideToMove().Other()}
		}
		if err := g.Play(m); err != nil {
			return board.Outcome{Status: board.Checkmate, Winner: g.SideToMove().Other()}
		}
		plies++
	}
}
