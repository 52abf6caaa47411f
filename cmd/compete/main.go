// compete pits an ONNX evaluation network against the baseline roster and
// exits 0 on a pass, 1 on a fail.
//
// Usage:
//
//	compete <model.onnx> [flags]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hailam/chessarena/internal/arena"
	"github.com/hailam/chessarena/internal/bot"
	"github.com/hailam/chessarena/internal/logx"
	"github.com/hailam/chessarena/internal/nn"
	"github.com/hailam/chessarena/internal/onnx"
	"github.com/hailam/chessarena/internal/search"
)

const defaultMaxParams = 10_000_000

// ladder is the roster in difficulty order. Level 1 blunders constantly at
// depth 1; level 5 is the expert baseline the threshold mode runs against.
var ladder = []arena.Opponent{
	{Config: bot.Config{Name: "level1-novice", Depth: 1, Mode: search.Classic, WindowCP: 150, BlunderRate: 0.25, SimpleEval: true}, MinWins: 1},
	{Config: bot.Config{Name: "level2-casual", Depth: 2, Mode: search.Classic, WindowCP: 80, BlunderRate: 0.10, SimpleEval: true}, MinWins: 1},
	{Config: bot.Config{Name: "level3-club", Depth: 3, Mode: search.Classic, WindowCP: 30, BlunderRate: 0.03}, MinWins: 1},
	{Config: bot.Config{Name: "level4-strong", Depth: 3, Mode: search.Enhanced, WindowCP: 10}, MinWins: 1},
	{Config: bot.Config{Name: "level5-expert", Depth: 4, Mode: search.Enhanced}, MinWins: 1},
}

func main() {
	os.Exit(run())
}

func run() int {
	fs := flag.NewFlagSet("compete", flag.ExitOnError)
	openingsPath := fs.String("openings", "data/openings.txt", "opening book, one FEN per line")
	gamesPerOpponent := fs.Int("games-per-opponent", 50, "games per opponent (paired colors)")
	level := fs.Int("level", 0, "highest ladder level to play (0 = expert threshold run)")
	fleet := fs.Bool("fleet", false, "play the whole roster; pass needs min-wins outright wins against each")
	minWins := fs.Int("min-wins", 1, "outright wins required per opponent in fleet mode")
	seed := fs.Int64("seed", 1, "master seed for baseline randomness")
	maxParams := fs.Uint64("max-params", defaultMaxParams, "model parameter cap")
	threshold := fs.Float64("threshold", 0.70, "pass mark for the threshold mode")
	parallel := fs.Int("parallel", 1, "concurrent games")
	saveGames := fs.String("save-games", "", "write a zstd-compressed game log to this path")
	quiesce := fs.Bool("quiesce", true, "score eval-model children with NN quiescence")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: compete <model.onnx> [flags]")
		fs.PrintDefaults()
	}
	fs.Parse(os.Args[1:])

	if fs.NArg() < 1 {
		fs.Usage()
		return 1
	}
	modelPath := fs.Arg(0)
	// Parsing stops at the first positional argument; parse what follows
	// the model path so flags may come after it, as the usage line shows.
	fs.Parse(fs.Args()[1:])
	if fs.NArg() != 0 {
		fs.Usage()
		return 1
	}
	log := logx.New()

	session, err := onnx.Load(modelPath, *maxParams)
	if err != nil {
		log.Error().Err(err).Str("model", modelPath).Msg("model rejected")
		return 1
	}
	defer session.Close()
	log.Info().
		Str("model", modelPath).
		Uint64("parameters", session.ParamCount()).
		Int("output_width", session.OutputDim()).
		Msg("model loaded")

	var player bot.Bot
	switch session.OutputDim() {
	case 1:
		player = nn.NewEvalBot(session, *quiesce)
	case nn.PolicySize:
		player = nn.NewPolicyBot(session)
	default:
		log.Error().Int("output_width", session.OutputDim()).
			Msg("model rejected: output must be [N,1] eval or [N,4096] policy")
		return 1
	}

	openings, err := arena.LoadOpenings(*openingsPath)
	if err != nil {
		log.Error().Err(err).Msg("opening book rejected")
		return 1
	}
	log.Info().Int("openings", len(openings)).Str("book", *openingsPath).Msg("book loaded")

	opts := arena.Options{
		GamesPerOpponent: *gamesPerOpponent,
		Seed:             *seed,
		Threshold:        *threshold,
		Parallel:         *parallel,
	}
	var opponents []arena.Opponent
	switch {
	case *fleet:
		opts.Mode = arena.ModeFleet
		opponents = append(opponents, ladder...)
		for i := range opponents {
			opponents[i].MinWins = *minWins
		}
	case *level > 0:
		if *level > len(ladder) {
			*level = len(ladder)
		}
		opts.Mode = arena.ModeLadder
		opponents = ladder[:*level]
	default:
		opts.Mode = arena.ModeThreshold
		opponents = ladder[len(ladder)-1:]
	}
	for _, opp := range opponents {
		log.Info().Str("opponent", opp.Config.String()).Msg("scheduled")
	}

	if *saveGames != "" {
		gameLog, err := arena.NewGameLog(*saveGames)
		if err != nil {
			log.Error().Err(err).Msg("game log")
			return 1
		}
		defer gameLog.Close()
		opts.GameLog = gameLog
	}

	report, err := arena.Run(player, opponents, openings, opts)
	if err != nil {
		log.Error().Err(err).Msg("competition aborted")
		return 1
	}
	report.Print(os.Stdout)

	if opts.Mode == arena.ModeLadder {
		fmt.Printf("Highest level cleared: %d\n", report.HighestClearedLevel())
	}
	if report.Passed {
		return 0
	}
	return 1
}
