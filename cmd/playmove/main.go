// playmove makes a single bot move for a given position and prints the
// result as JSON. Front-ends shell out to this to drive human-vs-bot play
// without linking the engine.
//
// Usage:
//
//	playmove --model <model.onnx> <fen>
//	playmove --baseline <fen>
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/hailam/chessarena/internal/board"
	"github.com/hailam/chessarena/internal/bot"
	"github.com/hailam/chessarena/internal/nn"
	"github.com/hailam/chessarena/internal/onnx"
	"github.com/hailam/chessarena/internal/search"
)

type response struct {
	UCI      *string `json:"uci"`
	FEN      string  `json:"fen"`
	GameOver bool    `json:"gameOver"`
	Outcome  *string `json:"outcome"`
}

func main() {
	os.Exit(run())
}

func run() int {
	modelPath := flag.String("model", "", "ONNX model to play with")
	useBaseline := flag.Bool("baseline", false, "play with the expert baseline instead of a model")
	depth := flag.Int("depth", 4, "baseline search depth")
	seed := flag.Int64("seed", 1, "baseline seed")
	maxParams := flag.Uint64("max-params", 10_000_000, "model parameter cap")
	flag.Parse()

	if flag.NArg() != 1 || (*modelPath == "" && !*useBaseline) {
		fmt.Fprintln(os.Stderr, "Usage: playmove --model <model.onnx> <fen>")
		fmt.Fprintln(os.Stderr, "       playmove --baseline <fen>")
		return 1
	}

	g, err := board.GameFromFEN(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid FEN: %v\n", err)
		return 1
	}

	if out := g.Outcome(); out.Over() {
		return emit(nil, g, out)
	}

	var player bot.Bot
	if *useBaseline {
		player = bot.NewBaseline(bot.Config{Name: "expert", Depth: *depth, Mode: search.Enhanced, Seed: *seed})
	} else {
		session, err := onnx.Load(*modelPath, *maxParams)
		if err != nil {
			fmt.Fprintf(os.Stderr, "model rejected: %v\n", err)
			return 1
		}
		defer session.Close()
		if session.OutputDim() == nn.PolicySize {
			player = nn.NewPolicyBot(session)
		} else {
			player = nn.NewEvalBot(session, true)
		}
	}

	m, err := player.ChooseMove(g)
	if err != nil {
		fmt.Fprintf(os.Stderr, "choose move: %v\n", err)
		return 1
	}
	if err := g.Play(m); err != nil {
		fmt.Fprintf(os.Stderr, "apply move %s: %v\n", m, err)
		return 1
	}
	uci := m.String()
	return emit(&uci, g, g.Outcome())
}

func emit(uci *string, g *board.Game, out board.Outcome) int {
	resp := response{
		UCI:      uci,
		FEN:      g.Position().FEN(),
		GameOver: out.Over(),
	}
	if out.Over() {
		s := out.String()
		resp.Outcome = &s
	}
	data, err := json.Marshal(resp)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(string(data))
	return 0
}
