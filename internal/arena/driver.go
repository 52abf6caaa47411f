package arena

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/hailam/chessarena/internal/board"
	"github.com/hailam/chessarena/internal/bot"
)

// MaxPlies is the hard per-game length cap; a game that reaches it is
// adjudicated as a draw.
const MaxPlies = 500

// ResultMode selects how the aggregate pass/fail verdict is computed.
type ResultMode uint8

const (
	// ModeThreshold passes when score/games reaches the threshold.
	ModeThreshold ResultMode = iota
	// ModeFleet passes when every opponent is beaten MinWins times
	// outright; draws do not count.
	ModeFleet
	// ModeLadder walks opponents in difficulty order, stops playing at
	// the first level that is not cleared, and passes only when every
	// level fell.
	ModeLadder
)

// Opponent is one baseline configuration in the roster.
type Opponent struct {
	Config  bot.Config
	MinWins int // outright wins required in fleet and ladder modes
}

// Options configures a competition run.
type Options struct {
	GamesPerOpponent int // total games per opponent; rounded up to pairs
	Seed             int64
	Mode             ResultMode
	Threshold        float64  // threshold mode pass mark, e.g. 0.70
	Parallel         int      // concurrent games; 1 = sequential
	GameLog          *GameLog // optional move log, may be nil
}

// GameRecord is the outcome of a single game.
type GameRecord struct {
	Index    int
	Opponent string
	Opening  string
	NNColor  board.Color
	Outcome  board.Outcome
	Plies    int
	NNMoves  []string
	Score    float64 // NN points: 1, 0.5, or 0
}

// OpponentTally aggregates one opponent's games.
type OpponentTally struct {
	Name                string
	Wins, Draws, Losses int
	Score               float64
	Games               int
	Cleared             bool
}

// Report is the full competition result.
type Report struct {
	Records   []GameRecord
	Tallies   []OpponentTally
	Score     float64
	Games     int
	Passed    bool
	Diversity *Diversity
}

// Run plays the full schedule. The NN bot is shared across games (its
// evaluator serializes itself); every baseline is rebuilt per game with a
// seed derived from the master seed and the game index, so a run is fully
// reproducible regardless of parallelism.
func Run(nnBot bot.Bot, opponents []Opponent, openings []string, opts Options) (*Report, error) {
	if opts.GamesPerOpponent < 2 {
		opts.GamesPerOpponent = 2
	}
	if opts.Parallel < 1 {
		opts.Parallel = 1
	}

	report := &Report{Diversity: NewDiversity()}
	nextIndex := 0

	for _, opp := range opponents {
		records, err := runOpponent(nnBot, opp, openings, opts, nextIndex)
		if err != nil {
			return nil, err
		}
		nextIndex += len(records)

		tally := OpponentTally{Name: opp.Config.Name}
		for _, r := range records {
			report.Records = append(report.Records, r)
			report.Score += r.Score
			report.Games++
			report.Diversity.Record(r.NNMoves)
			tally.Games++
			tally.Score += r.Score
			switch r.Score {
			case 1.0:
				tally.Wins++
			case 0.5:
				tally.Draws++
			default:
				tally.Losses++
			}
			if opts.GameLog != nil {
				if err := opts.GameLog.Write(r); err != nil {
					return nil, fmt.Errorf("game log: %w", err)
				}
			}
		}
		tally.Cleared = tally.Wins >= opp.MinWins
		report.Tallies = append(report.Tallies, tally)

		if opts.Mode == ModeLadder && !tally.Cleared {
			break
		}
	}

	switch opts.Mode {
	case ModeFleet, ModeLadder:
		report.Passed = len(report.Tallies) == len(opponents)
		for _, t := range report.Tallies {
			if !t.Cleared {
				report.Passed = false
			}
		}
	default:
		report.Passed = report.Games > 0 &&
			report.Score/float64(report.Games) >= opts.Threshold
	}

	return report, nil
}

// runOpponent plays one opponent's allotment: for each opening in turn, a
// game with the NN as White and one with the NN as Black.
func runOpponent(nnBot bot.Bot, opp Opponent, openings []string, opts Options, baseIndex int) ([]GameRecord, error) {
	pairs := (opts.GamesPerOpponent + 1) / 2

	type job struct {
		slot    int
		opening string
		nnColor board.Color
	}
	schedule := make([]job, 0, pairs*2)
	for pair := 0; pair < pairs; pair++ {
		opening := openings[pair%len(openings)]
		schedule = append(schedule,
			job{slot: len(schedule), opening: opening, nnColor: board.White},
			job{slot: len(schedule) + 1, opening: opening, nnColor: board.Black})
	}

	records := make([]GameRecord, len(schedule))
	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(opts.Parallel)
	for _, sp := range schedule {
		sp := sp
		g.Go(func() error {
			index := baseIndex + sp.slot
			baseline := bot.NewBaseline(opp.Config.WithSeed(gameSeed(opts.Seed, index)))

			white, black := nnBot, bot.Bot(baseline)
			if sp.nnColor == board.Black {
				white, black = baseline, nnBot
			}
			outcome, plies, nnMoves, err := playGame(white, black, sp.opening, sp.nnColor)
			if err != nil {
				return fmt.Errorf("game %d vs %s: %w", index+1, opp.Config.Name, err)
			}
			records[sp.slot] = GameRecord{
				Index:    index,
				Opponent: opp.Config.Name,
				Opening:  sp.opening,
				NNColor:  sp.nnColor,
				Outcome:  outcome,
				Plies:    plies,
				NNMoves:  nnMoves,
				Score:    scoreFor(outcome, sp.nnColor),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// gameSeed spreads the master seed across game indexes. The multiplier is
// a 64-bit odd constant, so neighboring games get unrelated baseline RNG
// streams.
func gameSeed(master int64, index int) int64 {
	return master + int64(index+1)*-0x61C8864680B583EB
}

func scoreFor(outcome board.Outcome, nnColor board.Color) float64 {
	switch {
	case outcome.Status == board.Checkmate && outcome.Winner == nnColor:
		return 1.0
	case outcome.Draw():
		return 0.5
	}
	return 0.0
}

// playGame runs one game to completion or the ply cap.
func playGame(white, black bot.Bot, opening string, nnColor board.Color) (board.Outcome, int, []string, error) {
	g, err := board.GameFromFEN(opening)
	if err != nil {
		return board.Outcome{}, 0, nil, err
	}

	plies := 0
	var nnMoves []string
	for {
		out := g.Outcome()
		if out.Over() {
			return out, plies, nnMoves, nil
		}
		if plies >= MaxPlies {
			return board.Outcome{Status: board.DrawByAdjudication}, plies, nnMoves, nil
		}

		mover := white
		if g.SideToMove() == board.Black {
			mover = black
		}
		m, err := mover.ChooseMove(g)
		if err != nil {
			return board.Outcome{}, plies, nnMoves, err
		}
		if g.SideToMove() == nnColor {
			nnMoves = append(nnMoves, m.String())
		}
		if err := g.Play(m); err != nil {
			// A bot handed back a move the game rejects. The NN cannot do
			// this by construction; adjudicate against the offender.
			winner := g.SideToMove().Other()
			return board.Outcome{Status: board.Checkmate, Winner: winner}, plies, nnMoves, nil
		}
		plies++
	}
}

// HighestClearedLevel returns the number of consecutive cleared opponents
// from the start of the roster; meaningful in ladder mode.
func (r *Report) HighestClearedLevel() int {
	level := 0
	for _, t := range r.Tallies {
		if !t.Cleared {
			break
		}
		level++
	}
	return level
}

// Print writes the per-game lines and summary block in the harness's
// stable output format.
func (r *Report) Print(w io.Writer) {
	for _, rec := range r.Records {
		result := "DRAW"
		switch rec.Score {
		case 1.0:
			result = "WIN"
		case 0.0:
			result = "LOSS"
		}
		fmt.Fprintf(w, "Game %d/%d NN=%s %s (%d)\n",
			rec.Index+1, len(r.Records), rec.NNColor, result, rec.Plies)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Summary ===")
	for _, t := range r.Tallies {
		fmt.Fprintf(w, "%-24s %dW/%dD/%dL  %.1f/%d\n",
			t.Name, t.Wins, t.Draws, t.Losses, t.Score, t.Games)
	}
	r.Diversity.Print(w)
	if r.Games > 0 {
		fmt.Fprintf(w, "Total: %.1f/%d (%.1f%%)\n",
			r.Score, r.Games, 100*r.Score/float64(r.Games))
	}
	if r.Passed {
		fmt.Fprintln(w, "Result: PASS")
	} else {
		fmt.Fprintln(w, "Result: FAIL")
	}
}
