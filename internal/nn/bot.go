package nn

import (
	"fmt"

	"github.com/hailam/chessarena/internal/board"
)

// Evaluator scores a batch of encoded positions. Each input row is one
// EncodingSize vector; the result holds one scalar per row, higher meaning
// better for the side to move in that row's position. Implementations are
// opaque and must be pure functions of their input.
type Evaluator interface {
	Evaluate(batch [][]float32) ([]float32, error)
}

// Scores used for terminal children; outside any network's output range.
const (
	mateValue float32 = 100000
	drawValue float32 = 0
)

// EvalBot plays with a scalar evaluation network at depth one: every legal
// move is applied, the children are scored in a single batched evaluator
// call, and the move leading to the best child (from the mover's view, so
// the negation of the child score) wins. Terminal children never reach the
// network: an immediate checkmate is always chosen and a draw counts zero.
type EvalBot struct {
	eval    Evaluator
	quiesce bool
}

// NewEvalBot builds the depth-1 player. With quiesce set, each child is
// scored by a capture-only quiescence search that uses the network as its
// leaf evaluator instead of a single static call.
func NewEvalBot(eval Evaluator, quiesce bool) *EvalBot {
	return &EvalBot{eval: eval, quiesce: quiesce}
}

// ChooseMove implements the bot capability.
func (b *EvalBot) ChooseMove(g *board.Game) (board.Move, error) {
	legal := g.LegalMoves()
	if len(legal) == 0 {
		return board.NoMove, fmt.Errorf("no legal moves in position %s", g.Position().FEN())
	}

	scores := make([]float32, len(legal))
	pending := make([]int, 0, len(legal)) // indices needing network scores
	children := make([]*board.Game, len(legal))

	for i, m := range legal {
		child := g.Clone()
		if err := child.Play(m); err != nil {
			return board.NoMove, err
		}
		children[i] = child

		switch out := child.Outcome(); {
		case out.Status == board.Checkmate:
			// Mate can only be in the mover's favor; take it immediately.
			return m, nil
		case out.Over():
			scores[i] = drawValue
		default:
			pending = append(pending, i)
		}
	}

	if err := b.scorePending(children, legal, scores, pending); err != nil {
		return board.NoMove, err
	}

	best := 0
	for i := 1; i < len(legal); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return legal[best], nil
}

func (b *EvalBot) scorePending(children []*board.Game, legal []board.Move, scores []float32, pending []int) error {
	if len(pending) == 0 {
		return nil
	}

	if b.quiesce {
		for _, i := range pending {
			v, err := b.quiesceNN(children[i].Position(), -mateValue, mateValue)
			if err != nil {
				return err
			}
			scores[i] = -v
		}
		return nil
	}

	batch := make([][]float32, len(pending))
	for j, i := range pending {
		batch[j] = Encode(children[i].Position())
	}
	out, err := b.eval.Evaluate(batch)
	if err != nil {
		return fmt.Errorf("evaluating batch of %d (first %s): %w",
			len(batch), children[pending[0]].Position().FEN(), err)
	}
	if len(out) != len(batch) {
		return fmt.Errorf("evaluator returned %d scores for batch of %d", len(out), len(batch))
	}
	// The child position is scored from the opponent's point of view, so
	// the parent's score is the negation.
	for j, i := range pending {
		scores[i] = -out[j]
	}
	return nil
}

// quiesceNN is capture-only alpha-beta with the network as the stand-pat
// evaluator, so the depth-1 bot does not stop its comparison in the middle
// of a capture sequence.
func (b *EvalBot) quiesceNN(pos *board.Position, alpha, beta float32) (float32, error) {
	if !pos.HasLegalMove() {
		if pos.InCheck(pos.SideToMove) {
			return -mateValue, nil
		}
		return drawValue, nil
	}
	if pos.HalfMove >= 100 || pos.InsufficientMaterial() {
		return drawValue, nil
	}

	standPat, err := b.evalOne(pos)
	if err != nil {
		return 0, err
	}
	if standPat >= beta {
		return beta, nil
	}
	if standPat > alpha {
		alpha = standPat
	}

	for _, m := range pos.LegalCaptures() {
		undo := pos.MakeMove(m)
		score, err := b.quiesceNN(pos, -beta, -alpha)
		pos.UnmakeMove(undo)
		if err != nil {
			return 0, err
		}
		score = -score
		if score >= beta {
			return beta, nil
		}
		if score > alpha {
			alpha = score
		}
	}
	return alpha, nil
}

func (b *EvalBot) evalOne(pos *board.Position) (float32, error) {
	out, err := b.eval.Evaluate([][]float32{Encode(pos)})
	if err != nil {
		return 0, fmt.Errorf("evaluating %s: %w", pos.FEN(), err)
	}
	if len(out) != 1 {
		return 0, fmt.Errorf("evaluator returned %d scores for one position", len(out))
	}
	return out[0], nil
}
