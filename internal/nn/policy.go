package nn

import (
	"fmt"

	"github.com/hailam/chessarena/internal/board"
)

// PolicySize is the move-logit vector length: 64 from-squares times 64
// to-squares, indexed in the side-to-move-relative frame.
const PolicySize = 64 * 64

// PolicyEvaluator produces move logits for a single encoded position.
type PolicyEvaluator interface {
	Policy(encoded []float32) ([]float32, error)
}

// PolicyBot plays with a policy-head network: the current position is
// encoded once, the network emits a logit per (from, to) pair, illegal
// moves are masked out, and the highest-logit legal move is played.
// Promotions always take a queen; underpromotion logits are not
// representable in the 4096-way head.
type PolicyBot struct {
	policy PolicyEvaluator
}

// NewPolicyBot builds the policy-head player.
func NewPolicyBot(policy PolicyEvaluator) *PolicyBot {
	return &PolicyBot{policy: policy}
}

// ChooseMove implements the bot capability.
func (b *PolicyBot) ChooseMove(g *board.Game) (board.Move, error) {
	legal := g.LegalMoves()
	if len(legal) == 0 {
		return board.NoMove, fmt.Errorf("no legal moves in position %s", g.Position().FEN())
	}

	logits, err := b.policy.Policy(Encode(g.Position()))
	if err != nil {
		return board.NoMove, fmt.Errorf("policy for %s: %w", g.Position().FEN(), err)
	}
	if len(logits) != PolicySize {
		return board.NoMove, fmt.Errorf("policy returned %d logits, want %d", len(logits), PolicySize)
	}

	stm := g.SideToMove()
	best := board.NoMove
	var bestLogit float32
	for _, m := range legal {
		if m.IsPromotion() && m.Promotion() != board.Queen {
			continue // the head cannot express underpromotions
		}
		idx := int(relativeSquare(m.From(), stm))*64 + int(relativeSquare(m.To(), stm))
		if best == board.NoMove || logits[idx] > bestLogit {
			best = m
			bestLogit = logits[idx]
		}
	}
	if best == board.NoMove {
		// Only underpromotions were legal; fall back to the first move.
		best = legal[0]
	}
	return best, nil
}
