package arena

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// GameLog persists one line per game, zstd-compressed, for offline
// analysis of a run. The format is tab-separated:
// index, opponent, NN color, status, plies, opening FEN, NN moves.
type GameLog struct {
	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
}

// NewGameLog creates (or truncates) a compressed game log at path.
func NewGameLog(path string) (*GameLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create game log: %w", err)
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	return &GameLog{f: f, enc: enc}, nil
}

// Write appends one game record.
func (l *GameLog) Write(r GameRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	line := fmt.Sprintf("%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
		r.Index+1, r.Opponent, r.NNColor, r.Outcome.Status, r.Plies,
		r.Opening, strings.Join(r.NNMoves, " "))
	_, err := l.enc.Write([]byte(line))
	return err
}

// Close flushes the compressed stream and closes the file.
func (l *GameLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enc.Close(); err != nil {
		l.f.Close()
		return err
	}
	return l.f.Close()
}
