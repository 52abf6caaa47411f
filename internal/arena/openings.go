// Package arena runs the competition: it schedules paired-color games over
// an opening book, plays them to completion, and scores the NN player
// against one or more baseline opponents.
package arena

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/hailam/chessarena/internal/board"
)

// LoadOpenings reads an opening book: one FEN per line, with blank lines
// and '#' comments skipped. Every position is parsed so a malformed book
// fails at startup with the offending line number.
func LoadOpenings(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open book: %w", err)
	}
	defer f.Close()

	var fens []string
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, err := board.GameFromFEN(line); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		fens = append(fens, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read book: %w", err)
	}
	if len(fens) == 0 {
		return nil, fmt.Errorf("%s: no openings found", path)
	}
	return fens, nil
}
