package ratings

import (
	"os"
	"path/filepath"
)

// DefaultDir returns the per-user directory for the ratings store,
// creating it if needed.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, "chessarena", "ratings")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
