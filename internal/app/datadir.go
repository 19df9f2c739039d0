package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/buildasaur/buildasaur/internal/versions"
)

const dataVersionFile = "VERSION"

// prepareDataDir creates dir and stamps it with the running version. The stamp
// of a newer release is left in place and only logged.
func prepareDataDir(dir, running string, logger *slog.Logger) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, dataVersionFile)
	data, err := os.ReadFile(filepath.Clean(path))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("failed to read %s: %w", path, err)
	default:
		stored := strings.TrimSpace(string(data))
		if versions.IsNewerVersion(stored, running) {
			logger.Warn("Data directory was written by a newer buildasaur",
				"data_dir", dir, "written_by", stored, "running", running)
			return nil
		}
		if stored == running {
			return nil
		}
	}

	if err := os.WriteFile(path, []byte(running+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
