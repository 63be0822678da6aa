package exifload

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"eventsort/internal/logging"
	"eventsort/internal/services"
)

// Discover returns every regular file below root in lexical order. Hidden
// files and directories are skipped, as are the directories listed in exclude
// (typically the target root when it lives inside the source tree).
// Unreadable subdirectories are logged and skipped.
func Discover(root string, exclude []string, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "discover", "stat source", root, err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrValidation, "discover", "stat source", root+" is not a directory", nil)
	}

	skip := make(map[string]struct{}, len(exclude))
	for _, dir := range exclude {
		if dir = strings.TrimSpace(dir); dir == "" {
			continue
		}
		if abs, err := filepath.Abs(dir); err == nil {
			skip[abs] = struct{}{}
		}
	}

	var files []string
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logging.WarnWithContext(logger, "source entry unreadable; skipping", "discover_unreadable",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions on the source tree"),
				logging.String(logging.FieldImpact, "files below this path are not sorted"),
			)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if abs, err := filepath.Abs(path); err == nil {
				if _, excluded := skip[abs]; excluded {
					logger.Debug("skipping excluded directory", logging.String("path", path))
					return fs.SkipDir
				}
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if walkErr != nil && !errors.Is(walkErr, fs.SkipDir) {
		return nil, services.Wrap(services.ErrFilesystem, "discover", "walk source", root, walkErr)
	}
	return files, nil
}
