package profile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/inference-sim/headweight/weights"
)

// Pattern matches report files written by the head profiler.
const Pattern = "head_profile_*.json"

// DefaultDir is where the head profiler writes its reports.
const DefaultDir = "hydra_profiles"

// Locate returns the most recently modified report in dir.
// Ties on modification time are broken by the lexically greatest name, which
// for head_profile_<unix>.json is also the newest.
func Locate(dir string) (string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: profile directory %s does not exist", weights.ErrInputNotFound, dir)
		}
		return "", fmt.Errorf("reading profile directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", weights.ErrInputNotFound, dir)
	}

	matches, err := filepath.Glob(filepath.Join(dir, Pattern))
	if err != nil {
		return "", fmt.Errorf("matching %s in %s: %w", Pattern, dir, err)
	}

	type candidate struct {
		path string
		mod  int64
	}
	candidates := make([]candidate, 0, len(matches))
	for _, m := range matches {
		fi, err := os.Stat(m)
		if err != nil || fi.IsDir() {
			continue
		}
		candidates = append(candidates, candidate{path: m, mod: fi.ModTime().UnixNano()})
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: no %s files in %s", weights.ErrInputNotFound, Pattern, dir)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].mod != candidates[j].mod {
			return candidates[i].mod > candidates[j].mod
		}
		return candidates[i].path > candidates[j].path
	})
	return candidates[0].path, nil
}

// Matches reports whether path names a profiler report file.
func Matches(path string) bool {
	ok, err := filepath.Match(Pattern, filepath.Base(path))
	return err == nil && ok
}
