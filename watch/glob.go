package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// matcher decides which paths under root are documents to compare.
type matcher struct {
	root     string
	patterns []string
	excludes map[string]bool
}

func newMatcher(root string, patterns, excludeDirs []string) matcher {
	excludes := make(map[string]bool, len(excludeDirs))
	for _, d := range excludeDirs {
		excludes[d] = true
	}
	return matcher{root: root, patterns: patterns, excludes: excludes}
}

// rel returns path relative to root in slash form.
func (m matcher) rel(path string) string {
	rel, err := filepath.Rel(m.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (m matcher) excluded(rel string) bool {
	parts := strings.Split(rel, "/")
	for _, dir := range parts[:len(parts)-1] {
		if m.excludes[dir] || (strings.HasPrefix(dir, ".") && dir != "." && dir != "..") {
			return true
		}
	}
	return false
}

func (m matcher) match(path string) bool {
	rel := m.rel(path)
	if m.excluded(rel) {
		return false
	}
	for _, p := range m.patterns {
		target := rel
		if filepath.IsAbs(p) {
			target = filepath.ToSlash(path)
			p = filepath.ToSlash(p)
		}
		if ok, _ := doublestar.Match(p, target); ok {
			return true
		}
	}
	return false
}

// Expand resolves doublestar patterns to existing files. Relative patterns are
// resolved under root; absolute ones as given. Results are sorted and unique,
// and files inside excluded directories are dropped.
func Expand(root string, patterns, excludeDirs []string) ([]string, error) {
	m := newMatcher(root, patterns, excludeDirs)
	seen := make(map[string]bool)
	var out []string
	for _, p := range patterns {
		if !doublestar.ValidatePattern(filepath.ToSlash(p)) {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, doublestar.ErrBadPattern)
		}
		var matches []string
		if filepath.IsAbs(p) {
			found, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("glob %q: %w", p, err)
			}
			matches = found
		} else {
			found, err := doublestar.Glob(os.DirFS(root), filepath.ToSlash(p), doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("glob %q: %w", p, err)
			}
			for _, f := range found {
				matches = append(matches, filepath.Join(root, filepath.FromSlash(f)))
			}
		}
		for _, f := range matches {
			if seen[f] || m.excluded(m.rel(f)) {
				continue
			}
			seen[f] = true
			out = append(out, f)
		}
	}
	slices.Sort(out)
	return out, nil
}
