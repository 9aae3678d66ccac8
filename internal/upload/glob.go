package upload

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Expand resolves file arguments for batch analysis. Plain paths pass
// through unchanged; arguments containing glob metacharacters are expanded
// with ** support. Only files with an accepted extension are returned from
// globs, in sorted order without duplicates.
func Expand(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string

	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, arg := range args {
		if !hasMeta(arg) {
			add(arg)
			continue
		}

		base, pattern := doublestar.SplitPattern(filepath.ToSlash(arg))
		matches, err := doublestar.Glob(os.DirFS(base), pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", arg, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if _, ok := byExtension[strings.ToLower(filepath.Ext(m))]; !ok {
				continue
			}
			add(filepath.Join(base, filepath.FromSlash(m)))
		}
	}
	return out, nil
}

func hasMeta(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}
