// Package fileset picks the canonical rendering of a field among the
// variants a visualization export writes for it (raw, normalized,
// per-component, per-plane).
package fileset

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// NormTerm marks the normalized variant of a vector field, which is the
// canonical one when several renderings exist.
const NormTerm = "norm"

// Options narrows a candidate set. All matches are substring matches on the
// file's base name.
type Options struct {
	// ExcludeTerms drops every candidate containing any of the terms.
	ExcludeTerms []string
	// IncludeTerm keeps only candidates containing it and ends selection.
	IncludeTerm string
	// UniqueTerm keeps only candidates containing it and ends selection.
	UniqueTerm string
}

// Select reduces files according to opts. Lists of zero or one element are
// returned unchanged. Select never fails; an over- or under-constrained
// filter yields zero or several paths and the caller checks the count.
func Select(files []string, opts Options) []string {
	if len(files) <= 1 {
		return files
	}

	candidates := files
	if len(opts.ExcludeTerms) > 0 {
		candidates = filter(candidates, func(name string) bool {
			for _, term := range opts.ExcludeTerms {
				if term != "" && strings.Contains(name, term) {
					return false
				}
			}
			return true
		})
	}

	if opts.IncludeTerm != "" {
		return filter(candidates, containing(opts.IncludeTerm))
	}

	if opts.UniqueTerm != "" {
		return filter(candidates, containing(opts.UniqueTerm))
	}

	if len(candidates) > 1 {
		if norm := filter(candidates, containing(NormTerm)); len(norm) > 0 {
			return norm
		}
	}
	return candidates
}

// Glob lists the files in dir whose name starts with field and ends with
// ext, sorted. Unreadable directories give an empty list.
func Glob(dir, field, ext string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return []string{}
	}
	ext = "." + strings.TrimPrefix(ext, ".")

	matches := []string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, field) && strings.HasSuffix(name, ext) {
			matches = append(matches, filepath.Join(dir, name))
		}
	}
	sort.Strings(matches)
	return matches
}

func containing(term string) func(string) bool {
	return func(name string) bool {
		return strings.Contains(name, term)
	}
}

func filter(files []string, keep func(name string) bool) []string {
	out := []string{}
	for _, f := range files {
		if keep(filepath.Base(f)) {
			out = append(out, f)
		}
	}
	return out
}
