package buildpipeline

import (
	"path/filepath"
	"sort"
	"strings"
)

// DisplayFiles returns the names BuildAll uses in progress events for paths,
// so a progress UI can list them before the first event arrives.
func DisplayFiles(paths []string, baseDir string) []string {
	_, display := dedupInputs(paths, baseDir)
	return display
}

// dedupInputs drops duplicate inputs and sorts them by display name. It
// returns the paths to open and the names to show, index-aligned.
func dedupInputs(files []string, baseDir string) (paths, display []string) {
	if len(files) == 0 {
		return nil, nil
	}
	type entry struct{ path, name string }
	entries := make([]entry, 0, len(files))
	seen := make(map[string]struct{}, len(files))

	base := strings.TrimSpace(baseDir)
	if base != "" {
		if abs, err := filepath.Abs(base); err == nil {
			base = abs
		}
	}

	for _, file := range files {
		if file == "" {
			continue
		}
		name := filepath.Clean(file)
		key := name
		if abs, err := filepath.Abs(name); err == nil {
			key = abs
			if base != "" {
				if rel, err := filepath.Rel(base, abs); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
					name = rel
				}
			}
		}
		name = filepath.ToSlash(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		entries = append(entries, entry{path: file, name: name})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
	paths = make([]string, len(entries))
	display = make([]string, len(entries))
	for i, e := range entries {
		paths[i], display[i] = e.path, e.name
	}
	return paths, display
}
