package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"polyguard/internal/corpus"
)

// Discover returns the fixture inputs under each directory, recursively.
// Paths are sorted within a directory argument; arguments keep their order.
// A plain .in file may be passed instead of a directory.
func Discover(dirs ...string) ([]string, error) {
	var all []string
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("discover fixtures: %w", err)
		}
		if !info.IsDir() {
			if !strings.HasSuffix(dir, corpus.InputExt) {
				return nil, fmt.Errorf("discover fixtures: %s is not a %s file", dir, corpus.InputExt)
			}
			all = append(all, dir)
			continue
		}

		var found []string
		err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(d.Name(), corpus.InputExt) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("discover fixtures in %s: %w", dir, err)
		}
		sort.Strings(found)
		all = append(all, found...)
	}
	return all, nil
}
