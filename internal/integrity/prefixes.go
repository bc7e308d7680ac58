package integrity

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/aristath/pipeline/internal/dag"
)

// ExtractPrefixes returns the sorted, deduplicated set of containing
// directories of all file-backed products, relative to baseDir (the current
// directory when empty). Composite products contribute their file children.
//
// Relative product paths are taken as already relative to the base. Absolute
// paths must fall under the resolved base directory; one that does not is a
// *PathResolutionError, never silently resolved. A product sitting directly
// under the base contributes ".".
func ExtractPrefixes(d *dag.DAG, baseDir string) ([]string, error) {
	products, err := d.Products()
	if err != nil {
		return nil, err
	}

	base, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, err
	}

	prefixes := make(map[string]struct{})
	for _, f := range Flatten(products, false) {
		path := f.Path
		if filepath.IsAbs(path) {
			rel, err := filepath.Rel(base, path)
			// Rel happily produces "../.." escapes; those are outside
			// the base subtree and must be rejected.
			if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				return nil, &PathResolutionError{Path: path, BaseDir: base}
			}
			path = rel
		}
		prefixes[filepath.Dir(path)] = struct{}{}
	}

	out := make([]string, 0, len(prefixes))
	for p := range prefixes {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}
