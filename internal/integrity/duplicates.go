package integrity

import (
	"github.com/aristath/pipeline/internal/dag"
	"github.com/aristath/pipeline/internal/product"
)

// CheckDuplicated fails when more than one task claims the same product.
//
// Products are grouped by value identity after composite decomposition, so a
// file inside one task's composite collides with the same file declared
// standalone by another task. Identity is each variant's own equality rule:
// relative and absolute paths to the same file are distinct, and a relation's
// storage handles are ignored.
//
// The whole graph is traversed before failing; the returned
// *DuplicatedProductsError enumerates every collision, ordered by first
// appearance in task declaration order so repeated calls produce identical
// reports. The graph is validated first, so broken upstream references and
// cycles surface here rather than as confusing duplicate output.
func CheckDuplicated(d *dag.DAG) error {
	if _, err := d.Names(); err != nil {
		return err
	}
	names := d.TaskNames()

	owners := make(map[string][]string)
	leaves := make(map[string]product.Product)
	var seen []string // Key first-appearance order

	for _, name := range names {
		t, ok := d.Task(name)
		if !ok {
			continue
		}
		for _, leaf := range t.Product.Decompose() {
			key := leaf.Key()
			if _, registered := owners[key]; !registered {
				seen = append(seen, key)
				leaves[key] = leaf
			}
			owners[key] = append(owners[key], name)
		}
	}

	var duplicates []Duplicate
	for _, key := range seen {
		if tasks := owners[key]; len(tasks) > 1 {
			duplicates = append(duplicates, Duplicate{Product: leaves[key], Tasks: tasks})
		}
	}

	if len(duplicates) > 0 {
		return &DuplicatedProductsError{Duplicates: duplicates}
	}
	return nil
}
