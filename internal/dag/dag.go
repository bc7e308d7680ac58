// Package dag models the task graph this layer inspects: named tasks, each
// owning exactly one product, with upstream dependencies defining execution
// order. Construction and execution of the graph belong to the surrounding
// runner; this package only provides ordered traversal and indexed lookup.
package dag

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gammazero/toposort"

	"github.com/aristath/pipeline/internal/product"
)

// Task is a named node in the DAG. Its identity is its name; it owns exactly
// one product, possibly composite.
type Task struct {
	Name     string
	Product  product.Product
	Upstream []string // Names of tasks this task depends on
}

// DAG is a directed acyclic graph of tasks. All operations are
// concurrency-safe.
type DAG struct {
	mu    sync.RWMutex
	tasks map[string]*Task
	added []string // Insertion order, used as the deterministic tie-break
	order []string // Cached topological order, invalidated on Add
}

// New creates an empty DAG.
func New() *DAG {
	return &DAG{
		tasks: make(map[string]*Task),
	}
}

// Add inserts a task. Returns an error if the name is already taken or the
// task owns no product.
func (d *DAG) Add(t *Task) error {
	if t.Name == "" {
		return fmt.Errorf("task name must not be empty")
	}
	if t.Product == nil {
		return fmt.Errorf("task %q must own a product", t.Name)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.tasks[t.Name]; exists {
		return fmt.Errorf("task %q already exists", t.Name)
	}

	d.tasks[t.Name] = t
	d.added = append(d.added, t.Name)
	d.order = nil
	return nil
}

// Task returns the task with the given name.
func (d *DAG) Task(name string) (*Task, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	t, ok := d.tasks[name]
	return t, ok
}

// Len returns the number of tasks.
func (d *DAG) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.tasks)
}

// Names returns all task names in topological order. The order is computed
// once and cached until the next Add, so repeated traversals over an
// unmodified DAG are identical. Returns an error for unknown upstream
// references or cycles.
func (d *DAG) Names() ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.order != nil {
		return d.order, nil
	}

	// Verify all upstream references exist before sorting.
	for _, name := range d.added {
		for _, up := range d.tasks[name].Upstream {
			if _, ok := d.tasks[up]; !ok {
				return nil, fmt.Errorf("task %q depends on non-existent task %q", name, up)
			}
		}
	}

	// Build edges in insertion order so the sort input is deterministic.
	var edges []toposort.Edge
	for _, name := range d.added {
		t := d.tasks[name]
		if len(t.Upstream) == 0 {
			// Edge from nil ensures isolated tasks appear in the result.
			edges = append(edges, toposort.Edge{nil, name})
		} else {
			for _, up := range t.Upstream {
				edges = append(edges, toposort.Edge{up, name})
			}
		}
	}

	sorted, err := toposort.Toposort(edges)
	if err != nil {
		return nil, fmt.Errorf("DAG contains cycle: %w", err)
	}

	order := make([]string, 0, len(d.tasks))
	for _, id := range sorted {
		if id != nil {
			order = append(order, id.(string))
		}
	}

	if len(order) != len(d.tasks) {
		var missing []string
		found := make(map[string]bool, len(order))
		for _, name := range order {
			found[name] = true
		}
		for _, name := range d.added {
			if !found[name] {
				missing = append(missing, name)
			}
		}
		return nil, fmt.Errorf("topological sort lost %d tasks: %s", len(missing), strings.Join(missing, ", "))
	}

	d.order = order
	return order, nil
}

// TaskNames returns all task names in declaration order, without validating
// edges. Callers needing a stable order that does not depend on topological
// tie-breaking use this.
func (d *DAG) TaskNames() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, len(d.added))
	copy(names, d.added)
	return names
}

// Products returns every task's product in traversal order.
func (d *DAG) Products() ([]product.Product, error) {
	names, err := d.Names()
	if err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	products := make([]product.Product, 0, len(names))
	for _, name := range names {
		products = append(products, d.tasks[name].Product)
	}
	return products, nil
}
