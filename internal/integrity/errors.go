package integrity

import (
	"fmt"
	"strings"

	"github.com/aristath/pipeline/internal/prettyprint"
	"github.com/aristath/pipeline/internal/product"
)

// Duplicate is one product claimed by more than one task.
type Duplicate struct {
	Product product.Product
	Tasks   []string // Owning task names in declaration order
}

// DuplicatedProductsError reports every product claimed by more than one
// task. It is always the complete picture: the checker never fails fast on
// the first collision. Configuration-class, not retryable.
type DuplicatedProductsError struct {
	Duplicates []Duplicate
}

func (e *DuplicatedProductsError) Error() string {
	lines := make([]string, len(e.Duplicates))
	for i, d := range e.Duplicates {
		lines[i] = fmt.Sprintf("* '%s' generated by tasks: %s", d.Product, prettyprint.List(d.Tasks))
	}
	return "tasks must generate unique products; the following products appear in more than one task:\n" +
		strings.Join(lines, "\n")
}

// RemoteFetchError wraps the first observed metadata fetch failure and names
// the offending product. Concurrent failures of other products are not
// enumerated. Remote storage errors are often transient, so callers may
// retry.
type RemoteFetchError struct {
	Product product.Product
	Err     error
}

func (e *RemoteFetchError) Error() string {
	return fmt.Sprintf("fetching remote metadata for product '%s': %v", e.Product, e.Err)
}

func (e *RemoteFetchError) Unwrap() error {
	return e.Err
}

// PathResolutionError reports an absolute product path that cannot be
// expressed relative to the base directory. Configuration-class, not
// retryable.
type PathResolutionError struct {
	Path    string
	BaseDir string
}

func (e *PathResolutionError) Error() string {
	return fmt.Sprintf("absolute product path '%s' is outside the base directory '%s'", e.Path, e.BaseDir)
}
