// Package integrity holds the product-integrity and metadata-synchronization
// gates run against a fully constructed DAG before execution: duplicate
// product detection, remote metadata refresh, and path-prefix extraction.
package integrity

import "github.com/aristath/pipeline/internal/product"

// Flatten normalizes a heterogeneous product collection into a flat sequence
// of file-backed leaf products. Composite products contribute their children,
// filtered by the same rule as standalone elements: file-backed, and when
// requireClient is set, carrying a remote client. Non-file leaves are
// dropped.
//
// Output order is input concatenation order with composite children expanded
// in their internal order. Duplicates are not removed here; that is
// CheckDuplicated's job.
func Flatten(products []product.Product, requireClient bool) []*product.File {
	var flat []*product.File

	for _, p := range products {
		for _, leaf := range p.Decompose() {
			f, ok := leaf.(*product.File)
			if !ok {
				continue
			}
			if requireClient && !f.HasClient() {
				continue
			}
			flat = append(flat, f)
		}
	}

	return flat
}
