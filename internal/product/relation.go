package product

import (
	"context"
	"fmt"
)

// RelationKind distinguishes the flavors of relational products.
type RelationKind string

const (
	Table RelationKind = "table"
	View  RelationKind = "view"
)

// SQLRelation is a relational product identified by its
// (schema, name, kind) tuple. The metadata backend handle is excluded from
// identity: the backing metadata table resolves entries by schema and name
// alone, so two relations pointing at the same tuple are duplicates no matter
// which backend instance they carry.
type SQLRelation struct {
	Schema string
	Name   string
	Kind   RelationKind

	// Backend stores fetched metadata for this relation. Not part of identity.
	Backend MetadataBackend

	meta Metadata
}

// Key returns the relation's value identity.
func (r *SQLRelation) Key() string {
	return fmt.Sprintf("relation:%s.%s[%s]", r.Schema, r.Name, r.Kind)
}

// Decompose returns the relation itself; relations are leaf products.
func (r *SQLRelation) Decompose() []Product {
	return []Product{r}
}

func (r *SQLRelation) String() string {
	if r.Schema == "" {
		return fmt.Sprintf("%s (%s)", r.Name, r.Kind)
	}
	return fmt.Sprintf("%s.%s (%s)", r.Schema, r.Name, r.Kind)
}

// LoadMetadata reads the relation's stored metadata from the backend.
// Returns false when no entry exists yet.
func (r *SQLRelation) LoadMetadata(ctx context.Context) (bool, error) {
	if r.Backend == nil {
		return false, fmt.Errorf("relation %q has no metadata backend configured", r)
	}

	meta, ok, err := r.Backend.Load(ctx, r.Schema, r.Name)
	if err != nil {
		return false, err
	}
	if ok {
		r.meta = meta
	}
	return ok, nil
}

// SaveMetadata writes the relation's current metadata to the backend.
func (r *SQLRelation) SaveMetadata(ctx context.Context, m Metadata) error {
	if r.Backend == nil {
		return fmt.Errorf("relation %q has no metadata backend configured", r)
	}

	if err := r.Backend.Save(ctx, r.Schema, r.Name, m); err != nil {
		return err
	}
	r.meta = m
	return nil
}

// Metadata returns the relation's last loaded or saved metadata.
func (r *SQLRelation) Metadata() Metadata {
	return r.meta
}
