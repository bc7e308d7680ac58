// Package product defines the artifact references that pipeline tasks declare
// as their outputs. Products are compared by value identity, never by
// reference: two File products pointing at the same path are the same product
// even if they are distinct instances, and a SQLRelation's storage client is
// deliberately excluded from its identity.
package product

import (
	"context"
	"time"
)

// Product is a value-identity artifact reference produced by a task.
type Product interface {
	// Key returns the variant-specific value identity. Two products are
	// equal exactly when their keys compare equal; auxiliary handles
	// (remote clients, metadata backends) never contribute to the key.
	Key() string

	// Decompose expands composite products into their children.
	// Leaf products return themselves.
	Decompose() []Product

	// String returns the human-readable form used in error messages.
	String() string
}

// RemoteCapable is implemented by product variants whose stored state can be
// queried from remote storage.
type RemoteCapable interface {
	Product

	// HasClient reports whether a remote client is configured.
	HasClient() bool

	// RefreshMetadata performs the remote round trip and updates the
	// product's metadata in place. Identity is never touched.
	RefreshMetadata(ctx context.Context) error
}

// Metadata is the last fetched remote state of a product. It is volatile:
// refreshed on demand and never persisted by this layer.
type Metadata struct {
	Exists    bool
	Hash      string
	Timestamp time.Time
}

// Client fetches remote state for file-backed products. Implementations live
// in internal/remote; the interface is declared here, on the consumer side,
// so product variants can hold a client without importing storage backends.
type Client interface {
	FetchMetadata(ctx context.Context, path string) (Metadata, error)
}

// MetadataBackend stores metadata for relational products. Keyed on
// (schema, name) only: the backing table does not record the relation kind,
// so a table and a view with the same qualified name share an entry.
type MetadataBackend interface {
	Load(ctx context.Context, schema, name string) (Metadata, bool, error)
	Save(ctx context.Context, schema, name string, m Metadata) error
}
