package product

import (
	"context"
	"fmt"
)

// File is a file-backed product identified by a path-like string. The path is
// used as written: absolute and relative paths that resolve to the same file
// are distinct identities on purpose (duplicate detection compares declared
// identifiers, not filesystem state).
type File struct {
	// Path is the identifier. Part of the product's identity.
	Path string

	// Client is the optional remote storage client. Not part of identity.
	Client Client

	meta Metadata
}

// NewFile returns a file product without a remote client.
func NewFile(path string) *File {
	return &File{Path: path}
}

// NewRemoteFile returns a file product backed by remote storage.
func NewRemoteFile(path string, client Client) *File {
	return &File{Path: path, Client: client}
}

// Key returns the file's value identity.
func (f *File) Key() string {
	return "file:" + f.Path
}

// Decompose returns the file itself; files are leaf products.
func (f *File) Decompose() []Product {
	return []Product{f}
}

func (f *File) String() string {
	return f.Path
}

// HasClient reports whether a remote client is configured.
func (f *File) HasClient() bool {
	return f.Client != nil
}

// RefreshMetadata fetches the file's remote state and stores it in place.
// The caller guarantees no other goroutine refreshes the same instance
// concurrently (products are unique per task once duplicate checking passed).
func (f *File) RefreshMetadata(ctx context.Context) error {
	if f.Client == nil {
		return fmt.Errorf("product %q has no remote client configured", f.Path)
	}

	meta, err := f.Client.FetchMetadata(ctx, f.Path)
	if err != nil {
		return err
	}

	f.meta = meta
	return nil
}

// Metadata returns the last fetched remote state. Zero value until
// RefreshMetadata succeeds.
func (f *File) Metadata() Metadata {
	return f.meta
}
