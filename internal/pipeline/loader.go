// Package pipeline loads YAML pipeline manifests and builds the task DAG the
// integrity gates run against. The manifest only declares structure — task
// names, upstream edges, and declared products; execution semantics live in
// the surrounding runner.
package pipeline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aristath/pipeline/internal/dag"
	"github.com/aristath/pipeline/internal/product"
)

// Manifest is a parsed pipeline file.
type Manifest struct {
	Tasks []TaskSpec `yaml:"tasks"`
}

// TaskSpec declares one task.
type TaskSpec struct {
	Name     string      `yaml:"name"`
	Upstream []string    `yaml:"upstream,omitempty"`
	Product  ProductSpec `yaml:"product"`
}

// ProductSpec declares a product. Exactly one of File, Relation, or Products
// must be set; Products declares a composite whose children must be leaves.
type ProductSpec struct {
	File     string        `yaml:"file,omitempty"`
	Relation *RelationSpec `yaml:"relation,omitempty"`
	Products []ProductSpec `yaml:"products,omitempty"`
}

// RelationSpec declares a relational product.
type RelationSpec struct {
	Schema string `yaml:"schema,omitempty"`
	Name   string `yaml:"name"`
	Kind   string `yaml:"kind,omitempty"` // "table" (default) or "view"
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}

// Parse parses manifest bytes.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if len(m.Tasks) == 0 {
		return nil, fmt.Errorf("manifest declares no tasks")
	}
	return &m, nil
}

// BuildOptions carries the handles attached to built products. Both are
// optional: without a client file products are local-only, without a backend
// relations cannot load or save metadata.
type BuildOptions struct {
	Client  product.Client
	Backend product.MetadataBackend
}

// Build constructs the DAG declared by the manifest. Upstream references and
// cycles are verified by the DAG itself on first traversal.
func (m *Manifest) Build(opts BuildOptions) (*dag.DAG, error) {
	d := dag.New()

	for _, spec := range m.Tasks {
		if spec.Name == "" {
			return nil, fmt.Errorf("task with product %+v has no name", spec.Product)
		}

		p, err := buildProduct(spec.Product, opts, false)
		if err != nil {
			return nil, fmt.Errorf("task %q: %w", spec.Name, err)
		}

		if err := d.Add(&dag.Task{Name: spec.Name, Product: p, Upstream: spec.Upstream}); err != nil {
			return nil, err
		}
	}

	return d, nil
}

func buildProduct(spec ProductSpec, opts BuildOptions, nested bool) (product.Product, error) {
	set := 0
	if spec.File != "" {
		set++
	}
	if spec.Relation != nil {
		set++
	}
	if len(spec.Products) > 0 {
		set++
	}
	if set != 1 {
		return nil, fmt.Errorf("product must declare exactly one of file, relation, or products")
	}

	switch {
	case spec.File != "":
		if opts.Client != nil {
			return product.NewRemoteFile(spec.File, opts.Client), nil
		}
		return product.NewFile(spec.File), nil

	case spec.Relation != nil:
		kind := product.RelationKind(spec.Relation.Kind)
		switch kind {
		case "":
			kind = product.Table
		case product.Table, product.View:
		default:
			return nil, fmt.Errorf("unknown relation kind %q", spec.Relation.Kind)
		}
		if spec.Relation.Name == "" {
			return nil, fmt.Errorf("relation product has no name")
		}
		return &product.SQLRelation{
			Schema:  spec.Relation.Schema,
			Name:    spec.Relation.Name,
			Kind:    kind,
			Backend: opts.Backend,
		}, nil

	default:
		if nested {
			return nil, fmt.Errorf("composite products cannot nest")
		}
		children := make([]product.Product, 0, len(spec.Products))
		for i, childSpec := range spec.Products {
			child, err := buildProduct(childSpec, opts, true)
			if err != nil {
				return nil, fmt.Errorf("child %d: %w", i, err)
			}
			children = append(children, child)
		}
		return product.NewComposite(children...), nil
	}
}
