package product

import "strings"

// Composite is an ordered aggregation of products owned by a single task.
// Iteration and decomposition always yield children in declaration order.
// For duplicate detection the composite itself is never registered; only its
// children carry identity.
type Composite struct {
	children []Product
}

// NewComposite returns a composite over the given children. The slice is
// copied so later mutation of the argument cannot reorder the composite.
func NewComposite(children ...Product) *Composite {
	cp := make([]Product, len(children))
	copy(cp, children)
	return &Composite{children: cp}
}

// Products returns the children in declaration order.
func (c *Composite) Products() []Product {
	return c.children
}

// Key identifies the composite by its children. Composites are never
// registered for duplicate checking, but the key keeps the Product contract
// total.
func (c *Composite) Key() string {
	keys := make([]string, len(c.children))
	for i, child := range c.children {
		keys[i] = child.Key()
	}
	return "composite:{" + strings.Join(keys, ",") + "}"
}

// Decompose returns the children; each is checked for duplication
// independently of its siblings.
func (c *Composite) Decompose() []Product {
	return c.children
}

func (c *Composite) String() string {
	parts := make([]string, len(c.children))
	for i, child := range c.children {
		parts[i] = child.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
