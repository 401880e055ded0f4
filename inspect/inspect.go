// Package inspect is the port to the accessibility-tree automation
// collaborator used for UI validation. The automation protocol itself
// is external; the harness only consumes this surface.
package inspect

import "context"

// Tree is the entry point into a desktop accessibility tree.
type Tree interface {
	FindApplication(ctx context.Context, name string) (Node, error)
}

// Node is one element of the tree.
type Node interface {
	FindChild(ctx context.Context, name, role string) (Node, error)
	Visible(ctx context.Context) (bool, error)
	SendKeys(ctx context.Context, combo string) error
}
