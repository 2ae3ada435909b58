package state

import (
	"strings"

	"github.com/aretw0/voicelink/pkg/domain"
)

// Node is a point-in-time description of a behavior tree.
type Node struct {
	Description string `json:"description"`
	Children    []Node `json:"children,omitempty"`
}

// Snapshot walks b and its nested behaviors.
func Snapshot(b domain.Behavior) Node {
	n := Node{Description: b.Describe()}
	if p, ok := b.(domain.Parent); ok {
		for _, child := range p.Nested() {
			n.Children = append(n.Children, Snapshot(child))
		}
	}
	return n
}

// Path returns the descriptions along the first branch of the tree,
// e.g. "attached > connected > negotiating protocols".
func (n Node) Path() string {
	parts := []string{n.Description}
	for len(n.Children) > 0 {
		n = n.Children[0]
		parts = append(parts, n.Description)
	}
	return strings.Join(parts, " > ")
}

// String renders the tree with two-space indentation per level.
func (n Node) String() string {
	var sb strings.Builder
	n.write(&sb, 0)
	return sb.String()
}

func (n Node) write(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(n.Description)
	sb.WriteString("\n")
	for _, c := range n.Children {
		c.write(sb, depth+1)
	}
}
