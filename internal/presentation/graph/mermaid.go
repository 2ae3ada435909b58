package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/voicelink/pkg/state"
)

// Overlay marks nodes to highlight on the graph.
type Overlay struct {
	// Leaves highlights nodes without children (the active applications).
	Leaves bool
}

// GenerateMermaid produces a Mermaid flowchart of a behavior tree snapshot.
// Node IDs are positional (n0, n0_1, ...) since descriptions repeat freely.
// Shapes follow the phase:
// - connecting/negotiating/waiting: ([Stadium])
// - leaves: [[Subroutine]]
// - default: [Rectangle]
func GenerateMermaid(root state.Node, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	var leaves []string
	var walk func(n state.Node, id string)
	walk = func(n state.Node, id string) {
		opener, closer := "[", "]"
		switch {
		case pending(n.Description):
			opener, closer = "([", "])"
		case len(n.Children) == 0:
			opener, closer = "[[", "]]"
			leaves = append(leaves, id)
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, escapeLabel(n.Description), closer)

		for i, child := range n.Children {
			childID := fmt.Sprintf("%s_%d", id, i)
			fmt.Fprintf(&sb, "    %s --> %s\n", id, childID)
			walk(child, childID)
		}
	}
	walk(root, "n0")

	if overlay != nil && overlay.Leaves && len(leaves) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds
		sb.WriteString("    classDef leaf fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		for _, id := range leaves {
			fmt.Fprintf(&sb, "    class %s leaf;\n", id)
		}
	}

	return sb.String()
}

func pending(desc string) bool {
	for _, prefix := range []string{"connecting to ", "negotiating", "waiting for "} {
		if strings.HasPrefix(desc, prefix) {
			return true
		}
	}
	return false
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
