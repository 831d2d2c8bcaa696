package render

import (
	"strings"

	"github.com/rowantree/duscan/internal/platform"
	"github.com/rowantree/duscan/internal/style"
	"github.com/rowantree/duscan/internal/tree"
)

// renderFlat emits one line per node with no tree-drawing prefix, in
// pre-order (the order Ordering already imposed on each directory's
// children); invert reverses the final line sequence for the
// inverted-flat layout.
func renderFlat(a *tree.Arena, root tree.NodeId, opts Options, prov style.Provider, plat platform.Platform, invert bool) string {
	var lines []string

	var walk func(id tree.NodeId)
	walk = func(id tree.NodeId) {
		n := a.Node(id)
		if !withinLevel(n.Record.Depth, opts.Level) {
			return
		}
		lines = append(lines, line(opts, prov, plat, n.Record, ""))
		for _, c := range visibleChildren(a, n.Children()) {
			walk(c)
		}
	}
	walk(root)

	if invert {
		for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
			lines[i], lines[j] = lines[j], lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
