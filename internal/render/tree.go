package render

import (
	"strings"

	"github.com/rowantree/duscan/internal/platform"
	"github.com/rowantree/duscan/internal/record"
	"github.com/rowantree/duscan/internal/style"
	"github.com/rowantree/duscan/internal/tree"
)

// renderRegularTree walks the subtree in forward pre-order, taking each
// sibling's last-sibling status from its index among the visible
// children before its descendants are emitted, and prints root-first
// with "├─ "/"└─ " branch prefixes growing downward.
func renderRegularTree(a *tree.Arena, root tree.NodeId, opts Options, prov style.Provider, plat platform.Platform) string {
	glyphs := prov.TreeGlyphs()
	rootNode := a.Node(root)

	var lines []string
	lines = append(lines, line(opts, prov, plat, rootNode.Record, ""))

	// Prefixes depend on ancestor last-sibling state, which must be
	// threaded down through the recursion rather than recovered from
	// ReverseDescendants' flat visitation order, so the walk is written
	// directly here instead of driven by that helper.
	var walk func(id tree.NodeId, prefix string)
	walk = func(id tree.NodeId, prefix string) {
		n := a.Node(id)
		children := n.Children()
		visible := visibleChildren(a, children)
		for i, c := range visible {
			child := a.Node(c)
			isLast := i == len(visible)-1
			if !withinLevel(child.Record.Depth, opts.Level) {
				continue
			}
			branch := glyphs.Branch
			cont := glyphs.Vertical
			if isLast {
				branch = glyphs.LastBranch
				cont = glyphs.Sep
			}
			lines = append(lines, line(opts, prov, plat, child.Record, prefix+branch))
			if child.Record.FileType.IsDir() {
				walk(c, prefix+cont)
			}
		}
	}
	walk(root, "")
	return strings.Join(lines, "\n")
}

// renderInvertedTree mirrors the regular layout with branches pointing
// the other way: the first sibling gets a top-corner glyph and
// ancestor continuation stacks below the node rather than above it.
// Each directory's descendants are emitted above the directory's own
// line, and the root is emitted last.
func renderInvertedTree(a *tree.Arena, root tree.NodeId, opts Options, prov style.Provider, plat platform.Platform) string {
	glyphs := prov.TreeGlyphs()
	rootNode := a.Node(root)

	var lines []string

	var walk func(id tree.NodeId, prefix string)
	walk = func(id tree.NodeId, prefix string) {
		n := a.Node(id)
		children := visibleChildren(a, n.Children())
		for i, c := range children {
			child := a.Node(c)
			if !withinLevel(child.Record.Depth, opts.Level) {
				continue
			}
			first := i == 0
			branch := glyphs.Branch
			cont := glyphs.Vertical
			if first {
				branch = "┌─ "
				cont = glyphs.Sep
			}
			if child.Record.FileType.IsDir() {
				walk(c, prefix+cont)
			}
			lines = append(lines, line(opts, prov, plat, child.Record, prefix+branch))
		}
	}
	walk(root, "")
	lines = append(lines, line(opts, prov, plat, rootNode.Record, ""))
	return strings.Join(lines, "\n")
}

func visibleChildren(a *tree.Arena, children []tree.NodeId) []tree.NodeId {
	var out []tree.NodeId
	for _, c := range children {
		if !a.Node(c).Detached() {
			out = append(out, c)
		}
	}
	return out
}

func line(opts Options, prov style.Provider, plat platform.Platform, rec record.Record, prefix string) string {
	cells := longCells(opts, plat, rec)
	cells = append(cells, sizeCell(opts, prov, rec))
	text := prefix + joinCells(append(cells, nameCell(opts, prov, rec))...)
	if opts.Truncate && opts.TermWidth > 0 {
		text = TruncateANSI(text, opts.TermWidth)
	}
	return text
}
