package render

import (
	"fmt"
	"strings"

	"github.com/rowantree/duscan/internal/record"
	"github.com/rowantree/duscan/internal/tree"
)

// Counter tallies a tree's directories, files, and links for the
// end-of-output footer, per spec.md §4.8.
type Counter struct {
	Directories int
	Files       int
	Links       int
}

// Observe increments the tally for one emitted record's type.
func (c *Counter) Observe(ft record.Type) {
	switch ft {
	case record.Directory:
		c.Directories++
	case record.Symlink:
		c.Links++
	default:
		c.Files++
	}
}

// String joins the non-zero categories, omitting any category with no
// members (original_source's tree/count.rs FileCount::fmt).
func (c *Counter) String() string {
	var parts []string
	if c.Directories > 0 {
		parts = append(parts, plural(c.Directories, "directory", "directories"))
	}
	if c.Files > 0 {
		parts = append(parts, plural(c.Files, "file", "files"))
	}
	if c.Links > 0 {
		parts = append(parts, plural(c.Links, "link", "links"))
	}
	return strings.Join(parts, ", ")
}

// countTree tallies every non-detached descendant of root (the root
// itself is the thing being measured, not one of its own contents, so
// it is never tallied), independent of any --level render limit:
// spec.md §8 scenario 2 requires the footer to still count a child
// omitted from the body by a level cutoff, so the footer's count is
// computed as its own unbounded pass rather than piggybacked on
// whichever nodes a layout happened to emit.
func countTree(a *tree.Arena, root tree.NodeId) *Counter {
	c := &Counter{}
	var walk func(id tree.NodeId)
	walk = func(id tree.NodeId) {
		for _, child := range visibleChildren(a, a.Node(id).Children()) {
			c.Observe(a.Node(child).Record.FileType)
			walk(child)
		}
	}
	walk(root)
	return c
}

// Report is the --report extended footer: the terse directory/file/
// link tally plus bytes scanned before filtering vs. bytes actually
// shown after it, supplementing Counter per SPEC_FULL.md §11's
// "report footer extended stats".
type Report struct {
	Counter      Counter
	ScannedBytes int64
	ShownBytes   int64
}

func (r Report) String() string {
	return fmt.Sprintf("%s, scanned %d, shown %d", r.Counter.String(), r.ScannedBytes, r.ShownBytes)
}

// buildReport totals bytes scanned by walking every node the arena
// ever held (detached nodes included, since Detach only unlinks a node
// from its parent's child list rather than removing it), then totals
// bytes shown and the terse tally by walking only what survived
// filter.Apply/filter.Prune. Directory nodes are skipped in both sums:
// their Metric.Raw is itself an aggregate of descendants, so including
// them would double-count.
func buildReport(a *tree.Arena, root tree.NodeId) Report {
	var rep Report
	for i := 0; i < a.Len(); i++ {
		rec := a.Node(tree.NodeId(i)).Record
		if !rec.FileType.IsDir() {
			rep.ScannedBytes += rec.Metric.Raw
		}
	}

	rep.Counter = *countTree(a, root)
	var sumShown func(id tree.NodeId)
	sumShown = func(id tree.NodeId) {
		for _, child := range visibleChildren(a, a.Node(id).Children()) {
			rec := a.Node(child).Record
			if !rec.FileType.IsDir() {
				rep.ShownBytes += rec.Metric.Raw
			}
			sumShown(child)
		}
	}
	sumShown(root)
	return rep
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, pluralForm)
}
