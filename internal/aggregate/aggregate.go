// Package aggregate implements the AggregationEngine: it consumes the
// walker's event stream, builds the arena-backed tree, rolls each
// directory's metric up from its descendants, and tracks the column
// widths the renderer needs for aligned output. Grounded on
// otuschhoff/cwalk's single accumulator goroutine that drains the
// worker channel and folds records into a shared result set.
package aggregate

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rowantree/duscan/internal/errs"
	"github.com/rowantree/duscan/internal/metric"
	"github.com/rowantree/duscan/internal/record"
	"github.com/rowantree/duscan/internal/tree"
	"github.com/rowantree/duscan/internal/walk"
)

var errNoRoot = errors.New("aggregate: no root record observed")

func errOrphan(parentPath string) error {
	return fmt.Errorf("aggregate: unknown parent %q", parentPath)
}

// ColumnMetadata holds the max display width of the size, inode,
// nlink, owner and group columns, so the renderer can right-align a
// long listing. MaxTimeWidth is never populated. Run fills it during
// aggregation; RecomputeColumns fills it again from the visible nodes.
type ColumnMetadata struct {
	MaxSizeWidth  int
	MaxInodeWidth int
	MaxNlinkWidth int
	MaxOwnerWidth int
	MaxGroupWidth int
	MaxTimeWidth  int
}

func (c *ColumnMetadata) observeInt(width *int, n int) {
	if n > *width {
		*width = n
	}
}

func digits(n uint64) int {
	if n == 0 {
		return 1
	}
	d := 0
	for n > 0 {
		d++
		n /= 10
	}
	return d
}

// Result is the product of aggregation: the populated arena, the root
// node's id, the warnings collected along the way, and the column
// widths needed for long-format rendering.
type Result struct {
	Arena    *tree.Arena
	Root     tree.NodeId
	Warnings []*errs.Error
	Columns  ColumnMetadata
}

// pending pairs a directory's node with its children; Run does not use
// it. Run attaches each record to its parent directory as it arrives,
// so it relies on the walker emitting a directory's own record before
// any of its entries: a record whose parent has not arrived yet is
// reported as an orphan warning and dropped.
type pending struct {
	nodeID   tree.NodeId
	children []tree.NodeId
}

// Engine runs the insertion and aggregation phases described by
// spec.md §4.2: build the tree from the event stream, then fold child
// metrics into their parents with an iterative post-order walk.
type Engine struct {
	unit metric.Unit
}

// New builds an Engine. unit only affects ColumnMetadata's size-width
// computation, which must match the unit family the renderer will use.
func New(unit metric.Unit) *Engine {
	return &Engine{unit: unit}
}

// Run drains events until the channel closes (after a Done event) and
// returns the assembled Result. It returns only once the walker closes
// the channel, which is the walker's contract for termination.
func (e *Engine) Run(events <-chan walk.Event) (*Result, error) {
	arena := tree.NewArena()
	byPath := make(map[string]tree.NodeId)
	var rootID tree.NodeId
	haveRoot := false
	var warnings []*errs.Error

	for ev := range events {
		switch ev.Kind {
		case walk.WarningEvent:
			warnings = append(warnings, ev.Warning)
		case walk.Ongoing:
			rec := ev.Record
			if rec.Depth == 0 {
				id := arena.Append(rec, 0, false)
				byPath[rec.Path] = id
				rootID = id
				haveRoot = true
				continue
			}
			parentPath := parentOf(rec.Path)
			parentID, ok := byPath[parentPath]
			if !ok {
				warnings = append(warnings, errs.InternalErr(
					"aggregate: orphan record "+rec.Path, errOrphan(parentPath)))
				continue
			}
			id := arena.Append(rec, parentID, true)
			if rec.FileType.IsDir() {
				byPath[rec.Path] = id
			}
		case walk.Done:
			// nothing to do; the channel closes right after this.
		}
	}

	if !haveRoot {
		return nil, errs.InternalErr("aggregate", errNoRoot)
	}

	result := &Result{Arena: arena, Root: rootID, Warnings: warnings}
	hardLinks := make(map[[2]uint64]bool)
	aggregate(arena, rootID, e.unit, &result.Columns, hardLinks)
	return result, nil
}

// aggregate performs an iterative post-order fold: directories sum the
// already-computed metric of their non-detached children (skipping a
// second contribution from any hard-linked file already counted once),
// and every visited node's optional fields widen ColumnMetadata.
func aggregate(a *tree.Arena, root tree.NodeId, unit metric.Unit, cols *ColumnMetadata, seen map[[2]uint64]bool) {
	type frame struct {
		id      tree.NodeId
		visited bool
	}
	stack := []frame{{id: root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		node := a.Node(top.id)
		if !top.visited {
			top.visited = true
			for _, c := range node.Children() {
				stack = append(stack, frame{id: c})
			}
			continue
		}
		stack = stack[:len(stack)-1]

		if node.Record.FileType.IsDir() {
			var sum int64
			for _, c := range node.Children() {
				child := a.Node(c)
				sum += child.Record.Metric.Raw
			}
			node.Record.Metric.Raw = sum
		} else if key, ok := node.Record.Metadata.HardLinkKey(); ok && node.Record.Metadata.NlinkSet && node.Record.Metadata.Nlink > 1 {
			if seen[key] {
				node.Record.Metric.Raw = 0
			} else {
				seen[key] = true
			}
		}

		observeColumns(cols, node.Record, unit)
	}
}

// RecomputeColumns rebuilds ColumnMetadata from the arena's currently
// visible (non-detached) nodes. The single aggregation pass in Run
// observes column widths before filter.Apply/filter.Prune run, so that
// snapshot reflects the pre-filter tree; spec.md §4.7 requires widths
// computed against the post-filter, post-prune set, so the caller
// re-observes by calling this after the pipeline's filter/prune stage.
func RecomputeColumns(a *tree.Arena, root tree.NodeId, unit metric.Unit) ColumnMetadata {
	var cols ColumnMetadata
	observeColumns(&cols, a.Node(root).Record, unit)
	for _, id := range a.Descendants(root) {
		observeColumns(&cols, a.Node(id).Record, unit)
	}
	return cols
}

func observeColumns(cols *ColumnMetadata, rec record.Record, unit metric.Unit) {
	cols.observeInt(&cols.MaxSizeWidth, metric.Digits(rec.Metric, unit))
	if rec.Metadata.InoSet {
		cols.observeInt(&cols.MaxInodeWidth, digits(rec.Metadata.Ino))
	}
	if rec.Metadata.NlinkSet {
		cols.observeInt(&cols.MaxNlinkWidth, digits(rec.Metadata.Nlink))
	}
	if len(rec.Metadata.Owner) > cols.MaxOwnerWidth {
		cols.MaxOwnerWidth = len(rec.Metadata.Owner)
	}
	if len(rec.Metadata.Group) > cols.MaxGroupWidth {
		cols.MaxGroupWidth = len(rec.Metadata.Group)
	}
}

func parentOf(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return ""
	}
	return path[:i]
}

// SortedWarnings returns warnings in a stable, deterministic order for
// display, since the walker emits them in non-deterministic goroutine
// completion order.
func SortedWarnings(warnings []*errs.Error) []*errs.Error {
	out := make([]*errs.Error, len(warnings))
	copy(out, warnings)
	sort.Slice(out, func(i, j int) bool { return out[i].Error() < out[j].Error() })
	return out
}
