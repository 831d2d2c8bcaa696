// Package render turns a filtered, ordered arena into output text: the
// four tree/flat layouts plus a tabular report, long-view columns,
// ANSI-aware truncation, and the counter footer. Grounded on spec.md
// §4.6 through §4.8; the state-machine shape of the tree walkers
// mirrors the worklist idiom the walker itself uses, and the table
// layout reuses otuschhoff/cwalk's pkg/output table.Writer usage.
package render

import (
	"fmt"
	"strings"

	"github.com/rowantree/duscan/internal/aggregate"
	"github.com/rowantree/duscan/internal/metric"
	"github.com/rowantree/duscan/internal/platform"
	"github.com/rowantree/duscan/internal/record"
	"github.com/rowantree/duscan/internal/style"
	"github.com/rowantree/duscan/internal/tree"
)

// Layout selects one of the renderer's output shapes.
type Layout int

const (
	Regular Layout = iota
	Inverted
	Flat
	InvertedFlat
	Table
)

// ParseLayout parses a layout name from CLI/config input.
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "regular", "tree":
		return Regular, nil
	case "inverted", "inv":
		return Inverted, nil
	case "flat":
		return Flat, nil
	case "inv-flat", "inverted-flat":
		return InvertedFlat, nil
	case "table":
		return Table, nil
	default:
		return Regular, fmt.Errorf("render: unknown layout %q", s)
	}
}

// Columns selects which long-view columns are emitted, all false by
// default (spec.md §6's "long (+ ino, nlink, group, octal, time,
// time_format)").
type Columns struct {
	Ino        bool
	Nlink      bool
	Owner      bool
	Group      bool
	Octal      bool
	Time       bool
	TimeFormat string
}

// Options is the renderer's configuration, assembled by the caller from
// the external Context (spec.md §6).
type Options struct {
	Layout        Layout
	Level         int // max render depth; -1 means unlimited
	Unit          metric.Unit
	Human         bool
	Long          bool
	ShowPhysical  bool
	Columns       Columns
	Truncate      bool
	TermWidth     int
	SuppressSize  bool
	Footer        bool
	Report        bool
	AbsolutePaths bool
	Root          string
	// Widths is the column-width accumulator from aggregate.RecomputeColumns,
	// computed against the post-filter, post-prune tree (spec.md §4.7).
	Widths aggregate.ColumnMetadata
}

// Render dispatches to the layout-specific renderer and appends the
// counter footer when requested.
func Render(a *tree.Arena, root tree.NodeId, opts Options, prov style.Provider, plat platform.Platform) string {
	if prov == nil {
		prov = style.Null{}
	}
	var body string
	switch opts.Layout {
	case Inverted:
		body = renderInvertedTree(a, root, opts, prov, plat)
	case Flat:
		body = renderFlat(a, root, opts, prov, plat, false)
	case InvertedFlat:
		body = renderFlat(a, root, opts, prov, plat, true)
	case Table:
		body = renderTable(a, root, opts, prov, plat)
	default:
		body = renderRegularTree(a, root, opts, prov, plat)
	}
	if !opts.Footer {
		return body
	}
	footer := countTree(a, root).String()
	if opts.Report {
		footer = buildReport(a, root).String()
	}
	// The tree and flat layouts join their rows with "\n" and leave no
	// trailing newline, so the first "\n" here ends the last row and the
	// second produces the blank line before the footer (the table layout
	// already ends in a newline of its own).
	return body + "\n\n" + footer
}

// withinLevel reports whether depth (relative to the root's depth 0)
// should still be emitted under opts.Level. A negative Level means no
// limit; aggregation itself always reaches the leaves regardless of
// this setting (spec.md §6).
func withinLevel(depth, level int) bool {
	return level < 0 || depth <= level
}

// displayPath returns the path the renderer should print for a record:
// root-relative by default, or joined onto opts.Root when AbsolutePaths
// is set.
func displayPath(opts Options, path string) string {
	if !opts.AbsolutePaths {
		if path == "" {
			return "."
		}
		return path
	}
	if path == "" {
		return opts.Root
	}
	return opts.Root + "/" + path
}

func sizeCell(opts Options, prov style.Provider, rec record.Record) string {
	if opts.SuppressSize {
		return ""
	}
	unit := opts.Unit
	if !opts.Human {
		unit = metric.UnitNone
	}
	number, suffix := metric.SplitScaled(rec.Metric, unit)
	cell := padLeft(number, opts.Widths.MaxSizeWidth) + " " + suffix
	if opts.ShowPhysical && opts.Long && rec.Metric.Kind == metric.Logical && rec.Metadata.PhysicalSet {
		physical := metric.Value{Raw: rec.Metadata.Physical, Kind: metric.Physical}
		pNumber, pSuffix := metric.SplitScaled(physical, unit)
		cell += " " + prov.Secondary("("+strings.TrimSpace(pNumber)+" "+strings.TrimSpace(pSuffix)+")")
	}
	return cell
}

func longCells(opts Options, plat platform.Platform, rec record.Record) []string {
	if !opts.Long {
		return nil
	}
	var cells []string
	if opts.Columns.Ino {
		if rec.Metadata.InoSet {
			cells = append(cells, padLeft(fmt.Sprintf("%d", rec.Metadata.Ino), opts.Widths.MaxInodeWidth))
		} else {
			cells = append(cells, "-")
		}
	}
	if opts.Columns.Octal {
		cells = append(cells, plat.OctalMode(rec.Metadata))
	} else {
		cells = append(cells, plat.SymbolicMode(rec.Metadata))
	}
	if opts.Columns.Nlink {
		if rec.Metadata.NlinkSet {
			cells = append(cells, padLeft(fmt.Sprintf("%d", rec.Metadata.Nlink), opts.Widths.MaxNlinkWidth))
		} else {
			cells = append(cells, "-")
		}
	}
	if opts.Columns.Owner {
		owner := rec.Metadata.Owner
		if owner == "" {
			owner = "-"
		}
		cells = append(cells, padRight(owner, opts.Widths.MaxOwnerWidth))
	}
	if opts.Columns.Group {
		group := rec.Metadata.Group
		if group == "" {
			group = "-"
		}
		cells = append(cells, padRight(group, opts.Widths.MaxGroupWidth))
	}
	if opts.Columns.Time {
		cells = append(cells, plat.Timestamp(rec.Metadata.Mtime, opts.Columns.TimeFormat))
	}
	return cells
}

func padLeft(s string, width int) string {
	if pad := width - len(s); pad > 0 {
		return strings.Repeat(" ", pad) + s
	}
	return s
}

func padRight(s string, width int) string {
	if pad := width - len(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}

func nameCell(opts Options, prov style.Provider, rec record.Record) string {
	name := displayPath(opts, rec.Path)
	icon := prov.IconFor(rec.Path, rec.FileType)
	token := prov.StyleFor(rec.Path, rec.FileType, &rec.Metadata)
	painted := prov.Paint(token, name)
	if icon != "" {
		painted = icon + " " + painted
	}
	if rec.FileType == record.Symlink && rec.HasTarget {
		painted += " -> " + rec.SymlinkTarget
	}
	return painted
}

func joinCells(cells ...string) string {
	var out []string
	for _, c := range cells {
		if c != "" {
			out = append(out, c)
		}
	}
	return strings.Join(out, "  ")
}
