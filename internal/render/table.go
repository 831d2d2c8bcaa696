package render

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/rowantree/duscan/internal/platform"
	"github.com/rowantree/duscan/internal/record"
	"github.com/rowantree/duscan/internal/style"
	"github.com/rowantree/duscan/internal/tree"
)

// renderTable renders the PURPOSE section's "tabular report" view: one
// row per visible node, columns chosen the same way the other layouts
// choose their cells, built with go-pretty the way
// otuschhoff/cwalk's pkg/output formatter builds its summary tables.
func renderTable(a *tree.Arena, root tree.NodeId, opts Options, prov style.Provider, plat platform.Platform) string {
	t := table.NewWriter()

	headers := table.Row{"Path", "Type"}
	if opts.Long {
		if opts.Columns.Ino {
			headers = append(headers, "Inode")
		}
		headers = append(headers, "Mode")
		if opts.Columns.Nlink {
			headers = append(headers, "Links")
		}
		if opts.Columns.Owner {
			headers = append(headers, "Owner")
		}
		if opts.Columns.Group {
			headers = append(headers, "Group")
		}
		if opts.Columns.Time {
			headers = append(headers, "Modified")
		}
	}
	if !opts.SuppressSize {
		headers = append(headers, "Size")
	}
	t.AppendHeader(headers)

	var walk func(id tree.NodeId)
	walk = func(id tree.NodeId) {
		n := a.Node(id)
		if !withinLevel(n.Record.Depth, opts.Level) {
			return
		}
		t.AppendRow(tableRow(opts, prov, plat, n.Record))
		for _, c := range visibleChildren(a, n.Children()) {
			walk(c)
		}
	}
	walk(root)

	t.SetStyle(table.StyleColoredDark)
	return fmt.Sprintf("%s\n", t.Render())
}

func tableRow(opts Options, prov style.Provider, plat platform.Platform, rec record.Record) table.Row {
	row := table.Row{displayPath(opts, rec.Path), rec.FileType.String()}
	for _, c := range longCells(opts, plat, rec) {
		row = append(row, c)
	}
	if !opts.SuppressSize {
		row = append(row, sizeCell(opts, prov, rec))
	}
	return row
}
