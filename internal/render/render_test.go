package render

import (
	"strings"
	"testing"

	"github.com/rowantree/duscan/internal/metric"
	"github.com/rowantree/duscan/internal/record"
	"github.com/rowantree/duscan/internal/style"
	"github.com/rowantree/duscan/internal/tree"
)

func buildSample() (*tree.Arena, tree.NodeId) {
	a := tree.NewArena()
	root := a.Append(record.Record{Path: "", FileType: record.Directory, Depth: 0, Metric: metric.Value{Raw: 30}}, 0, false)
	a.Append(record.Record{Path: "a.txt", FileType: record.Regular, Depth: 1, Metric: metric.Value{Raw: 10, Kind: metric.Logical}}, root, true)
	sub := a.Append(record.Record{Path: "sub", FileType: record.Directory, Depth: 1, Metric: metric.Value{Raw: 20}}, root, true)
	a.Append(record.Record{Path: "sub/b.txt", FileType: record.Regular, Depth: 2, Metric: metric.Value{Raw: 20, Kind: metric.Logical}}, sub, true)
	return a, root
}

func TestRenderRegularTreeIncludesAllNodes(t *testing.T) {
	a, root := buildSample()
	out := Render(a, root, Options{Layout: Regular, Level: -1, Unit: metric.UnitNone}, style.Null{}, nil)
	for _, want := range []string{"a.txt", "sub", "b.txt"} {
		if !strings.Contains(out, want) {
			t.Fatalf("regular tree output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderFlatOneLinePerNode(t *testing.T) {
	a, root := buildSample()
	out := Render(a, root, Options{Layout: Flat, Level: -1, Unit: metric.UnitNone}, style.Null{}, nil)
	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("flat output has %d lines, want 4 (root + 3 descendants):\n%s", len(lines), out)
	}
}

func TestRenderLevelLimit(t *testing.T) {
	a, root := buildSample()
	out := Render(a, root, Options{Layout: Flat, Level: 1, Unit: metric.UnitNone}, style.Null{}, nil)
	if strings.Contains(out, "b.txt") {
		t.Fatalf("level-1 render should not include depth-2 entries:\n%s", out)
	}
}

func TestRenderFooterCounts(t *testing.T) {
	a, root := buildSample()
	out := Render(a, root, Options{Layout: Flat, Level: -1, Unit: metric.UnitNone, Footer: true}, style.Null{}, nil)
	if !strings.Contains(out, "1 directory") || !strings.Contains(out, "2 files") {
		t.Fatalf("footer missing expected counts (root itself is not tallied):\n%s", out)
	}
}

func TestRenderFooterFollowsBlankLine(t *testing.T) {
	a, root := buildSample()
	out := Render(a, root, Options{Layout: Flat, Level: -1, Unit: metric.UnitNone, Footer: true}, style.Null{}, nil)
	if !strings.Contains(out, "\n\n1 directory") {
		t.Fatalf("expected a blank line before the footer:\n%q", out)
	}
}

func TestRenderFooterIgnoresLevelLimit(t *testing.T) {
	a, root := buildSample()
	out := Render(a, root, Options{Layout: Flat, Level: 1, Unit: metric.UnitNone, Footer: true}, style.Null{}, nil)
	if strings.Contains(out, "b.txt") {
		t.Fatalf("level-1 body should not include depth-2 entries:\n%s", out)
	}
	if !strings.Contains(out, "1 directory") || !strings.Contains(out, "2 files") {
		t.Fatalf("footer should count b.txt even though --level hides it from the body:\n%s", out)
	}
}

func TestRenderReportFooterShowsScannedAndShown(t *testing.T) {
	a, root := buildSample()
	out := Render(a, root, Options{Layout: Flat, Level: -1, Unit: metric.UnitNone, Footer: true, Report: true}, style.Null{}, nil)
	if !strings.Contains(out, "scanned 30") || !strings.Contains(out, "shown 30") {
		t.Fatalf("expected report footer with scanned/shown byte totals:\n%s", out)
	}
}

func TestTruncateANSIPreservesColorReset(t *testing.T) {
	s := "\x1b[31mhello world\x1b[0m"
	got := TruncateANSI(s, 5)
	if !strings.HasPrefix(got, "\x1b[31m") {
		t.Fatalf("expected leading color code preserved, got %q", got)
	}
	if !strings.HasSuffix(got, "\x1b[0m") {
		t.Fatalf("expected trailing reset appended on cut, got %q", got)
	}
	if !strings.Contains(got, "hello") {
		t.Fatalf("expected visible text retained, got %q", got)
	}
	if strings.Contains(got, "world") {
		t.Fatalf("expected text beyond width to be dropped, got %q", got)
	}
}

func TestTruncateANSINoColorNoTrailingReset(t *testing.T) {
	got := TruncateANSI("plain text here", 5)
	if strings.Contains(got, "\x1b") {
		t.Fatalf("no color was active, should not append a reset: %q", got)
	}
	if got != "plain" {
		t.Fatalf("got %q, want \"plain\"", got)
	}
}

func TestCounterPluralization(t *testing.T) {
	c := &Counter{Directories: 1, Files: 2, Links: 0}
	got := c.String()
	if got != "1 directory, 2 files" {
		t.Fatalf("unexpected counter string: %q, want zero-valued categories omitted", got)
	}
}
