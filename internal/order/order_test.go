package order

import (
	"testing"
	"time"

	"github.com/rowantree/duscan/internal/metric"
	"github.com/rowantree/duscan/internal/record"
	"github.com/rowantree/duscan/internal/tree"
)

func buildTree() (*tree.Arena, tree.NodeId) {
	a := tree.NewArena()
	root := a.Append(record.Record{Path: "", FileType: record.Directory}, 0, false)
	a.Append(record.Record{Path: "zeta.txt", FileType: record.Regular, Metric: metric.Value{Raw: 5}}, root, true)
	a.Append(record.Record{Path: "sub", FileType: record.Directory, Metric: metric.Value{Raw: 100}}, root, true)
	a.Append(record.Record{Path: "alpha.txt", FileType: record.Regular, Metric: metric.Value{Raw: 1}}, root, true)
	return a, root
}

func names(a *tree.Arena, root tree.NodeId) []string {
	var out []string
	for _, c := range a.Node(root).Children() {
		out = append(out, a.Node(c).Record.Path)
	}
	return out
}

func TestApplyNameSort(t *testing.T) {
	a, root := buildTree()
	Apply(a, root, Compose(Name, DirNone))
	got := names(a, root)
	want := []string{"alpha.txt", "sub", "zeta.txt"}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestApplyDirFirst(t *testing.T) {
	a, root := buildTree()
	Apply(a, root, Compose(Name, DirFirst))
	got := names(a, root)
	if got[0] != "sub" {
		t.Fatalf("dir-first: first entry = %q, want sub", got[0])
	}
}

func TestApplyDirLast(t *testing.T) {
	a, root := buildTree()
	Apply(a, root, Compose(Name, DirLast))
	got := names(a, root)
	if got[len(got)-1] != "sub" {
		t.Fatalf("dir-last: last entry = %q, want sub", got[len(got)-1])
	}
}

func TestApplySizeDescending(t *testing.T) {
	a, root := buildTree()
	Apply(a, root, Compose(RSize, DirNone))
	got := names(a, root)
	if got[0] != "sub" {
		t.Fatalf("rsize: first entry = %q, want sub (size 100)", got[0])
	}
}

func TestParseKeyRejectsUnknown(t *testing.T) {
	if _, err := ParseKey("bogus"); err == nil {
		t.Fatal("expected error for unknown sort key")
	}
}

func TestModTimeOrdering(t *testing.T) {
	a := tree.NewArena()
	root := a.Append(record.Record{Path: "", FileType: record.Directory}, 0, false)
	now := time.Now()
	a.Append(record.Record{Path: "old.txt", Metadata: record.Metadata{Mtime: now.Add(-time.Hour)}}, root, true)
	a.Append(record.Record{Path: "new.txt", Metadata: record.Metadata{Mtime: now}}, root, true)

	Apply(a, root, Compose(Mod, DirNone))
	got := names(a, root)
	if got[0] != "old.txt" {
		t.Fatalf("mod order = %v, want oldest first", got)
	}
}
