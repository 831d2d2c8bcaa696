package filter

import (
	"regexp"
	"testing"

	"github.com/rowantree/duscan/internal/record"
	"github.com/rowantree/duscan/internal/tree"
)

func buildTree() (*tree.Arena, tree.NodeId) {
	a := tree.NewArena()
	root := a.Append(record.Record{Path: "", FileType: record.Directory, Depth: 0}, 0, false)
	src := a.Append(record.Record{Path: "src", FileType: record.Directory, Depth: 1}, root, true)
	a.Append(record.Record{Path: "src/main.go", FileType: record.Regular, Depth: 2}, src, true)
	a.Append(record.Record{Path: "src/readme.md", FileType: record.Regular, Depth: 2}, src, true)
	docs := a.Append(record.Record{Path: "docs", FileType: record.Directory, Depth: 1}, root, true)
	a.Append(record.Record{Path: "docs/notes.txt", FileType: record.Regular, Depth: 2}, docs, true)
	return a, root
}

func TestApplyGlobKeepsMatchAndAncestors(t *testing.T) {
	a, root := buildTree()
	Apply(a, root, Composite{Predicates: []Predicate{Glob{Pattern: "*.go"}}})

	rootNode := a.Node(root)
	if len(rootNode.Children()) != 1 {
		t.Fatalf("root children after filter = %d, want 1 (only src/)", len(rootNode.Children()))
	}
	srcID := rootNode.Children()[0]
	src := a.Node(srcID)
	if len(src.Children()) != 1 {
		t.Fatalf("src children after filter = %d, want 1 (only main.go)", len(src.Children()))
	}
}

func TestApplyRegex(t *testing.T) {
	a, root := buildTree()
	Apply(a, root, Composite{Predicates: []Predicate{Regex{Expr: regexp.MustCompile(`notes`)}}})

	rootNode := a.Node(root)
	if len(rootNode.Children()) != 1 {
		t.Fatalf("root children after filter = %d, want 1 (only docs/)", len(rootNode.Children()))
	}
}

func TestApplyFileTypePreservesDirectoryConnectivity(t *testing.T) {
	a, root := buildTree()
	Apply(a, root, Composite{Predicates: []Predicate{
		FileType{Types: map[record.Type]bool{record.Regular: true}},
		Glob{Pattern: "*.md"},
	}})

	rootNode := a.Node(root)
	if len(rootNode.Children()) != 1 {
		t.Fatalf("root children after filter = %d, want 1 (docs has no .md, should be gone)", len(rootNode.Children()))
	}
	src := a.Node(rootNode.Children()[0])
	if len(src.Children()) != 1 {
		t.Fatalf("src children = %d, want 1 (readme.md)", len(src.Children()))
	}
}

func TestApplyEmptyCompositeIsNoop(t *testing.T) {
	a, root := buildTree()
	Apply(a, root, Composite{})
	if len(a.Node(root).Children()) != 2 {
		t.Fatalf("empty composite should not detach anything")
	}
}

func TestPruneRemovesEmptyDirectories(t *testing.T) {
	a, root := buildTree()
	// simulate a filter pass leaving docs/ with no surviving children
	docsID := a.Node(root).Children()[1]
	a.Detach(a.Node(docsID).Children()[0])

	Prune(a, root)
	if len(a.Node(root).Children()) != 1 {
		t.Fatalf("prune should have removed the now-empty docs directory")
	}
}

func TestPruneNeverRemovesRoot(t *testing.T) {
	a := tree.NewArena()
	root := a.Append(record.Record{Path: "", FileType: record.Directory, Depth: 0}, 0, false)
	Prune(a, root)
	if a.Node(root).Detached() {
		t.Fatal("root must never be pruned")
	}
}
