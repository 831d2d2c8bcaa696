package aggregate

import (
	"testing"

	"github.com/rowantree/duscan/internal/metric"
	"github.com/rowantree/duscan/internal/record"
	"github.com/rowantree/duscan/internal/walk"
)

func ongoing(path string, depth int, ft record.Type, size int64) walk.Event {
	return walk.Event{
		Kind: walk.Ongoing,
		Record: record.Record{
			Path:     path,
			Depth:    depth,
			FileType: ft,
			Metric:   metric.Value{Kind: metric.Logical, Raw: size},
		},
	}
}

func feed(events ...walk.Event) <-chan walk.Event {
	ch := make(chan walk.Event, len(events)+1)
	for _, e := range events {
		ch <- e
	}
	ch <- walk.Event{Kind: walk.Done}
	close(ch)
	return ch
}

func TestRunSumsDirectorySizes(t *testing.T) {
	events := []walk.Event{
		ongoing("", 0, record.Directory, 0),
		ongoing("a.txt", 1, record.Regular, 10),
		ongoing("sub", 1, record.Directory, 0),
		ongoing("sub/b.txt", 2, record.Regular, 20),
	}

	res, err := New(metric.UnitNone).Run(feed(events...))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	root := res.Arena.Node(res.Root)
	if root.Record.Metric.Raw != 30 {
		t.Fatalf("root size = %d, want 30", root.Record.Metric.Raw)
	}
	if len(root.Children()) != 2 {
		t.Fatalf("root children = %d, want 2", len(root.Children()))
	}
}

func TestRunRecordsOrphanAsWarning(t *testing.T) {
	events := []walk.Event{
		ongoing("", 0, record.Directory, 0),
		ongoing("missing-parent/x.txt", 2, record.Regular, 5),
	}
	res, err := New(metric.UnitNone).Run(feed(events...))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("warnings = %d, want 1", len(res.Warnings))
	}
}

func TestRunDedupsHardLinks(t *testing.T) {
	key := [2]uint64{42, 1}
	mkMeta := func() record.Metadata {
		return record.Metadata{InoSet: true, Ino: key[0], DevSet: true, Dev: key[1], NlinkSet: true, Nlink: 2}
	}

	events := []walk.Event{
		ongoing("", 0, record.Directory, 0),
		{Kind: walk.Ongoing, Record: record.Record{Path: "a", Depth: 1, FileType: record.Regular, Metadata: mkMeta(), Metric: metric.Value{Kind: metric.Logical, Raw: 100}}},
		{Kind: walk.Ongoing, Record: record.Record{Path: "b", Depth: 1, FileType: record.Regular, Metadata: mkMeta(), Metric: metric.Value{Kind: metric.Logical, Raw: 100}}},
	}

	res, err := New(metric.UnitNone).Run(feed(events...))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	root := res.Arena.Node(res.Root)
	if root.Record.Metric.Raw != 100 {
		t.Fatalf("root size = %d, want 100 (second hardlink deduped)", root.Record.Metric.Raw)
	}
}

func TestRecomputeColumnsReflectsDetachedNodes(t *testing.T) {
	events := []walk.Event{
		ongoing("", 0, record.Directory, 0),
		{Kind: walk.Ongoing, Record: record.Record{
			Path: "a.txt", Depth: 1, FileType: record.Regular,
			Metadata: record.Metadata{InoSet: true, Ino: 5},
			Metric:   metric.Value{Kind: metric.Logical, Raw: 1},
		}},
		{Kind: walk.Ongoing, Record: record.Record{
			Path: "wide_inode.txt", Depth: 1, FileType: record.Regular,
			Metadata: record.Metadata{InoSet: true, Ino: 123456},
			Metric:   metric.Value{Kind: metric.Logical, Raw: 1},
		}},
	}
	res, err := New(metric.UnitNone).Run(feed(events...))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	before := RecomputeColumns(res.Arena, res.Root, metric.UnitNone)
	if before.MaxInodeWidth != 6 {
		t.Fatalf("MaxInodeWidth before detach = %d, want 6 (123456 has 6 digits)", before.MaxInodeWidth)
	}

	for _, id := range res.Arena.Descendants(res.Root) {
		if res.Arena.Node(id).Record.Path == "wide_inode.txt" {
			res.Arena.Detach(id)
		}
	}

	after := RecomputeColumns(res.Arena, res.Root, metric.UnitNone)
	if after.MaxInodeWidth != 1 {
		t.Fatalf("MaxInodeWidth after detach = %d, want 1 (only ino=5 remains)", after.MaxInodeWidth)
	}
}

func TestRunNoRootIsInternalError(t *testing.T) {
	events := []walk.Event{
		ongoing("a.txt", 1, record.Regular, 10),
	}
	if _, err := New(metric.UnitNone).Run(feed(events...)); err == nil {
		t.Fatal("expected error when no root record observed")
	}
}
