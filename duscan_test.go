package duscan

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/rowantree/duscan/internal/config"
	"github.com/rowantree/duscan/internal/metric"
	"github.com/rowantree/duscan/internal/order"
	"github.com/rowantree/duscan/internal/record"
	"github.com/rowantree/duscan/internal/render"
	"github.com/rowantree/duscan/internal/style"
)

// writeSized writes n bytes of filler content to path, creating parent
// directories as needed, matching spec.md §8's literal byte-size
// scenarios.
func writeSized(t *testing.T, root, rel string, n int) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, bytes.Repeat([]byte("x"), n), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func baseContext(root string) config.Context {
	ctx := config.Default()
	ctx.Root = root
	ctx.Threads = 2
	ctx.Unit = metric.UnitNone
	ctx.Count = true
	return ctx
}

func indexOf(t *testing.T, s, substr string) int {
	t.Helper()
	i := strings.Index(s, substr)
	if i < 0 {
		t.Fatalf("expected %q to appear in output:\n%s", substr, s)
	}
	return i
}

// Scenario 1: five files and one nested directory, sorted by size
// descending.
func TestScenarioSizeOrdering(t *testing.T) {
	root := t.TempDir()
	writeSized(t, root, "necronomicon.txt", 83)
	writeSized(t, root, "nemesis.txt", 161)
	writeSized(t, root, "nylarlathotep.txt", 100)
	writeSized(t, root, "the_yellow_king/cassildas_song.md", 143)

	ctx := baseContext(root)
	ctx.Sort = order.RSize
	ctx.Layout = render.Flat

	scan, err := Run(ctx, nil, nil, style.Null{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	out := scan.Output
	posNemesis := indexOf(t, out, "nemesis.txt")
	posYellow := indexOf(t, out, "the_yellow_king")
	posCassildas := indexOf(t, out, "cassildas_song.md")
	posNylarlathotep := indexOf(t, out, "nylarlathotep.txt")
	posNecronomicon := indexOf(t, out, "necronomicon.txt")

	if !(posNemesis < posYellow && posYellow < posCassildas && posCassildas < posNylarlathotep && posNylarlathotep < posNecronomicon) {
		t.Fatalf("expected size-descending order, got:\n%s", out)
	}
	if !strings.Contains(out, "487") {
		t.Fatalf("expected top-level aggregated size 487 in output:\n%s", out)
	}
}

// Scenario 2: --level 1 omits grandchildren from rendering but the
// footer still counts them.
func TestScenarioLevelLimit(t *testing.T) {
	root := t.TempDir()
	writeSized(t, root, "necronomicon.txt", 83)
	writeSized(t, root, "nemesis.txt", 161)
	writeSized(t, root, "nylarlathotep.txt", 100)
	writeSized(t, root, "the_yellow_king/cassildas_song.md", 143)

	ctx := baseContext(root)
	ctx.Sort = order.RSize
	ctx.Layout = render.Flat
	ctx.Level = 1

	scan, err := Run(ctx, nil, nil, style.Null{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	out := scan.Output
	if strings.Contains(out, "cassildas_song.md") {
		t.Fatalf("expected cassildas_song.md to be omitted at level 1:\n%s", out)
	}
	if !strings.Contains(out, "the_yellow_king") {
		t.Fatalf("expected the_yellow_king itself to still render:\n%s", out)
	}
	if !strings.Contains(out, "4 files") {
		t.Fatalf("expected footer to still count the hidden child, got:\n%s", out)
	}
}

// Scenario 3: glob *.txt with prune removes the now-empty nested
// directory entirely.
func TestScenarioGlobPrune(t *testing.T) {
	root := t.TempDir()
	writeSized(t, root, "necronomicon.txt", 83)
	writeSized(t, root, "nemesis.txt", 161)
	writeSized(t, root, "nylarlathotep.txt", 100)
	writeSized(t, root, "the_yellow_king/cassildas_song.md", 143)

	ctx := baseContext(root)
	ctx.Layout = render.Flat
	ctx.Pattern = "*.txt"
	ctx.Glob = true
	ctx.Prune = true

	scan, err := Run(ctx, nil, nil, style.Null{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	out := scan.Output
	if strings.Contains(out, "the_yellow_king") {
		t.Fatalf("expected the_yellow_king to be pruned away, got:\n%s", out)
	}
	for _, name := range []string{"necronomicon.txt", "nemesis.txt", "nylarlathotep.txt"} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected %s to survive the glob filter, got:\n%s", name, out)
		}
	}
}

// Scenario 4: regex ^cassildas. with prune retains only the matching
// file and its ancestor directory.
func TestScenarioRegexPrune(t *testing.T) {
	root := t.TempDir()
	writeSized(t, root, "necronomicon.txt", 83)
	writeSized(t, root, "nemesis.txt", 161)
	writeSized(t, root, "nylarlathotep.txt", 100)
	writeSized(t, root, "the_yellow_king/cassildas_song.md", 143)

	ctx := baseContext(root)
	ctx.Layout = render.Flat
	ctx.Pattern = "^cassildas."
	ctx.Glob = false
	ctx.Prune = true

	scan, err := Run(ctx, nil, nil, style.Null{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	out := scan.Output
	if strings.Contains(out, "necronomicon.txt") || strings.Contains(out, "nemesis.txt") || strings.Contains(out, "nylarlathotep.txt") {
		t.Fatalf("expected unrelated files to be filtered away, got:\n%s", out)
	}
	if !strings.Contains(out, "cassildas_song.md") || !strings.Contains(out, "the_yellow_king") {
		t.Fatalf("expected cassildas_song.md and its ancestor to survive, got:\n%s", out)
	}
	if !strings.Contains(out, "1 directory") || !strings.Contains(out, "1 file") {
		t.Fatalf("expected footer '1 directory, 1 file', got:\n%s", out)
	}
}

// Scenario 5: two hard-linked names refer to the same inode; the
// shared size is counted once at the root.
func TestScenarioHardLinkDedup(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("hard links require a POSIX filesystem")
	}
	root := t.TempDir()
	writeSized(t, root, "a.bin", 157)
	if err := os.Link(filepath.Join(root, "a.bin"), filepath.Join(root, "b.bin")); err != nil {
		t.Skipf("hard links unsupported on this filesystem: %v", err)
	}

	ctx := baseContext(root)
	ctx.Layout = render.Flat

	scan, err := Run(ctx, nil, nil, style.Null{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	out := scan.Output
	if !strings.Contains(out, "157") {
		t.Fatalf("expected root size 157 (deduped), got:\n%s", out)
	}
	if strings.Contains(out, "314") {
		t.Fatalf("expected no double-counted 314, got:\n%s", out)
	}
}

// Scenario 6: flat layout, descending by size, non-root entries as
// absolute paths.
func TestScenarioFlatDescendingAbsolute(t *testing.T) {
	root := t.TempDir()
	writeSized(t, root, "small.txt", 10)
	writeSized(t, root, "large.txt", 900)

	ctx := baseContext(root)
	ctx.Layout = render.Flat
	ctx.Sort = order.RSize
	ctx.AbsolutePaths = true
	ctx.Count = true

	scan, err := Run(ctx, nil, nil, style.Null{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	out := scan.Output
	posLarge := indexOf(t, out, filepath.ToSlash(filepath.Join(root, "large.txt")))
	posSmall := indexOf(t, out, filepath.ToSlash(filepath.Join(root, "small.txt")))
	if posLarge >= posSmall {
		t.Fatalf("expected large.txt before small.txt in descending order, got:\n%s", out)
	}
}

// TestRunFiltersToFileTypeOnly exercises the FileType predicate
// end-to-end, confirming directories are retained only through
// surviving descendants (spec.md §4.3).
func TestRunFiltersToFileTypeOnly(t *testing.T) {
	root := t.TempDir()
	writeSized(t, root, "keep.txt", 5)
	if err := os.Mkdir(filepath.Join(root, "empty_dir"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	ctx := baseContext(root)
	ctx.Layout = render.Flat
	ctx.FileTypeFilter = []record.Type{record.Regular}
	ctx.Prune = true

	scan, err := Run(ctx, nil, nil, style.Null{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	out := scan.Output
	if strings.Contains(out, "empty_dir") {
		t.Fatalf("expected empty_dir to be pruned once its only content is excluded, got:\n%s", out)
	}
	if !strings.Contains(out, "keep.txt") {
		t.Fatalf("expected keep.txt to survive, got:\n%s", out)
	}
}
