// Package walk implements the parallel traversal engine: a pool of
// worker goroutines walks a rooted subtree with work-stealing for load
// balancing, grounded on otuschhoff/cwalk's branch/worker model, and
// emits FileRecords to a single accumulator over a channel per
// spec.md §4.1 and §5.
package walk

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/karrick/godirwalk"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"

	"github.com/rowantree/duscan/internal/errs"
	"github.com/rowantree/duscan/internal/metric"
	"github.com/rowantree/duscan/internal/platform"
	"github.com/rowantree/duscan/internal/progress"
	"github.com/rowantree/duscan/internal/record"
)

// Config is the immutable TraversalConfig the walker consumes,
// derived by the caller from the external Context (spec.md §6).
type Config struct {
	Root            string
	Workers         int
	Metric          metric.Kind
	Hidden          bool
	NoIgnore        bool
	NoGit           bool
	Follow          bool
	SameFS          bool
	SkipNames       map[string]bool
	WantOwner       bool
	WantXattr       bool
	MaxSymlinkDepth int
}

// DefaultSkipNames mirrors the teacher's hardcoded ".snapshot" skip,
// generalized into configuration (SPEC_FULL §11).
func DefaultSkipNames() map[string]bool {
	return map[string]bool{".snapshot": true}
}

// EventKind tags a TraversalState value from spec.md §5.
type EventKind int

const (
	Ongoing EventKind = iota
	WarningEvent
	Done
)

// Event is one message on the walker's record channel.
type Event struct {
	Kind    EventKind
	Record  record.Record
	Warning *errs.Error
}

// branch is one worker's unit of traversal work: a directory
// identified by parent pointer + basename, the way cwalk.go's
// walkBranch avoids recomputing absolute paths for every descendant.
type branch struct {
	parent   *branch
	basename string
	depth    int
	ignore   *ignoreSet // accumulated ignore rules inherited from ancestors
}

func (b *branch) isRoot() bool { return b.parent == nil }

func (b *branch) relPathElems() []string {
	if b.isRoot() {
		return nil
	}
	return append(b.parent.relPathElems(), b.basename)
}

func (b *branch) relPath() string {
	return strings.Join(b.relPathElems(), "/")
}

func (b *branch) absPath(root string) string {
	if b.isRoot() {
		return root
	}
	return filepath.Join(root, b.relPath())
}

type worker struct {
	id     int
	mu     sync.Mutex
	queue  []*branch
	walker *Walker
}

func (w *worker) queueLen() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.queue)
}

func (w *worker) queuePush(b *branch) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.queue = append(w.queue, b)
}

func (w *worker) queuePop() *branch {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.queue) == 0 {
		return nil
	}
	b := w.queue[len(w.queue)-1]
	w.queue = w.queue[:len(w.queue)-1]
	return b
}

// Walker enumerates the rooted subtree in parallel, emitting Events to
// a single accumulator channel. Not safe for concurrent use; Run
// should be called once.
type Walker struct {
	cfg      Config
	platform platform.Platform
	logger   *zap.Logger
	sink     progress.Sink
	rootDev  uint64
	haveDev  bool

	visited *xsync.MapOf[string, bool] // real paths seen, guards symlink cycles

	workerMu sync.Mutex
	workers  []*worker
	wg       sync.WaitGroup

	events chan Event

	cancel context.CancelFunc
	ctx    context.Context
}

// New builds a Walker for cfg, using plat for platform-specific
// metadata and logger/sink for diagnostics and progress reporting.
func New(cfg Config, plat platform.Platform, logger *zap.Logger, sink progress.Sink) *Walker {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.SkipNames == nil {
		cfg.SkipNames = DefaultSkipNames()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if sink == nil {
		sink = progress.Noop{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Walker{
		cfg:      cfg,
		platform: plat,
		logger:   logger,
		sink:     sink,
		visited:  xsync.NewMapOf[string, bool](),
		events:   make(chan Event, 256),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Stop cancels the walk; workers observe it at the next directory
// boundary and return without waiting for in-flight I/O.
func (w *Walker) Stop() { w.cancel() }

// Run starts the traversal and returns the event channel the
// accumulator reads from. The channel is closed (after a final Done
// event) once every worker has exited. Run fails fast with
// RootMissing if the root cannot be lstat'd or is not a directory.
func (w *Walker) Run() (<-chan Event, error) {
	info, err := os.Lstat(w.cfg.Root)
	if err != nil {
		return nil, errs.RootMissing(w.cfg.Root, err)
	}
	if !info.IsDir() {
		return nil, errs.RootMissing(w.cfg.Root, os.ErrInvalid)
	}
	if rootMeta := w.platform.Populate(w.cfg.Root, info, false, false); rootMeta.DevSet {
		w.rootDev, w.haveDev = rootMeta.Dev, true
	}

	w.workerMu.Lock()
	for i := 0; i < w.cfg.Workers; i++ {
		w.workers = append(w.workers, &worker{id: i, walker: w})
	}

	// The root is queued before any worker starts, so no worker can find
	// every queue empty and exit before the walk has begun.
	root := &branch{ignore: &ignoreSet{}}
	if !w.cfg.NoIgnore {
		_ = root.ignore.loadIgnoreFile(filepath.Join(w.cfg.Root, ".gitignore"))
	}
	w.workers[0].queuePush(root)

	for _, wk := range w.workers {
		w.wg.Add(1)
		go w.runWorker(wk)
	}
	w.workerMu.Unlock()

	go func() {
		w.wg.Wait()
		w.events <- Event{Kind: Done}
		close(w.events)
	}()

	return w.events, nil
}

func (w *Walker) runWorker(wk *worker) {
	defer w.wg.Done()
	for {
		if w.ctx.Err() != nil {
			return
		}
		b := wk.queuePop()
		if b == nil {
			if !w.steal(wk) {
				return
			}
			continue
		}
		w.processBranch(wk, b)
	}
}

func (w *Walker) steal(thief *worker) bool {
	w.workerMu.Lock()
	defer w.workerMu.Unlock()
	for _, victim := range w.workers {
		if victim.id == thief.id {
			continue
		}
		if victim.queueLen() > 1 {
			if b := victim.queuePop(); b != nil {
				thief.queuePush(b)
				return true
			}
		}
	}
	return false
}

func (w *Walker) warn(context string, err error) {
	e := errs.Wrap(errs.Warning, context, err)
	w.events <- Event{Kind: WarningEvent, Warning: e}
	w.logger.Debug("warning", zap.String("context", context), zap.Error(err))
}

func (w *Walker) processBranch(wk *worker, b *branch) {
	absPath := b.absPath(w.cfg.Root)
	relPath := b.relPath()

	info, err := os.Lstat(absPath)
	if err != nil {
		w.warn("lstat "+absPath, err)
		return
	}

	meta := w.platform.Populate(absPath, info, w.cfg.WantXattr, w.cfg.WantOwner)
	if w.cfg.SameFS && w.haveDev && meta.DevSet && meta.Dev != w.rootDev {
		return
	}
	dirRec := record.Record{
		Path:     relPath,
		Depth:    b.depth,
		FileType: record.Directory,
		Metadata: meta,
		Metric:   metric.Value{Kind: w.cfg.Metric},
	}
	w.events <- Event{Kind: Ongoing, Record: dirRec}
	w.sink.NoteDiscovered(1)

	entries, err := godirwalk.ReadDirents(absPath, nil)
	if err != nil {
		w.warn("readdir "+absPath, err)
		return
	}

	ign := b.ignore
	if ign == nil {
		ign = &ignoreSet{}
	}
	if !w.cfg.NoIgnore && !b.isRoot() {
		ign = ign.clone()
		_ = ign.loadIgnoreFile(filepath.Join(absPath, ".gitignore"))
	}

	for _, entry := range entries {
		name := entry.Name()
		if name == "." || name == ".." {
			continue
		}
		if w.cfg.SkipNames[name] {
			continue
		}
		if w.cfg.NoGit && name == ".git" {
			continue
		}
		if !w.cfg.Hidden && strings.HasPrefix(name, ".") {
			continue
		}
		childRel := name
		if !b.isRoot() {
			childRel = relPath + "/" + name
		}
		if !w.cfg.NoIgnore && ign.matches(childRel, entry.IsDir()) {
			continue
		}

		childAbs := filepath.Join(absPath, name)
		if entry.IsDir() {
			child := &branch{parent: b, basename: name, depth: b.depth + 1, ignore: ign}
			wk.queuePush(child)
			continue
		}

		w.processLeaf(wk, b, childAbs, childRel, entry, b.depth+1)
	}
}

func (w *Walker) processLeaf(wk *worker, parent *branch, absPath, relPath string, entry *godirwalk.Dirent, depth int) {
	info, err := os.Lstat(absPath)
	if err != nil {
		w.warn("lstat "+absPath, err)
		return
	}

	ft := classify(info.Mode())
	meta := w.platform.Populate(absPath, info, w.cfg.WantXattr, w.cfg.WantOwner)

	rec := record.Record{
		Path:     relPath,
		Depth:    depth,
		FileType: ft,
		Metadata: meta,
	}

	if ft == record.Symlink {
		if target, err := os.Readlink(absPath); err == nil {
			rec.SymlinkTarget, rec.HasTarget = target, true
		}
		if w.cfg.Follow {
			w.followSymlink(wk, parent, absPath, relPath, depth)
		}
		rec.Metric = metric.Value{Kind: w.cfg.Metric, Raw: symlinkMetricValue(w.cfg.Metric, meta)}
		w.events <- Event{Kind: Ongoing, Record: rec}
		w.sink.NoteDiscovered(1)
		return
	}

	val, err := w.measure(absPath, ft, meta)
	if err != nil {
		w.warn("measure "+absPath, err)
	}
	rec.Metric = metric.Value{Kind: w.cfg.Metric, Raw: val}
	w.events <- Event{Kind: Ongoing, Record: rec}
	w.sink.NoteDiscovered(1)
}

// followSymlink resolves a symlink's target and, when it is a
// directory not already visited (guarding cycles per spec.md §3's
// symlink policy and §9's open question), queues it for traversal as
// though it were a regular child directory.
func (w *Walker) followSymlink(wk *worker, parent *branch, absPath, relPath string, depth int) {
	if w.cfg.MaxSymlinkDepth > 0 && depth > w.cfg.MaxSymlinkDepth {
		return
	}
	real, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return
	}
	if _, loaded := w.visited.LoadOrStore(real, true); loaded {
		w.warn("symlink cycle at "+absPath, errs.New(errs.Warning, absPath, "cycle detected"))
		return
	}
	info, err := os.Stat(real)
	if err != nil || !info.IsDir() {
		return
	}
	name := filepath.Base(relPath)
	child := &branch{parent: parent, basename: name, depth: depth}
	wk.queuePush(child)
}

// measure computes the metric value for a leaf entry. Lines/words
// require reading file contents; logical/physical/blocks come from
// the metadata snapshot already populated by the platform adapter.
func (w *Walker) measure(absPath string, ft record.Type, meta record.Metadata) (int64, error) {
	switch w.cfg.Metric {
	case metric.Physical:
		if meta.PhysicalSet {
			return meta.Physical, nil
		}
		return meta.LenBytes, nil
	case metric.Blocks:
		if meta.BlocksSet {
			return meta.Blocks, nil
		}
		return 0, nil
	case metric.Lines, metric.Words:
		if ft != record.Regular {
			return 0, nil
		}
		return countLinesOrWords(absPath, w.cfg.Metric)
	default:
		return meta.LenBytes, nil
	}
}

func countLinesOrWords(path string, kind metric.Kind) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var count int64
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	if kind == metric.Lines {
		sc.Split(bufio.ScanLines)
	} else {
		sc.Split(bufio.ScanWords)
	}
	for sc.Scan() {
		count++
	}
	return count, sc.Err()
}

// symlinkMetricValue returns a symlink's contribution to its own
// metric when it is not being followed: zero for line/word metrics
// (no content to scan), the link's own size for byte/block metrics.
func symlinkMetricValue(kind metric.Kind, meta record.Metadata) int64 {
	switch kind {
	case metric.Lines, metric.Words:
		return 0
	case metric.Physical:
		if meta.PhysicalSet {
			return meta.Physical
		}
		return meta.LenBytes
	case metric.Blocks:
		if meta.BlocksSet {
			return meta.Blocks
		}
		return 0
	default:
		return meta.LenBytes
	}
}

func classify(mode os.FileMode) record.Type {
	switch {
	case mode&os.ModeSymlink != 0:
		return record.Symlink
	case mode.IsDir():
		return record.Directory
	case mode&os.ModeNamedPipe != 0:
		return record.Fifo
	case mode&os.ModeSocket != 0:
		return record.Socket
	case mode&os.ModeCharDevice != 0:
		return record.CharDevice
	case mode&os.ModeDevice != 0:
		return record.BlockDevice
	case mode.IsRegular():
		return record.Regular
	default:
		return record.Unknown
	}
}
