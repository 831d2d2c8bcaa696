// Package duscan ties the pipeline stages together: Walker →
// AggregationEngine → Filter → Pruner → Ordering → Renderer, per
// spec.md §2's data-flow diagram. cmd/duscan is the only caller; the
// package itself has no cobra/viper/zap-construction dependency beyond
// accepting already-built capabilities, keeping the core importable on
// its own.
package duscan

import (
	"os"
	"regexp"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/rowantree/duscan/internal/aggregate"
	"github.com/rowantree/duscan/internal/config"
	"github.com/rowantree/duscan/internal/errs"
	"github.com/rowantree/duscan/internal/filter"
	"github.com/rowantree/duscan/internal/metric"
	"github.com/rowantree/duscan/internal/order"
	"github.com/rowantree/duscan/internal/platform"
	"github.com/rowantree/duscan/internal/progress"
	"github.com/rowantree/duscan/internal/record"
	"github.com/rowantree/duscan/internal/render"
	"github.com/rowantree/duscan/internal/style"
	"github.com/rowantree/duscan/internal/walk"
)

// Scan is the result of running the full pipeline: the rendered output
// string plus any warnings collected along the way.
type Scan struct {
	Output   string
	Warnings []*errs.Error
}

// Run executes the full pipeline against ctx, using the supplied
// capabilities (logger/sink/style may be nil: logger and sink fall back
// to no-op implementations, style to a default Theme).
func Run(ctx config.Context, logger *zap.Logger, sink progress.Sink, prov style.Provider) (*Scan, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sink == nil {
		sink = progress.Noop{}
	}
	if prov == nil {
		prov = style.NewTheme(resolveColor(ctx.Color), ctx.Icons)
	}
	plat := platform.New()

	wantOwner := ctx.Long && (ctx.Owner || ctx.Group)
	wantXattr := ctx.Long

	walkCfg := walk.Config{
		Root:            ctx.Root,
		Workers:         ctx.Threads,
		Metric:          ctx.Metric,
		Hidden:          ctx.Hidden,
		NoIgnore:        ctx.NoIgnore,
		NoGit:           ctx.NoGit,
		Follow:          ctx.Follow,
		SameFS:          ctx.SameFS,
		SkipNames:       ctx.SkipNames,
		WantOwner:       wantOwner,
		WantXattr:       wantXattr,
		MaxSymlinkDepth: 64,
	}

	w := walk.New(walkCfg, plat, logger, sink)
	events, err := w.Run()
	if err != nil {
		return nil, err
	}

	// Size widths are measured in the unit the renderer displays: raw
	// digits whenever Human is off, whatever ctx.Unit says.
	sizeUnit := ctx.Unit
	if !ctx.Human {
		sizeUnit = metric.UnitNone
	}
	engine := aggregate.New(sizeUnit)
	result, err := engine.Run(events)
	if err != nil {
		return nil, err
	}

	if pred := buildPredicate(ctx); !pred.Empty() {
		filter.Apply(result.Arena, result.Root, pred)
	}
	if ctx.Prune {
		filter.Prune(result.Arena, result.Root)
	}

	order.Apply(result.Arena, result.Root, order.Compose(ctx.Sort, ctx.DirOrder))

	// Column widths must reflect the post-filter, post-prune set
	// (spec.md §4.7), not the single aggregation pass that ran before
	// filter.Apply/filter.Prune detached anything.
	widths := aggregate.RecomputeColumns(result.Arena, result.Root, sizeUnit)

	opts := render.Options{
		Layout:        ctx.Layout,
		Level:         ctx.Level,
		Unit:          ctx.Unit,
		Human:         ctx.Human,
		Long:          ctx.Long,
		ShowPhysical:  ctx.ShowPhysical,
		Truncate:      ctx.Truncate,
		TermWidth:     ctx.TermWidth,
		SuppressSize:  ctx.SuppressSize,
		Footer:        ctx.Count || ctx.Report,
		Report:        ctx.Report,
		AbsolutePaths: ctx.AbsolutePaths,
		Root:          ctx.Root,
		Widths:        widths,
		Columns: render.Columns{
			Ino:        ctx.Ino,
			Nlink:      ctx.Nlink,
			Owner:      ctx.Owner,
			Group:      ctx.Group,
			Octal:      ctx.Octal,
			Time:       ctx.Time,
			TimeFormat: timeFormatLayout(ctx.TimeFormat),
		},
	}

	output := render.Render(result.Arena, result.Root, opts, prov, plat)
	sink.Terminate()

	return &Scan{Output: output, Warnings: aggregate.SortedWarnings(result.Warnings)}, nil
}

func resolveColor(mode config.ColorMode) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		return isTerminal()
	}
}

func buildPredicate(ctx config.Context) filter.Composite {
	var preds []filter.Predicate
	if ctx.Pattern != "" {
		if ctx.Glob {
			preds = append(preds, filter.Glob{Pattern: ctx.Pattern})
		} else if re, err := regexp.Compile(ctx.Pattern); err == nil {
			preds = append(preds, filter.Regex{Expr: re})
		}
	}
	if len(ctx.FileTypeFilter) > 0 {
		types := make(map[record.Type]bool, len(ctx.FileTypeFilter))
		for _, t := range ctx.FileTypeFilter {
			types[t] = true
		}
		preds = append(preds, filter.FileType{Types: types})
	}
	return filter.Composite{Predicates: preds}
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func timeFormatLayout(f config.TimeFormat) string {
	switch f {
	case config.TimeShort:
		return "short"
	case config.TimeRelative:
		return "relative"
	default:
		return "2006-01-02T15:04:05Z07:00"
	}
}
