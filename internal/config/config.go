// Package config defines the Context the core consumes, spec.md §6's
// "flat configuration record enumerating every option the core
// consumes", plus the SPEC_FULL additions (path display, show-physical,
// time format). Config-file/flag resolution lives in cmd/duscan, not
// here: Context itself has no cobra/viper dependency, matching
// spec.md §1's "external to the core" boundary for the CLI surface.
package config

import (
	"runtime"

	"github.com/rowantree/duscan/internal/metric"
	"github.com/rowantree/duscan/internal/order"
	"github.com/rowantree/duscan/internal/record"
	"github.com/rowantree/duscan/internal/render"
)

// TimeFormat selects how long-view timestamps are rendered.
type TimeFormat int

const (
	TimeISO TimeFormat = iota
	TimeShort
	TimeRelative
)

// ParseTimeFormat parses a time-format name from CLI/config input.
func ParseTimeFormat(s string) TimeFormat {
	switch s {
	case "short":
		return TimeShort
	case "relative":
		return TimeRelative
	default:
		return TimeISO
	}
}

// ColorMode selects when ANSI codes are emitted.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// ParseColorMode parses a color-mode name from CLI/config input.
func ParseColorMode(s string) ColorMode {
	switch s {
	case "always":
		return ColorAlways
	case "never":
		return ColorNever
	default:
		return ColorAuto
	}
}

// Context is the flat configuration record spec.md §6 describes.
type Context struct {
	Root    string
	Threads int

	Metric metric.Kind
	Unit   metric.Unit
	Human  bool

	Level    int
	Layout   render.Layout
	Sort     order.Key
	DirOrder order.DirPolicy

	Hidden   bool
	NoIgnore bool
	NoGit    bool
	Follow   bool
	SameFS   bool

	FileTypeFilter []record.Type
	Pattern        string
	Glob           bool // true: glob pattern, false: regex

	Prune bool

	Long       bool
	Ino        bool
	Nlink      bool
	Owner      bool
	Group      bool
	Octal      bool
	Time       bool
	TimeFormat TimeFormat

	Icons bool
	Color ColorMode

	Truncate  bool
	TermWidth int

	SuppressSize  bool
	ShowPhysical  bool
	Count         bool
	Report        bool
	AbsolutePaths bool

	SkipNames map[string]bool
}

// Default returns a Context with every field at its documented default
// (spec.md §6): CWD root, platform parallelism, logical/none/no-human,
// unlimited level, regular/name/none ordering, nothing hidden or
// followed.
func Default() Context {
	return Context{
		Root:      ".",
		Threads:   runtime.GOMAXPROCS(0),
		Metric:    metric.Logical,
		Unit:      metric.UnitNone,
		Level:     -1,
		Layout:    render.Regular,
		Sort:      order.Name,
		DirOrder:  order.DirNone,
		SkipNames: map[string]bool{".snapshot": true},
	}
}
