// Package cmd provides the Cobra CLI command structure for duscan.
//
// It binds every Context field (spec.md §6, SPEC_FULL §12) to a flag,
// grouped the way the teacher's cmd/cwalk/cmd/root.go groups
// output/filter/worker flags, reconciles them against a
// TFMV-stride-style viper config file, and wires the resulting Context
// into the core duscan.Run entry point.
package cmd

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/rowantree/duscan"
	"github.com/rowantree/duscan/internal/config"
	"github.com/rowantree/duscan/internal/errs"
	"github.com/rowantree/duscan/internal/logging"
	"github.com/rowantree/duscan/internal/metric"
	"github.com/rowantree/duscan/internal/order"
	"github.com/rowantree/duscan/internal/progress"
	"github.com/rowantree/duscan/internal/record"
	"github.com/rowantree/duscan/internal/render"
	"github.com/rowantree/duscan/internal/style"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "duscan [path]",
	Short: "Parallel disk-usage visualizer and filesystem analyzer",
	Long: `duscan walks a directory subtree across parallel worker goroutines,
aggregates a configurable size metric up to every ancestor with
hard-link dedup, filters and prunes the result, and renders one of
several tree, flat, or tabular layouts.

Examples:
  duscan .
  duscan --long --human /var/log
  duscan --layout table --sort rsize /home/user
  duscan --pattern '*.log' --glob --prune /srv`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

// Execute runs the root command and returns a process exit code:
// 0 on success, 1 for a User/System error, 2 for an Internal error
// (SPEC_FULL §12).
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		var e *errs.Error
		if ok := asErrsError(err, &e); ok {
			fmt.Fprintln(os.Stderr, e.Error())
			if e.Category == errs.Internal {
				fmt.Fprintln(os.Stderr, "this looks like a bug in duscan; please report it")
				return 2
			}
			return 1
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func asErrsError(err error, target **errs.Error) bool {
	for err != nil {
		if e, ok := err.(*errs.Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.Flags()

	// Output/layout flags
	flags.String("layout", "regular", "Output layout: regular, inverted, flat, inv-flat, table")
	flags.StringP("sort", "s", "name", "Sort key: name, rname, size, rsize, access, raccess, create, rcreate, mod, rmod")
	flags.String("dir-order", "none", "Directory ordering relative to files: none, first, last")
	flags.IntP("level", "L", -1, "Maximum depth to render (-1 = unlimited)")
	flags.Bool("count", false, "Append a directory/file/link count footer")
	flags.Bool("report", false, "Append an extended report footer (scanned vs. shown totals)")
	flags.Bool("absolute", false, "Render absolute paths instead of root-relative paths")

	// Metric/unit flags
	flags.String("metric", "logical", "Size metric: logical, physical, blocks, lines, words")
	flags.String("unit", "binary", "Byte unit family: none, si, binary")
	flags.BoolP("human", "H", true, "Render byte metrics in human-scaled form")
	flags.Bool("show-physical", false, "Show physical size alongside logical size in long view")
	flags.Bool("suppress-size", false, "Omit the size column entirely")

	// Traversal flags
	flags.IntP("threads", "t", 0, "Worker goroutines (0 = GOMAXPROCS)")
	flags.BoolP("hidden", "a", false, "Include dotfiles and dot-directories")
	flags.Bool("no-ignore", false, "Do not honor .gitignore files")
	flags.Bool("no-git", false, "Skip .git directories even when --hidden is set")
	flags.Bool("follow", false, "Follow symbolic links")
	flags.BoolP("same-fs", "x", false, "Do not cross filesystem boundaries")
	flags.StringSlice("skip", nil, "Additional directory basenames to skip")

	// Filter flags
	flags.StringSlice("type", nil, "Restrict to file types: file, dir, symlink, fifo, socket, char, block")
	flags.String("pattern", "", "Glob or regex pattern matched against any path component")
	flags.Bool("glob", false, "Treat --pattern as a shell glob instead of a regex")
	flags.Bool("prune", false, "Remove directories left empty after filtering")

	// Long-view flags
	flags.BoolP("long", "l", false, "Show the long-view metadata columns")
	flags.Bool("ino", false, "Show the inode column (requires --long)")
	flags.Bool("nlink", false, "Show the link-count column (requires --long)")
	flags.Bool("owner", false, "Show the owner column (requires --long)")
	flags.Bool("group", false, "Show the group column (requires --long)")
	flags.Bool("octal", false, "Show permissions as octal instead of symbolic")
	flags.Bool("time", false, "Show the modification-time column (requires --long)")
	flags.String("time-format", "iso", "Timestamp format: iso, short, relative")

	// Style flags
	flags.Bool("icons", false, "Show file-type icon glyphs")
	flags.String("color", "auto", "Color mode: auto, always, never")
	flags.Bool("truncate", false, "Truncate lines to the terminal width")

	// Logging/progress/config flags
	flags.StringVar(&cfgFile, "config", "", "Config file (default $HOME/.duscan.yaml)")
	flags.BoolP("verbose", "v", false, "Enable debug-level logging")
	flags.Bool("silent", false, "Suppress all logging but errors")
	flags.Bool("progress", false, "Show a progress spinner on stderr while scanning")

	for _, name := range []string{
		"layout", "sort", "dir-order", "level", "count", "report", "absolute",
		"metric", "unit", "human", "show-physical", "suppress-size",
		"threads", "hidden", "no-ignore", "no-git", "follow", "same-fs", "skip",
		"type", "pattern", "glob", "prune",
		"long", "ino", "nlink", "owner", "group", "octal", "time", "time-format",
		"icons", "color", "truncate",
		"verbose", "silent", "progress",
	} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
}

// initConfig reads a .duscan.yaml config file, the way
// TFMV-stride/cmd/root.go discovers .stride.yaml.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return
		}
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".duscan")
	}

	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

func runScan(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	ctx, err := buildContext(root)
	if err != nil {
		return errs.New(errs.User, "flags", "%v", err)
	}

	level := logging.Normal
	switch {
	case viper.GetBool("verbose"):
		level = logging.Verbose
	case viper.GetBool("silent"):
		level = logging.Silent
	}
	logger, err := logging.New(level)
	if err != nil {
		return errs.Wrap(errs.System, "logger init", err)
	}
	defer func() { _ = logger.Sync() }()

	sink := progress.NewTerminal(viper.GetBool("progress"))
	prov := style.NewTheme(resolveColor(ctx.Color), ctx.Icons)

	scan, err := duscan.Run(ctx, logger, sink, prov)
	if err != nil {
		return err
	}

	fmt.Println(scan.Output)
	for _, w := range scan.Warnings {
		fmt.Fprintln(os.Stderr, w.Error())
	}
	return nil
}

func buildContext(root string) (config.Context, error) {
	ctx := config.Default()
	ctx.Root = root

	m, err := metric.ParseKind(viper.GetString("metric"))
	if err != nil {
		return ctx, err
	}
	ctx.Metric = m

	u, err := metric.ParseUnit(viper.GetString("unit"))
	if err != nil {
		return ctx, err
	}
	ctx.Unit = u
	ctx.Human = viper.GetBool("human")
	ctx.ShowPhysical = viper.GetBool("show-physical")
	ctx.SuppressSize = viper.GetBool("suppress-size")

	layout, err := render.ParseLayout(viper.GetString("layout"))
	if err != nil {
		return ctx, err
	}
	ctx.Layout = layout

	sortKey, err := order.ParseKey(viper.GetString("sort"))
	if err != nil {
		return ctx, err
	}
	ctx.Sort = sortKey

	dirOrder, err := order.ParseDirPolicy(viper.GetString("dir-order"))
	if err != nil {
		return ctx, err
	}
	ctx.DirOrder = dirOrder

	ctx.Level = viper.GetInt("level")
	ctx.Count = viper.GetBool("count")
	ctx.Report = viper.GetBool("report")
	ctx.AbsolutePaths = viper.GetBool("absolute")

	if threads := viper.GetInt("threads"); threads > 0 {
		ctx.Threads = threads
	}
	ctx.Hidden = viper.GetBool("hidden")
	ctx.NoIgnore = viper.GetBool("no-ignore")
	ctx.NoGit = viper.GetBool("no-git")
	ctx.Follow = viper.GetBool("follow")
	ctx.SameFS = viper.GetBool("same-fs")

	for _, name := range viper.GetStringSlice("skip") {
		name = strings.TrimSpace(name)
		if name != "" {
			ctx.SkipNames[name] = true
		}
	}

	if types := viper.GetStringSlice("type"); len(types) > 0 {
		ft, err := parseFileTypes(types)
		if err != nil {
			return ctx, err
		}
		ctx.FileTypeFilter = ft
	}
	ctx.Pattern = viper.GetString("pattern")
	ctx.Glob = viper.GetBool("glob")
	if ctx.Pattern != "" && !ctx.Glob {
		if _, err := regexp.Compile(ctx.Pattern); err != nil {
			return ctx, fmt.Errorf("invalid --pattern regex: %w", err)
		}
	}
	ctx.Prune = viper.GetBool("prune")

	ctx.Long = viper.GetBool("long")
	ctx.Ino = viper.GetBool("ino")
	ctx.Nlink = viper.GetBool("nlink")
	ctx.Owner = viper.GetBool("owner")
	ctx.Group = viper.GetBool("group")
	ctx.Octal = viper.GetBool("octal")
	ctx.Time = viper.GetBool("time")
	ctx.TimeFormat = config.ParseTimeFormat(viper.GetString("time-format"))

	ctx.Icons = viper.GetBool("icons")
	ctx.Color = config.ParseColorMode(viper.GetString("color"))
	ctx.Truncate = viper.GetBool("truncate")
	if ctx.Truncate {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			ctx.TermWidth = w
		}
	}

	return ctx, nil
}

func parseFileTypes(names []string) ([]record.Type, error) {
	types := make([]record.Type, 0, len(names))
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "file", "regular":
			types = append(types, record.Regular)
		case "dir", "directory":
			types = append(types, record.Directory)
		case "symlink", "link":
			types = append(types, record.Symlink)
		case "fifo", "pipe":
			types = append(types, record.Fifo)
		case "socket":
			types = append(types, record.Socket)
		case "char", "char_device":
			types = append(types, record.CharDevice)
		case "block", "block_device":
			types = append(types, record.BlockDevice)
		default:
			return nil, fmt.Errorf("unknown --type value %q", name)
		}
	}
	return types, nil
}

func resolveColor(mode config.ColorMode) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		return term.IsTerminal(int(os.Stdout.Fd()))
	}
}
