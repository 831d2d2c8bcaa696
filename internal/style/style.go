// Package style defines the StyleProvider capability spec.md §6
// carves out of the core (icon glyph tables, ANSI color themes, and
// LS_COLORS parsing live here, never inside the renderer itself) and
// ships a concrete default implementation grounded on the original
// erdtree's icon/theme tables (_examples/original_source/src/icon.rs,
// src/render/theme.rs).
package style

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rowantree/duscan/internal/record"
)

// Glyphs are the themed box-drawing characters the tree renderer uses
// for branch prefixes.
type Glyphs struct {
	Vertical   string // "│  " continuation
	Branch     string // "├─ " non-last sibling
	LastBranch string // "└─ " last sibling (regular layout only)
	Sep        string // three-space pad once a sibling chain has ended
}

// Provider is the capability the core consumes for colorization and
// iconography; it never inspects the filesystem or reads LS_COLORS
// itself.
type Provider interface {
	// StyleFor returns an opaque token describing how a record should
	// be painted, computed once per record during rendering.
	StyleFor(path string, ft record.Type, meta *record.Metadata) any
	// Paint applies a token's styling to text, returning ANSI-wrapped text.
	Paint(token any, text string) string
	// TreeGlyphs returns the branch-drawing glyphs for the active theme.
	TreeGlyphs() Glyphs
	// SizePalette returns a token used to color a size cell's unit suffix.
	SizePalette(unitLabel string) any
	// IconFor returns the icon glyph for a path/type, or "" if icons
	// are disabled or no glyph is mapped.
	IconFor(path string, ft record.Type) string
	// Secondary renders text as a dimmed annotation, used for the
	// physical-size-alongside-logical-size cell (--show-physical).
	Secondary(text string) string
}

// ansiToken is the concrete token type emitted by Theme.
type ansiToken struct {
	code string
}

// Theme is the default Provider: an LS_COLORS-driven or built-in ANSI
// palette plus a small extension-keyed icon table. It is initialized
// once and never mutated afterward (spec.md §9's "global style
// registry" design note), so it is safe to share across renders.
type Theme struct {
	colors  map[string]string // extension or special key -> SGR code
	icons   map[string]string // extension or special key -> glyph
	iconsOn bool
	colorOn bool
	glyphs  Glyphs
}

// NewTheme builds a Theme, parsing LS_COLORS from the environment when
// present and falling back to a small built-in palette otherwise.
func NewTheme(colorOn, iconsOn bool) *Theme {
	t := &Theme{
		colors:  defaultColors(),
		icons:   defaultIcons(),
		iconsOn: iconsOn,
		colorOn: colorOn,
		glyphs: Glyphs{
			Vertical:   "│  ",
			Branch:     "├─ ",
			LastBranch: "└─ ",
			Sep:        "   ",
		},
	}
	if v := os.Getenv("LS_COLORS"); v != "" {
		t.mergeLSColors(v)
	}
	return t
}

// mergeLSColors parses a colon-separated LS_COLORS string of
// "*.ext=code" and "di=code"-style entries, overlaying the defaults.
func (t *Theme) mergeLSColors(spec string) {
	for _, entry := range strings.Split(spec, ":") {
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key, code := parts[0], parts[1]
		key = strings.TrimPrefix(key, "*")
		if key == "" || code == "" {
			continue
		}
		t.colors[strings.ToLower(key)] = code
	}
}

func (t *Theme) StyleFor(path string, ft record.Type, meta *record.Metadata) any {
	if ft == record.Directory {
		return ansiToken{code: t.colors["di"]}
	}
	if ft == record.Symlink {
		return ansiToken{code: t.colors["ln"]}
	}
	ext := strings.ToLower(filepath.Ext(path))
	if code, ok := t.colors[ext]; ok {
		return ansiToken{code: code}
	}
	if meta != nil && meta.ModeSet && os.FileMode(meta.Mode)&0o111 != 0 {
		return ansiToken{code: t.colors["ex"]}
	}
	return ansiToken{code: ""}
}

func (t *Theme) Paint(token any, text string) string {
	if !t.colorOn {
		return text
	}
	at, ok := token.(ansiToken)
	if !ok || at.code == "" {
		return text
	}
	return "\x1b[" + at.code + "m" + text + "\x1b[0m"
}

func (t *Theme) TreeGlyphs() Glyphs { return t.glyphs }

func (t *Theme) SizePalette(unitLabel string) any {
	switch strings.TrimSpace(unitLabel) {
	case "B":
		return ansiToken{code: "37"}
	case "KiB", "kB":
		return ansiToken{code: "36"}
	case "MiB", "MB":
		return ansiToken{code: "33"}
	case "GiB", "GB":
		return ansiToken{code: "31"}
	default:
		return ansiToken{code: "35"}
	}
}

func (t *Theme) Secondary(text string) string {
	if !t.colorOn {
		return text
	}
	return "\x1b[2m" + text + "\x1b[0m"
}

func (t *Theme) IconFor(path string, ft record.Type) string {
	if !t.iconsOn {
		return ""
	}
	if ft == record.Directory {
		return t.icons["di"]
	}
	ext := strings.ToLower(filepath.Ext(path))
	if icon, ok := t.icons[ext]; ok {
		return icon
	}
	return t.icons["file"]
}

func defaultColors() map[string]string {
	return map[string]string{
		"di":    "34;1",
		"ln":    "36",
		"ex":    "32;1",
		".go":   "36",
		".md":   "37",
		".json": "33",
		".tar":  "31",
		".gz":   "31",
		".zip":  "31",
	}
}

func defaultIcons() map[string]string {
	return map[string]string{
		"di":    "",
		"file":  "",
		".go":   "",
		".md":   "",
		".json": "",
	}
}

// Null is a no-op Provider (identity paint, ASCII glyphs, no icons),
// used by tests and by render.Render when given a nil provider, so the
// core never special-cases "no theme" internally.
type Null struct{}

func (Null) StyleFor(string, record.Type, *record.Metadata) any { return nil }
func (Null) Paint(_ any, text string) string                    { return text }
func (Null) TreeGlyphs() Glyphs {
	return Glyphs{Vertical: "|  ", Branch: "|- ", LastBranch: "`- ", Sep: "   "}
}
func (Null) SizePalette(string) any             { return nil }
func (Null) IconFor(string, record.Type) string { return "" }
func (Null) Secondary(text string) string       { return text }

// ParseUint parses an unsigned integer with a base prefix ("0o755",
// "0x1f", "493"); nothing in duscan's flag parsing calls it.
func ParseUint(s string) (uint64, error) {
	return strconv.ParseUint(s, 0, 64)
}
