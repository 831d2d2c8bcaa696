// Package metric represents the size kinds duscan can aggregate and the
// unit families used to render them.
package metric

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Kind is the quantity aggregated per entry.
type Kind int

const (
	// Logical is the apparent byte length of a file (Metadata.len).
	Logical Kind = iota
	// Physical is the on-disk byte footprint (blocks actually allocated).
	Physical
	// Blocks is the raw block count reported by the filesystem.
	Blocks
	// Lines counts newline-delimited lines in a file's contents.
	Lines
	// Words counts whitespace-delimited words in a file's contents.
	Words
)

func (k Kind) String() string {
	switch k {
	case Logical:
		return "logical"
	case Physical:
		return "physical"
	case Blocks:
		return "blocks"
	case Lines:
		return "lines"
	case Words:
		return "words"
	default:
		return "unknown"
	}
}

// IsByteMetric reports whether the metric's raw value is a byte count
// eligible for SI/binary unit formatting.
func (k Kind) IsByteMetric() bool {
	return k == Logical || k == Physical
}

// ParseKind parses a metric name from CLI/config input.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "logical":
		return Logical, nil
	case "physical":
		return Physical, nil
	case "blocks":
		return Blocks, nil
	case "lines", "line":
		return Lines, nil
	case "words", "word":
		return Words, nil
	default:
		return Logical, fmt.Errorf("metric: unknown kind %q", s)
	}
}

// Unit is the byte-unit family used for display.
type Unit int

const (
	// UnitNone renders raw integers with no suffix.
	UnitNone Unit = iota
	// UnitSI renders base-1000 suffixes (kB, MB, GB, ...).
	UnitSI
	// UnitBinary renders base-1024 IEC suffixes (KiB, MiB, GiB, ...).
	UnitBinary
)

// ParseUnit parses a unit family name from CLI/config input.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return UnitNone, nil
	case "si":
		return UnitSI, nil
	case "binary", "bin":
		return UnitBinary, nil
	default:
		return UnitNone, fmt.Errorf("metric: unknown unit %q", s)
	}
}

// UnitWidth returns the fixed display width of a unit's suffix: 1 for raw
// (raw values carry no suffix and get a single pad space), 2 for SI ("kB", "MB", ...), 3 for
// binary ("KiB", "MiB", ...). The renderer uses this to keep the unit
// column aligned regardless of magnitude.
func UnitWidth(u Unit) int {
	switch u {
	case UnitSI:
		return 2
	case UnitBinary:
		return 3
	default:
		return 1
	}
}

// Value is a single metric measurement: a raw count in the metric's
// native unit (bytes, blocks, lines, or words).
type Value struct {
	Raw  int64
	Kind Kind
}

// Format renders the value under the requested unit family. Non-byte
// metrics (blocks, lines, words) ignore the unit family and always
// render as plain integers; human toggles whether byte metrics use
// go-humanize's scaled rendering ("1.0 KiB") or a raw digit string.
func (v Value) Format(unit Unit, human bool) string {
	if !v.Kind.IsByteMetric() {
		return fmt.Sprintf("%d", v.Raw)
	}
	if !human || unit == UnitNone {
		return fmt.Sprintf("%d", v.Raw)
	}
	if unit == UnitBinary {
		return humanize.IBytes(uint64(v.Raw))
	}
	return humanize.Bytes(uint64(v.Raw))
}

// SplitScaled renders the value's numeric portion and its unit suffix
// separately, padding the suffix to UnitWidth(unit) so a column of
// these can be right-aligned without the suffix shifting the decimal
// point. Used by the renderer's column layout, not by ad-hoc Format
// callers.
func SplitScaled(v Value, unit Unit) (number string, suffix string) {
	if !v.Kind.IsByteMetric() || unit == UnitNone {
		return fmt.Sprintf("%d", v.Raw), strings.Repeat(" ", UnitWidth(unit))
	}

	base := 1024.0
	units := []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}
	if unit == UnitSI {
		base = 1000.0
		units = []string{"B", "kB", "MB", "GB", "TB", "PB", "EB"}
	}

	val := float64(v.Raw)
	idx := 0
	for val >= base && idx < len(units)-1 {
		val /= base
		idx++
	}

	if idx == 0 {
		number = fmt.Sprintf("%d", v.Raw)
	} else {
		number = fmt.Sprintf("%.1f", val)
	}
	suffix = units[idx]
	if pad := UnitWidth(unit) - len(suffix); pad > 0 {
		suffix += strings.Repeat(" ", pad)
	}
	return number, suffix
}

// Digits returns the number of digits in the integral part of the
// value's scaled display, used by ColumnMetadata to compute
// max_size_width.
func Digits(v Value, unit Unit) int {
	number, _ := SplitScaled(v, unit)
	if i := strings.IndexByte(number, '.'); i >= 0 {
		return i
	}
	return len(number)
}
