//go:build !linux && !windows

package platform

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/rowantree/duscan/internal/record"
)

// Generic implements Platform for non-Linux Unix targets (darwin, bsd)
// using the portable subset of syscall.Stat_t. It skips xattr probing
// and owner/group lookups, which vary enough across these kernels that
// spec.md §1 treats them as optional per-platform fields.
type Generic struct{}

// NewUnix builds the portable Unix platform adapter.
func NewUnix() *Generic { return &Generic{} }

func (g *Generic) Populate(path string, info os.FileInfo, wantXattr, wantOwner bool) record.Metadata {
	m := record.Metadata{LenBytes: info.Size(), ModeSet: true, Mode: uint32(info.Mode())}
	m.MtimeSet, m.Mtime = true, info.ModTime()

	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		m.InoSet, m.Ino = true, uint64(st.Ino)
		m.DevSet, m.Dev = true, uint64(st.Dev)
		m.NlinkSet, m.Nlink = true, uint64(st.Nlink)
		m.BlocksSet, m.Blocks = true, int64(st.Blocks)
		m.PhysicalSet, m.Physical = true, int64(st.Blocks)*512
	}
	return m
}

func (g *Generic) SymbolicMode(m record.Metadata) string {
	if !m.ModeSet {
		return "----------"
	}
	return os.FileMode(m.Mode).String()
}

func (g *Generic) OctalMode(m record.Metadata) string {
	if !m.ModeSet {
		return "0000"
	}
	return fmt.Sprintf("%04o", m.Mode&0o7777)
}

func (g *Generic) Timestamp(t time.Time, format string) string {
	switch format {
	case "relative":
		return humanize.Time(t)
	case "short":
		return t.Format("Jan _2 15:04")
	default:
		return t.Format(time.RFC3339)
	}
}

func (g *Generic) SameFilesystem(a, b record.Metadata) bool {
	if !a.DevSet || !b.DevSet {
		return true
	}
	return a.Dev == b.Dev
}
