//go:build windows

package platform

import (
	"fmt"
	"os"
	"time"

	"github.com/rowantree/duscan/internal/record"
)

// Windows implements Platform with the reduced metadata surface
// available on NTFS: no inode/dev/nlink, no POSIX mode bits, no
// xattrs. spec.md §1 scopes permissions/xattr/owner-group lookups to
// platform traits outside the core precisely for this asymmetry.
type Windows struct{}

// NewWindows builds the Windows platform adapter.
func NewWindows() *Windows { return &Windows{} }

func (w *Windows) Populate(path string, info os.FileInfo, wantXattr, wantOwner bool) record.Metadata {
	return record.Metadata{
		LenBytes: info.Size(),
		ModeSet:  true,
		Mode:     uint32(info.Mode()),
		MtimeSet: true,
		Mtime:    info.ModTime(),
	}
}

func (w *Windows) SymbolicMode(m record.Metadata) string {
	if !m.ModeSet {
		return "----------"
	}
	return os.FileMode(m.Mode).String()
}

func (w *Windows) OctalMode(m record.Metadata) string {
	return fmt.Sprintf("%04o", m.Mode&0o7777)
}

func (w *Windows) Timestamp(t time.Time, format string) string {
	if format == "short" {
		return t.Format("Jan _2 15:04")
	}
	return t.Format(time.RFC3339)
}

func (w *Windows) SameFilesystem(a, b record.Metadata) bool {
	return true
}
