// Package platform exposes the small platform-specific traits spec.md
// §1 carves out of the core: inode/physical-size/xattr/owner-group/mode
// queries. The core depends only on the Platform interface; concrete
// implementations live in linux.go, generic.go (other Unix targets) and
// windows.go behind build tags.
package platform

import (
	"os"
	"time"

	"github.com/rowantree/duscan/internal/record"
)

// Platform queries filesystem metadata the standard library's
// os.FileInfo does not expose uniformly across operating systems.
type Platform interface {
	// Populate fills in the platform-specific fields of a Metadata
	// snapshot from a os.FileInfo already obtained via Lstat. wantXattr
	// and wantOwner gate expensive lookups the caller doesn't need.
	Populate(path string, info os.FileInfo, wantXattr, wantOwner bool) record.Metadata

	// SymbolicMode renders a metadata's mode as "-rwxr-xr-x" style text.
	SymbolicMode(m record.Metadata) string

	// OctalMode renders a metadata's mode as "0755" style text.
	OctalMode(m record.Metadata) string

	// Timestamp formats one of mtime/atime/ctime per the requested layout.
	Timestamp(t time.Time, format string) string

	// SameFilesystem reports whether two metadata snapshots refer to
	// entries on the same filesystem/device, for the same_fs policy.
	SameFilesystem(a, b record.Metadata) bool
}
