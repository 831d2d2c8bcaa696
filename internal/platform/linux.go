//go:build linux

package platform

import (
	"fmt"
	"os"
	"os/user"
	"strconv"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/xattr"
	"golang.org/x/sys/unix"

	"github.com/rowantree/duscan/internal/record"
)

// Unix implements Platform using unix.Stat_t fields and the
// github.com/pkg/xattr package for extended-attribute probing, grounded
// on opencoff/go-fio's xattr.go (HasXattrs) and the owner/group sync.Map
// cache shape from walk.go.
type Unix struct {
	userCache  sync.Map // uid -> string
	groupCache sync.Map // gid -> string
}

// NewUnix builds a Unix platform adapter.
func NewUnix() *Unix { return &Unix{} }

func (u *Unix) Populate(path string, info os.FileInfo, wantXattr, wantOwner bool) record.Metadata {
	m := record.Metadata{LenBytes: info.Size(), ModeSet: true, Mode: uint32(info.Mode())}
	m.MtimeSet = true
	m.Mtime = info.ModTime()

	st, ok := info.Sys().(*unix.Stat_t)
	if !ok {
		return m
	}

	m.InoSet, m.Ino = true, st.Ino
	m.DevSet, m.Dev = true, uint64(st.Dev)
	m.NlinkSet, m.Nlink = true, uint64(st.Nlink)
	m.BlocksSet, m.Blocks = true, st.Blocks
	m.PhysicalSet, m.Physical = true, st.Blocks*512
	m.AtimeSet, m.Atime = true, time.Unix(st.Atim.Sec, st.Atim.Nsec)
	m.CtimeSet, m.Ctime = true, time.Unix(st.Ctim.Sec, st.Ctim.Nsec)

	if wantOwner {
		m.Owner = u.username(st.Uid)
		m.Group = u.groupname(st.Gid)
	}

	if wantXattr {
		m.XattrsProbed = true
		if list, err := xattr.LList(path); err == nil {
			m.HasXattrs = len(list) > 0
		}
	}

	return m
}

func (u *Unix) username(uid uint32) string {
	if v, ok := u.userCache.Load(uid); ok {
		return v.(string)
	}
	name := strconv.FormatUint(uint64(uid), 10)
	if usr, err := user.LookupId(name); err == nil {
		name = usr.Username
	}
	u.userCache.Store(uid, name)
	return name
}

func (u *Unix) groupname(gid uint32) string {
	if v, ok := u.groupCache.Load(gid); ok {
		return v.(string)
	}
	name := strconv.FormatUint(uint64(gid), 10)
	if grp, err := user.LookupGroupId(name); err == nil {
		name = grp.Name
	}
	u.groupCache.Store(gid, name)
	return name
}

func (u *Unix) SymbolicMode(m record.Metadata) string {
	if !m.ModeSet {
		return "----------"
	}
	mode := os.FileMode(m.Mode)
	return mode.String()
}

func (u *Unix) OctalMode(m record.Metadata) string {
	if !m.ModeSet {
		return "0000"
	}
	return fmt.Sprintf("%04o", m.Mode&0o7777)
}

func (u *Unix) Timestamp(t time.Time, format string) string {
	switch format {
	case "relative":
		return humanize.Time(t)
	case "short":
		return t.Format("Jan _2 15:04")
	default:
		return t.Format(time.RFC3339)
	}
}

func (u *Unix) SameFilesystem(a, b record.Metadata) bool {
	if !a.DevSet || !b.DevSet {
		return true
	}
	return a.Dev == b.Dev
}
