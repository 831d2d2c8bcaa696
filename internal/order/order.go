// Package order assembles the comparator chains the renderer uses to
// sort each directory's children: a base sort key composed with a
// directory-placement policy, stable so ties preserve discovery order.
// Grounded on spec.md §4.5; no sort-key abstraction exists in the pack,
// so this follows the teacher's habit of small enums plus a single
// dispatching function rather than a strategy-object hierarchy.
package order

import (
	"sort"
	"strings"

	"github.com/rowantree/duscan/internal/record"
	"github.com/rowantree/duscan/internal/tree"
)

// Key is the base sort key applied to a directory's children.
type Key int

const (
	None Key = iota
	Name
	RName
	Size
	RSize
	Access
	RAccess
	Create
	RCreate
	Mod
	RMod
)

// ParseKey parses a sort key name from CLI/config input.
func ParseKey(s string) (Key, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return None, nil
	case "name":
		return Name, nil
	case "rname":
		return RName, nil
	case "size":
		return Size, nil
	case "rsize":
		return RSize, nil
	case "access":
		return Access, nil
	case "raccess":
		return RAccess, nil
	case "create":
		return Create, nil
	case "rcreate":
		return RCreate, nil
	case "mod":
		return Mod, nil
	case "rmod":
		return RMod, nil
	default:
		return None, &ErrUnknownKey{Name: s}
	}
}

// ErrUnknownKey reports an unrecognized sort key string.
type ErrUnknownKey struct{ Name string }

func (e *ErrUnknownKey) Error() string { return "order: unknown sort key " + e.Name }

// DirPolicy controls where directories land among their peers,
// independent of the base key.
type DirPolicy int

const (
	DirNone DirPolicy = iota
	DirFirst
	DirLast
)

// ParseDirPolicy parses a directory-order policy name.
func ParseDirPolicy(s string) (DirPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return DirNone, nil
	case "first":
		return DirFirst, nil
	case "last":
		return DirLast, nil
	default:
		return DirNone, &ErrUnknownKey{Name: s}
	}
}

// Comparator reports whether a sorts before b.
type Comparator func(a, b record.Record) bool

// Compose builds a single Comparator from a base key and a directory
// policy: the directory check is consulted first (when active) and
// only falls through to the base key on a tie, matching spec.md §4.5's
// "ties fall through to the base key".
func Compose(key Key, dir DirPolicy) Comparator {
	base := byKey(key)
	return func(a, b record.Record) bool {
		if dir != DirNone {
			ad, bd := a.FileType == record.Directory, b.FileType == record.Directory
			if ad != bd {
				if dir == DirFirst {
					return ad
				}
				return bd
			}
		}
		if base == nil {
			return false
		}
		return base(a, b)
	}
}

func byKey(key Key) Comparator {
	switch key {
	case Name:
		return func(a, b record.Record) bool { return basename(a.Path) < basename(b.Path) }
	case RName:
		return func(a, b record.Record) bool { return basename(a.Path) > basename(b.Path) }
	case Size:
		return func(a, b record.Record) bool { return a.Metric.Raw < b.Metric.Raw }
	case RSize:
		return func(a, b record.Record) bool { return a.Metric.Raw > b.Metric.Raw }
	case Access:
		return func(a, b record.Record) bool { return a.Metadata.Atime.Before(b.Metadata.Atime) }
	case RAccess:
		return func(a, b record.Record) bool { return a.Metadata.Atime.After(b.Metadata.Atime) }
	case Create:
		return func(a, b record.Record) bool { return a.Metadata.Ctime.Before(b.Metadata.Ctime) }
	case RCreate:
		return func(a, b record.Record) bool { return a.Metadata.Ctime.After(b.Metadata.Ctime) }
	case Mod:
		return func(a, b record.Record) bool { return a.Metadata.Mtime.Before(b.Metadata.Mtime) }
	case RMod:
		return func(a, b record.Record) bool { return a.Metadata.Mtime.After(b.Metadata.Mtime) }
	default:
		return nil
	}
}

func basename(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// Apply sorts every directory's child slice in place, in pre-order, so
// a parent's new order is settled before its children (whose own
// children are sorted independently) are visited.
func Apply(a *tree.Arena, root tree.NodeId, cmp Comparator) {
	var walk func(tree.NodeId)
	walk = func(id tree.NodeId) {
		n := a.Node(id)
		children := append([]tree.NodeId(nil), n.Children()...)
		sort.SliceStable(children, func(i, j int) bool {
			return cmp(a.Node(children[i]).Record, a.Node(children[j]).Record)
		})
		a.SetChildren(id, children)
		for _, c := range children {
			if !a.Node(c).Detached() {
				walk(c)
			}
		}
	}
	walk(root)
}
