// Package filter implements the post-traversal filtering and pruning
// pipeline: glob/regex/file-type predicates applied with
// ancestor-preserving semantics, and a pruner that removes directories
// left empty by filtering. Grounded on spec.md §4.3/§4.4; no predicate
// or pruning machinery exists in the retrieved pack, so this is built
// directly against the arena from first principles using the teacher's
// preference for small, composable value types.
package filter

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rowantree/duscan/internal/record"
	"github.com/rowantree/duscan/internal/tree"
)

// Predicate decides whether a single node's own record matches a
// criterion, without regard to its descendants. Apply combines a
// node's self-match with its descendants' results to decide retention,
// so a Predicate never needs to know about the tree shape.
type Predicate interface {
	Match(rec record.Record, components []string) bool
}

// Glob is the glob predicate: a shell pattern compiled against either
// the filename or any ancestor path component, so a match on a
// directory component drags its whole subtree along. A leading "!" in
// the source pattern (stripped before construction) should set Negate
// so the predicate acts as an exclusion instead of a whitelist entry.
type Glob struct {
	Pattern    string
	IgnoreCase bool
	Negate     bool
}

func (g Glob) Match(_ record.Record, components []string) bool {
	pattern := g.Pattern
	if g.IgnoreCase {
		pattern = strings.ToLower(pattern)
	}
	hit := false
	for _, c := range components {
		candidate := c
		if g.IgnoreCase {
			candidate = strings.ToLower(candidate)
		}
		if ok, _ := filepath.Match(pattern, candidate); ok {
			hit = true
			break
		}
	}
	if g.Negate {
		return !hit
	}
	return hit
}

// Regex is the regex predicate: analogous to Glob but matches a
// compiled regular expression against each path component.
type Regex struct {
	Expr   *regexp.Regexp
	Negate bool
}

func (r Regex) Match(_ record.Record, components []string) bool {
	hit := false
	for _, c := range components {
		if r.Expr.MatchString(c) {
			hit = true
			break
		}
	}
	if r.Negate {
		return !hit
	}
	return hit
}

// FileType retains only entries whose type is in Types. Directories
// never self-match a type filter (a type filter constrains leaves, not
// the containers around them); a directory's retention comes entirely
// from a surviving descendant, which is exactly the "always retained
// if matching files exist beneath it" rule from spec.md §4.3.
type FileType struct {
	Types map[record.Type]bool
}

func (f FileType) Match(rec record.Record, _ []string) bool {
	if rec.FileType == record.Directory {
		return false
	}
	return f.Types[rec.FileType]
}

// Composite ANDs a list of predicates together. An empty Composite
// matches everything, so callers can build the pipeline unconditionally
// and skip the Apply call entirely when it would be a no-op.
type Composite struct {
	Predicates []Predicate
}

func (c Composite) Match(rec record.Record, components []string) bool {
	for _, p := range c.Predicates {
		if !p.Match(rec, components) {
			return false
		}
	}
	return true
}

// Empty reports whether the composite has no active predicates.
func (c Composite) Empty() bool { return len(c.Predicates) == 0 }

func pathComponents(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// Apply removes every node whose subtree contains no surviving match,
// per spec.md §4.3: a node survives if it matches the predicate itself
// or any of its descendants do. The root is never detached. Nodes
// already marked detached (e.g. by an earlier pass) are left alone.
func Apply(a *tree.Arena, root tree.NodeId, pred Predicate) {
	if c, ok := pred.(Composite); ok && c.Empty() {
		return
	}

	survives := make(map[tree.NodeId]bool)
	var post func(tree.NodeId) bool
	post = func(id tree.NodeId) bool {
		n := a.Node(id)
		self := pred.Match(n.Record, pathComponents(n.Record.Path))
		any := self
		for _, c := range n.Children() {
			if a.Node(c).Detached() {
				continue
			}
			if post(c) {
				any = true
			}
		}
		survives[id] = any
		return any
	}
	post(root)

	var sweep func(tree.NodeId)
	sweep = func(id tree.NodeId) {
		n := a.Node(id)
		for _, c := range n.Children() {
			if a.Node(c).Detached() {
				continue
			}
			if survives[c] {
				sweep(c)
			} else {
				a.Detach(c)
			}
		}
	}
	sweep(root)
}

// Prune detaches every directory left with zero surviving descendants
// after filtering, walked in reverse depth order so that removing a
// newly empty leaf directory can in turn empty its parent within the
// same pass. The root is never pruned, even when it ends up empty.
func Prune(a *tree.Arena, root tree.NodeId) {
	var dirs []tree.NodeId
	for _, id := range a.Descendants(root) {
		if a.Node(id).Record.FileType == record.Directory {
			dirs = append(dirs, id)
		}
	}
	sort.SliceStable(dirs, func(i, j int) bool {
		return a.Node(dirs[i]).Record.Depth > a.Node(dirs[j]).Record.Depth
	})
	for _, id := range dirs {
		n := a.Node(id)
		if n.Detached() {
			continue
		}
		if len(n.Children()) == 0 {
			a.Detach(id)
		}
	}
}
