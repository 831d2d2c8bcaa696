// Package tree implements the arena-backed node graph that underlies the
// filesystem tree: nodes are addressed by a stable NodeId that never
// moves, independent of the slice that backs the arena. This sidesteps
// the ownership cycles a pointer graph would need for parent links and
// makes detach/sort operations safe to perform in place.
package tree

import (
	"fmt"

	"github.com/rowantree/duscan/internal/record"
)

// NodeId is a stable identifier for a node within an Arena. It remains
// valid for the lifetime of the Arena even after the node is detached.
type NodeId int

// invalidID marks the absence of a node (e.g. a root's parent).
const invalidID NodeId = -1

// Node holds a FileRecord plus its position in the tree.
type Node struct {
	id       NodeId
	parent   NodeId
	children []NodeId
	detached bool
	Record   record.Record
}

// ID returns the node's stable identifier.
func (n *Node) ID() NodeId { return n.id }

// Parent returns the node's parent id, or (invalidID, false) for the root.
func (n *Node) Parent() (NodeId, bool) {
	if n.parent == invalidID {
		return invalidID, false
	}
	return n.parent, true
}

// Children returns the node's child ids in current child order. The
// returned slice is owned by the Arena; callers must not mutate it.
func (n *Node) Children() []NodeId { return n.children }

// Detached reports whether the node has been removed from the visible
// tree by a filter or prune pass. Detached nodes remain in the arena
// (for diagnostics) but are unreachable from the root.
func (n *Node) Detached() bool { return n.detached }

// Arena owns all nodes for one traversal. Node identity is a stable
// index into arena.nodes; a node may be detached (orphaned) but is
// never physically removed.
type Arena struct {
	nodes   []*Node
	root    NodeId
	hasRoot bool
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{root: invalidID}
}

// Append inserts rec as a new node, optionally parented under parent,
// and returns the new node's id. Passing hasParent=false marks the node
// as the root.
func (a *Arena) Append(rec record.Record, parent NodeId, hasParent bool) NodeId {
	id := NodeId(len(a.nodes))
	n := &Node{id: id, parent: invalidID, Record: rec}
	if hasParent {
		n.parent = parent
		a.nodes[parent].children = append(a.nodes[parent].children, id)
	} else {
		a.root = id
		a.hasRoot = true
	}
	a.nodes = append(a.nodes, n)
	return id
}

// Root returns the root node's id. ok is false if no root has been
// appended yet.
func (a *Arena) Root() (NodeId, bool) {
	return a.root, a.hasRoot
}

// Node returns the node for id. Panics on an out-of-range id, which
// indicates an arena invariant violation (Internal error category) --
// every id handed to a caller originates from this same arena.
func (a *Arena) Node(id NodeId) *Node {
	if int(id) < 0 || int(id) >= len(a.nodes) {
		panic(fmt.Sprintf("tree: invalid NodeId %d", id))
	}
	return a.nodes[id]
}

// Len returns the total number of nodes ever appended, including
// detached ones.
func (a *Arena) Len() int { return len(a.nodes) }

// SetChildren replaces a node's child order in place, used by the
// ordering stage to impose a deterministic sort without touching
// insertion order elsewhere in the arena.
func (a *Arena) SetChildren(id NodeId, children []NodeId) {
	a.nodes[id].children = children
}

// Detach marks id as detached and removes it from its parent's child
// list. Detaching a node does not recurse into its descendants: they
// become unreachable from the root through the parent edge alone,
// satisfying I2 without a second pass.
func (a *Arena) Detach(id NodeId) {
	n := a.nodes[id]
	if n.detached {
		return
	}
	n.detached = true
	if n.parent == invalidID {
		return
	}
	parent := a.nodes[n.parent]
	for i, c := range parent.children {
		if c == id {
			parent.children = append(parent.children[:i], parent.children[i+1:]...)
			break
		}
	}
}

// Descendants returns every non-detached descendant of id (not
// including id itself) via pre-order traversal.
func (a *Arena) Descendants(id NodeId) []NodeId {
	var out []NodeId
	var walk func(NodeId)
	walk = func(cur NodeId) {
		for _, c := range a.nodes[cur].children {
			if a.nodes[c].detached {
				continue
			}
			out = append(out, c)
			walk(c)
		}
	}
	walk(id)
	return out
}

// FollowingSiblings returns the siblings of id that appear after it in
// its parent's child order.
func (a *Arena) FollowingSiblings(id NodeId) []NodeId {
	n := a.nodes[id]
	if n.parent == invalidID {
		return nil
	}
	siblings := a.nodes[n.parent].children
	for i, c := range siblings {
		if c == id {
			return siblings[i+1:]
		}
	}
	return nil
}

// ReverseDescendants visits id's subtree in reverse pre-order: within
// each directory, children are visited last-to-first before the
// directory itself returns control to its caller, so a sibling's "is
// this the last following sibling" status is known before any of its
// descendants are visited. The renderers do not use it; they compute
// last-sibling status from each child's index instead.
func (a *Arena) ReverseDescendants(id NodeId, visit func(NodeId, int)) {
	var walk func(NodeId, int)
	walk = func(cur NodeId, depth int) {
		children := a.nodes[cur].children
		for i := len(children) - 1; i >= 0; i-- {
			c := children[i]
			if a.nodes[c].detached {
				continue
			}
			visit(c, depth+1)
			walk(c, depth+1)
		}
	}
	walk(id, 0)
}
