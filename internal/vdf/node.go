// Package vdf parses the Valve key/value text format used by Steam manifests
// (appmanifest_*.acf) and library indexes (libraryfolders.vdf).
package vdf

import (
	"strconv"
	"strings"
)

// Node is either a leaf holding a string value or an internal node holding
// ordered children. A node is never both.
type Node struct {
	children map[string]*Node
	value    string
	keys     []string
	leaf     bool
}

// NewLeaf returns a leaf node holding value.
func NewLeaf(value string) *Node {
	return &Node{value: value, leaf: true}
}

// NewBlock returns an empty internal node.
func NewBlock() *Node {
	return &Node{children: make(map[string]*Node)}
}

// IsLeaf reports whether the node holds a value instead of children.
func (n *Node) IsLeaf() bool {
	return n != nil && n.leaf
}

// Value returns the leaf value, or an empty string for internal nodes.
func (n *Node) Value() string {
	if n == nil || !n.leaf {
		return ""
	}

	return n.value
}

// Keys returns child keys in first-insertion order.
func (n *Node) Keys() []string {
	if n == nil || n.leaf {
		return nil
	}

	out := make([]string, len(n.keys))
	copy(out, n.keys)
	return out
}

// Len returns the number of children.
func (n *Node) Len() int {
	if n == nil || n.leaf {
		return 0
	}

	return len(n.keys)
}

// Set stores child under key. An existing key is overwritten in place,
// so the last write wins while the original position is kept.
func (n *Node) Set(key string, child *Node) {
	if n == nil || n.leaf {
		return
	}

	if _, ok := n.children[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.children[key] = child
}

// SetValue is shorthand for Set(key, NewLeaf(value)).
func (n *Node) SetValue(key, value string) {
	n.Set(key, NewLeaf(value))
}

// Child returns the child stored under key. An exact match is preferred,
// otherwise keys are compared case-insensitively since Steam is not
// consistent about key casing across client versions.
func (n *Node) Child(key string) (*Node, bool) {
	if n == nil || n.leaf {
		return nil, false
	}

	if c, ok := n.children[key]; ok {
		return c, true
	}

	for _, k := range n.keys {
		if strings.EqualFold(k, key) {
			return n.children[k], true
		}
	}

	return nil, false
}

// String returns the value of the leaf child stored under key, or "".
func (n *Node) String(key string) string {
	c, ok := n.Child(key)
	if !ok {
		return ""
	}

	return c.Value()
}

// Int returns the leaf child under key parsed as a base-10 integer.
// Missing or invalid values yield 0.
func (n *Node) Int(key string) int64 {
	v := strings.TrimSpace(n.String(key))
	if v == "" {
		return 0
	}

	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}

	return i
}

// Leaves returns every leaf value below n in depth-first order.
func (n *Node) Leaves() []string {
	if n == nil {
		return nil
	}
	if n.leaf {
		return []string{n.value}
	}

	var out []string
	for _, k := range n.keys {
		out = append(out, n.children[k].Leaves()...)
	}

	return out
}
