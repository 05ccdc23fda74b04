// Package deptree builds dependency forests and turns them into execution
// plans.
//
// A [Forest] stores one node per item in an arena. Children are handles into
// that arena rather than copies, so an item that is a dependency of several
// parents is a single node reachable from each of them: removing it once
// removes it everywhere. This is what makes repeated leaf extraction ([Plan])
// consistent for diamond-shaped dependencies.
package deptree

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	monerr "github.com/matzehuels/monist/pkg/errors"
)

// ErrCycle is wrapped by the error [Build] returns when the dependency
// relation is not acyclic.
var ErrCycle = errors.New("dependency cycle")

// Item is anything that can be placed in a forest. Key must be unique per
// item and stable for the lifetime of the forest.
//
// Items that also implement [fmt.Stringer] are shown by String in cycle
// errors instead of by key.
type Item interface {
	Key() string
}

func display[T Item](it T) string {
	if s, ok := any(it).(fmt.Stringer); ok {
		return s.String()
	}
	return it.Key()
}

// Handle identifies a node inside its forest.
type Handle int

// Node pairs an item with the handles of its dependencies.
type Node[T Item] struct {
	Item     T
	Children []Handle
}

// Forest is a set of dependency trees sharing their nodes.
//
// The zero value is not usable - use Build.
type Forest[T Item] struct {
	nodes   []Node[T]
	removed []bool
	index   map[string]Handle
	roots   []Handle
}

type visitState uint8

const (
	unvisited visitState = iota
	inProgress
	done
)

// Build creates the forest for items, where deps returns the direct
// dependencies of an item. Every item is visited, in key order, so a cycle is
// reported even when none of its members is a root. Roots are the items that
// are not a dependency of any other item, in the order they appear in items.
//
// Dependencies returned by deps that are not part of items are ignored.
func Build[T Item](items []T, deps func(T) []T) (*Forest[T], error) {
	f := &Forest[T]{index: make(map[string]Handle, len(items))}
	byKey := make(map[string]T, len(items))
	for _, it := range items {
		byKey[it.Key()] = it
	}

	state := make(map[string]visitState, len(items))
	var stack []string

	var visit func(it T) (Handle, error)
	visit = func(it T) (Handle, error) {
		key := it.Key()
		switch state[key] {
		case done:
			return f.index[key], nil
		case inProgress:
			start := slices.Index(stack, key)
			var cycle []string
			for _, k := range append(slices.Clone(stack[start:]), key) {
				cycle = append(cycle, display(byKey[k]))
			}
			return 0, monerr.Wrap(monerr.ErrCodeCyclicDependency, ErrCycle,
				"cyclic local dependency: %s", strings.Join(cycle, " -> "))
		}

		state[key] = inProgress
		stack = append(stack, key)

		var children []Handle
		for _, dep := range deps(it) {
			if _, ok := byKey[dep.Key()]; !ok {
				continue
			}
			h, err := visit(dep)
			if err != nil {
				return 0, err
			}
			if !slices.Contains(children, h) {
				children = append(children, h)
			}
		}

		stack = stack[:len(stack)-1]
		state[key] = done
		h := Handle(len(f.nodes))
		f.nodes = append(f.nodes, Node[T]{Item: it, Children: children})
		f.removed = append(f.removed, false)
		f.index[key] = h
		return h, nil
	}

	sorted := slices.SortedFunc(slices.Values(items), func(a, b T) int {
		return cmp.Compare(a.Key(), b.Key())
	})
	for _, it := range sorted {
		if _, err := visit(it); err != nil {
			return nil, err
		}
	}

	hasParent := make([]bool, len(f.nodes))
	for _, n := range f.nodes {
		for _, c := range n.Children {
			hasParent[c] = true
		}
	}
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		key := it.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		if h := f.index[key]; !hasParent[h] {
			f.roots = append(f.roots, h)
		}
	}
	return f, nil
}

// Len returns the number of live nodes.
func (f *Forest[T]) Len() int {
	n := 0
	for _, r := range f.removed {
		if !r {
			n++
		}
	}
	return n
}

// Empty reports whether every tree of the forest has been removed.
func (f *Forest[T]) Empty() bool { return len(f.roots) == 0 }

// Roots returns the handles of the live tree roots.
func (f *Forest[T]) Roots() []Handle { return slices.Clone(f.roots) }

// Node returns the node behind h.
func (f *Forest[T]) Node(h Handle) Node[T] { return f.nodes[h] }

// Lookup returns the handle of the node holding the item with the given key.
func (f *Forest[T]) Lookup(key string) (Handle, bool) {
	h, ok := f.index[key]
	return h, ok
}

// Clone returns an independent copy of the forest. Items are shared.
func (f *Forest[T]) Clone() *Forest[T] {
	out := &Forest[T]{
		nodes:   make([]Node[T], len(f.nodes)),
		removed: slices.Clone(f.removed),
		index:   f.index,
		roots:   slices.Clone(f.roots),
	}
	for i, n := range f.nodes {
		out.nodes[i] = Node[T]{Item: n.Item, Children: slices.Clone(n.Children)}
	}
	return out
}

// Leaves returns the live nodes reachable from a root that have no remaining
// children, in discovery order.
func (f *Forest[T]) Leaves() []Handle {
	var leaves []Handle
	seen := make([]bool, len(f.nodes))
	var walk func(h Handle)
	walk = func(h Handle) {
		if seen[h] {
			return
		}
		seen[h] = true
		n := f.nodes[h]
		if len(n.Children) == 0 {
			leaves = append(leaves, h)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, r := range f.roots {
		walk(r)
	}
	return leaves
}

// Remove deletes the given nodes from the forest. Each remaining node drops
// them from its children, and a tree whose root is removed disappears.
func (f *Forest[T]) Remove(handles []Handle) {
	for _, h := range handles {
		f.removed[h] = true
	}
	f.roots = slices.DeleteFunc(f.roots, func(h Handle) bool { return f.removed[h] })
	for i := range f.nodes {
		if f.removed[i] {
			continue
		}
		f.nodes[i].Children = slices.DeleteFunc(f.nodes[i].Children, func(h Handle) bool { return f.removed[h] })
	}
}

// Walk calls fn for every node reachable from the roots, depth first, with
// the depth of the node in its tree. Shared nodes are visited once per
// occurrence.
func (f *Forest[T]) Walk(fn func(n Node[T], depth int)) {
	var walk func(h Handle, depth int)
	walk = func(h Handle, depth int) {
		n := f.nodes[h]
		fn(n, depth)
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	for _, r := range f.roots {
		walk(r, 0)
	}
}

// Dump writes the forest as indented trees, labelling each node with label.
func (f *Forest[T]) Dump(w io.Writer, label func(T) string) error {
	var err error
	f.Walk(func(n Node[T], depth int) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), label(n.Item))
	})
	return err
}
