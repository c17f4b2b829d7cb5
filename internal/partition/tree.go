package partition

import (
	"github.com/ginjaninja78/inventory-split/internal/types"
)

// Tree is the complete grouping of a ledger:
//
//	scope (custodian) -> group (main key) -> leaf (sub-key path) -> items
//
// In location mode there is exactly one scope with an empty custodian.
// Every level keeps first-discovery order.
type Tree struct {
	ownerAware bool
	scopes     []*Scope
	index      map[string]*Scope
}

// Scope holds the groups of one custodian.
type Scope struct {
	Custodian string

	groups []*Group
	index  map[string]*Group
}

// Group holds the leaves under one main key.
type Group struct {
	Key string

	leaves []*Leaf
	index  map[string]*Leaf
}

// Leaf is the deepest bucket; it maps to exactly one export file.
type Leaf struct {
	Custodian string
	MainKey   string
	SubPath   []string
	Items     []types.Item
}

// NewTree returns an empty tree.
func NewTree(ownerAware bool) *Tree {
	return &Tree{
		ownerAware: ownerAware,
		index:      make(map[string]*Scope),
	}
}

// OwnerAware reports whether scopes correspond to custodians.
func (t *Tree) OwnerAware() bool {
	return t.ownerAware
}

// Scopes returns the scopes in discovery order.
func (t *Tree) Scopes() []*Scope {
	return t.scopes
}

// Add appends item under custodian and segments. segments must hold the
// main key and at least one sub-key.
func (t *Tree) Add(custodian string, segments []string, item types.Item) {
	scope, ok := t.index[custodian]
	if !ok {
		scope = &Scope{Custodian: custodian, index: make(map[string]*Group)}
		t.index[custodian] = scope
		t.scopes = append(t.scopes, scope)
	}

	mainKey := segments[0]
	group, ok := scope.index[mainKey]
	if !ok {
		group = &Group{Key: mainKey, index: make(map[string]*Leaf)}
		scope.index[mainKey] = group
		scope.groups = append(scope.groups, group)
	}

	// Segments never contain the separator, so the joined path is a
	// collision-free key.
	subPath := segments[1:]
	key := types.JoinPath(subPath)
	leaf, ok := group.index[key]
	if !ok {
		leaf = &Leaf{
			Custodian: custodian,
			MainKey:   mainKey,
			SubPath:   append([]string(nil), subPath...),
		}
		group.index[key] = leaf
		group.leaves = append(group.leaves, leaf)
	}

	leaf.Items = append(leaf.Items, item)
}

// Lookup returns the leaf for custodian and a full location path, or nil.
func (t *Tree) Lookup(custodian string, segments ...string) *Leaf {
	if len(segments) < 2 {
		return nil
	}
	scope, ok := t.index[custodian]
	if !ok {
		return nil
	}
	group, ok := scope.index[segments[0]]
	if !ok {
		return nil
	}
	return group.index[types.JoinPath(segments[1:])]
}

// Walk calls fn for every leaf in discovery order and stops at the first
// error.
func (t *Tree) Walk(fn func(*Leaf) error) error {
	for _, scope := range t.scopes {
		for _, group := range scope.groups {
			for _, leaf := range group.leaves {
				if err := fn(leaf); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Count returns the number of items in the tree.
func (t *Tree) Count() int {
	total := 0
	for _, scope := range t.scopes {
		total += scope.Count()
	}
	return total
}

// LeafCount returns the number of leaves, i.e. export files.
func (t *Tree) LeafCount() int {
	total := 0
	for _, scope := range t.scopes {
		for _, group := range scope.groups {
			total += len(group.leaves)
		}
	}
	return total
}

// Groups returns the groups of the scope in discovery order.
func (s *Scope) Groups() []*Group {
	return s.groups
}

// Count returns the number of items in the scope.
func (s *Scope) Count() int {
	total := 0
	for _, group := range s.groups {
		total += group.Count()
	}
	return total
}

// Leaves returns the leaves of the group in discovery order.
func (g *Group) Leaves() []*Leaf {
	return g.leaves
}

// Count returns the number of items in the group.
func (g *Group) Count() int {
	total := 0
	for _, leaf := range g.leaves {
		total += len(leaf.Items)
	}
	return total
}

// Segments returns the full location path of the leaf.
func (l *Leaf) Segments() []string {
	segments := make([]string, 0, 1+len(l.SubPath))
	segments = append(segments, l.MainKey)
	return append(segments, l.SubPath...)
}

// Label is the full location path joined with "/".
func (l *Leaf) Label() string {
	return types.JoinPath(l.Segments())
}

// SubLabel is the sub-key path joined with "/".
func (l *Leaf) SubLabel() string {
	return types.JoinPath(l.SubPath)
}
