package graph

import (
	"fmt"

	"github.com/google/uuid"

	"go-variations/value"
)

// Memory is an in-process composition tree. It stands in for the engine in
// tests and in the demo program.
type Memory struct {
	root *Node
}

// Node is an instance in a Memory graph
type Node struct {
	id        uuid.UUID
	symbolID  uuid.UUID
	name      string
	namespace string
	parent    *Node
	children  []*Node
	slots     []*MemorySlot
}

// MemorySlot is a Slot held by a Node
type MemorySlot struct {
	def           InputDef
	value         value.Value
	invalidations int
}

// NewMemory creates a graph with an empty root composition
func NewMemory(name, namespace string) *Memory {
	return &Memory{
		root: &Node{
			id:        uuid.New(),
			symbolID:  uuid.New(),
			name:      name,
			namespace: namespace,
		},
	}
}

// Root returns the root composition
func (m *Memory) Root() *Node {
	return m.root
}

// Resolve walks the path from the root and returns the named input slot
func (m *Memory) Resolve(path []uuid.UUID, input uuid.UUID) (Slot, error) {
	n := m.root
	for _, id := range path {
		n = n.child(id)
		if n == nil {
			return nil, fmt.Errorf("resolve instance %s: %w", id, ErrNotFound)
		}
	}
	for _, s := range n.slots {
		if s.def.ID == input {
			return s, nil
		}
	}
	return nil, fmt.Errorf("resolve input %s on %s: %w", input, n.name, ErrNotFound)
}

// Find returns the node at path, or nil
func (m *Memory) Find(path []uuid.UUID) *Node {
	n := m.root
	for _, id := range path {
		if n = n.child(id); n == nil {
			return nil
		}
	}
	return n
}

// AddChild creates a child instance of a new symbol
func (n *Node) AddChild(name, namespace string) *Node {
	return n.AddChildOf(name, namespace, uuid.New())
}

// AddChildOf creates a child instance of an existing symbol
func (n *Node) AddChildOf(name, namespace string, symbolID uuid.UUID) *Node {
	c := &Node{
		id:        uuid.New(),
		symbolID:  symbolID,
		name:      name,
		namespace: namespace,
		parent:    n,
	}
	n.children = append(n.children, c)
	return c
}

// RemoveChild drops a child, simulating an instance being deleted or rebuilt
func (n *Node) RemoveChild(id uuid.UUID) {
	for i, c := range n.children {
		if c.id == id {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

// AddInput adds an input slot initialized to v
func (n *Node) AddInput(name string, v value.Value) *MemorySlot {
	s := &MemorySlot{
		def:   InputDef{ID: uuid.New(), Name: name, Kind: v.Kind()},
		value: v,
	}
	n.slots = append(n.slots, s)
	return s
}

// Input finds a slot by name
func (n *Node) Input(name string) *MemorySlot {
	for _, s := range n.slots {
		if s.def.Name == name {
			return s
		}
	}
	return nil
}

func (n *Node) child(id uuid.UUID) *Node {
	for _, c := range n.children {
		if c.id == id {
			return c
		}
	}
	return nil
}

func (n *Node) ID() uuid.UUID       { return n.id }
func (n *Node) SymbolID() uuid.UUID { return n.symbolID }
func (n *Node) Name() string        { return n.name }
func (n *Node) Namespace() string   { return n.namespace }

func (n *Node) Path() []uuid.UUID {
	var path []uuid.UUID
	for c := n; c.parent != nil; c = c.parent {
		path = append([]uuid.UUID{c.id}, path...)
	}
	return path
}

func (n *Node) Parent() Instance {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *Node) Children() []Instance {
	out := make([]Instance, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

func (n *Node) Inputs() []InputDef {
	out := make([]InputDef, len(n.slots))
	for i, s := range n.slots {
		out[i] = s.def
	}
	return out
}

func (s *MemorySlot) Def() InputDef      { return s.def }
func (s *MemorySlot) Kind() value.Kind   { return s.def.Kind }
func (s *MemorySlot) Value() value.Value { return s.value }
func (s *MemorySlot) Invalidate()        { s.invalidations++ }
func (s *MemorySlot) Invalidations() int { return s.invalidations }

func (s *MemorySlot) Set(v value.Value) error {
	if v == nil || v.Kind() != s.def.Kind {
		return fmt.Errorf("set %s: want %s, got %v", s.def.Name, s.def.Kind, v)
	}
	s.value = v
	return nil
}
