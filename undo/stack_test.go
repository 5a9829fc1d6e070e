package undo

import (
	"testing"

	"go-variations/graph"
	"go-variations/value"
)

func TestChangeInputValue(t *testing.T) {
	g := graph.NewMemory("Main", "user")
	child := g.Root().AddChild("Transform", "lib")
	scale := child.AddInput("Scale", value.Vec3{1, 1, 1})

	c := NewChangeInputValue(g, child.Path(), scale.Def().ID, value.Vec3{1, 1, 1}, value.Vec3{2, 2, 2})
	if c.ChildID != child.ID() || len(c.CompositionPath) != 0 {
		t.Fatalf("unexpected target %v/%v", c.CompositionPath, c.ChildID)
	}

	for i := 0; i < 2; i++ {
		if err := c.Do(); err != nil {
			t.Fatal(err)
		}
		if scale.Value() != (value.Vec3{2, 2, 2}) {
			t.Fatalf("Do #%d: got %v", i, scale.Value())
		}
	}
	for i := 0; i < 2; i++ {
		if err := c.Undo(); err != nil {
			t.Fatal(err)
		}
		if scale.Value() != (value.Vec3{1, 1, 1}) {
			t.Fatalf("Undo #%d: got %v", i, scale.Value())
		}
	}
	if scale.Invalidations() != 4 {
		t.Errorf("expected 4 invalidations, got %d", scale.Invalidations())
	}
}

func TestMacroContinuesPastFailures(t *testing.T) {
	g := graph.NewMemory("Main", "user")
	a := g.Root().AddChild("A", "lib")
	sa := a.AddInput("X", value.Float(0))
	b := g.Root().AddChild("B", "lib")
	sb := b.AddInput("X", value.Float(0))

	m := NewMacro("Set", []Command{
		NewChangeInputValue(g, a.Path(), sa.Def().ID, value.Float(0), value.Float(1)),
		NewChangeInputValue(g, b.Path(), sb.Def().ID, value.Float(0), value.Float(2)),
	})
	g.Root().RemoveChild(a.ID())

	if err := m.Do(); err == nil {
		t.Error("expected error for removed instance")
	}
	if sb.Value() != value.Float(2) {
		t.Errorf("second command should still run, got %v", sb.Value())
	}
}

func TestStackUndoRedo(t *testing.T) {
	g := graph.NewMemory("Main", "user")
	n := g.Root().AddChild("Noise", "lib")
	amount := n.AddInput("Amount", value.Float(0))
	s := NewStack(2)

	for i := 1; i <= 3; i++ {
		c := NewChangeInputValue(g, n.Path(), amount.Def().ID, value.Float(float64(i-1)), value.Float(float64(i)))
		if err := s.AddAndExecute(c); err != nil {
			t.Fatal(err)
		}
	}
	if s.Depth() != 2 {
		t.Fatalf("expected history trimmed to 2, got %d", s.Depth())
	}

	if ok, err := s.Undo(); !ok || err != nil {
		t.Fatalf("undo: ok=%v err=%v", ok, err)
	}
	if amount.Value() != value.Float(2) {
		t.Errorf("after undo expected 2, got %v", amount.Value())
	}
	if ok, _ := s.Redo(); !ok {
		t.Fatal("expected redo")
	}
	if amount.Value() != value.Float(3) {
		t.Errorf("after redo expected 3, got %v", amount.Value())
	}

	s.Undo()
	s.Push(NewMacro("noop", nil))
	if s.CanRedo() {
		t.Error("push should clear redo history")
	}

	s.Clear()
	if ok, _ := s.Undo(); ok {
		t.Error("expected nothing to undo after Clear")
	}
}
