package undo

import "go-variations/debug"

// DefaultLimit bounds the undo history
const DefaultLimit = 100

// Stack is the undo/redo history. It is not safe for concurrent use; all
// pushes happen on the update tick.
type Stack struct {
	undo  []Command
	redo  []Command
	limit int
}

func NewStack(limit int) *Stack {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Stack{limit: limit}
}

// Push records a command that has already been executed
func (s *Stack) Push(c Command) {
	s.undo = append(s.undo, c)
	if len(s.undo) > s.limit {
		s.undo = s.undo[len(s.undo)-s.limit:]
	}
	s.redo = s.redo[:0]
	debug.Log("undo", "push %q (depth=%d)", c.Name(), len(s.undo))
}

// AddAndExecute runs the command and records it. The command is recorded
// even if it partially failed so the successful part stays undoable.
func (s *Stack) AddAndExecute(c Command) error {
	err := c.Do()
	s.Push(c)
	return err
}

// Undo reverts the latest command. Returns false if there was nothing to undo.
func (s *Stack) Undo() (bool, error) {
	if len(s.undo) == 0 {
		return false, nil
	}
	c := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, c)
	debug.Log("undo", "undo %q", c.Name())
	return true, c.Undo()
}

// Redo re-executes the latest undone command
func (s *Stack) Redo() (bool, error) {
	if len(s.redo) == 0 {
		return false, nil
	}
	c := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, c)
	debug.Log("undo", "redo %q", c.Name())
	return true, c.Do()
}

func (s *Stack) CanUndo() bool { return len(s.undo) > 0 }
func (s *Stack) CanRedo() bool { return len(s.redo) > 0 }
func (s *Stack) Depth() int    { return len(s.undo) }

// Peek returns the latest undoable command, or nil
func (s *Stack) Peek() Command {
	if len(s.undo) == 0 {
		return nil
	}
	return s.undo[len(s.undo)-1]
}

func (s *Stack) Clear() {
	s.undo = nil
	s.redo = nil
}
