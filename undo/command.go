// Package undo implements reversible commands and the undo/redo stack they
// are pushed onto.
package undo

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"go-variations/graph"
	"go-variations/value"
)

// Command is a reversible change. Do and Undo must be safe to call more than once.
type Command interface {
	Name() string
	Do() error
	Undo() error
}

// ChangeInputValue sets one input of one child of a composition
type ChangeInputValue struct {
	graph graph.Graph

	CompositionPath []uuid.UUID
	ChildID         uuid.UUID
	InputID         uuid.UUID

	Value    value.Value
	Original value.Value
}

// NewChangeInputValue creates a command for the input at instancePath
// (composition path plus the child id as last element).
func NewChangeInputValue(g graph.Graph, instancePath []uuid.UUID, input uuid.UUID, original, v value.Value) *ChangeInputValue {
	c := &ChangeInputValue{
		graph:    g,
		InputID:  input,
		Value:    v,
		Original: original,
	}
	if n := len(instancePath); n > 0 {
		c.CompositionPath = append([]uuid.UUID(nil), instancePath[:n-1]...)
		c.ChildID = instancePath[n-1]
	}
	return c
}

func (c *ChangeInputValue) Name() string {
	return "Change Input Value"
}

// InstancePath returns the full path of the targeted child
func (c *ChangeInputValue) InstancePath() []uuid.UUID {
	if c.ChildID == uuid.Nil {
		return c.CompositionPath
	}
	return append(append([]uuid.UUID(nil), c.CompositionPath...), c.ChildID)
}

func (c *ChangeInputValue) Do() error {
	return c.set(c.Value)
}

func (c *ChangeInputValue) Undo() error {
	return c.set(c.Original)
}

// Amend replaces the new value without executing the command
func (c *ChangeInputValue) Amend(v value.Value) {
	c.Value = v
}

func (c *ChangeInputValue) set(v value.Value) error {
	slot, err := c.graph.Resolve(c.InstancePath(), c.InputID)
	if err != nil {
		return err
	}
	if err := slot.Set(v); err != nil {
		return err
	}
	slot.Invalidate()
	return nil
}

// Macro runs a list of commands as one step
type Macro struct {
	name     string
	commands []Command
}

func NewMacro(name string, commands []Command) *Macro {
	return &Macro{name: name, commands: commands}
}

func (m *Macro) Name() string {
	return m.name
}

func (m *Macro) Commands() []Command {
	return m.commands
}

func (m *Macro) Len() int {
	return len(m.commands)
}

// Do executes every command in order. A failing command does not stop the
// others; all errors are returned joined.
func (m *Macro) Do() error {
	var errs []error
	for _, c := range m.commands {
		if err := c.Do(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Undo reverts the commands in reverse order
func (m *Macro) Undo() error {
	var errs []error
	for i := len(m.commands) - 1; i >= 0; i-- {
		if err := m.commands[i].Undo(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", m.commands[i].Name(), err))
		}
	}
	return errors.Join(errs...)
}
