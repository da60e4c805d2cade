// Package command implements the undoable edit protocol for a track session.
//
// A command is built from plain values, executed once against a session, and
// from then on carries its inverse. Executing the inverse undoes the edit and
// executing the inverse's inverse (the original) redoes it.
package command

import (
	"errors"

	"github.com/trackedit/trackedit/internal/model"
	"github.com/trackedit/trackedit/pkg/core"
)

// ErrInverseOnly is the panic value raised when a command that only exists as
// the undo of another command is asked to build its own inverse.
var ErrInverseOnly = errors.New("command can only be used as an inverse")

// InverseStrategy says which session state a command's inverse is built from.
type InverseStrategy uint8

const (
	// SnapshotBefore captures the values to restore before the edit is applied.
	SnapshotBefore InverseStrategy = iota
	// DeriveAfter builds the inverse from the session the edit produced.
	DeriveAfter
)

func (s InverseStrategy) String() string {
	if s == DeriveAfter {
		return "derive_after"
	}
	return "snapshot_before"
}

// Command is one undoable mutation of a session.
type Command interface {
	// Execute applies the edit. It returns false and leaves the session
	// untouched when there is nothing to do or the input is invalid.
	Execute(s *model.Session) bool
	// Inverse returns the command undoing this one, nil before the first
	// successful Execute.
	Inverse() Command
	UpdateFlags() core.UpdateFlags
	Description() string
	ConfirmText() string
	// IsUndo reports whether the command was created as another's inverse.
	IsUndo() bool
	Strategy() InverseStrategy
}

// operation is the internal side of every concrete command.
type operation interface {
	Command
	state() *base
	apply(s *model.Session) bool
	makeInverse(s *model.Session) Command
}

// base holds the state shared by all commands. The inverse slot is filled
// once, on the first successful execute, and never replaced.
type base struct {
	flags       core.UpdateFlags
	strategy    InverseStrategy
	inverse     Command
	undo        bool
	description string
	confirm     string
}

func newBase(flags core.UpdateFlags, strategy InverseStrategy) base {
	return base{flags: flags, strategy: strategy}
}

func (b *base) state() *base                  { return b }
func (b *base) Inverse() Command              { return b.inverse }
func (b *base) UpdateFlags() core.UpdateFlags { return b.flags }
func (b *base) Description() string           { return b.description }
func (b *base) ConfirmText() string           { return b.confirm }
func (b *base) IsUndo() bool                  { return b.undo }
func (b *base) Strategy() InverseStrategy     { return b.strategy }

// run is the execute template shared by every command.
func run(op operation, s *model.Session) bool {
	if s == nil {
		return false
	}
	b := op.state()
	first := b.inverse == nil

	var inv Command
	if first && b.strategy == SnapshotBefore {
		inv = op.makeInverse(s)
	}
	if !op.apply(s) {
		return false
	}
	if first {
		if b.strategy == DeriveAfter {
			inv = op.makeInverse(s)
		}
		pair(op, inv)
	}
	return true
}

// pair links a command and its inverse in both directions.
func pair(op operation, inv Command) {
	if inv == nil {
		return
	}
	b := op.state()
	b.inverse = inv
	if other, ok := inv.(operation); ok {
		ob := other.state()
		ob.inverse = op
		ob.undo = true
		if ob.description == "" {
			ob.description = b.description
		}
	}
}

// Describe attaches user-facing texts to c and returns it.
func Describe(c Command, description, confirm string) Command {
	if op, ok := c.(operation); ok {
		b := op.state()
		b.description = description
		b.confirm = confirm
	}
	return c
}
