package command

import (
	"github.com/trackedit/trackedit/internal/model"
	"github.com/trackedit/trackedit/pkg/core"
)

// Compound runs an ordered list of commands as one edit.
//
// Sub-commands are all executed and their results ANDed. A failing
// sub-command does not roll back the ones before it.
type Compound struct {
	base
	commands []Command
}

// NewCompound creates a compound of cmds in execution order. Nil entries are skipped.
func NewCompound(cmds ...Command) *Compound {
	c := &Compound{base: newBase(core.NoChange, DeriveAfter)}
	for _, cmd := range cmds {
		c.Add(cmd)
	}
	return c
}

// Add appends cmd to the execution list.
func (c *Compound) Add(cmd Command) {
	if cmd != nil {
		c.commands = append(c.commands, cmd)
	}
}

// Commands returns the sub-commands in execution order.
func (c *Compound) Commands() []Command {
	return append([]Command(nil), c.commands...)
}

// Len returns the number of sub-commands.
func (c *Compound) Len() int {
	return len(c.commands)
}

// UpdateFlags is the union of the sub-command flags.
func (c *Compound) UpdateFlags() core.UpdateFlags {
	flags := c.flags
	for _, cmd := range c.commands {
		flags |= cmd.UpdateFlags()
	}
	return flags
}

func (c *Compound) Execute(s *model.Session) bool {
	return run(c, s)
}

func (c *Compound) apply(s *model.Session) bool {
	if len(c.commands) == 0 {
		return false
	}
	ok := true
	for _, cmd := range c.commands {
		ok = cmd.Execute(s) && ok
	}
	return ok
}

// makeInverse collects the sub-command inverses, last first. Each sub-command
// cached its own inverse while the session reflected its result.
func (c *Compound) makeInverse(_ *model.Session) Command {
	inv := &Compound{base: newBase(c.flags, DeriveAfter)}
	for i := len(c.commands) - 1; i >= 0; i-- {
		sub := c.commands[i].Inverse()
		if sub == nil {
			return nil
		}
		inv.commands = append(inv.commands, sub)
	}
	return inv
}
