package command

import (
	"github.com/trackedit/trackedit/internal/model"
	"github.com/trackedit/trackedit/pkg/core"
)

// RearrangePoints reorders the whole track. After execution the point at
// index i is the one previously at perm[i].
type RearrangePoints struct {
	base
	perm        []int
	inversePerm []int
}

// NewRearrangePoints creates a reorder command. The inverse permutation is
// worked out here; a malformed perm leaves it nil, the command fails to
// execute and yields no inverse.
func NewRearrangePoints(perm []int) *RearrangePoints {
	perm = append([]int(nil), perm...)
	inv, _ := InvertPermutation(perm)
	return &RearrangePoints{
		base:        newBase(core.DataAddedOrRemoved, SnapshotBefore),
		perm:        perm,
		inversePerm: inv,
	}
}

// Permutation returns a copy of the target order.
func (c *RearrangePoints) Permutation() []int {
	return append([]int(nil), c.perm...)
}

func (c *RearrangePoints) Execute(s *model.Session) bool { return run(c, s) }

func (c *RearrangePoints) apply(s *model.Session) bool {
	if c.inversePerm == nil || len(c.perm) == 0 {
		return false
	}
	return s.Track.RearrangePoints(c.perm)
}

func (c *RearrangePoints) makeInverse(s *model.Session) Command {
	if c.inversePerm == nil || len(c.perm) != s.Track.NumPoints() {
		return nil
	}
	return NewRearrangePoints(c.inversePerm)
}

// InvertPermutation returns inv with inv[perm[i]] = i. ok is false when perm
// is not a permutation of 0..len(perm)-1.
func InvertPermutation(perm []int) (inv []int, ok bool) {
	if !model.IsPermutation(perm, len(perm)) {
		return nil, false
	}
	inv = make([]int, len(perm))
	for i, v := range perm {
		inv[v] = i
	}
	return inv, true
}
