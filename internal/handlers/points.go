package handlers

import (
	"fmt"

	"github.com/trackedit/trackedit/internal/command"
	"github.com/trackedit/trackedit/internal/dispatcher"
	"github.com/trackedit/trackedit/internal/model"
	"github.com/trackedit/trackedit/internal/parser"
)

// rangeArg parses args[i] as a range, falling back to the selected range.
func (s *Service) rangeArg(args []string, i int, sess *model.Session) (start, end int, err error) {
	if len(args) > i {
		return s.deps.Parser.ParseRange(args[i], sess.Track.NumPoints())
	}
	if sess.Selection.HasRange() {
		start, end = sess.Selection.Range()
		return start, end, nil
	}
	return 0, 0, fmt.Errorf("%w: no range given and none selected", parser.ErrMissingArgs)
}

// pointArg parses args[i] as a point index, falling back to the current point.
func (s *Service) pointArg(args []string, i int, sess *model.Session) (*model.DataPoint, error) {
	if len(args) > i {
		index, err := s.deps.Parser.ParseIndex(args[i], sess.Track.NumPoints())
		if err != nil {
			return nil, err
		}
		return sess.Track.Point(index), nil
	}
	if p := sess.Track.Point(sess.Selection.CurrentPoint()); p != nil {
		return p, nil
	}
	return nil, fmt.Errorf("%w: no point given and none selected", parser.ErrMissingArgs)
}

// buildAppendPoint: lat,lon [altitude] [name]
func (s *Service) buildAppendPoint(e dispatcher.Event, _ *model.Session) (command.Command, error) {
	p, err := s.deps.Parser.ParsePoint(e.Args)
	if err != nil {
		return nil, err
	}
	return command.NewAppendRange([]*model.DataPoint{p}), nil
}

// buildInsertPoint: index lat,lon [altitude] [name]
func (s *Service) buildInsertPoint(e dispatcher.Event, sess *model.Session) (command.Command, error) {
	if err := parser.Require(e.Args, 2, "index lat,lon [altitude] [name]"); err != nil {
		return nil, err
	}
	index, err := s.deps.Parser.ParseIndex(e.Args[0], sess.Track.NumPoints()+1)
	if err != nil {
		return nil, err
	}
	p, err := s.deps.Parser.ParsePoint(e.Args[1:])
	if err != nil {
		return nil, err
	}
	return command.NewInsertPoint(p, index), nil
}

// buildDeletePoint: [index]
func (s *Service) buildDeletePoint(e dispatcher.Event, sess *model.Session) (command.Command, error) {
	p, err := s.pointArg(e.Args, 0, sess)
	if err != nil {
		return nil, err
	}
	return command.NewDeletePoint(sess.Track.IndexOf(p.ID())), nil
}

// buildDeleteFinal: count
func (s *Service) buildDeleteFinal(e dispatcher.Event, sess *model.Session) (command.Command, error) {
	if err := parser.Require(e.Args, 1, "count"); err != nil {
		return nil, err
	}
	count, err := s.deps.Parser.ParseCount(e.Args[0])
	if err != nil {
		return nil, err
	}
	if count > sess.Track.NumPoints() {
		return nil, fmt.Errorf("%w: cannot delete %d of %d points", parser.ErrOutOfRange, count, sess.Track.NumPoints())
	}
	return command.NewDeleteFinalRange(count), nil
}

func (s *Service) buildDeleteAll(_ dispatcher.Event, sess *model.Session) (command.Command, error) {
	if sess.Track.NumPoints() == 0 {
		return nil, nil
	}
	return command.NewDeleteAllPoints(), nil
}

// buildDeleteMarked: indices, e.g. 1,4-6
func (s *Service) buildDeleteMarked(e dispatcher.Event, sess *model.Session) (command.Command, error) {
	if err := parser.Require(e.Args, 1, "indices"); err != nil {
		return nil, err
	}
	marked, err := s.deps.Parser.ParseIndexList(e.Args[0], sess.Track.NumPoints())
	if err != nil {
		return nil, err
	}
	return compound(command.NewDeleteMarkedPoints(sess, marked)), nil
}

// buildRearrange: permutation, e.g. 2,0,1
func (s *Service) buildRearrange(e dispatcher.Event, sess *model.Session) (command.Command, error) {
	if err := parser.Require(e.Args, 1, "permutation"); err != nil {
		return nil, err
	}
	perm, err := s.deps.Parser.ParsePermutation(e.Args[0], sess.Track.NumPoints())
	if err != nil {
		return nil, err
	}
	return command.NewRearrangePoints(perm), nil
}

// buildReverseRange: [start-end]
func (s *Service) buildReverseRange(e dispatcher.Event, sess *model.Session) (command.Command, error) {
	start, end, err := s.rangeArg(e.Args, 0, sess)
	if err != nil {
		return nil, err
	}
	return compound(command.NewReverseRange(sess, start, end)), nil
}

// buildMoveRange: start-end dest. dest may equal the number of points to
// move the range to the end.
func (s *Service) buildMoveRange(e dispatcher.Event, sess *model.Session) (command.Command, error) {
	if err := parser.Require(e.Args, 2, "start-end dest"); err != nil {
		return nil, err
	}
	start, end, err := s.rangeArg(e.Args, 0, sess)
	if err != nil {
		return nil, err
	}
	dest, err := s.deps.Parser.ParseIndex(e.Args[1], sess.Track.NumPoints()+1)
	if err != nil {
		return nil, err
	}
	return compound(command.NewCutAndMove(sess, start, end, dest)), nil
}

// buildSewSegments: order, e.g. 1,0,2 puts segment 1 first
func (s *Service) buildSewSegments(e dispatcher.Event, sess *model.Session) (command.Command, error) {
	if err := parser.Require(e.Args, 1, "segment order"); err != nil {
		return nil, err
	}
	order, err := s.deps.Parser.ParsePermutation(e.Args[0], command.SegmentCount(sess.Track))
	if err != nil {
		return nil, err
	}
	return compound(command.NewSewSegments(sess, order)), nil
}

// buildSetSegments: indices on|off
func (s *Service) buildSetSegments(e dispatcher.Event, sess *model.Session) (command.Command, error) {
	if err := parser.Require(e.Args, 2, "indices on|off"); err != nil {
		return nil, err
	}
	indices, err := s.deps.Parser.ParseIndexList(e.Args[0], sess.Track.NumPoints())
	if err != nil {
		return nil, err
	}
	on, err := s.deps.Parser.ParseBool(e.Args[1])
	if err != nil {
		return nil, err
	}
	flags := make(map[model.PointID]bool, len(indices))
	for _, i := range indices {
		p := sess.Track.Point(i)
		if p.SegmentStart() != on {
			flags[p.ID()] = on
		}
	}
	if len(flags) == 0 {
		return nil, nil
	}
	return command.NewSetSegments(flags), nil
}
