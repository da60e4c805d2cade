package handlers

import (
	"github.com/trackedit/trackedit/internal/command"
	"github.com/trackedit/trackedit/internal/dispatcher"
	"github.com/trackedit/trackedit/internal/model"
	"github.com/trackedit/trackedit/internal/parser"
)

// buildEditPoint: index field=value [field=value ...]
func (s *Service) buildEditPoint(e dispatcher.Event, sess *model.Session) (command.Command, error) {
	if err := parser.Require(e.Args, 2, "index field=value..."); err != nil {
		return nil, err
	}
	p, err := s.pointArg(e.Args, 0, sess)
	if err != nil {
		return nil, err
	}
	edits, err := s.deps.Parser.ParseFieldEdits(e.Args[1:])
	if err != nil {
		return nil, err
	}
	return command.NewEditPoint(p.ID(), edits), nil
}

// buildEditField: field value [indices]. Without indices the selected range
// is edited.
func (s *Service) buildEditField(e dispatcher.Event, sess *model.Session) (command.Command, error) {
	if err := parser.Require(e.Args, 2, "field value [indices]"); err != nil {
		return nil, err
	}
	edit, err := s.deps.Parser.ParseFieldEdit(e.Args[0] + "=" + e.Args[1])
	if err != nil {
		return nil, err
	}
	indices, err := s.indicesArg(e.Args, 2, sess)
	if err != nil {
		return nil, err
	}
	values := make([]command.PointValue, 0, len(indices))
	for _, i := range indices {
		values = append(values, command.PointValue{
			Point: sess.Track.Point(i).ID(),
			Value: edit.Value,
			Unit:  edit.Unit,
		})
	}
	return command.NewEditSingleField(edit.Field, values), nil
}

// buildEditAltitude: altitude [indices], e.g. 1500ft 3-9
func (s *Service) buildEditAltitude(e dispatcher.Event, sess *model.Session) (command.Command, error) {
	if err := parser.Require(e.Args, 1, "altitude [indices]"); err != nil {
		return nil, err
	}
	alt, err := s.deps.Parser.ParseAltitude(e.Args[0])
	if err != nil {
		return nil, err
	}
	indices, err := s.indicesArg(e.Args, 1, sess)
	if err != nil {
		return nil, err
	}
	edits := make([]command.AltitudeEdit, 0, len(indices))
	for _, i := range indices {
		edits = append(edits, command.AltitudeEdit{Point: sess.Track.Point(i).ID(), Altitude: alt})
	}
	return command.NewEditAltitude(edits), nil
}

// indicesArg parses args[i] as an index list, falling back to the selected range.
func (s *Service) indicesArg(args []string, i int, sess *model.Session) ([]int, error) {
	if len(args) > i {
		return s.deps.Parser.ParseIndexList(args[i], sess.Track.NumPoints())
	}
	start, end, err := s.rangeArg(args, i, sess)
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, end-start+1)
	for j := start; j <= end; j++ {
		out = append(out, j)
	}
	return out, nil
}
