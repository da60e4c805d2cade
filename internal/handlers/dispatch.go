package handlers

import "github.com/trackedit/trackedit/internal/dispatcher"

// Command names.
const (
	CmdSessionNew   = "session:new"
	CmdSessionLoad  = "session:load"
	CmdSessionSave  = "session:save"
	CmdSessionList  = "session:list"
	CmdSessionClose = "session:close"
	CmdTrackInfo    = "track:info"

	CmdSelectPoint = "select:point"
	CmdSelectRange = "select:range"
	CmdSelectClear = "select:clear"

	CmdPointAppend        = "point:append"
	CmdPointInsert        = "point:insert"
	CmdPointDelete        = "point:delete"
	CmdPointsDeleteFinal  = "points:deleteFinal"
	CmdPointsDeleteAll    = "points:deleteAll"
	CmdPointsDeleteMarked = "points:deleteMarked"
	CmdPointsRearrange    = "points:rearrange"
	CmdRangeReverse       = "range:reverse"
	CmdRangeMove          = "range:move"
	CmdSegmentsSew        = "segments:sew"
	CmdSegmentsSet        = "segments:set"

	CmdPointEdit    = "point:edit"
	CmdFieldEdit    = "field:edit"
	CmdAltitudeEdit = "altitude:edit"

	CmdMediaAdd              = "media:add"
	CmdMediaImport           = "media:import"
	CmdMediaRemove           = "media:remove"
	CmdMediaConnect          = "media:connect"
	CmdMediaDisconnect       = "media:disconnect"
	CmdMediaCorrelate        = "media:correlate"
	CmdMediaRemoveCorrelated = "media:removeCorrelated"

	CmdUndo    = "edit:undo"
	CmdRedo    = "edit:redo"
	CmdHistory = "edit:history"
	CmdJournal = "edit:journal"
)

// RegisterHandlers registers all handlers with the dispatcher. Everything
// that reads or changes a session runs on the serial mutation goroutine.
func (s *Service) RegisterHandlers(d *dispatcher.Dispatcher) {
	serial := []dispatcher.Option{dispatcher.Serial(), dispatcher.Logged()}

	// Session lifecycle
	d.Register(CmdSessionNew, s.handleSessionNew, serial...)
	d.Register(CmdSessionLoad, s.handleSessionLoad, serial...)
	d.Register(CmdSessionSave, s.handleSessionSave, serial...)
	d.Register(CmdSessionClose, s.handleSessionClose, serial...)
	d.Register(CmdTrackInfo, s.handleTrackInfo, serial...)
	// Listing only reads the registry and the backend
	d.Register(CmdSessionList, s.handleSessionList, dispatcher.Logged())

	// Selection, not undoable
	d.Register(CmdSelectPoint, s.handleSelectPoint, serial...)
	d.Register(CmdSelectRange, s.handleSelectRange, serial...)
	d.Register(CmdSelectClear, s.handleSelectClear, serial...)

	// Point structure
	d.Register(CmdPointAppend, s.edit("append point", s.buildAppendPoint), serial...)
	d.Register(CmdPointInsert, s.edit("insert point", s.buildInsertPoint), serial...)
	d.Register(CmdPointDelete, s.edit("delete point", s.buildDeletePoint), serial...)
	d.Register(CmdPointsDeleteFinal, s.edit("delete final points", s.buildDeleteFinal), serial...)
	d.Register(CmdPointsDeleteAll, s.edit("delete all points", s.buildDeleteAll), serial...)
	d.Register(CmdPointsDeleteMarked, s.edit("delete marked points", s.buildDeleteMarked), serial...)
	d.Register(CmdPointsRearrange, s.edit("rearrange points", s.buildRearrange), serial...)
	d.Register(CmdRangeReverse, s.edit("reverse range", s.buildReverseRange), serial...)
	d.Register(CmdRangeMove, s.edit("cut and move range", s.buildMoveRange), serial...)
	d.Register(CmdSegmentsSew, s.edit("sew segments", s.buildSewSegments), serial...)
	d.Register(CmdSegmentsSet, s.edit("set segments", s.buildSetSegments), serial...)

	// Field edits
	d.Register(CmdPointEdit, s.edit("edit point", s.buildEditPoint), serial...)
	d.Register(CmdFieldEdit, s.edit("edit field", s.buildEditField), serial...)
	d.Register(CmdAltitudeEdit, s.edit("edit altitude", s.buildEditAltitude), serial...)

	// Media
	d.Register(CmdMediaAdd, s.edit("add media", s.buildAddMedia), serial...)
	d.Register(CmdMediaImport, s.edit("import media with point", s.buildImportMedia), serial...)
	d.Register(CmdMediaRemove, s.edit("remove media", s.buildRemoveMedia), serial...)
	d.Register(CmdMediaConnect, s.edit("connect media", s.buildConnectMedia), serial...)
	d.Register(CmdMediaDisconnect, s.edit("disconnect media", s.buildDisconnectMedia), serial...)
	d.Register(CmdMediaCorrelate, s.edit("correlate media", s.buildCorrelateMedia), serial...)
	d.Register(CmdMediaRemoveCorrelated, s.edit("remove correlated media", s.buildRemoveCorrelated), serial...)

	// History
	d.Register(CmdUndo, s.handleUndo, serial...)
	d.Register(CmdRedo, s.handleRedo, serial...)
	d.Register(CmdHistory, s.handleHistory, serial...)
	d.Register(CmdJournal, s.handleJournal, dispatcher.Logged())
}
