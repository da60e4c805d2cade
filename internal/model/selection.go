package model

// Selection is the current point plus an inclusive index range. -1 means
// nothing is selected.
type Selection struct {
	current int
	start   int
	end     int
}

// NewSelection creates an empty selection.
func NewSelection() *Selection {
	return &Selection{current: -1, start: -1, end: -1}
}

// CurrentPoint returns the selected point index, -1 if none.
func (s *Selection) CurrentPoint() int {
	return s.current
}

// Range returns the selected range, both -1 if none.
func (s *Selection) Range() (start, end int) {
	return s.start, s.end
}

// HasRange reports whether a range is selected.
func (s *Selection) HasRange() bool {
	return s.start >= 0 && s.end >= s.start
}

// SelectPoint sets the current point.
func (s *Selection) SelectPoint(index int) {
	if index < 0 {
		index = -1
	}
	s.current = index
}

// SelectRange selects start..end inclusive. An inverted range clears it.
func (s *Selection) SelectRange(start, end int) {
	if start < 0 || end < start {
		s.start, s.end = -1, -1
		return
	}
	s.start, s.end = start, end
}

// Clear removes the current point and the range.
func (s *Selection) Clear() {
	s.current, s.start, s.end = -1, -1, -1
}

// PointInserted re-projects the selection after a point was inserted at index.
// An insertion inside the range grows it.
func (s *Selection) PointInserted(index int) {
	if s.current >= index {
		s.current++
	}
	if !s.HasRange() {
		return
	}
	if s.start >= index {
		s.start++
		s.end++
	} else if s.end >= index {
		s.end++
	}
}

// PointDeleted re-projects the selection after the point at index was removed.
// A deletion inside the range shrinks it.
func (s *Selection) PointDeleted(index int) {
	switch {
	case s.current == index:
		s.current = -1
	case s.current > index:
		s.current--
	}
	if !s.HasRange() {
		return
	}
	if s.start > index {
		s.start--
	}
	if s.end >= index {
		s.end--
	}
	if s.end < s.start {
		s.start, s.end = -1, -1
	}
}

// Truncate drops whatever part of the selection lies at or beyond length.
func (s *Selection) Truncate(length int) {
	if s.current >= length {
		s.current = -1
	}
	if !s.HasRange() {
		return
	}
	if s.start >= length {
		s.start, s.end = -1, -1
	} else if s.end >= length {
		s.end = length - 1
	}
}
