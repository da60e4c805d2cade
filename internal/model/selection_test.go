package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelection_Defaults(t *testing.T) {
	s := NewSelection()

	assert.Equal(t, -1, s.CurrentPoint())
	assert.False(t, s.HasRange())

	s.SelectRange(4, 2)
	assert.False(t, s.HasRange())
	s.SelectPoint(-7)
	assert.Equal(t, -1, s.CurrentPoint())
}

func TestSelection_PointInserted(t *testing.T) {
	tests := []struct {
		name       string
		index      int
		start, end int
		current    int
	}{
		{"before range", 1, 4, 7, 6},
		{"at range start", 3, 4, 7, 6},
		{"inside range", 4, 3, 7, 6},
		{"at range end", 6, 3, 7, 5},
		{"after range", 7, 3, 6, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSelection()
			s.SelectRange(3, 6)
			s.SelectPoint(5)

			s.PointInserted(tt.index)

			start, end := s.Range()
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
			assert.Equal(t, tt.current, s.CurrentPoint())
		})
	}
}

func TestSelection_PointDeleted(t *testing.T) {
	tests := []struct {
		name       string
		index      int
		start, end int
		current    int
	}{
		{"before range", 1, 2, 5, 4},
		{"range start", 3, 3, 5, 4},
		{"inside range", 4, 3, 5, 4},
		{"current point", 5, 3, 5, -1},
		{"range end", 6, 3, 5, 5},
		{"after range", 8, 3, 6, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSelection()
			s.SelectRange(3, 6)
			s.SelectPoint(5)

			s.PointDeleted(tt.index)

			start, end := s.Range()
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
			assert.Equal(t, tt.current, s.CurrentPoint())
		})
	}
}

func TestSelection_DeletingOnlyPointClearsRange(t *testing.T) {
	s := NewSelection()
	s.SelectRange(2, 2)

	s.PointDeleted(2)

	assert.False(t, s.HasRange())
}

func TestSelection_Truncate(t *testing.T) {
	s := NewSelection()
	s.SelectRange(2, 6)
	s.SelectPoint(5)

	s.Truncate(4)
	start, end := s.Range()
	assert.Equal(t, 2, start)
	assert.Equal(t, 3, end)
	assert.Equal(t, -1, s.CurrentPoint())

	s.Truncate(2)
	assert.False(t, s.HasRange())
}
