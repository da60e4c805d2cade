package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/trackedit/trackedit/pkg/core"
)

// MediaID is a stable handle for a photo or audio clip.
type MediaID = uuid.UUID

// Media is a photo or audio clip, optionally linked to one track point.
// The link is only changed through Session.Link and Session.Unlink so that
// both sides always agree.
type Media struct {
	id        MediaID
	kind      core.MediaKind
	name      string
	timestamp time.Time
	status    core.MediaStatus
	pointID   PointID
}

// NewMedia creates an unlinked media object of kind.
func NewMedia(kind core.MediaKind, name string) *Media {
	return &Media{id: uuid.New(), kind: kind, name: name}
}

// NewPhoto creates an unlinked photo.
func NewPhoto(name string) *Media {
	return NewMedia(core.Photo, name)
}

// NewAudioClip creates an unlinked audio clip.
func NewAudioClip(name string) *Media {
	return NewMedia(core.Audio, name)
}

// RestoreMedia rebuilds a media object with a known id, unlinked.
func RestoreMedia(id MediaID, kind core.MediaKind, name string, timestamp time.Time, status core.MediaStatus) *Media {
	return &Media{id: id, kind: kind, name: name, timestamp: timestamp, status: status}
}

func (m *Media) ID() MediaID { return m.id }
func (m *Media) Kind() core.MediaKind { return m.kind }
func (m *Media) Name() string { return m.name }
func (m *Media) Timestamp() time.Time { return m.timestamp }
func (m *Media) SetTimestamp(t time.Time) { m.timestamp = t }
func (m *Media) Status() core.MediaStatus { return m.status }
func (m *Media) SetStatus(s core.MediaStatus) { m.status = s }
func (m *Media) PointID() PointID { return m.pointID }

// IsConnected reports whether the media is linked to a point.
func (m *Media) IsConnected() bool {
	return m.pointID != uuid.Nil
}

// MediaList is the ordered list of one kind of media. Like Track, it keeps an
// add-only registry of every object it has held.
type MediaList struct {
	kind  core.MediaKind
	items []*Media
	known map[MediaID]*Media
}

// NewMediaList creates an empty list for kind.
func NewMediaList(kind core.MediaKind) *MediaList {
	return &MediaList{kind: kind, known: make(map[MediaID]*Media)}
}

// Kind returns the media kind held by the list.
func (l *MediaList) Kind() core.MediaKind {
	return l.kind
}

// Len returns the number of items.
func (l *MediaList) Len() int {
	return len(l.items)
}

// At returns the item at index, nil when out of range.
func (l *MediaList) At(index int) *Media {
	if index < 0 || index >= len(l.items) {
		return nil
	}
	return l.items[index]
}

// All returns a copy of the items.
func (l *MediaList) All() []*Media {
	return append([]*Media(nil), l.items...)
}

// Add appends m. It fails for nil, the wrong kind, or an item already present.
func (l *MediaList) Add(m *Media) bool {
	return l.AddAt(m, -1)
}

// AddAt inserts m at index, appending when index is negative.
func (l *MediaList) AddAt(m *Media, index int) bool {
	if m == nil || m.kind != l.kind || index > len(l.items) || l.Contains(m) {
		return false
	}
	if index < 0 {
		index = len(l.items)
	}
	l.items = append(l.items, nil)
	copy(l.items[index+1:], l.items[index:])
	l.items[index] = m
	l.known[m.id] = m
	return true
}

// Delete removes the item at index and returns it, nil when out of range.
func (l *MediaList) Delete(index int) *Media {
	if index < 0 || index >= len(l.items) {
		return nil
	}
	m := l.items[index]
	copy(l.items[index:], l.items[index+1:])
	l.items[len(l.items)-1] = nil
	l.items = l.items[:len(l.items)-1]
	return m
}

// DeleteMedia removes m by identity.
func (l *MediaList) DeleteMedia(m *Media) bool {
	return l.Delete(l.IndexOf(m)) != nil
}

// IndexOf returns the index of m, -1 when absent.
func (l *MediaList) IndexOf(m *Media) int {
	if m == nil {
		return -1
	}
	for i, item := range l.items {
		if item.id == m.id {
			return i
		}
	}
	return -1
}

// Contains reports whether m is in the list.
func (l *MediaList) Contains(m *Media) bool {
	return l.IndexOf(m) >= 0
}

// Resolve returns any media object that has ever been in the list.
func (l *MediaList) Resolve(id MediaID) *Media {
	if id == uuid.Nil {
		return nil
	}
	return l.known[id]
}
