// pkg/core/media.go
package core

// MediaKind distinguishes the two media lists of a session.
type MediaKind uint8

const (
	Photo MediaKind = iota
	Audio
)

func (k MediaKind) String() string {
	if k == Audio {
		return "audio"
	}
	return "photo"
}

// MediaSelector chooses which media kinds a command may touch.
type MediaSelector uint8

const (
	PhotosOnly MediaSelector = 1 << iota
	AudioOnly

	BothMedia = PhotosOnly | AudioOnly
)

// Includes reports whether the selector covers kind.
func (s MediaSelector) Includes(kind MediaKind) bool {
	if kind == Audio {
		return s&AudioOnly != 0
	}
	return s&PhotosOnly != 0
}

// MediaStatus tracks how a media object relates to its point.
type MediaStatus uint8

const (
	NotConnected MediaStatus = iota
	Tagged
	Connected
	NeedsReconnect
)

func (s MediaStatus) String() string {
	switch s {
	case Tagged:
		return "tagged"
	case Connected:
		return "connected"
	case NeedsReconnect:
		return "needs_reconnect"
	default:
		return "not_connected"
	}
}
