package streaming

import (
	"encoding/json"

	"github.com/trackedit/trackedit/internal/model"
)

// Message type constants of the session store protocol.
const (
	TypeSaveSession  = "save_session"
	TypeLoadSession  = "load_session"
	TypeListSessions = "list_sessions"
	TypeEditJournal  = "edit_journal"
	TypeEditHistory  = "edit_history"
	TypeAck          = "ack"
)

// Ack error codes sent by the server.
const (
	ErrCodeNotFound = "not_found"
)

// Envelope wraps all messages sent over the WebSocket. ID correlates a
// request with its ack; fire-and-forget messages leave it empty.
type Envelope struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response. Replies to load,
// list and history requests carry their result in Payload.
type AckMessage struct {
	Type    string          `json:"type"` // always "ack"
	For     string          `json:"for"`  // the message type being acknowledged
	ID      string          `json:"id,omitempty"`
	Error   string          `json:"error,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SaveSessionPayload carries a full session snapshot.
type SaveSessionPayload struct {
	Name    string              `json:"name"`
	Session model.SessionRecord `json:"session"`
}

// LoadSessionPayload names the session to load. The ack payload is a
// model.SessionRecord.
type LoadSessionPayload struct {
	Name string `json:"name"`
}

// ListSessionsReply is the ack payload of a list request.
type ListSessionsReply struct {
	Names []string `json:"names"`
}

// EditHistoryPayload asks for the newest journal entries of a session.
// The ack payload is a []model.EditRecord.
type EditHistoryPayload struct {
	Session string `json:"session"`
	Limit   int    `json:"limit"`
}
