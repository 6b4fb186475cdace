package entity

import (
	"time"

	"github.com/google/uuid"
)

// ConversationTurn is one message in a chat session, either from the
// user or from the assistant. Seq numbers turns within their session
// starting at 1; it is the ordering key, not the wall clock.
type ConversationTurn struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	Seq           int
	Role          string
	Text          string
	Module        string
	Citations     []string
	CreatedAt     time.Time
}
