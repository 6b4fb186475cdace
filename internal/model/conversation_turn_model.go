package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ConversationTurn struct {
	Id            uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatSessionId uuid.UUID                   `gorm:"type:uuid;not null;index:idx_turn_session_seq,priority:1"`
	Seq           int                         `gorm:"not null;default:0;index:idx_turn_session_seq,priority:2"`
	Role          string                      `gorm:"type:varchar(16);not null"`
	Text          string                      `gorm:"type:text;not null"`
	Module        string                      `gorm:"type:varchar(64)"`
	Citations     datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	CreatedAt     time.Time                   `gorm:"autoCreateTime"`
}

func (ConversationTurn) TableName() string {
	return "conversation_turns"
}
