package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByChatSessionID filters conversation turns by their session
type ByChatSessionID struct {
	ChatSessionID uuid.UUID
}

func (s ByChatSessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_session_id = ?", s.ChatSessionID)
}

// UserOwnedBy filters sessions by owner for data isolation
type UserOwnedBy struct {
	UserID uuid.UUID
}

func (s UserOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

// ByModuleTag filters knowledge chunks or turns by module
type ByModuleTag struct {
	ModuleTag string
}

func (s ByModuleTag) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("module_tag = ?", s.ModuleTag)
}

// ByStatus filters workflow states
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}
