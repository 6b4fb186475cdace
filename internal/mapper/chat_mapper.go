package mapper

import (
	"time"

	"gorm.io/datatypes"

	"cara-compliance-be/internal/entity"
	"cara-compliance-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) SessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}

	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.ChatSession{
		Id:        s.Id,
		UserId:    s.UserId,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: s.DeletedAt.Valid,
	}
}

func (m *ChatMapper) SessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}
	out := &model.ChatSession{
		Id:        s.Id,
		UserId:    s.UserId,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
	}
	if s.UpdatedAt != nil {
		out.UpdatedAt = *s.UpdatedAt
	}
	return out
}

func (m *ChatMapper) TurnToEntity(t *model.ConversationTurn) *entity.ConversationTurn {
	if t == nil {
		return nil
	}
	return &entity.ConversationTurn{
		Id:            t.Id,
		ChatSessionId: t.ChatSessionId,
		Seq:           t.Seq,
		Role:          t.Role,
		Text:          t.Text,
		Module:        t.Module,
		Citations:     t.Citations,
		CreatedAt:     t.CreatedAt,
	}
}

func (m *ChatMapper) TurnToModel(t *entity.ConversationTurn) *model.ConversationTurn {
	if t == nil {
		return nil
	}
	return &model.ConversationTurn{
		Id:            t.Id,
		ChatSessionId: t.ChatSessionId,
		Seq:           t.Seq,
		Role:          t.Role,
		Text:          t.Text,
		Module:        t.Module,
		Citations:     datatypes.NewJSONSlice(t.Citations),
		CreatedAt:     t.CreatedAt,
	}
}
