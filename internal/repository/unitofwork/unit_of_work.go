package unitofwork

import (
	"context"

	"cara-compliance-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	KnowledgeChunkRepository() contract.KnowledgeChunkRepository
	ChatSessionRepository() contract.ChatSessionRepository
	ConversationTurnRepository() contract.ConversationTurnRepository
	WorkflowStateRepository() contract.WorkflowStateRepository
}
