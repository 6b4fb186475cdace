package contract

import (
	"context"

	"github.com/google/uuid"

	"cara-compliance-be/internal/entity"
	"cara-compliance-be/internal/repository/specification"
)

// ScoredKnowledgeChunk wraps KnowledgeChunk with its similarity score
type ScoredKnowledgeChunk struct {
	Chunk      *entity.KnowledgeChunk
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type KnowledgeChunkRepository interface {
	Create(ctx context.Context, chunk *entity.KnowledgeChunk) error
	CreateBulk(ctx context.Context, chunks []*entity.KnowledgeChunk) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByModuleTag(ctx context.Context, moduleTag string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KnowledgeChunk, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KnowledgeChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore returns chunks with cosine similarity scores.
	// An empty moduleTag searches every module's corpus. Ties on score
	// break on created_at then id so results are stable across calls.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, moduleTag string) ([]*ScoredKnowledgeChunk, error)
}
