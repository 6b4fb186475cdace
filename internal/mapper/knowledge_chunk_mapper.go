package mapper

import (
	"github.com/pgvector/pgvector-go"

	"cara-compliance-be/internal/entity"
	"cara-compliance-be/internal/model"
)

type KnowledgeChunkMapper struct{}

func NewKnowledgeChunkMapper() *KnowledgeChunkMapper {
	return &KnowledgeChunkMapper{}
}

func (m *KnowledgeChunkMapper) ToEntity(c *model.KnowledgeChunk) *entity.KnowledgeChunk {
	if c == nil {
		return nil
	}
	return &entity.KnowledgeChunk{
		Id:        c.Id,
		Text:      c.Text,
		Embedding: c.Embedding.Slice(),
		ModuleTag: c.ModuleTag,
		SourceRef: c.SourceRef,
		CreatedAt: c.CreatedAt,
	}
}

func (m *KnowledgeChunkMapper) ToModel(c *entity.KnowledgeChunk) *model.KnowledgeChunk {
	if c == nil {
		return nil
	}
	return &model.KnowledgeChunk{
		Id:        c.Id,
		Text:      c.Text,
		Embedding: pgvector.NewVector(c.Embedding),
		ModuleTag: c.ModuleTag,
		SourceRef: c.SourceRef,
		CreatedAt: c.CreatedAt,
	}
}
