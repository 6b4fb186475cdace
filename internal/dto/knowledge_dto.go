package dto

import (
	"time"

	"github.com/google/uuid"
)

type AddKnowledgeRequest struct {
	ModuleTag string `json:"module_tag" validate:"required,max=64"`
	SourceRef string `json:"source_ref" validate:"required,max=512"`
	Text      string `json:"text" validate:"required"`
}

type AddKnowledgeResponse struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message"`
}

type KnowledgeChunkResponse struct {
	Id        uuid.UUID `json:"id"`
	ModuleTag string    `json:"module_tag"`
	SourceRef string    `json:"source_ref"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type ListKnowledgeResponse struct {
	Total  int64                     `json:"total"`
	Chunks []*KnowledgeChunkResponse `json:"chunks"`
}

type PurgeKnowledgeRequest struct {
	ModuleTag string `json:"module_tag" validate:"required,max=64"`
}

// PublishIngestKnowledgeMessage rides the internal message bus from the
// admin API to the ingest consumer.
type PublishIngestKnowledgeMessage struct {
	ModuleTag string `json:"module_tag"`
	SourceRef string `json:"source_ref"`
	Text      string `json:"text"`
}
