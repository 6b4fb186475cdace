package entity

import (
	"time"

	"github.com/google/uuid"
)

// KnowledgeChunk is one ingested excerpt of compliance source material.
// Chunks are immutable once written; corrections go through delete and
// re-ingest.
type KnowledgeChunk struct {
	Id        uuid.UUID
	Text      string
	Embedding []float32
	ModuleTag string
	SourceRef string
	CreatedAt time.Time
}
