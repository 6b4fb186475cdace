package events

import "time"

const (
	TypeKnowledgeChunkAdded   = "KNOWLEDGE_CHUNK_ADDED"
	TypeKnowledgeModulePurged = "KNOWLEDGE_MODULE_PURGED"
)

// NewKnowledgeChunkAdded fires after a batch of chunks lands in the
// vector store.
func NewKnowledgeChunkAdded(moduleTag, sourceRef string, chunkCount int) Event {
	return BaseEvent{
		Type: TypeKnowledgeChunkAdded,
		Data: map[string]interface{}{
			"module_tag":  moduleTag,
			"source_ref":  sourceRef,
			"chunk_count": chunkCount,
		},
		OccurredAt: time.Now(),
	}
}

// NewKnowledgeModulePurged fires after an admin wipes a module's corpus.
func NewKnowledgeModulePurged(moduleTag string, removed int64) Event {
	return BaseEvent{
		Type: TypeKnowledgeModulePurged,
		Data: map[string]interface{}{
			"module_tag": moduleTag,
			"removed":    removed,
		},
		OccurredAt: time.Now(),
	}
}
