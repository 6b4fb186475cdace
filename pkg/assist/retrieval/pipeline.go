// Package retrieval embeds a query and pulls the most relevant
// knowledge chunks for a module from the vector store.
package retrieval

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/google/uuid"

	"cara-compliance-be/pkg/assist"
	"cara-compliance-be/pkg/embedding"
	"cara-compliance-be/pkg/store"
)

// ScoredChunk is a raw vector search hit before floor filtering and
// ranking.
type ScoredChunk struct {
	ChunkID   uuid.UUID
	SourceRef string
	Text      string
	Score     float64
}

// Searcher is the vector store port. moduleTag empty means search every
// module's corpus.
type Searcher interface {
	Search(ctx context.Context, vector []float32, moduleTag string, k int) ([]ScoredChunk, error)
}

// Pipeline runs query embedding followed by similarity search.
type Pipeline struct {
	embedder embedding.Provider
	searcher Searcher
	logger   *log.Logger
}

func NewPipeline(embedder embedding.Provider, searcher Searcher, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{embedder: embedder, searcher: searcher, logger: logger}
}

// Retrieve returns up to k snippets for the query, restricted to the
// module's corpus (the general module searches all corpora), with hits
// below scoreFloor dropped. An empty result is a valid outcome. The
// same inputs against the same corpus always return the same snippets
// in the same order: ties on score break on the searcher's secondary
// ordering, which the store pins to insertion time then chunk id.
func (p *Pipeline) Retrieve(ctx context.Context, query string, module assist.ModuleTag, k int, scoreFloor float64) ([]store.Snippet, error) {
	resp, err := p.embedder.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	vector := embedding.NormalizeVector(resp.Embedding.Values)

	tag := string(module)
	if module == assist.ModuleGeneral {
		tag = ""
	}

	hits, err := p.searcher.Search(ctx, vector, tag, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	filtered := hits[:0:0]
	for _, h := range hits {
		if h.Score >= scoreFloor {
			filtered = append(filtered, h)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Score > filtered[j].Score
	})
	if len(filtered) > k {
		filtered = filtered[:k]
	}

	snippets := make([]store.Snippet, 0, len(filtered))
	for i, h := range filtered {
		snippets = append(snippets, store.Snippet{
			ChunkID:   h.ChunkID.String(),
			SourceRef: h.SourceRef,
			Excerpt:   h.Text,
			Score:     float32(h.Score),
			Rank:      i + 1,
		})
	}

	p.logger.Printf("[retrieval] module=%s hits=%d kept=%d floor=%.2f", module, len(hits), len(snippets), scoreFloor)
	return snippets, nil
}
