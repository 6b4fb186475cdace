package service

import (
	"context"

	"cara-compliance-be/internal/repository/unitofwork"
	"cara-compliance-be/pkg/assist/retrieval"
)

// uowSearcher backs the retrieval pipeline with the pgvector repository.
type uowSearcher struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewVectorSearcher(uowFactory unitofwork.RepositoryFactory) retrieval.Searcher {
	return &uowSearcher{uowFactory: uowFactory}
}

func (s *uowSearcher) Search(ctx context.Context, vector []float32, moduleTag string, k int) ([]retrieval.ScoredChunk, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.KnowledgeChunkRepository().SearchSimilarWithScore(ctx, vector, k, moduleTag)
	if err != nil {
		return nil, err
	}

	hits := make([]retrieval.ScoredChunk, 0, len(scored))
	for _, sc := range scored {
		hits = append(hits, retrieval.ScoredChunk{
			ChunkID:   sc.Chunk.Id,
			SourceRef: sc.Chunk.SourceRef,
			Text:      sc.Chunk.Text,
			Score:     sc.Similarity,
		})
	}
	return hits, nil
}
