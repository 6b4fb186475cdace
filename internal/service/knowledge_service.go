package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cara-compliance-be/internal/dto"
	"cara-compliance-be/internal/entity"
	"cara-compliance-be/internal/pkg/logger"
	"cara-compliance-be/internal/repository/specification"
	"cara-compliance-be/internal/repository/unitofwork"
	"cara-compliance-be/pkg/assist"
	"cara-compliance-be/pkg/embedding"
	"cara-compliance-be/pkg/events"
	pktNats "cara-compliance-be/pkg/nats"
	"cara-compliance-be/pkg/utils"
)

const (
	chunkSize    = 800
	chunkOverlap = 100
)

// IKnowledgeService manages the per-module knowledge corpora.
type IKnowledgeService interface {
	// Add queues source material for asynchronous ingestion.
	Add(ctx context.Context, req *dto.AddKnowledgeRequest) (*dto.AddKnowledgeResponse, error)
	// IngestNow splits, embeds, and stores material synchronously.
	// Used by the ingest consumer and the seeder.
	IngestNow(ctx context.Context, req *dto.PublishIngestKnowledgeMessage) (int, error)
	List(ctx context.Context, moduleTag string, limit, offset int) (*dto.ListKnowledgeResponse, error)
	Purge(ctx context.Context, req *dto.PurgeKnowledgeRequest) error
}

type knowledgeService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.Provider
	publisherService  IPublisherService
	eventPublisher    *pktNats.Publisher
	log               logger.ILogger
}

func NewKnowledgeService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.Provider,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IKnowledgeService {
	return &knowledgeService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		publisherService:  publisherService,
		eventPublisher:    eventPublisher,
		log:               log,
	}
}

func (s *knowledgeService) Add(ctx context.Context, req *dto.AddKnowledgeRequest) (*dto.AddKnowledgeResponse, error) {
	if !assist.ModuleTag(req.ModuleTag).Valid() {
		return nil, fmt.Errorf("unknown module tag: %s", req.ModuleTag)
	}

	payload := dto.PublishIngestKnowledgeMessage{
		ModuleTag: req.ModuleTag,
		SourceRef: req.SourceRef,
		Text:      req.Text,
	}
	msgJson, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	if err := s.publisherService.Publish(ctx, msgJson); err != nil {
		return nil, err
	}

	s.log.Info("knowledge", "queued ingest", map[string]interface{}{
		"module_tag": req.ModuleTag,
		"source_ref": req.SourceRef,
		"bytes":      len(req.Text),
	})

	return &dto.AddKnowledgeResponse{
		Accepted: true,
		Message:  "Material queued for ingestion",
	}, nil
}

func (s *knowledgeService) IngestNow(ctx context.Context, req *dto.PublishIngestKnowledgeMessage) (int, error) {
	if !assist.ModuleTag(req.ModuleTag).Valid() {
		return 0, fmt.Errorf("unknown module tag: %s", req.ModuleTag)
	}

	pieces := utils.SplitText(req.Text, chunkSize, chunkOverlap)
	chunks := make([]*entity.KnowledgeChunk, 0, len(pieces))
	now := time.Now()

	for _, piece := range pieces {
		resp, err := s.embeddingProvider.Generate(ctx, piece, embedding.TaskRetrievalDocument)
		if err != nil {
			return 0, fmt.Errorf("embed chunk for %s: %w", req.SourceRef, err)
		}
		chunks = append(chunks, &entity.KnowledgeChunk{
			Text:      piece,
			Embedding: embedding.NormalizeVector(resp.Embedding.Values),
			ModuleTag: req.ModuleTag,
			SourceRef: req.SourceRef,
			CreatedAt: now,
		})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.KnowledgeChunkRepository().CreateBulk(ctx, chunks); err != nil {
		return 0, err
	}

	if s.eventPublisher != nil {
		evt := events.NewKnowledgeChunkAdded(req.ModuleTag, req.SourceRef, len(chunks))
		// Event delivery is auxiliary, failures only get logged
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.log.Warn("knowledge", "failed to publish chunk added event", map[string]interface{}{"error": err.Error()})
		}
	}

	return len(chunks), nil
}

func (s *knowledgeService) List(ctx context.Context, moduleTag string, limit, offset int) (*dto.ListKnowledgeResponse, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.KnowledgeChunkRepository()

	specs := []specification.Specification{
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	}
	countSpecs := []specification.Specification{}
	if moduleTag != "" {
		tagSpec := specification.ByModuleTag{ModuleTag: moduleTag}
		specs = append([]specification.Specification{tagSpec}, specs...)
		countSpecs = append(countSpecs, tagSpec)
	}

	chunks, err := repo.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	total, err := repo.Count(ctx, countSpecs...)
	if err != nil {
		return nil, err
	}

	resp := &dto.ListKnowledgeResponse{Total: total, Chunks: make([]*dto.KnowledgeChunkResponse, 0, len(chunks))}
	for _, c := range chunks {
		resp.Chunks = append(resp.Chunks, &dto.KnowledgeChunkResponse{
			Id:        c.Id,
			ModuleTag: c.ModuleTag,
			SourceRef: c.SourceRef,
			Text:      c.Text,
			CreatedAt: c.CreatedAt,
		})
	}
	return resp, nil
}

func (s *knowledgeService) Purge(ctx context.Context, req *dto.PurgeKnowledgeRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.KnowledgeChunkRepository()

	removed, err := repo.Count(ctx, specification.ByModuleTag{ModuleTag: req.ModuleTag})
	if err != nil {
		return err
	}
	if err := repo.DeleteByModuleTag(ctx, req.ModuleTag); err != nil {
		return err
	}

	s.log.Info("knowledge", "purged module corpus", map[string]interface{}{
		"module_tag": req.ModuleTag,
		"removed":    removed,
	})

	if s.eventPublisher != nil {
		evt := events.NewKnowledgeModulePurged(req.ModuleTag, removed)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.log.Warn("knowledge", "failed to publish purge event", map[string]interface{}{"error": err.Error()})
		}
	}
	return nil
}
