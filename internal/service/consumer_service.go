package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"cara-compliance-be/internal/dto"
	"cara-compliance-be/internal/pkg/logger"
	"cara-compliance-be/pkg/embedding"
)

// IConsumerService drains the ingest topic. A single consumer
// serializes corpus writes, so two admins submitting material at once
// never interleave partial batches.
type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub           *gochannel.GoChannel
	topicName        string
	knowledgeService IKnowledgeService
	log              logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	knowledgeService IKnowledgeService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:           pubSub,
		topicName:        topicName,
		knowledgeService: knowledgeService,
		log:              log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIngestKnowledgeMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("consumer", "failed to unmarshal ingest message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	count, err := cs.knowledgeService.IngestNow(ctx, &payload)
	if err != nil {
		var embErr *embedding.Error
		if errors.As(err, &embErr) {
			// Provider outage, keep the message for retry
			cs.log.Warn("consumer", "embedding provider unavailable, retrying ingest", map[string]interface{}{
				"source_ref": payload.SourceRef,
				"error":      err.Error(),
			})
			msg.Nack()
			return
		}
		cs.log.Error("consumer", "ingest failed", map[string]interface{}{
			"source_ref": payload.SourceRef,
			"error":      err.Error(),
		})
		msg.Ack() // Non-retriable, drop it
		return
	}

	cs.log.Info("consumer", "ingested knowledge chunks", map[string]interface{}{
		"module_tag": payload.ModuleTag,
		"source_ref": payload.SourceRef,
		"chunks":     count,
	})
	msg.Ack()
}
