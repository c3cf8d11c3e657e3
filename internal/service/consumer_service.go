// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"doc-intel-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub        *gochannel.GoChannel
	topicName     string
	ingestService IIngestService
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	ingestService IIngestService,
) IConsumerService {
	return &consumerService{
		pubSub:        pubSub,
		topicName:     topicName,
		ingestService: ingestService,
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
	var req dto.IngestChunksRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		log.Printf("[ERROR] Failed to unmarshal ingest message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	// The queued copy was flagged sync at enqueue time; enforce it anyway so
	// a hand-crafted message cannot loop through the queue.
	req.Async = false

	log.Printf("[INFO] Processing queued ingestion for source %s (%d chunks)", req.SourceId, len(req.Chunks))

	res, err := cs.ingestService.IngestChunks(ctx, &req)
	if err != nil {
		var validationErr dto.ValidationError
		if errors.As(err, &validationErr) {
			// Malformed batches never become valid; retrying is pointless.
			log.Printf("[ERROR] Dropping invalid ingest batch for source %s: %v", req.SourceId, err)
			msg.Ack()
			return
		}

		// Provider and store outages are retriable.
		log.Printf("[ERROR] Ingestion failed for source %s: %v", req.SourceId, err)
		msg.Nack()
		return
	}

	log.Printf("[SUCCESS] Ingested %d chunks for source %s (project %s)", res.ChunksIngested, req.SourceId, req.ProjectId)
	msg.Ack()
}
