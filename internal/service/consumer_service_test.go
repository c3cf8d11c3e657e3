package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"doc-intel-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const testIngestTopic = "INGEST_CHUNKS_TEST"

func publishRaw(t *testing.T, pubSub *gochannel.GoChannel, payload []byte) {
	t.Helper()
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := pubSub.Publish(testIngestTopic, msg); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
}

func waitForChunkCount(t *testing.T, f *ingestFixture, projectID string, want int64) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		count, err := f.chunks.CountByProject(context.Background(), projectID)
		if err != nil {
			t.Fatalf("CountByProject returned error: %v", err)
		}
		if count == want {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("stored chunks = %d, want %d before deadline", count, want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestConsumerProcessesQueuedBatch(t *testing.T) {
	f := newIngestFixture()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	defer pubSub.Close()

	consumer := NewConsumerService(pubSub, testIngestTopic, f.svc)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := consumer.Consume(ctx); err != nil {
		t.Fatalf("Consume returned error: %v", err)
	}

	// Async stays set in the payload to prove the consumer forces the
	// synchronous path instead of looping the batch through the queue.
	payload, err := json.Marshal(&dto.IngestChunksRequest{
		ProjectId: "proj-a",
		SourceId:  "doc-1",
		FileName:  "doc.pdf",
		Async:     true,
		Chunks:    chunkRecords(2),
	})
	if err != nil {
		t.Fatalf("marshal batch: %v", err)
	}
	publishRaw(t, pubSub, payload)

	waitForChunkCount(t, f, "proj-a", 2)

	if len(f.publisher.payloads) != 0 {
		t.Errorf("consumer re-queued the batch %d times", len(f.publisher.payloads))
	}
}

func TestConsumerSurvivesPoisonMessages(t *testing.T) {
	f := newIngestFixture()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	defer pubSub.Close()

	consumer := NewConsumerService(pubSub, testIngestTopic, f.svc)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := consumer.Consume(ctx); err != nil {
		t.Fatalf("Consume returned error: %v", err)
	}

	// Unparseable payload: acked and dropped.
	publishRaw(t, pubSub, []byte("{not json"))

	// Parseable but invalid batch: acked and dropped, never retried.
	invalid, _ := json.Marshal(&dto.IngestChunksRequest{
		SourceId: "doc-broken",
		FileName: "doc.pdf",
		Chunks:   chunkRecords(1),
	})
	publishRaw(t, pubSub, invalid)

	// A valid batch behind the poison still gets through.
	valid, _ := json.Marshal(&dto.IngestChunksRequest{
		ProjectId: "proj-a",
		SourceId:  "doc-ok",
		FileName:  "doc.pdf",
		Chunks:    chunkRecords(1),
	})
	publishRaw(t, pubSub, valid)

	waitForChunkCount(t, f, "proj-a", 1)
}
