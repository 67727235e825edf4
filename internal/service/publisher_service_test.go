package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"ai-shopassist-be/internal/constant"
	"ai-shopassist-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

func TestPublishIndexDocument(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	messages, err := pubSub.Subscribe(ctx, "indexing")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	publisher := NewPublisherService("indexing", pubSub)
	id := uuid.New()
	if err := publisher.PublishIndexDocument(constant.IndexKindKnowledge, id); err != nil {
		t.Fatalf("PublishIndexDocument() error = %v", err)
	}

	select {
	case msg := <-messages:
		var payload dto.IndexDocumentMessage
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		if payload.Kind != constant.IndexKindKnowledge {
			t.Errorf("Kind = %q, want %q", payload.Kind, constant.IndexKindKnowledge)
		}
		if payload.Id != id {
			t.Errorf("Id = %s, want %s", payload.Id, id)
		}
		msg.Ack()
	case <-time.After(2 * time.Second):
		t.Fatal("message never arrived on the indexing topic")
	}
}
