package service

import (
	"encoding/json"
	"fmt"

	"ai-shopassist-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// IPublisherService puts indexing work on the in-process topic. Publishing is
// decoupled from the HTTP request so slow embedding never blocks a write.
type IPublisherService interface {
	PublishIndexDocument(kind string, id uuid.UUID) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (ps *publisherService) PublishIndexDocument(kind string, id uuid.UUID) error {
	payload, err := json.Marshal(dto.IndexDocumentMessage{Kind: kind, Id: id})
	if err != nil {
		return fmt.Errorf("failed to marshal index message: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := ps.pubSub.Publish(ps.topicName, msg); err != nil {
		return fmt.Errorf("failed to publish index message: %w", err)
	}
	return nil
}
