package service

import (
	"context"
	"fmt"

	"ai-shopassist-be/internal/constant"
	"ai-shopassist-be/internal/pkg/logger"
	"ai-shopassist-be/pkg/events"
	pktNats "ai-shopassist-be/pkg/nats" // Renamed to avoid collision
)

// EventLogService tails the NATS event stream and writes a structured
// audit trail of everything the pipeline does (sync runs, index updates,
// session lifecycle). It is the ops-facing view of the system: no user
// ever sees these logs, but they are the first place to look when a feed
// sync misbehaves.
type EventLogService struct {
	subscriber *pktNats.Subscriber
	logger     logger.ILogger
}

func NewEventLogService(sub *pktNats.Subscriber, log logger.ILogger) *EventLogService {
	return &EventLogService{
		subscriber: sub,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *EventLogService) Start() {
	// Subscribe to all events with a durable consumer
	err := s.subscriber.Subscribe("events.>", "event-log-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("EventLogService", "Failed to start event log subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("EventLogService", "Event log service started, listening to events.>", nil)
}

func (s *EventLogService) handleEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	switch event.EventType() {
	case constant.EventCatalogSynced:
		s.logger.Info("EventLogService", fmt.Sprintf(
			"Catalog sync finished: %v created, %v updated, %v deactivated, %v failed",
			payload["created"], payload["updated"], payload["deactivated"], payload["failed"],
		), payload)

	case constant.EventProductIndexed:
		s.logger.Info("EventLogService", fmt.Sprintf("Product indexed: %v", payload["external_id"]), payload)

	case constant.EventKnowledgeIndexed:
		s.logger.Info("EventLogService", fmt.Sprintf(
			"Knowledge document indexed: %v (%v chunks)",
			payload["document_id"], payload["chunks"],
		), payload)

	case constant.EventSessionDeleted:
		s.logger.Info("EventLogService", fmt.Sprintf("Session deleted: %v", payload["session_id"]), payload)

	default:
		// Unknown events are logged, not nacked; retrying cannot make an
		// unrecognized type recognizable.
		s.logger.Warn("EventLogService", fmt.Sprintf("Unrecognized event type: '%s'", event.EventType()), payload)
	}

	return nil
}
