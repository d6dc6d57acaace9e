package core

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/YogindraChaudhari/plantationDrive/pkg/messagequeue"
)

// Routing keys of plant lifecycle events.
const (
	EventPlantRegistered = "plant.registered"
	EventPlantUpdated    = "plant.updated"
	EventPlantDeleted    = "plant.deleted"
)

// PlantEvent is the body published after a plant is written or removed.
type PlantEvent struct {
	Type        string    `json:"type"`
	Key         string    `json:"key"`
	Zone        string    `json:"zone"`
	PlantNumber string    `json:"plantNumber"`
	At          time.Time `json:"at"`
}

type eventPublisher struct {
	publisher messagequeue.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// publish is best-effort: failures are logged and never reach the caller.
func (e *eventPublisher) publish(ctx context.Context, eventType string, p *PlantEvent) {
	if e.publisher == nil {
		return
	}
	p.Type = eventType
	p.At = e.now().UTC()
	body, err := json.Marshal(p)
	if err != nil {
		e.logger.Warn("Failed to encode plant event", zap.String("type", eventType), zap.Error(err))
		return
	}
	if err := e.publisher.Publish(ctx, eventType, body); err != nil {
		e.logger.Warn("Failed to publish plant event",
			zap.String("type", eventType), zap.String("key", p.Key), zap.Error(err))
	}
}
