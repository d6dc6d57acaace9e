package messagequeue

import "context"

// Publisher sends messages to a topic under a routing key such as "plant.registered".
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
	Close() error
}

// Subscriber delivers messages whose routing key matches a binding pattern ("plant.*") to
// handler until ctx is done.
type Subscriber interface {
	Consume(ctx context.Context, bindingKey string, handler func(routingKey string, body []byte)) error
}

// NopPublisher drops every message. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, routingKey string, body []byte) error { return nil }
func (NopPublisher) Close() error                                                     { return nil }
