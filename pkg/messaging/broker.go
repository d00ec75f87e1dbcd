package messaging

import (
	"context"
)

// Broker is the publish side of the in-app notification fan-out.
// Consumers subscribe out-of-process.
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Close() error
}
