package events

import (
	"context"

	"repairshop/internal/utils"

	"go.uber.org/zap"
)

// Subscriber receives events from the event bus.
type Subscriber interface {
	// Subscribe delivers raw event payloads on the returned channel.
	// Call the returned cancel function to unsubscribe and close the channel.
	Subscribe(topic string) (<-chan []byte, func(), error)
	Close() error
}

// Listen calls onEvent for every payload on topic until ctx is done or the
// channel closes. Another API instance writing to the catalog reaches this
// instance's cache through here.
func Listen(ctx context.Context, sub Subscriber, topic string, onEvent func(ctx context.Context, payload []byte)) error {
	ch, cancel, err := sub.Subscribe(topic)
	if err != nil {
		return err
	}

	go func() {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case payload, ok := <-ch:
				if !ok {
					return
				}
				onEvent(ctx, payload)
			}
		}
	}()

	utils.Logger().Info("event listener started", zap.String("topic", topic))
	return nil
}
