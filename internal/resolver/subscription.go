package resolver

import (
	"context"

	"linkboard/internal/models"
	"linkboard/internal/pubsub"
)

// NewLink streams every link created after the call. The channel is closed
// once ctx is done.
func (s *SubscriptionResolver) NewLink(ctx context.Context) (<-chan *models.Link, error) {
	return stream(ctx, s.events, pubsub.TopicNewLink, func(ev pubsub.Event) *models.Link {
		return ev.Link
	}), nil
}

// NewVote streams every vote created after the call.
func (s *SubscriptionResolver) NewVote(ctx context.Context) (<-chan *models.Vote, error) {
	return stream(ctx, s.events, pubsub.TopicNewVote, func(ev pubsub.Event) *models.Vote {
		return ev.Vote
	}), nil
}

func stream[T any](ctx context.Context, bus EventBus, topic pubsub.Topic, pick func(pubsub.Event) *T) <-chan *T {
	events, unsubscribe := bus.Subscribe(ctx, topic)
	out := make(chan *T)

	go func() {
		defer close(out)
		defer unsubscribe()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				v := pick(ev)
				if v == nil {
					continue
				}
				select {
				case out <- v:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}
