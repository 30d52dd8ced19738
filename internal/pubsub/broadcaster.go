// Package pubsub provides the in-memory event bus that feeds live subscriptions.
package pubsub

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"linkboard/internal/models"
)

// Topic names a channel on the bus.
type Topic string

const (
	TopicNewLink Topic = "newLink"
	TopicNewVote Topic = "newVote"
)

// Topics lists every topic the system declares.
var Topics = []Topic{TopicNewLink, TopicNewVote}

// Valid reports whether t is a declared topic.
func (t Topic) Valid() bool {
	for _, known := range Topics {
		if t == known {
			return true
		}
	}
	return false
}

// Event carries one newly created entity. Exactly one of Link and Vote is set,
// matching Topic.
type Event struct {
	Topic Topic
	Link  *models.Link
	Vote  *models.Vote
}

// NewLinkEvent wraps a freshly created link.
func NewLinkEvent(link *models.Link) Event {
	return Event{Topic: TopicNewLink, Link: link}
}

// NewVoteEvent wraps a freshly created vote.
func NewVoteEvent(vote *models.Vote) Event {
	return Event{Topic: TopicNewVote, Vote: vote}
}

var (
	eventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkboard_events_published_total",
			Help: "Events published on the bus",
		},
		[]string{"topic"},
	)

	eventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkboard_events_dropped_total",
			Help: "Events dropped because a subscriber buffer was full",
		},
		[]string{"topic"},
	)

	subscribersActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "linkboard_event_subscribers",
			Help: "Currently open subscriptions",
		},
		[]string{"topic"},
	)
)

// Broadcaster fans events out to every open subscription of a topic.
// Publishing never blocks: a subscriber whose buffer is full misses the event.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[Topic]map[string]chan Event
	buffer int
	log    zerolog.Logger
}

// NewBroadcaster creates a broadcaster whose subscriptions buffer up to
// buffer undelivered events each.
func NewBroadcaster(buffer int, log zerolog.Logger) *Broadcaster {
	if buffer < 1 {
		buffer = 1
	}
	return &Broadcaster{
		subs:   make(map[Topic]map[string]chan Event),
		buffer: buffer,
		log:    log,
	}
}

// Subscribe registers a new subscription on topic. The returned channel
// delivers events until the cleanup function is called or ctx is done, after
// which it is closed. Cleanup is idempotent.
func (b *Broadcaster) Subscribe(ctx context.Context, topic Topic) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.New().String()
	ch := make(chan Event, b.buffer)

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[string]chan Event)
	}
	b.subs[topic][id] = ch
	subscribersActive.WithLabelValues(string(topic)).Inc()

	b.log.Debug().
		Str("subscriberID", id).
		Str("topic", string(topic)).
		Msg("new subscription")

	cleanup := func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		if existing, ok := b.subs[topic][id]; ok {
			close(existing)
			delete(b.subs[topic], id)
			if len(b.subs[topic]) == 0 {
				delete(b.subs, topic)
			}
			subscribersActive.WithLabelValues(string(topic)).Dec()
			b.log.Debug().Str("subscriberID", id).Msg("subscription removed")
		}
	}

	stop := context.AfterFunc(ctx, cleanup)

	return ch, func() {
		stop()
		cleanup()
	}
}

// Publish delivers ev to every subscription currently open on topic.
func (b *Broadcaster) Publish(topic Topic, ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	eventsPublished.WithLabelValues(string(topic)).Inc()

	for id, ch := range b.subs[topic] {
		select {
		case ch <- ev:
		default:
			eventsDropped.WithLabelValues(string(topic)).Inc()
			b.log.Warn().
				Str("subscriberID", id).
				Str("topic", string(topic)).
				Msg("subscription buffer full, dropping event")
		}
	}
}

// SubscriberCount returns the number of open subscriptions on topic.
func (b *Broadcaster) SubscriberCount(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subs[topic])
}
