package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"linkboard/internal/middleware"
	"linkboard/internal/pubsub"
	"linkboard/internal/resolver"
	"linkboard/internal/response"
)

const (
	wsWriteWait    = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

// SubscriptionHandler streams newLink and newVote events over server-sent
// events or a websocket.
type SubscriptionHandler struct {
	base
	upgrader websocket.Upgrader
}

func NewSubscriptionHandler(r *resolver.Resolver, log zerolog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		base: newBase(r, log),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" ||
					strings.HasPrefix(origin, "http://localhost") ||
					strings.HasPrefix(origin, "http://127.0.0.1")
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// next blocks until the following event is available. It reports false once
// the subscription has ended.
type next func(ctx context.Context) (object, bool, error)

func (h *SubscriptionHandler) open(ctx context.Context, topic pubsub.Topic, sel Selection) (next, error) {
	sub := h.resolver.Subscription()
	switch topic {
	case pubsub.TopicNewLink:
		links, err := sub.NewLink(ctx)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context) (object, bool, error) {
			link, ok := <-links
			if !ok {
				return nil, false, nil
			}
			obj, err := h.project.link(ctx, link, sel)
			return obj, true, err
		}, nil
	default:
		votes, err := sub.NewVote(ctx)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context) (object, bool, error) {
			vote, ok := <-votes
			if !ok {
				return nil, false, nil
			}
			obj, err := h.project.vote(ctx, vote, sel)
			return obj, true, err
		}, nil
	}
}

// topic validates the :topic parameter and the include selection for it.
func (h *SubscriptionHandler) topic(c *gin.Context) (pubsub.Topic, Selection, bool) {
	topic := pubsub.Topic(c.Param("topic"))
	if !topic.Valid() {
		response.Fail(c, http.StatusNotFound, response.CodeNotFound,
			"unknown subscription topic '"+string(topic)+"'", middleware.GetRequestID(c))
		return "", nil, false
	}
	root := "Link"
	if topic == pubsub.TopicNewVote {
		root = "Vote"
	}
	sel, ok := h.selection(c, root)
	return topic, sel, ok
}

// Stream handles GET /subscriptions/:topic as server-sent events.
func (h *SubscriptionHandler) Stream(c *gin.Context) {
	topic, sel, ok := h.topic(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	nextEvent, err := h.open(ctx, topic, sel)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	h.log.Debug().Str("topic", string(topic)).Str("request_id", middleware.GetRequestID(c)).Msg("sse subscription opened")

	c.Stream(func(io.Writer) bool {
		obj, ok, err := nextEvent(ctx)
		if !ok {
			return false
		}
		if err != nil {
			h.log.Warn().Err(err).Str("topic", string(topic)).Msg("resolving subscription event")
			c.SSEvent("error", err.Error())
			return true
		}
		c.SSEvent(string(topic), obj)
		return true
	})
}

type wsMessage struct {
	Topic string `json:"topic"`
	Data  any    `json:"data"`
}

// Socket handles GET /subscriptions/:topic/ws. Incoming messages are ignored;
// the subscription ends when the client closes the connection.
func (h *SubscriptionHandler) Socket(c *gin.Context) {
	topic, sel, ok := h.topic(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	nextEvent, err := h.open(ctx, topic, sel)
	if err != nil {
		h.log.Error().Err(err).Msg("opening subscription")
		return
	}

	events := make(chan object)
	go func() {
		defer close(events)
		for {
			obj, ok, err := nextEvent(ctx)
			if !ok {
				return
			}
			if err != nil {
				h.log.Warn().Err(err).Str("topic", string(topic)).Msg("resolving subscription event")
				continue
			}
			select {
			case events <- obj:
			case <-ctx.Done():
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case obj, ok := <-events:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(wsWriteWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(wsMessage{Topic: string(topic), Data: obj}); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}
