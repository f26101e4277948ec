// Package broker provides the in-memory message broker that carries
// coordination traffic between the orchestrator and workers.
package broker

import (
	"log/slog"
	"sync"

	"github.com/ShayCichocki/scaffold/pkg/models"
)

// Handler consumes messages delivered to a receiver. Handlers run on the
// receiver's delivery goroutine, so messages for one receiver are handled
// one at a time in publication order.
type Handler func(models.Message)

// queueSize bounds the per-receiver delivery queue. Publish blocks when a
// receiver's queue is full rather than dropping or reordering.
const queueSize = 256

// subscription is the delivery pipeline for one receiver.
type subscription struct {
	mu      sync.RWMutex
	handler Handler
	queue   chan models.Message
	done    chan struct{}
}

func (s *subscription) setHandler(h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

func (s *subscription) currentHandler() Handler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handler
}

// Broker routes messages to the handler subscribed for each receiver ID.
// Delivery is asynchronous and FIFO per receiver; delivery across
// different receivers is unordered relative to each other.
type Broker struct {
	mu      sync.RWMutex
	subs    map[string]*subscription
	history []models.Message
	closed  bool
	wg      sync.WaitGroup
	logger  *slog.Logger
}

// New creates a broker. A nil logger defaults to slog.Default().
func New(logger *slog.Logger) *Broker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broker{
		subs:   make(map[string]*subscription),
		logger: logger,
	}
}

// Subscribe registers the handler for a receiver ID. Exactly one handler
// is active per receiver; subscribing again replaces the handler without
// disturbing queued messages.
func (b *Broker) Subscribe(receiverID string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	if sub, ok := b.subs[receiverID]; ok {
		sub.setHandler(handler)
		b.logger.Debug("replaced subscription handler", "receiver_id", receiverID)
		return
	}

	sub := &subscription{
		handler: handler,
		queue:   make(chan models.Message, queueSize),
		done:    make(chan struct{}),
	}
	b.subs[receiverID] = sub
	b.wg.Add(1)
	go b.pump(receiverID, sub)
	b.logger.Debug("subscribed", "receiver_id", receiverID)
}

// pump delivers queued messages to the receiver's current handler.
func (b *Broker) pump(receiverID string, sub *subscription) {
	defer b.wg.Done()
	for {
		select {
		case <-sub.done:
			return
		case msg := <-sub.queue:
			h := sub.currentHandler()
			if h == nil {
				continue
			}
			h(msg)
		}
	}
}

// Unsubscribe removes the receiver's handler and stops its delivery
// goroutine. Messages still queued are discarded.
func (b *Broker) Unsubscribe(receiverID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subs[receiverID]
	if !ok {
		return
	}
	delete(b.subs, receiverID)
	close(sub.done)
	b.logger.Debug("unsubscribed", "receiver_id", receiverID)
}

// Publish enqueues a message for asynchronous delivery to the handler
// registered for the message's receiver. If no handler is registered the
// message is dropped; this is intentional for fire-and-forget
// notifications and is not an error.
func (b *Broker) Publish(msg models.Message) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.history = append(b.history, msg)
	sub, ok := b.subs[msg.ReceiverID]
	b.mu.Unlock()

	if !ok {
		b.logger.Debug("dropped message for unsubscribed receiver",
			"receiver_id", msg.ReceiverID, "type", msg.Type)
		return
	}

	select {
	case sub.queue <- msg:
	case <-sub.done:
	}
}

// History returns published messages, optionally filtered by conversation
// ID. Pass the empty string for the full history.
func (b *Broker) History(conversationID string) []models.Message {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if conversationID == "" {
		return append([]models.Message(nil), b.history...)
	}
	var out []models.Message
	for _, msg := range b.history {
		if msg.ConversationID == conversationID {
			out = append(out, msg)
		}
	}
	return out
}

// Close stops all delivery goroutines. Publish and Subscribe become
// no-ops afterwards.
func (b *Broker) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		close(sub.done)
		delete(b.subs, id)
	}
	b.mu.Unlock()
	b.wg.Wait()
}
