package queue

import (
	"fmt"
	"log"
	"sync"

	"github.com/mbakri/cellwatch-backend/internal/hub"
)

// Topic names for in-process campaign lifecycle events.
const (
	TopicCampaignStopped = "campaign_stopped"
)

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue is an in-process pub/sub used for lifecycle events that
// only matter inside the server (hub cleanup, logging).
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(payload any) error
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		handlers: make(map[string][]func(payload any) error),
	}
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	for _, handler := range handlers {
		go func(h func(payload any) error) {
			if err := h(payload); err != nil {
				log.Printf("⚠️ %s handler failed: %v", topic, err)
			}
		}(handler)
	}

	return nil
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// StartCampaignStopSubscriber closes every live connection of a campaign
// once it has been stopped. The broadcasted terminal notice goes out
// before the connections are torn down.
func StartCampaignStopSubscriber(q Queue, h *hub.Hub) {
	err := q.Subscribe(TopicCampaignStopped, func(payload any) error {
		campaignID, ok := payload.(int)
		if !ok {
			log.Println("⚠️ invalid payload type for campaign_stopped, expected int")
			return nil
		}

		log.Println("📡 closing live connections for stopped campaign", campaignID)
		h.CloseCampaign(campaignID)
		return nil
	})
	if err != nil {
		log.Println("⚠️ failed to start subscriber for campaign_stopped:", err)
	}
}
