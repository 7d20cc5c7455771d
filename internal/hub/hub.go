// internal/hub/hub.go
package hub

import (
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/mbakri/cellwatch-backend/internal/metrics"
)

// Conn is the transport side of one live subscriber. *websocket.Conn
// satisfies it.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// Subscription is one registered live connection for a campaign.
type Subscription struct {
	ID         uuid.UUID
	CampaignID int

	conn      Conn
	writeMu   sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
}

// Send delivers one payload to this subscriber. Writes are serialized so
// the poller and broadcasts never interleave on the same connection.
func (s *Subscription) Send(v any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(v)
}

// Done is closed when the subscription is removed from the hub.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription) signalDone() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Hub multiplexes campaign updates to live subscribers. The per-campaign
// subscriber sets are mutated concurrently by subscribe, unsubscribe and
// broadcast calls, so every access goes through the mutex.
type Hub struct {
	mu        sync.Mutex
	campaigns map[int]map[uuid.UUID]*Subscription
}

func NewHub() *Hub {
	return &Hub{
		campaigns: make(map[int]map[uuid.UUID]*Subscription),
	}
}

// Subscribe registers the connection under the campaign id.
func (h *Hub) Subscribe(campaignID int, conn Conn) *Subscription {
	sub := &Subscription{
		ID:         uuid.New(),
		CampaignID: campaignID,
		conn:       conn,
		done:       make(chan struct{}),
	}

	h.mu.Lock()
	set, ok := h.campaigns[campaignID]
	if !ok {
		set = make(map[uuid.UUID]*Subscription)
		h.campaigns[campaignID] = set
	}
	set[sub.ID] = sub
	total := len(set)
	h.mu.Unlock()

	metrics.ActiveSubscribers.Inc()
	log.Printf("new connection for campaign %d, subscribers: %d", campaignID, total)
	return sub
}

// Unsubscribe removes the subscription from its campaign set. Calling it
// more than once is a no-op.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	removed := false
	if set, ok := h.campaigns[sub.CampaignID]; ok {
		if _, ok := set[sub.ID]; ok {
			delete(set, sub.ID)
			removed = true
		}
		if len(set) == 0 {
			delete(h.campaigns, sub.CampaignID)
		}
	}
	h.mu.Unlock()

	sub.signalDone()
	if removed {
		metrics.ActiveSubscribers.Dec()
	}
}

// Broadcast delivers the payload to every subscriber of the campaign. A
// connection whose write fails is treated as disconnected and dropped;
// delivery to the remaining connections continues.
func (h *Hub) Broadcast(campaignID int, payload any) {
	for _, sub := range h.snapshot(campaignID) {
		if err := sub.Send(payload); err != nil {
			log.Printf("error broadcasting to campaign %d subscriber %s: %v", campaignID, sub.ID, err)
			h.drop(sub)
			continue
		}
		metrics.BroadcastsSent.Inc()
	}
}

// CloseCampaign forcibly closes and unsubscribes every connection of the
// campaign. Used when the campaign reaches its terminal state.
func (h *Hub) CloseCampaign(campaignID int) {
	for _, sub := range h.snapshot(campaignID) {
		if err := sub.conn.Close(); err != nil {
			log.Printf("error closing connection %s: %v", sub.ID, err)
		}
		h.Unsubscribe(sub)
	}
}

// Count reports the number of subscribers registered for the campaign.
func (h *Hub) Count(campaignID int) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.campaigns[campaignID])
}

func (h *Hub) snapshot(campaignID int) []*Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := make([]*Subscription, 0, len(h.campaigns[campaignID]))
	for _, sub := range h.campaigns[campaignID] {
		subs = append(subs, sub)
	}
	return subs
}

func (h *Hub) drop(sub *Subscription) {
	_ = sub.conn.Close()
	h.Unsubscribe(sub)
	metrics.DroppedSubscribers.Inc()
}
