// internal/hub/poller.go
package hub

import (
	"errors"
	"log"
	"time"

	appErrors "github.com/mbakri/cellwatch-backend/internal/errors"
	"github.com/mbakri/cellwatch-backend/internal/model"
)

// DefaultPollInterval is how often a subscriber gets a fresh snapshot.
const DefaultPollInterval = 5 * time.Second

// SnapshotFetcher reads the current aggregated state of a campaign.
type SnapshotFetcher interface {
	CampaignSnapshot(campaignID int) (*model.Snapshot, error)
}

// Poller drives one live subscriber: on every tick it fetches a fresh
// snapshot and pushes it to the connection. It terminates when the
// campaign stops or disappears, on a connection error, and when the
// subscription is closed; deregistration happens on every exit path.
type Poller struct {
	Hub       *Hub
	Snapshots SnapshotFetcher
	Interval  time.Duration
}

// Run blocks until the subscription ends. Call it in its own goroutine,
// one per subscriber.
func (p *Poller) Run(sub *Subscription) {
	defer p.Hub.Unsubscribe(sub)

	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if p.tick(sub) {
			return
		}
		select {
		case <-sub.Done():
			return
		case <-ticker.C:
		}
	}
}

// tick pushes one frame. It reports true when the poller should stop.
func (p *Poller) tick(sub *Subscription) bool {
	snap, err := p.Snapshots.CampaignSnapshot(sub.CampaignID)

	var notFound *appErrors.ErrCampaignNotFound
	if errors.As(err, &notFound) || (err == nil && snap.Campaign.Status == model.StatusStopped) {
		log.Printf("campaign %d has stopped, closing live connection %s", sub.CampaignID, sub.ID)
		_ = sub.Send(model.Frame{Message: model.FrameStopped})
		_ = sub.conn.Close()
		return true
	}
	if err != nil {
		// Transient read failure: keep the subscriber, try again next tick.
		log.Printf("error reading snapshot for campaign %d: %v", sub.CampaignID, err)
		return false
	}

	frame := model.Frame{Message: model.FrameData, Data: snap}
	if snap.Campaign.Status == model.StatusPaused {
		frame.Message = model.FramePaused
	}

	if err := sub.Send(frame); err != nil {
		log.Printf("subscriber %s disconnected from campaign %d: %v", sub.ID, sub.CampaignID, err)
		return true
	}
	return false
}
