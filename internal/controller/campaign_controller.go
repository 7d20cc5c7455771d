// internal/controller/campaign_controller.go
package controller

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/mbakri/cellwatch-backend/internal/hub"
	"github.com/mbakri/cellwatch-backend/internal/model"
	"github.com/mbakri/cellwatch-backend/internal/queue"
	"github.com/mbakri/cellwatch-backend/internal/repository"
	"github.com/mbakri/cellwatch-backend/internal/service"
)

type CampaignController struct {
	Registry   *service.CampaignRegistry
	Dispatcher *service.FleetDispatcher
	Snapshots  *service.SnapshotService
	DeviceRepo repository.DeviceRepositoryInterface
	Hub        *hub.Hub
	Queue      queue.Queue

	PollInterval time.Duration
	Upgrader     websocket.Upgrader
}

// StartCapture creates a campaign for a group and commands its devices to
// begin capture. A device that fails to start is reported in
// device_responses; it does not fail the request.
func (c *CampaignController) StartCapture(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	campaignName := r.PostFormValue("campaign_name")
	groupID, err := strconv.Atoi(r.PostFormValue("group_id"))
	if err != nil {
		http.Error(w, "invalid group_id", http.StatusBadRequest)
		return
	}

	deviceIPs := []string{}
	for _, ip := range strings.Split(r.PostFormValue("device_ips"), ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			deviceIPs = append(deviceIPs, ip)
		}
	}
	if campaignName == "" || len(deviceIPs) == 0 {
		http.Error(w, "campaign_name and device_ips are required", http.StatusBadRequest)
		return
	}

	// Resolve every IP before touching the campaign table.
	deviceIDs := make([]int, 0, len(deviceIPs))
	for _, ip := range deviceIPs {
		device, err := c.DeviceRepo.GetByIP(ip)
		if err != nil {
			writeError(w, err)
			return
		}
		deviceIDs = append(deviceIDs, device.ID)
	}

	campaign, err := c.Registry.Create(campaignName, groupID, deviceIDs)
	if err != nil {
		writeError(w, err)
		return
	}

	c.Hub.Broadcast(campaign.ID, model.Frame{
		Message: fmt.Sprintf("Campaign '%s' (ID: %d) has been started", campaign.Name, campaign.ID),
	})

	responses := c.Dispatcher.StartAll(campaign, deviceIPs)

	writeJSON(w, http.StatusOK, map[string]any{
		"message":          "Live capture started successfully",
		"campaign_id":      campaign.ID,
		"campaign_name":    campaign.Name,
		"device_responses": responses,
	})
}

func (c *CampaignController) PauseCapture(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := formCampaignID(w, r)
	if !ok {
		return
	}

	if err := c.Registry.Pause(campaignID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Campaign %d paused successfully.", campaignID),
	})
}

func (c *CampaignController) ResumeCapture(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := formCampaignID(w, r)
	if !ok {
		return
	}

	if err := c.Registry.Resume(campaignID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Campaign %d resumed successfully.", campaignID),
	})
}

// StopCapture sweeps the campaign's devices with stop commands, moves the
// campaign to its terminal state and tears down the live connections.
// Device failures never block the campaign-level stop.
func (c *CampaignController) StopCapture(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := formCampaignID(w, r)
	if !ok {
		return
	}

	if _, err := c.Registry.Get(campaignID); err != nil {
		writeError(w, err)
		return
	}

	responses, err := c.Dispatcher.StopAll(campaignID)
	if err != nil {
		log.Println("⚠️ device stop sweep failed:", err)
	}

	if err := c.Registry.Stop(campaignID); err != nil {
		writeError(w, err)
		return
	}

	c.Hub.Broadcast(campaignID, model.Frame{Message: model.FrameStopped})
	if err := c.Queue.Publish(queue.TopicCampaignStopped, campaignID); err != nil {
		log.Println("⚠️ failed to publish campaign_stopped:", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":          "Live capture stopped on devices associated with the campaign",
		"campaign_id":      campaignID,
		"device_responses": responses,
	})
}

// ServeWS upgrades the connection and registers it as a live subscriber
// of the campaign. One poller goroutine per connection.
func (c *CampaignController) ServeWS(w http.ResponseWriter, r *http.Request) {
	campaignID, err := strconv.Atoi(chi.URLParam(r, "campaign_id"))
	if err != nil {
		http.Error(w, "invalid campaign_id", http.StatusBadRequest)
		return
	}

	conn, err := c.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("⚠️ websocket upgrade failed:", err)
		return
	}

	sub := c.Hub.Subscribe(campaignID, conn)
	poller := &hub.Poller{Hub: c.Hub, Snapshots: c.Snapshots, Interval: c.PollInterval}
	go poller.Run(sub)

	// Drain the connection so close frames are seen; the first read error
	// means the client went away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	c.Hub.Unsubscribe(sub)
	conn.Close()
}

func formCampaignID(w http.ResponseWriter, r *http.Request) (int, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return 0, false
	}
	campaignID, err := strconv.Atoi(r.PostFormValue("campaign_id"))
	if err != nil {
		http.Error(w, "invalid campaign_id", http.StatusBadRequest)
		return 0, false
	}
	return campaignID, true
}
