// internal/service/dispatcher.go
package service

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mbakri/cellwatch-backend/internal/metrics"
	"github.com/mbakri/cellwatch-backend/internal/model"
	"github.com/mbakri/cellwatch-backend/internal/repository"
)

// DefaultAgentPort is where device agents listen for capture commands.
const DefaultAgentPort = 8003

// DeviceResponse is the per-device outcome of a fleet command. A device
// failure is recorded here, never raised.
type DeviceResponse struct {
	IP       string         `json:"ip"`
	Response map[string]any `json:"response"`
}

// FleetDispatcher issues start/stop capture commands to device agents.
// Every command is fault-isolated per device and bounded by the client
// timeout; there are no retries.
type FleetDispatcher struct {
	DeviceRepo   repository.DeviceRepositoryInterface
	CampaignRepo repository.CampaignRepositoryInterface
	Client       *http.Client
	AgentPort    int
}

func NewFleetDispatcher(devices repository.DeviceRepositoryInterface, campaigns repository.CampaignRepositoryInterface) *FleetDispatcher {
	return &FleetDispatcher{
		DeviceRepo:   devices,
		CampaignRepo: campaigns,
		Client:       &http.Client{Timeout: 10 * time.Second},
		AgentPort:    DefaultAgentPort,
	}
}

// StartAll sends the start command to every device concurrently. One
// result per device, in input order; a failed or timed-out device never
// prevents the commands to the rest of the fleet.
func (d *FleetDispatcher) StartAll(campaign *model.Campaign, deviceIPs []string) []DeviceResponse {
	results := make([]DeviceResponse, len(deviceIPs))

	var wg sync.WaitGroup
	for i, ip := range deviceIPs {
		wg.Add(1)
		go func(i int, ip string) {
			defer wg.Done()
			results[i] = d.startOne(campaign, ip)
		}(i, ip)
	}
	wg.Wait()

	return results
}

func (d *FleetDispatcher) startOne(campaign *model.Campaign, ip string) DeviceResponse {
	form := url.Values{
		"campaign_name": {campaign.Name},
		"campaign_id":   {strconv.Itoa(campaign.ID)},
	}

	resp, err := d.Client.PostForm(d.agentBase(ip)+"/start-capture", form)
	if err != nil {
		metrics.DispatchAttempts.WithLabelValues("start", "error").Inc()
		return DeviceResponse{IP: ip, Response: map[string]any{"error": err.Error()}}
	}
	defer resp.Body.Close()

	body := map[string]any{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		body = map[string]any{"error": fmt.Sprintf("invalid device response: %v", err)}
	}

	// Device answered: mark it running and re-confirm the campaign active.
	if err := d.DeviceRepo.SetRunningByIP(ip, true); err != nil {
		log.Println("⚠️ failed to update is_running for device", ip, ":", err)
	}
	if _, err := d.CampaignRepo.UpdateStatusFrom(campaign.ID, []string{model.StatusActive}, model.StatusActive); err != nil {
		log.Println("⚠️ failed to confirm campaign status:", err)
	}

	metrics.DispatchAttempts.WithLabelValues("start", "ok").Inc()
	return DeviceResponse{IP: ip, Response: body}
}

// StopAll sweeps the campaign's member devices with the stop command.
// Device failures are logged and skipped; the sweep always runs to the
// end so a campaign-level stop is never blocked by one device.
func (d *FleetDispatcher) StopAll(campaignID int) ([]DeviceResponse, error) {
	devices, err := d.CampaignRepo.MemberDevices(campaignID)
	if err != nil {
		return nil, err
	}

	responses := []DeviceResponse{}
	for _, device := range devices {
		if device.IP == "" {
			continue
		}

		resp, err := d.Client.Get(d.agentBase(device.IP) + "/stop-capture/" + strconv.Itoa(campaignID))
		if err != nil {
			metrics.DispatchAttempts.WithLabelValues("stop", "error").Inc()
			log.Println("⚠️ error stopping capture for device", device.ID, "at", device.IP, ":", err)
			responses = append(responses, DeviceResponse{IP: device.IP, Response: map[string]any{"error": err.Error()}})
			continue
		}

		body := map[string]any{}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			body = map[string]any{"error": fmt.Sprintf("invalid device response: %v", err)}
		}
		resp.Body.Close()

		if err := d.DeviceRepo.SetRunningByID(device.ID, false); err != nil {
			log.Println("⚠️ failed to update is_running for device", device.ID, ":", err)
		}

		metrics.DispatchAttempts.WithLabelValues("stop", "ok").Inc()
		responses = append(responses, DeviceResponse{IP: device.IP, Response: body})
	}

	return responses, nil
}

// agentBase builds the device agent base URL. An ip that already carries
// a port is used as-is.
func (d *FleetDispatcher) agentBase(ip string) string {
	port := d.AgentPort
	if port == 0 {
		port = DefaultAgentPort
	}
	if strings.Contains(ip, ":") {
		return "http://" + ip
	}
	return fmt.Sprintf("http://%s:%d", ip, port)
}
