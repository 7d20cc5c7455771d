// internal/service/registry.go
package service

import (
	"time"

	appErrors "github.com/mbakri/cellwatch-backend/internal/errors"
	"github.com/mbakri/cellwatch-backend/internal/model"
	"github.com/mbakri/cellwatch-backend/internal/repository"
)

// CampaignRegistry owns campaign records and the lifecycle state machine.
type CampaignRegistry struct {
	CampaignRepo repository.CampaignRepositoryInterface
}

// Create persists a new active campaign with its membership. Refused with
// ErrGroupConflict when the group already has an active campaign.
func (s *CampaignRegistry) Create(name string, groupID int, deviceIDs []int) (*model.Campaign, error) {
	c := &model.Campaign{
		Name:      name,
		Status:    model.StatusActive,
		GroupID:   groupID,
		TimeStart: time.Now().UTC(),
	}
	if err := s.CampaignRepo.CreateWithDevices(c, deviceIDs); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CampaignRegistry) Get(id int) (*model.Campaign, error) {
	return s.CampaignRepo.GetByID(id)
}

// Pause moves an active campaign to paused.
func (s *CampaignRegistry) Pause(id int) error {
	return s.transition(id, []string{model.StatusActive}, model.StatusPaused)
}

// Resume moves a paused campaign back to active.
func (s *CampaignRegistry) Resume(id int) error {
	return s.transition(id, []string{model.StatusPaused}, model.StatusActive)
}

// Stop moves the campaign to its terminal state and records the stop
// timestamp. Stopping an already stopped campaign is a no-op success.
func (s *CampaignRegistry) Stop(id int) error {
	ok, err := s.CampaignRepo.MarkStopped(id, time.Now().UTC())
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	// Nothing matched: either the campaign is unknown or already stopped.
	c, err := s.CampaignRepo.GetByID(id)
	if err != nil {
		return err
	}
	if c.Status == model.StatusStopped {
		return nil
	}
	return appErrors.NewInvalidTransition(id, c.Status, model.StatusStopped)
}

func (s *CampaignRegistry) transition(id int, from []string, to string) error {
	ok, err := s.CampaignRepo.UpdateStatusFrom(id, from, to)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	c, err := s.CampaignRepo.GetByID(id)
	if err != nil {
		return err
	}
	return appErrors.NewInvalidTransition(id, c.Status, to)
}
