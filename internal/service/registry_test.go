package service_test

import (
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	appErrors "github.com/mbakri/cellwatch-backend/internal/errors"
	"github.com/mbakri/cellwatch-backend/internal/model"
	"github.com/mbakri/cellwatch-backend/internal/repository"
	"github.com/mbakri/cellwatch-backend/internal/service"
)

// mockCampaignRepo keeps campaigns in memory with the same transition
// semantics the SQL statements have.
type mockCampaignRepo struct {
	mu        sync.Mutex
	nextID    int
	campaigns map[int]*model.Campaign
	members   map[int][]model.Device
}

func newMockCampaignRepo() *mockCampaignRepo {
	return &mockCampaignRepo{
		campaigns: make(map[int]*model.Campaign),
		members:   make(map[int][]model.Device),
	}
}

func (m *mockCampaignRepo) CreateWithDevices(c *model.Campaign, deviceIDs []int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.campaigns {
		if existing.GroupID == c.GroupID && existing.Status == model.StatusActive {
			return appErrors.NewGroupConflict(c.GroupID)
		}
	}

	m.nextID++
	c.ID = m.nextID
	cp := *c
	m.campaigns[c.ID] = &cp
	for _, deviceID := range deviceIDs {
		m.members[c.ID] = append(m.members[c.ID], model.Device{ID: deviceID})
	}
	return nil
}

func (m *mockCampaignRepo) GetByID(id int) (*model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.campaigns[id]
	if !ok {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	cp := *c
	return &cp, nil
}

func (m *mockCampaignRepo) UpdateStatusFrom(id int, from []string, to string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.campaigns[id]
	if !ok || !slices.Contains(from, c.Status) {
		return false, nil
	}
	c.Status = to
	return true, nil
}

func (m *mockCampaignRepo) MarkStopped(id int, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.campaigns[id]
	if !ok || (c.Status != model.StatusActive && c.Status != model.StatusPaused) {
		return false, nil
	}
	c.Status = model.StatusStopped
	c.TimeStop = &at
	return true, nil
}

func (m *mockCampaignRepo) MemberDevices(campaignID int) ([]model.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.members[campaignID]), nil
}

var _ repository.CampaignRepositoryInterface = (*mockCampaignRepo)(nil)

func (m *mockCampaignRepo) status(t *testing.T, id int) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok {
		t.Fatalf("campaign %d missing", id)
	}
	return c.Status
}

// --- Tests ---

func TestCreateEnforcesGroupExclusivity(t *testing.T) {
	repo := newMockCampaignRepo()
	registry := &service.CampaignRegistry{CampaignRepo: repo}

	first, err := registry.Create("sweep-north", 1, []int{1, 2})
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if first.Status != model.StatusActive {
		t.Fatalf("expected active, got %s", first.Status)
	}

	_, err = registry.Create("sweep-again", 1, []int{3})
	var conflict *appErrors.ErrGroupConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected group conflict, got %v", err)
	}

	// A different group is unaffected.
	if _, err := registry.Create("sweep-south", 2, []int{3}); err != nil {
		t.Fatalf("create for other group failed: %v", err)
	}

	// Once the first campaign stops, the group is free again.
	if err := registry.Stop(first.ID); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if _, err := registry.Create("sweep-retry", 1, []int{1}); err != nil {
		t.Fatalf("create after stop failed: %v", err)
	}
}

func TestLifecycleTransitions(t *testing.T) {
	repo := newMockCampaignRepo()
	registry := &service.CampaignRegistry{CampaignRepo: repo}

	c, err := registry.Create("lifecycle", 1, []int{1})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := registry.Pause(c.ID); err != nil {
		t.Fatalf("pause(active) failed: %v", err)
	}
	if got := repo.status(t, c.ID); got != model.StatusPaused {
		t.Fatalf("expected paused, got %s", got)
	}

	if err := registry.Resume(c.ID); err != nil {
		t.Fatalf("resume(paused) failed: %v", err)
	}
	if got := repo.status(t, c.ID); got != model.StatusActive {
		t.Fatalf("expected active, got %s", got)
	}

	if err := registry.Stop(c.ID); err != nil {
		t.Fatalf("stop(active) failed: %v", err)
	}
	if got := repo.status(t, c.ID); got != model.StatusStopped {
		t.Fatalf("expected stopped, got %s", got)
	}

	var invalid *appErrors.ErrInvalidTransition
	if err := registry.Resume(c.ID); !errors.As(err, &invalid) {
		t.Fatalf("expected invalid transition for resume(stopped), got %v", err)
	}
	if got := repo.status(t, c.ID); got != model.StatusStopped {
		t.Fatalf("terminal state changed to %s", got)
	}
}

func TestPauseOnlyFromActive(t *testing.T) {
	repo := newMockCampaignRepo()
	registry := &service.CampaignRegistry{CampaignRepo: repo}

	c, _ := registry.Create("pausing", 1, nil)
	if err := registry.Pause(c.ID); err != nil {
		t.Fatalf("pause failed: %v", err)
	}

	var invalid *appErrors.ErrInvalidTransition
	if err := registry.Pause(c.ID); !errors.As(err, &invalid) {
		t.Fatalf("expected invalid transition for pause(paused), got %v", err)
	}
	if err := registry.Resume(c.ID); err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if err := registry.Resume(c.ID); !errors.As(err, &invalid) {
		t.Fatalf("expected invalid transition for resume(active), got %v", err)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	repo := newMockCampaignRepo()
	registry := &service.CampaignRegistry{CampaignRepo: repo}

	c, _ := registry.Create("stopping", 1, nil)
	if err := registry.Stop(c.ID); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	stoppedAt := repo.campaigns[c.ID].TimeStop

	if err := registry.Stop(c.ID); err != nil {
		t.Fatalf("second stop should be a no-op success, got %v", err)
	}
	if repo.campaigns[c.ID].TimeStop != stoppedAt {
		t.Fatal("second stop changed the stop timestamp")
	}
}

func TestTransitionsOnUnknownCampaign(t *testing.T) {
	registry := &service.CampaignRegistry{CampaignRepo: newMockCampaignRepo()}

	var notFound *appErrors.ErrCampaignNotFound
	if err := registry.Pause(99); !errors.As(err, &notFound) {
		t.Fatalf("expected not found for pause, got %v", err)
	}
	if err := registry.Resume(99); !errors.As(err, &notFound) {
		t.Fatalf("expected not found for resume, got %v", err)
	}
	if err := registry.Stop(99); !errors.As(err, &notFound) {
		t.Fatalf("expected not found for stop, got %v", err)
	}
}
