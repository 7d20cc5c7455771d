package controller_test

import (
	"slices"
	"sync"
	"time"

	appErrors "github.com/mbakri/cellwatch-backend/internal/errors"
	"github.com/mbakri/cellwatch-backend/internal/model"
	"github.com/mbakri/cellwatch-backend/internal/repository"
)

// --- Mock repositories (in-memory, same semantics as the SQL layer) ---

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

type mockDeviceRepo struct {
	mu     sync.Mutex
	byIP   map[string]*model.Device
	nextID int
}

func newMockDeviceRepo() *mockDeviceRepo {
	return &mockDeviceRepo{byIP: make(map[string]*model.Device)}
}

func (m *mockDeviceRepo) add(ip string) *model.Device {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	d := &model.Device{ID: m.nextID, SerialNumber: ip, IP: ip}
	m.byIP[ip] = d
	return d
}

func (m *mockDeviceRepo) GetByIP(ip string) (*model.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.byIP[ip]
	if !ok {
		return nil, appErrors.NewDeviceNotFound(ip)
	}
	cp := *d
	return &cp, nil
}

func (m *mockDeviceRepo) GetIDBySerial(serialNumber string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.byIP {
		if d.SerialNumber == serialNumber {
			return d.ID, nil
		}
	}
	return 0, appErrors.NewDeviceNotFound(serialNumber)
}

func (m *mockDeviceRepo) UpsertBySerial(d *model.Device) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, existing := range m.byIP {
		if existing.SerialNumber == d.SerialNumber {
			delete(m.byIP, key)
			existing.IP = d.IP
			existing.IsConnected = d.IsConnected
			m.byIP[d.IP] = existing
			d.ID = existing.ID
			return nil
		}
	}
	m.nextID++
	d.ID = m.nextID
	cp := *d
	m.byIP[d.IP] = &cp
	return nil
}

func (m *mockDeviceRepo) SetRunningByIP(ip string, running bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.byIP[ip]; ok {
		d.IsRunning = running
	}
	return nil
}

func (m *mockDeviceRepo) SetRunningByID(id int, running bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.byIP {
		if d.ID == id {
			d.IsRunning = running
		}
	}
	return nil
}

func (m *mockDeviceRepo) ListAll() ([]model.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Device{}
	for _, d := range m.byIP {
		out = append(out, *d)
	}
	return out, nil
}

func (m *mockDeviceRepo) Delete(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, d := range m.byIP {
		if d.ID == id {
			delete(m.byIP, key)
			return nil
		}
	}
	return appErrors.NewDeviceNotFound("unknown")
}

var _ repository.DeviceRepositoryInterface = (*mockDeviceRepo)(nil)

type mockMeasurementRepo struct {
	mu  sync.Mutex
	gsm []model.GSMMeasurement
	lte []model.LTEMeasurement
}

func (m *mockMeasurementRepo) UpsertGSM(rec *model.GSMMeasurement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gsm = append(m.gsm, *rec)
	return nil
}

func (m *mockMeasurementRepo) UpsertLTE(rec *model.LTEMeasurement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lte = append(m.lte, *rec)
	return nil
}

func (m *mockMeasurementRepo) ListGSMByCampaign(campaignID int) ([]model.GSMMeasurement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.gsm), nil
}

func (m *mockMeasurementRepo) ListLTEByCampaign(campaignID int) ([]model.LTEMeasurement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.lte), nil
}

var _ repository.MeasurementRepositoryInterface = (*mockMeasurementRepo)(nil)
