package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	appErrors "github.com/mbakri/cellwatch-backend/internal/errors"
	"github.com/mbakri/cellwatch-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	// CreateWithDevices persists the campaign and its membership rows in
	// one transaction, atomically refusing a second active campaign for
	// the same group.
	CreateWithDevices(c *model.Campaign, deviceIDs []int) error
	GetByID(id int) (*model.Campaign, error)

	// UpdateStatusFrom moves the campaign to status `to` only when its
	// current status is one of `from`. Returns false when no row matched.
	UpdateStatusFrom(id int, from []string, to string) (bool, error)

	// MarkStopped sets the terminal status and the stop timestamp for a
	// campaign currently active or paused.
	MarkStopped(id int, at time.Time) (bool, error)

	// MemberDevices returns the devices bound to the campaign.
	MemberDevices(campaignID int) ([]model.Device, error)
}

type CampaignRepository struct {
	DB *sql.DB
}

func (r *CampaignRepository) CreateWithDevices(c *model.Campaign, deviceIDs []int) error {
	if c.Status == "" {
		c.Status = model.StatusActive
	}
	if c.TimeStart.IsZero() {
		c.TimeStart = time.Now().UTC()
	}

	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// The NOT EXISTS guard rejects the common case without touching the
	// unique index. It runs against a snapshot, so two concurrent creates
	// for the same group can both pass it; the partial unique index
	// campaign_one_active_per_group is what actually serializes them, and
	// the loser surfaces here as a unique violation.
	query := `
        INSERT INTO campaign (name, status, group_id, time_start)
        SELECT $1, $2, $3, $4
        WHERE NOT EXISTS (
            SELECT 1 FROM campaign WHERE group_id = $3 AND status = $5
        )
        RETURNING id
    `
	err = tx.QueryRow(query, c.Name, c.Status, c.GroupID, c.TimeStart, model.StatusActive).Scan(&c.ID)
	if err == sql.ErrNoRows || isUniqueViolation(err) {
		return appErrors.NewGroupConflict(c.GroupID)
	}
	if err != nil {
		return err
	}

	for _, deviceID := range deviceIDs {
		if _, err := tx.Exec(
			`INSERT INTO campaign_devices (campaign_id, device_id) VALUES ($1, $2)`,
			c.ID, deviceID,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// isUniqueViolation reports whether err is a Postgres unique_violation
// (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (r *CampaignRepository) GetByID(id int) (*model.Campaign, error) {
	query := `
        SELECT id, name, status, group_id, time_start, time_stop
        FROM campaign WHERE id=$1
    `
	var c model.Campaign
	err := r.DB.QueryRow(query, id).Scan(&c.ID, &c.Name, &c.Status, &c.GroupID, &c.TimeStart, &c.TimeStop)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return &c, nil
}

func (r *CampaignRepository) UpdateStatusFrom(id int, from []string, to string) (bool, error) {
	query := `UPDATE campaign SET status=$1 WHERE id=$2 AND status = ANY($3)`
	res, err := r.DB.Exec(query, to, id, pq.Array(from))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *CampaignRepository) MarkStopped(id int, at time.Time) (bool, error) {
	query := `
        UPDATE campaign SET status=$1, time_stop=$2
        WHERE id=$3 AND status = ANY($4)
    `
	res, err := r.DB.Exec(query, model.StatusStopped, at, id,
		pq.Array([]string{model.StatusActive, model.StatusPaused}))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *CampaignRepository) MemberDevices(campaignID int) ([]model.Device, error) {
	query := `
        SELECT d.id, d.serial_number, d.ip, d.lat, d.long, d.is_connected, d.is_running, d.created_at
        FROM campaign_devices cd
        JOIN devices d ON cd.device_id = d.id
        WHERE cd.campaign_id = $1
    `
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	devices := []model.Device{}
	for rows.Next() {
		var d model.Device
		if err := rows.Scan(&d.ID, &d.SerialNumber, &d.IP, &d.Lat, &d.Long, &d.IsConnected, &d.IsRunning, &d.CreatedAt); err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
