package repository

import (
	"database/sql"
	"strconv"

	appErrors "github.com/mbakri/cellwatch-backend/internal/errors"
	"github.com/mbakri/cellwatch-backend/internal/model"
)

type DeviceRepositoryInterface interface {
	GetByIP(ip string) (*model.Device, error)
	GetIDBySerial(serialNumber string) (int, error)

	// UpsertBySerial inserts the device or refreshes ip/connectivity on
	// conflict with the serial number.
	UpsertBySerial(d *model.Device) error

	SetRunningByIP(ip string, running bool) error
	SetRunningByID(id int, running bool) error

	ListAll() ([]model.Device, error)
	Delete(id int) error
}

type DeviceRepository struct {
	DB *sql.DB
}

func (r *DeviceRepository) GetByIP(ip string) (*model.Device, error) {
	query := `
        SELECT id, serial_number, ip, lat, long, is_connected, is_running, created_at
        FROM devices WHERE ip=$1
    `
	var d model.Device
	err := r.DB.QueryRow(query, ip).Scan(&d.ID, &d.SerialNumber, &d.IP, &d.Lat, &d.Long, &d.IsConnected, &d.IsRunning, &d.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewDeviceNotFound(ip)
		}
		return nil, err
	}
	return &d, nil
}

func (r *DeviceRepository) GetIDBySerial(serialNumber string) (int, error) {
	var id int
	err := r.DB.QueryRow(`SELECT id FROM devices WHERE serial_number=$1`, serialNumber).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, appErrors.NewDeviceNotFound(serialNumber)
		}
		return 0, err
	}
	return id, nil
}

func (r *DeviceRepository) UpsertBySerial(d *model.Device) error {
	query := `
        INSERT INTO devices (serial_number, ip, lat, long, is_connected, is_running, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP)
        ON CONFLICT (serial_number) DO UPDATE SET
            ip = EXCLUDED.ip,
            lat = COALESCE(EXCLUDED.lat, devices.lat),
            long = COALESCE(EXCLUDED.long, devices.long),
            is_connected = EXCLUDED.is_connected
        RETURNING id
    `
	return r.DB.QueryRow(query, d.SerialNumber, d.IP, d.Lat, d.Long, d.IsConnected, d.IsRunning).Scan(&d.ID)
}

func (r *DeviceRepository) SetRunningByIP(ip string, running bool) error {
	_, err := r.DB.Exec(`UPDATE devices SET is_running=$1 WHERE ip=$2`, running, ip)
	return err
}

func (r *DeviceRepository) SetRunningByID(id int, running bool) error {
	_, err := r.DB.Exec(`UPDATE devices SET is_running=$1 WHERE id=$2`, running, id)
	return err
}

func (r *DeviceRepository) ListAll() ([]model.Device, error) {
	query := `
        SELECT id, serial_number, ip, lat, long, is_connected, is_running, created_at
        FROM devices
        ORDER BY created_at DESC
    `
	rows, err := r.DB.Query(query)
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

// Delete removes the device together with its memberships and
// measurements, in one transaction.
func (r *DeviceRepository) Delete(id int) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, query := range []string{
		`DELETE FROM campaign_devices WHERE device_id=$1`,
		`DELETE FROM lte_data WHERE device_id=$1`,
		`DELETE FROM gsm_data WHERE device_id=$1`,
	} {
		if _, err := tx.Exec(query, id); err != nil {
			return err
		}
	}

	res, err := tx.Exec(`DELETE FROM devices WHERE id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return appErrors.NewDeviceNotFound(strconv.Itoa(id))
	}

	return tx.Commit()
}

var _ DeviceRepositoryInterface = (*DeviceRepository)(nil)
