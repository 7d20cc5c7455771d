package repository

import (
	"database/sql"

	"github.com/mbakri/cellwatch-backend/internal/model"
)

type MeasurementRepositoryInterface interface {
	UpsertGSM(m *model.GSMMeasurement) error
	UpsertLTE(m *model.LTEMeasurement) error
	ListGSMByCampaign(campaignID int) ([]model.GSMMeasurement, error)
	ListLTEByCampaign(campaignID int) ([]model.LTEMeasurement, error)
}

type MeasurementRepository struct {
	DB *sql.DB
}

func (r *MeasurementRepository) UpsertGSM(m *model.GSMMeasurement) error {
	query := `
        INSERT INTO gsm_data (
            campaign_id, device_id, mcc, mnc, operator, local_area_code,
            arfcn, cell_identity, rxlev, rxlev_access_min, status, rssi, created_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, CURRENT_TIMESTAMP)
        ON CONFLICT (campaign_id, device_id, mcc, mnc, local_area_code, cell_identity)
        DO UPDATE SET
            operator = EXCLUDED.operator,
            arfcn = EXCLUDED.arfcn,
            rxlev = EXCLUDED.rxlev,
            rxlev_access_min = EXCLUDED.rxlev_access_min,
            status = EXCLUDED.status,
            rssi = EXCLUDED.rssi,
            created_at = CURRENT_TIMESTAMP
    `
	_, err := r.DB.Exec(query,
		m.CampaignID, m.DeviceID, m.MCC, m.MNC, m.Operator, m.LocalAreaCode,
		m.ARFCN, m.CellIdentity, m.RxLev, m.RxLevAccessMin, m.Status, m.RSSI,
	)
	return err
}

func (r *MeasurementRepository) UpsertLTE(m *model.LTEMeasurement) error {
	query := `
        INSERT INTO lte_data (
            campaign_id, device_id, mcc, mnc, operator, arfcn, cell_identity,
            tracking_area_code, frequency_band_indicator, signal_level, snr,
            rx_lev_min, status, rssi, created_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, CURRENT_TIMESTAMP)
        ON CONFLICT (campaign_id, device_id, mcc, mnc, tracking_area_code, cell_identity)
        DO UPDATE SET
            operator = EXCLUDED.operator,
            arfcn = EXCLUDED.arfcn,
            frequency_band_indicator = EXCLUDED.frequency_band_indicator,
            signal_level = EXCLUDED.signal_level,
            snr = EXCLUDED.snr,
            rx_lev_min = EXCLUDED.rx_lev_min,
            status = EXCLUDED.status,
            rssi = EXCLUDED.rssi,
            created_at = CURRENT_TIMESTAMP
    `
	_, err := r.DB.Exec(query,
		m.CampaignID, m.DeviceID, m.MCC, m.MNC, m.Operator, m.ARFCN, m.CellIdentity,
		m.TrackingAreaCode, m.FrequencyBandIndicator, m.SignalLevel, m.SNR,
		m.RxLevMin, m.Status, m.RSSI,
	)
	return err
}

func (r *MeasurementRepository) ListGSMByCampaign(campaignID int) ([]model.GSMMeasurement, error) {
	query := `
        SELECT g.id, g.campaign_id, g.device_id, g.mcc, g.mnc, g.operator,
               g.local_area_code, g.arfcn, g.cell_identity, g.rxlev,
               g.rxlev_access_min, g.status, g.rssi, g.created_at, d.ip AS device_ip
        FROM gsm_data g
        JOIN devices d ON g.device_id = d.id
        WHERE g.campaign_id = $1
    `
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.GSMMeasurement{}
	for rows.Next() {
		var m model.GSMMeasurement
		if err := rows.Scan(&m.ID, &m.CampaignID, &m.DeviceID, &m.MCC, &m.MNC, &m.Operator,
			&m.LocalAreaCode, &m.ARFCN, &m.CellIdentity, &m.RxLev,
			&m.RxLevAccessMin, &m.Status, &m.RSSI, &m.CreatedAt, &m.DeviceIP); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MeasurementRepository) ListLTEByCampaign(campaignID int) ([]model.LTEMeasurement, error) {
	query := `
        SELECT l.id, l.campaign_id, l.device_id, l.mcc, l.mnc, l.operator,
               l.arfcn, l.cell_identity, l.tracking_area_code,
               l.frequency_band_indicator, l.signal_level, l.snr, l.rx_lev_min,
               l.status, l.rssi, l.created_at, d.ip AS device_ip
        FROM lte_data l
        JOIN devices d ON l.device_id = d.id
        WHERE l.campaign_id = $1
    `
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.LTEMeasurement{}
	for rows.Next() {
		var m model.LTEMeasurement
		if err := rows.Scan(&m.ID, &m.CampaignID, &m.DeviceID, &m.MCC, &m.MNC, &m.Operator,
			&m.ARFCN, &m.CellIdentity, &m.TrackingAreaCode,
			&m.FrequencyBandIndicator, &m.SignalLevel, &m.SNR, &m.RxLevMin,
			&m.Status, &m.RSSI, &m.CreatedAt, &m.DeviceIP); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

var _ MeasurementRepositoryInterface = (*MeasurementRepository)(nil)
