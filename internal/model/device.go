// internal/model/device.go
package model

import "time"

type Device struct {
	ID           int       `db:"id" json:"id"`
	SerialNumber string    `db:"serial_number" json:"serial_number"`
	IP           string    `db:"ip" json:"ip"`
	Lat          *float64  `db:"lat" json:"lat,omitempty"`
	Long         *float64  `db:"long" json:"long,omitempty"`
	IsConnected  bool      `db:"is_connected" json:"is_connected"`
	IsRunning    bool      `db:"is_running" json:"is_running"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
