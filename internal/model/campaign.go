// internal/model/campaign.go
package model

import "time"

// Campaign statuses. Allowed transitions: active <-> paused,
// {active,paused} -> stopped. stopped is terminal.
const (
	StatusActive  = "active"
	StatusPaused  = "paused"
	StatusStopped = "stopped"
)

type Campaign struct {
	ID        int        `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Status    string     `db:"status" json:"status"`
	GroupID   int        `db:"group_id" json:"group_id"`
	TimeStart time.Time  `db:"time_start" json:"time_start"`
	TimeStop  *time.Time `db:"time_stop" json:"time_stop,omitempty"`
}
