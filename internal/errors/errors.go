// internal/errors/errors.go
package appErrors

import "fmt"

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
	CampaignID int
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %d not found", e.CampaignID)
}

// Helper constructor
func NewCampaignNotFound(id int) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// ErrDeviceNotFound is returned for an unknown device id, ip or serial.
type ErrDeviceNotFound struct {
	Key string
}

func (e *ErrDeviceNotFound) Error() string {
	return fmt.Sprintf("device %s not found", e.Key)
}

func NewDeviceNotFound(key string) error {
	return &ErrDeviceNotFound{Key: key}
}

// ErrInvalidTransition is returned when a campaign lifecycle edge is not
// permitted. The campaign status is left unchanged.
type ErrInvalidTransition struct {
	CampaignID int
	From       string
	To         string
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("campaign %d cannot move from %q to %q", e.CampaignID, e.From, e.To)
}

func NewInvalidTransition(id int, from, to string) error {
	return &ErrInvalidTransition{CampaignID: id, From: from, To: to}
}

// ErrGroupConflict is returned when a group already has an active campaign.
type ErrGroupConflict struct {
	GroupID int
}

func (e *ErrGroupConflict) Error() string {
	return fmt.Sprintf("group %d already has an active campaign", e.GroupID)
}

func NewGroupConflict(groupID int) error {
	return &ErrGroupConflict{GroupID: groupID}
}

// ErrBadTelemetry is returned when an inbound telemetry frame is missing
// its campaign or device reference. Fatal for that frame only.
type ErrBadTelemetry struct {
	Reason string
}

func (e *ErrBadTelemetry) Error() string {
	return fmt.Sprintf("bad telemetry frame: %s", e.Reason)
}

func NewBadTelemetry(reason string) error {
	return &ErrBadTelemetry{Reason: reason}
}
