package models

import "time"

// Heartbeat represents the structure for a device heartbeat event.
type Heartbeat struct {
	DeviceID      string    `json:"device_id"`
	Timestamp     time.Time `json:"timestamp"`
	Status        string    `json:"status"`
	LoggedEntries int       `json:"logged_entries"`
	DarkTiles     bool      `json:"dark_tiles"`
	HasFix        bool      `json:"has_fix"`
}
