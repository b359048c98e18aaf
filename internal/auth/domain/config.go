package domain

import "time"

// ConfigEntry is one row of the persisted configuration table. Key is
// globally unique. IsSecret entries are filtered from public read endpoints
// at the HTTP boundary.
type ConfigEntry struct {
	ID          string
	Key         string
	Value       string
	Description string
	Category    string
	IsSecret    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
