package model

import "time"

// Asset represents one physical item assigned to an employee.
type Asset struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`

	Code   string `json:"code,omitempty"`
	Serial string `json:"serial,omitempty"`

	Type    string `json:"type,omitempty"`
	Subtype string `json:"subtype,omitempty"`
	Name    string `json:"name,omitempty"`
	Brand   string `json:"brand,omitempty"`
	Model   string `json:"model,omitempty"`
	Specs   string `json:"specs,omitempty"`

	AssignedAt *time.Time `json:"assigned_at,omitempty"`
	DueAt      *time.Time `json:"due_at,omitempty"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	Status     string     `json:"status"`

	Value    *float64 `json:"value,omitempty"`
	Currency string   `json:"currency,omitempty"`

	Notes       string   `json:"notes,omitempty"`
	Attachments []string `json:"attachments,omitempty"`
	PhotoMime   string   `json:"photo_mime,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy string    `json:"updated_by,omitempty"`
}

// Asset statuses.
const (
	StatusAssigned    = "assigned"
	StatusReturned    = "returned"
	StatusMaintenance = "maintenance"
	StatusLost        = "lost"
	StatusDamaged     = "damaged"
	StatusTransferred = "transferred"
)

// ValidStatus reports whether s is one of the six asset statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusAssigned, StatusReturned, StatusMaintenance,
		StatusLost, StatusDamaged, StatusTransferred:
		return true
	}
	return false
}
