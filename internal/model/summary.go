package model

import "time"

// Summary is a derived, point-in-time aggregate of one employee's assets.
// It is computed on demand and never persisted.
type Summary struct {
	Total          int            `json:"total"`
	ByStatus       map[string]int `json:"by_status"`
	ByType         map[string]int `json:"by_type"`
	PendingReturns int            `json:"pending_returns"`
	LostOrDamaged  int            `json:"lost_or_damaged"`
	LastMovementAt *time.Time     `json:"last_movement_at,omitempty"`
}

// NewSummary returns an empty summary with initialized maps, so an employee
// with zero assets serializes as counts of zero rather than nulls.
func NewSummary() *Summary {
	return &Summary{
		ByStatus: make(map[string]int),
		ByType:   make(map[string]int),
	}
}
