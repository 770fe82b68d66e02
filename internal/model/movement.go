package model

import "time"

// Movement is one immutable entry in an asset's ledger. Movements are only
// ever appended; there is no update or delete path for them.
type Movement struct {
	ID             string    `json:"id"`
	AssetID        string    `json:"asset_id"`
	Type           string    `json:"type"`
	OccurredAt     time.Time `json:"occurred_at"`
	Notes          string    `json:"notes,omitempty"`
	Attachments    []string  `json:"attachments,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	CreatedBy      string    `json:"created_by,omitempty"`
	IdempotencyKey string    `json:"idempotency_key,omitempty"`
}

// Movement types.
const (
	MovementAssign      = "assign"
	MovementReturn      = "return"
	MovementMaintenance = "maintenance"
	MovementLost        = "lost"
	MovementDamage      = "damage"
	MovementTransfer    = "transfer"
)

// movementTargets maps each movement type to the asset status it produces.
var movementTargets = map[string]string{
	MovementAssign:      StatusAssigned,
	MovementReturn:      StatusReturned,
	MovementMaintenance: StatusMaintenance,
	MovementLost:        StatusLost,
	MovementDamage:      StatusDamaged,
	MovementTransfer:    StatusTransferred,
}

// MovementTarget returns the asset status a movement of the given type
// produces, and whether the type is recognized.
func MovementTarget(movementType string) (string, bool) {
	status, ok := movementTargets[movementType]
	return status, ok
}
