package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/oprema/internal/model"
)

const movementColumns = `id, asset_id, type, occurred_at, notes, attachments, created_at, created_by, idempotency_key`

// MovementParams describes one lifecycle event to append to an asset's ledger.
type MovementParams struct {
	Type           string
	OccurredAt     *time.Time
	Notes          string
	Attachments    []string
	IdempotencyKey string
}

// RecordMovement appends a movement to the asset's ledger and applies the
// resulting status change to the asset, both in one transaction. A retry
// carrying an idempotency key already present in the ledger is a no-op that
// returns the original event without touching the asset again.
func RecordMovement(ctx context.Context, db *sql.DB, ownerID, assetID string, p MovementParams, actor string) (*model.Asset, *model.Movement, error) {
	target, ok := model.MovementTarget(p.Type)
	if !ok {
		return nil, nil, errValidation("unknown movement type %q", p.Type)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	asset, err := getAsset(ctx, tx, ownerID, assetID)
	if err != nil {
		return nil, nil, err
	}

	// Replay check first: a replay must not re-run the transition check,
	// because the asset may have legitimately moved on since the original
	// call succeeded.
	if p.IdempotencyKey != "" {
		existing, err := getMovementByKey(ctx, tx, assetID, p.IdempotencyKey)
		if err != nil {
			return nil, nil, err
		}
		if existing != nil {
			return asset, existing, nil
		}
	}

	if !model.LegalTransition(asset.Status, target) {
		return nil, nil, errTransition(asset.Status, target)
	}

	ts := now()
	occurred := ts
	if p.OccurredAt != nil {
		occurred = normalizeTime(*p.OccurredAt)
	}

	movement, _, err := appendMovement(ctx, tx, &model.Movement{
		AssetID:        assetID,
		Type:           p.Type,
		OccurredAt:     occurred,
		Notes:          p.Notes,
		Attachments:    p.Attachments,
		CreatedBy:      actor,
		IdempotencyKey: p.IdempotencyKey,
	})
	if err != nil {
		return nil, nil, err
	}

	asset.Status = target
	asset.UpdatedAt = ts
	asset.UpdatedBy = actor
	switch target {
	case model.StatusAssigned:
		asset.AssignedAt = &ts
		asset.ReturnedAt = nil
	case model.StatusReturned:
		asset.ReturnedAt = &ts
	default:
		asset.ReturnedAt = nil
	}

	if err := updateAssetRow(ctx, tx, asset); err != nil {
		return nil, nil, fmt.Errorf("updating asset status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("committing movement: %w", err)
	}
	return asset, movement, nil
}

// ReturnAsset records a return movement, folding the reported condition
// into the movement notes. Returning an already-returned asset is a no-op
// that leaves the ledger untouched.
func ReturnAsset(ctx context.Context, db *sql.DB, ownerID, assetID, condition, notes, idempotencyKey, actor string) (*model.Asset, *model.Movement, error) {
	asset, err := GetAsset(ctx, db, ownerID, assetID)
	if err != nil {
		return nil, nil, err
	}
	if asset.Status == model.StatusReturned {
		return asset, nil, nil
	}

	if condition != "" {
		if notes != "" {
			notes = fmt.Sprintf("condition: %s; %s", condition, notes)
		} else {
			notes = "condition: " + condition
		}
	}

	return RecordMovement(ctx, db, ownerID, assetID, MovementParams{
		Type:           model.MovementReturn,
		Notes:          notes,
		IdempotencyKey: idempotencyKey,
	}, actor)
}

// appendMovement inserts a ledger entry, honoring the idempotency key: if
// an event with the same key already exists for the asset, that event is
// returned instead and nothing is written. The second return value reports
// whether a new event was created.
func appendMovement(ctx context.Context, q DBTX, m *model.Movement) (*model.Movement, bool, error) {
	if m.IdempotencyKey != "" {
		existing, err := getMovementByKey(ctx, q, m.AssetID, m.IdempotencyKey)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			return existing, false, nil
		}
	}

	m.ID = newID()
	m.CreatedAt = now()
	if m.OccurredAt.IsZero() {
		m.OccurredAt = m.CreatedAt
	}

	attachments, err := encodeAttachments(m.Attachments)
	if err != nil {
		return nil, false, fmt.Errorf("encoding attachments: %w", err)
	}
	var key sql.NullString
	if m.IdempotencyKey != "" {
		key = sql.NullString{String: m.IdempotencyKey, Valid: true}
	}

	_, err = q.ExecContext(ctx,
		`INSERT INTO movements (id, asset_id, type, occurred_at, notes, attachments, created_at, created_by, idempotency_key)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.AssetID, m.Type, m.OccurredAt, m.Notes, attachments, m.CreatedAt, m.CreatedBy, key,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// Lost the race against a concurrent retry with the same key.
			return nil, false, errConflict("idempotency key already used for this asset")
		}
		return nil, false, fmt.Errorf("appending movement: %w", err)
	}
	return m, true, nil
}

func getMovementByKey(ctx context.Context, q DBTX, assetID, key string) (*model.Movement, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+movementColumns+` FROM movements WHERE asset_id = ? AND idempotency_key = ?`,
		assetID, key,
	)
	movement, err := scanMovement(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up movement by key: %w", err)
	}
	return movement, nil
}

// ListMovements returns an asset's full ledger, newest first.
func ListMovements(ctx context.Context, db *sql.DB, assetID string) ([]model.Movement, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+movementColumns+` FROM movements WHERE asset_id = ? ORDER BY occurred_at DESC, id DESC`,
		assetID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing movements: %w", err)
	}
	defer rows.Close()

	var movements []model.Movement
	for rows.Next() {
		movement, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning movement: %w", err)
		}
		movements = append(movements, *movement)
	}
	return movements, rows.Err()
}

// LatestMovement returns the asset's most recent ledger entry by occurrence
// time, or nil for an empty ledger.
func LatestMovement(ctx context.Context, db *sql.DB, assetID string) (*model.Movement, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+movementColumns+` FROM movements WHERE asset_id = ? ORDER BY occurred_at DESC, id DESC LIMIT 1`,
		assetID,
	)
	movement, err := scanMovement(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting latest movement: %w", err)
	}
	return movement, nil
}

func scanMovement(row rowScanner) (*model.Movement, error) {
	m := &model.Movement{}
	var attachments, key sql.NullString
	err := row.Scan(&m.ID, &m.AssetID, &m.Type, &m.OccurredAt, &m.Notes, &attachments, &m.CreatedAt, &m.CreatedBy, &key)
	if err != nil {
		return nil, err
	}
	m.Attachments = decodeAttachments(attachments)
	m.IdempotencyKey = key.String
	return m, nil
}
