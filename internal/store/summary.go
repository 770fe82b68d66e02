package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/oprema/internal/model"
)

// Summarize computes the aggregate view of one employee's assets. It scans
// the employee's assets and looks up the most recent ledger entry of each;
// an employee with zero assets yields a zeroed summary, never an error.
func Summarize(ctx context.Context, db *sql.DB, ownerID string) (*model.Summary, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, type, status, due_at FROM assets WHERE owner_id = ?`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning assets for summary: %w", err)
	}
	defer rows.Close()

	summary := model.NewSummary()
	cutoff := time.Now().UTC()

	var assetIDs []string
	for rows.Next() {
		var id, assetType, status string
		var dueAt *time.Time
		if err := rows.Scan(&id, &assetType, &status, &dueAt); err != nil {
			return nil, fmt.Errorf("scanning asset for summary: %w", err)
		}

		summary.Total++
		summary.ByStatus[status]++
		if assetType != "" {
			summary.ByType[assetType]++
		}
		if status == model.StatusAssigned && dueAt != nil && dueAt.Before(cutoff) {
			summary.PendingReturns++
		}
		if status == model.StatusLost || status == model.StatusDamaged {
			summary.LostOrDamaged++
		}

		assetIDs = append(assetIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scanning assets for summary: %w", err)
	}

	for _, id := range assetIDs {
		movement, err := LatestMovement(ctx, db, id)
		if err != nil {
			return nil, err
		}
		if movement == nil {
			continue
		}
		if summary.LastMovementAt == nil || movement.OccurredAt.After(*summary.LastMovementAt) {
			occurred := movement.OccurredAt
			summary.LastMovementAt = &occurred
		}
	}

	return summary, nil
}
