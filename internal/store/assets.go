package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/oprema/internal/model"
)

const assetColumns = `id, owner_id, code, serial, type, subtype, name, brand, model, specs,
       assigned_at, due_at, returned_at, status, value, currency, notes, attachments, photo_mime,
       created_at, created_by, updated_at, updated_by`

// AssignAssetParams describes a new assignment.
type AssignAssetParams struct {
	Code    string
	Serial  string
	Type    string
	Subtype string
	Name    string
	Brand   string
	Model   string
	Specs   string

	DueAt    *time.Time
	Value    *float64
	Currency string

	Notes       string
	Attachments []string

	// OccurredAt backdates the assign movement; defaults to write time.
	OccurredAt     *time.Time
	IdempotencyKey string
}

// AssignAsset creates an asset in the assigned state and appends the
// opening assign movement to its ledger, both in one transaction.
//
// An employee may hold at most one assigned asset per non-empty serial.
// The pre-check below produces a friendly conflict message; the partial
// unique index on (owner_id, serial) catches the race where two concurrent
// assignments pass the check before either insert lands.
func AssignAsset(ctx context.Context, db *sql.DB, ownerID string, p AssignAssetParams, actor string) (*model.Asset, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, errValidation("owner id required")
	}
	if strings.TrimSpace(p.Name) == "" && strings.TrimSpace(p.Code) == "" && strings.TrimSpace(p.Serial) == "" {
		return nil, errValidation("name, code, or serial required")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if p.Serial != "" {
		var active int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM assets WHERE owner_id = ? AND serial = ? AND status = ?`,
			ownerID, p.Serial, model.StatusAssigned,
		).Scan(&active)
		if err != nil {
			return nil, fmt.Errorf("checking active serial: %w", err)
		}
		if active > 0 {
			return nil, errConflict(fmt.Sprintf("serial %s is already assigned to this employee", p.Serial))
		}
	}

	// Fall back to the configured default currency for valued assets.
	currency := p.Currency
	if p.Value != nil && currency == "" {
		currency, err = getSetting(ctx, tx, SettingDefaultCurrency)
		if err != nil {
			return nil, err
		}
	}

	ts := now()
	asset := &model.Asset{
		ID:          newID(),
		OwnerID:     ownerID,
		Code:        p.Code,
		Serial:      p.Serial,
		Type:        p.Type,
		Subtype:     p.Subtype,
		Name:        p.Name,
		Brand:       p.Brand,
		Model:       p.Model,
		Specs:       p.Specs,
		AssignedAt:  &ts,
		Status:      model.StatusAssigned,
		Value:       p.Value,
		Currency:    currency,
		Notes:       p.Notes,
		Attachments: p.Attachments,
		CreatedAt:   ts,
		CreatedBy:   actor,
		UpdatedAt:   ts,
		UpdatedBy:   actor,
	}
	if p.DueAt != nil {
		due := normalizeTime(*p.DueAt)
		asset.DueAt = &due
	}

	if err := insertAsset(ctx, tx, asset); err != nil {
		if isUniqueViolation(err) {
			return nil, errConflict(fmt.Sprintf("serial %s is already assigned to this employee", p.Serial))
		}
		return nil, fmt.Errorf("creating asset: %w", err)
	}

	occurred := ts
	if p.OccurredAt != nil {
		occurred = normalizeTime(*p.OccurredAt)
	}
	_, _, err = appendMovement(ctx, tx, &model.Movement{
		AssetID:        asset.ID,
		Type:           model.MovementAssign,
		OccurredAt:     occurred,
		CreatedBy:      actor,
		IdempotencyKey: p.IdempotencyKey,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing assignment: %w", err)
	}
	return asset, nil
}

func insertAsset(ctx context.Context, q DBTX, a *model.Asset) error {
	attachments, err := encodeAttachments(a.Attachments)
	if err != nil {
		return fmt.Errorf("encoding attachments: %w", err)
	}

	var value sql.NullFloat64
	if a.Value != nil {
		value = sql.NullFloat64{Float64: *a.Value, Valid: true}
	}

	_, err = q.ExecContext(ctx,
		`INSERT INTO assets (id, owner_id, code, serial, type, subtype, name, brand, model, specs,
		                     assigned_at, due_at, returned_at, status, value, currency, notes, attachments,
		                     created_at, created_by, updated_at, updated_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.OwnerID, a.Code, a.Serial, a.Type, a.Subtype, a.Name, a.Brand, a.Model, a.Specs,
		a.AssignedAt, a.DueAt, a.ReturnedAt, a.Status, value, a.Currency, a.Notes, attachments,
		a.CreatedAt, a.CreatedBy, a.UpdatedAt, a.UpdatedBy,
	)
	return err
}

// GetAsset returns one of an employee's assets.
func GetAsset(ctx context.Context, db *sql.DB, ownerID, assetID string) (*model.Asset, error) {
	return getAsset(ctx, db, ownerID, assetID)
}

func getAsset(ctx context.Context, q DBTX, ownerID, assetID string) (*model.Asset, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE id = ? AND owner_id = ?`,
		assetID, ownerID,
	)
	asset, err := scanAsset(row)
	if err == sql.ErrNoRows {
		return nil, errNotFound("asset not found")
	}
	if err != nil {
		return nil, fmt.Errorf("getting asset: %w", err)
	}
	return asset, nil
}

// ListOptions filters and paginates an asset listing.
type ListOptions struct {
	Page  int
	Limit int

	Status string
	Type   string

	// Search is accepted for interface compatibility but not applied here;
	// free-text matching is the caller's concern.
	Search string
}

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// ListAssets returns one page of an employee's assets, newest first, along
// with the total count across all pages.
func ListAssets(ctx context.Context, db *sql.DB, ownerID string, opts ListOptions) ([]model.Asset, int, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, 0, errValidation("owner id required")
	}
	if opts.Status != "" && !model.ValidStatus(opts.Status) {
		return nil, 0, errValidation("unrecognized status %q", opts.Status)
	}

	where := `WHERE owner_id = ?`
	args := []any{ownerID}
	if opts.Status != "" {
		where += ` AND status = ?`
		args = append(args, opts.Status)
	}
	if opts.Type != "" {
		where += ` AND type = ?`
		args = append(args, opts.Type)
	}

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assets `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting assets: %w", err)
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	limit := opts.Limit
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+assetColumns+` FROM assets `+where+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		append(args, limit, (page-1)*limit)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing assets: %w", err)
	}
	defer rows.Close()

	var assets []model.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning asset: %w", err)
		}
		assets = append(assets, *asset)
	}
	return assets, total, rows.Err()
}

// UpdateAssetParams is a partial update of an asset's descriptive fields.
// Nil fields are left unchanged. Status changes here are direct corrections
// that bypass the movement ledger; they are validated for membership only.
type UpdateAssetParams struct {
	Code    *string
	Serial  *string
	Type    *string
	Subtype *string
	Name    *string
	Brand   *string
	Model   *string
	Specs   *string

	DueAt    *time.Time
	Value    *float64
	Currency *string

	Notes       *string
	Attachments []string
	Status      *string
}

// UpdateAsset merges the patch into the stored record, re-validates the
// result, and persists it.
func UpdateAsset(ctx context.Context, db *sql.DB, ownerID, assetID string, p UpdateAssetParams, actor string) (*model.Asset, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	asset, err := getAsset(ctx, tx, ownerID, assetID)
	if err != nil {
		return nil, err
	}

	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&asset.Code, p.Code)
	setString(&asset.Serial, p.Serial)
	setString(&asset.Type, p.Type)
	setString(&asset.Subtype, p.Subtype)
	setString(&asset.Name, p.Name)
	setString(&asset.Brand, p.Brand)
	setString(&asset.Model, p.Model)
	setString(&asset.Specs, p.Specs)
	setString(&asset.Currency, p.Currency)
	setString(&asset.Notes, p.Notes)
	if p.DueAt != nil {
		due := normalizeTime(*p.DueAt)
		asset.DueAt = &due
	}
	if p.Value != nil {
		asset.Value = p.Value
	}
	if p.Attachments != nil {
		asset.Attachments = p.Attachments
	}

	ts := now()
	if p.Status != nil && *p.Status != asset.Status {
		if !model.ValidStatus(*p.Status) {
			return nil, errValidation("unrecognized status %q", *p.Status)
		}
		asset.Status = *p.Status
		// Keep the lifecycle timestamps consistent with the status.
		switch asset.Status {
		case model.StatusAssigned:
			if asset.AssignedAt == nil {
				asset.AssignedAt = &ts
			}
			asset.ReturnedAt = nil
		case model.StatusReturned:
			if asset.ReturnedAt == nil {
				asset.ReturnedAt = &ts
			}
		default:
			asset.ReturnedAt = nil
		}
	}

	if strings.TrimSpace(asset.Name) == "" && strings.TrimSpace(asset.Code) == "" && strings.TrimSpace(asset.Serial) == "" {
		return nil, errValidation("name, code, or serial required")
	}

	asset.UpdatedAt = ts
	asset.UpdatedBy = actor

	if err := updateAssetRow(ctx, tx, asset); err != nil {
		if isUniqueViolation(err) {
			return nil, errConflict(fmt.Sprintf("serial %s is already assigned to this employee", asset.Serial))
		}
		return nil, fmt.Errorf("updating asset: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing asset update: %w", err)
	}
	return asset, nil
}

func updateAssetRow(ctx context.Context, q DBTX, a *model.Asset) error {
	attachments, err := encodeAttachments(a.Attachments)
	if err != nil {
		return fmt.Errorf("encoding attachments: %w", err)
	}

	var value sql.NullFloat64
	if a.Value != nil {
		value = sql.NullFloat64{Float64: *a.Value, Valid: true}
	}

	_, err = q.ExecContext(ctx,
		`UPDATE assets SET code = ?, serial = ?, type = ?, subtype = ?, name = ?, brand = ?, model = ?, specs = ?,
		        assigned_at = ?, due_at = ?, returned_at = ?, status = ?, value = ?, currency = ?, notes = ?,
		        attachments = ?, updated_at = ?, updated_by = ?
		 WHERE id = ? AND owner_id = ?`,
		a.Code, a.Serial, a.Type, a.Subtype, a.Name, a.Brand, a.Model, a.Specs,
		a.AssignedAt, a.DueAt, a.ReturnedAt, a.Status, value, a.Currency, a.Notes,
		attachments, a.UpdatedAt, a.UpdatedBy,
		a.ID, a.OwnerID,
	)
	return err
}

// DeleteAsset removes the asset record. Its movement ledger is kept: the
// audit trail outlives the asset.
func DeleteAsset(ctx context.Context, db *sql.DB, ownerID, assetID string) error {
	result, err := db.ExecContext(ctx,
		`DELETE FROM assets WHERE id = ? AND owner_id = ?`,
		assetID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("deleting asset: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting asset: %w", err)
	}
	if affected == 0 {
		return errNotFound("asset not found")
	}
	return nil
}

// SetAssetPhoto stores an asset's processed photo and thumbnail.
func SetAssetPhoto(ctx context.Context, db *sql.DB, ownerID, assetID string, photo, thumb []byte, mime string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE assets SET photo = ?, photo_thumb = ?, photo_mime = ?, updated_at = ? WHERE id = ? AND owner_id = ?`,
		photo, thumb, mime, now(), assetID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("setting asset photo: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("setting asset photo: %w", err)
	}
	if affected == 0 {
		return errNotFound("asset not found")
	}
	return nil
}

// GetAssetPhoto returns an asset's photo (or its thumbnail) and MIME type.
// An asset without a photo yields nil data and no error.
func GetAssetPhoto(ctx context.Context, db *sql.DB, ownerID, assetID string, thumb bool) ([]byte, string, error) {
	column := "photo"
	if thumb {
		column = "photo_thumb"
	}

	var data []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT `+column+`, photo_mime FROM assets WHERE id = ? AND owner_id = ?`,
		assetID, ownerID,
	).Scan(&data, &mime)
	if err == sql.ErrNoRows {
		return nil, "", errNotFound("asset not found")
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting asset photo: %w", err)
	}
	return data, mime.String, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(row rowScanner) (*model.Asset, error) {
	a := &model.Asset{}
	var value sql.NullFloat64
	var attachments, photoMime sql.NullString
	err := row.Scan(
		&a.ID, &a.OwnerID, &a.Code, &a.Serial, &a.Type, &a.Subtype, &a.Name, &a.Brand, &a.Model, &a.Specs,
		&a.AssignedAt, &a.DueAt, &a.ReturnedAt, &a.Status, &value, &a.Currency, &a.Notes, &attachments, &photoMime,
		&a.CreatedAt, &a.CreatedBy, &a.UpdatedAt, &a.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if value.Valid {
		v := value.Float64
		a.Value = &v
	}
	a.Attachments = decodeAttachments(attachments)
	a.PhotoMime = photoMime.String
	return a, nil
}
