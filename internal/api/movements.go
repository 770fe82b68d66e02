package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/oprema/internal/model"
	"github.com/erazemk/oprema/internal/store"
)

// MovementsHandler handles ledger endpoints for one employee's asset.
type MovementsHandler struct {
	DB *sql.DB
}

type recordMovementRequest struct {
	Type           string     `json:"type"`
	OccurredAt     *time.Time `json:"occurred_at"`
	Notes          string     `json:"notes"`
	Attachments    []string   `json:"attachments"`
	IdempotencyKey string     `json:"idempotency_key"`
}

type returnAssetRequest struct {
	Condition      string `json:"condition"`
	Notes          string `json:"notes"`
	IdempotencyKey string `json:"idempotency_key"`
}

type movementResponse struct {
	Asset    *model.Asset    `json:"asset"`
	Movement *model.Movement `json:"movement,omitempty"`
}

// Record handles POST /api/employees/{id}/assets/{aid}/movements.
func (h *MovementsHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req recordMovementRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Type == "" {
		jsonError(w, http.StatusBadRequest, "movement type required")
		return
	}

	claims := GetClaims(r.Context())
	asset, movement, err := store.RecordMovement(r.Context(), h.DB, r.PathValue("id"), r.PathValue("aid"), store.MovementParams{
		Type:           req.Type,
		OccurredAt:     req.OccurredAt,
		Notes:          req.Notes,
		Attachments:    req.Attachments,
		IdempotencyKey: idempotencyKey(r, req.IdempotencyKey),
	}, claims.Username)
	if err != nil {
		storeError(w, err)
		return
	}

	slog.Info("movement recorded",
		"user", claims.Username, "asset", asset.ID, "type", movement.Type, "status", asset.Status)
	jsonResponse(w, http.StatusCreated, movementResponse{Asset: asset, Movement: movement})
}

// List handles GET /api/employees/{id}/assets/{aid}/movements.
func (h *MovementsHandler) List(w http.ResponseWriter, r *http.Request) {
	// Resolve through the owner scope first so a ledger is only visible
	// via its employee.
	asset, err := store.GetAsset(r.Context(), h.DB, r.PathValue("id"), r.PathValue("aid"))
	if err != nil {
		storeError(w, err)
		return
	}

	movements, err := store.ListMovements(r.Context(), h.DB, asset.ID)
	if err != nil {
		storeError(w, err)
		return
	}
	if movements == nil {
		movements = []model.Movement{}
	}
	jsonResponse(w, http.StatusOK, movements)
}

// Return handles POST /api/employees/{id}/assets/{aid}/return.
func (h *MovementsHandler) Return(w http.ResponseWriter, r *http.Request) {
	var req returnAssetRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	asset, movement, err := store.ReturnAsset(r.Context(), h.DB,
		r.PathValue("id"), r.PathValue("aid"),
		req.Condition, req.Notes, idempotencyKey(r, req.IdempotencyKey), claims.Username)
	if err != nil {
		storeError(w, err)
		return
	}

	slog.Info("asset returned", "user", claims.Username, "asset", asset.ID, "condition", req.Condition)
	jsonResponse(w, http.StatusOK, movementResponse{Asset: asset, Movement: movement})
}
