package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/oprema/internal/model"
	"github.com/erazemk/oprema/internal/store"
)

// AssetsHandler handles asset lifecycle endpoints, scoped to one employee.
type AssetsHandler struct {
	DB *sql.DB
}

type assignAssetRequest struct {
	Code    string `json:"code"`
	Serial  string `json:"serial"`
	Type    string `json:"type"`
	Subtype string `json:"subtype"`
	Name    string `json:"name"`
	Brand   string `json:"brand"`
	Model   string `json:"model"`
	Specs   string `json:"specs"`

	DueAt    *time.Time `json:"due_at"`
	Value    *float64   `json:"value"`
	Currency string     `json:"currency"`

	Notes       string   `json:"notes"`
	Attachments []string `json:"attachments"`

	OccurredAt     *time.Time `json:"occurred_at"`
	IdempotencyKey string     `json:"idempotency_key"`
}

type updateAssetRequest struct {
	Code    *string `json:"code"`
	Serial  *string `json:"serial"`
	Type    *string `json:"type"`
	Subtype *string `json:"subtype"`
	Name    *string `json:"name"`
	Brand   *string `json:"brand"`
	Model   *string `json:"model"`
	Specs   *string `json:"specs"`

	DueAt    *time.Time `json:"due_at"`
	Value    *float64   `json:"value"`
	Currency *string    `json:"currency"`

	Notes       *string  `json:"notes"`
	Attachments []string `json:"attachments"`
	Status      *string  `json:"status"`
}

type listAssetsResponse struct {
	Assets []model.Asset `json:"assets"`
	Total  int           `json:"total"`
}

// idempotencyKey extracts the client's retry key: the Idempotency-Key
// header wins over the body field.
func idempotencyKey(r *http.Request, body string) string {
	if key := r.Header.Get("Idempotency-Key"); key != "" {
		return key
	}
	return body
}

// List handles GET /api/employees/{id}/assets.
func (h *AssetsHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID := r.PathValue("id")

	query := r.URL.Query()
	opts := store.ListOptions{
		Status: query.Get("status"),
		Type:   query.Get("type"),
		Search: query.Get("search"),
	}
	if page := query.Get("page"); page != "" {
		opts.Page, _ = strconv.Atoi(page)
	}
	if limit := query.Get("limit"); limit != "" {
		opts.Limit, _ = strconv.Atoi(limit)
	}

	assets, total, err := store.ListAssets(r.Context(), h.DB, ownerID, opts)
	if err != nil {
		storeError(w, err)
		return
	}
	if assets == nil {
		assets = []model.Asset{}
	}
	jsonResponse(w, http.StatusOK, listAssetsResponse{Assets: assets, Total: total})
}

// Assign handles POST /api/employees/{id}/assets.
func (h *AssetsHandler) Assign(w http.ResponseWriter, r *http.Request) {
	ownerID := r.PathValue("id")

	var req assignAssetRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	asset, err := store.AssignAsset(r.Context(), h.DB, ownerID, store.AssignAssetParams{
		Code:           req.Code,
		Serial:         req.Serial,
		Type:           req.Type,
		Subtype:        req.Subtype,
		Name:           req.Name,
		Brand:          req.Brand,
		Model:          req.Model,
		Specs:          req.Specs,
		DueAt:          req.DueAt,
		Value:          req.Value,
		Currency:       req.Currency,
		Notes:          req.Notes,
		Attachments:    req.Attachments,
		OccurredAt:     req.OccurredAt,
		IdempotencyKey: idempotencyKey(r, req.IdempotencyKey),
	}, claims.Username)
	if err != nil {
		storeError(w, err)
		return
	}

	slog.Info("asset assigned", "user", claims.Username, "employee", ownerID, "asset", asset.ID, "serial", asset.Serial)
	jsonResponse(w, http.StatusCreated, asset)
}

// Get handles GET /api/employees/{id}/assets/{aid}.
func (h *AssetsHandler) Get(w http.ResponseWriter, r *http.Request) {
	asset, err := store.GetAsset(r.Context(), h.DB, r.PathValue("id"), r.PathValue("aid"))
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, asset)
}

// Update handles PUT /api/employees/{id}/assets/{aid}.
func (h *AssetsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateAssetRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	asset, err := store.UpdateAsset(r.Context(), h.DB, r.PathValue("id"), r.PathValue("aid"), store.UpdateAssetParams{
		Code:        req.Code,
		Serial:      req.Serial,
		Type:        req.Type,
		Subtype:     req.Subtype,
		Name:        req.Name,
		Brand:       req.Brand,
		Model:       req.Model,
		Specs:       req.Specs,
		DueAt:       req.DueAt,
		Value:       req.Value,
		Currency:    req.Currency,
		Notes:       req.Notes,
		Attachments: req.Attachments,
		Status:      req.Status,
	}, claims.Username)
	if err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, asset)
}

// Delete handles DELETE /api/employees/{id}/assets/{aid}.
func (h *AssetsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID := r.PathValue("id")
	assetID := r.PathValue("aid")

	if err := store.DeleteAsset(r.Context(), h.DB, ownerID, assetID); err != nil {
		storeError(w, err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("asset deleted", "user", claims.Username, "employee", ownerID, "asset", assetID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "asset deleted"})
}

// Summary handles GET /api/employees/{id}/assets/summary.
func (h *AssetsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := store.Summarize(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, summary)
}
