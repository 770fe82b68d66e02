package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/oprema/internal/imaging"
	"github.com/erazemk/oprema/internal/store"
)

// PhotosHandler handles asset photo endpoints.
type PhotosHandler struct {
	DB *sql.DB
}

// Upload handles PUT /api/employees/{id}/assets/{aid}/photo.
func (h *PhotosHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ownerID := r.PathValue("id")
	assetID := r.PathValue("aid")

	// Limit to 5 MB.
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "photo file required")
		return
	}
	defer file.Close()

	result, err := imaging.Process(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetAssetPhoto(r.Context(), h.DB, ownerID, assetID, result.Data, result.Thumb, result.MIME); err != nil {
		storeError(w, err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("asset photo uploaded", "user", claims.Username, "asset", assetID, "bytes", len(result.Data))
	jsonResponse(w, http.StatusOK, map[string]string{"message": "photo uploaded"})
}

// Get handles GET /api/employees/{id}/assets/{aid}/photo. With ?thumb=1 the
// thumbnail variant is served instead of the full photo.
func (h *PhotosHandler) Get(w http.ResponseWriter, r *http.Request) {
	thumb := r.URL.Query().Get("thumb") == "1"

	data, mime, err := store.GetAssetPhoto(r.Context(), h.DB, r.PathValue("id"), r.PathValue("aid"), thumb)
	if err != nil {
		storeError(w, err)
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no photo")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
