package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/oprema/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	assetsHandler := &AssetsHandler{DB: db}
	movementsHandler := &MovementsHandler{DB: db}
	photosHandler := &PhotosHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireManager := RequireRole(model.RoleManager)

	// Public routes.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			jsonError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Authenticated routes.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Assets: read (all roles), write (manager+).
	mux.Handle("GET /api/employees/{id}/assets", authMW(http.HandlerFunc(assetsHandler.List)))
	mux.Handle("POST /api/employees/{id}/assets", authMW(requireManager(http.HandlerFunc(assetsHandler.Assign))))
	mux.Handle("GET /api/employees/{id}/assets/summary", authMW(http.HandlerFunc(assetsHandler.Summary)))
	mux.Handle("GET /api/employees/{id}/assets/{aid}", authMW(http.HandlerFunc(assetsHandler.Get)))
	mux.Handle("PUT /api/employees/{id}/assets/{aid}", authMW(requireManager(http.HandlerFunc(assetsHandler.Update))))
	mux.Handle("DELETE /api/employees/{id}/assets/{aid}", authMW(requireManager(http.HandlerFunc(assetsHandler.Delete))))

	// Movements: read (all roles), write (manager+).
	mux.Handle("GET /api/employees/{id}/assets/{aid}/movements", authMW(http.HandlerFunc(movementsHandler.List)))
	mux.Handle("POST /api/employees/{id}/assets/{aid}/movements", authMW(requireManager(http.HandlerFunc(movementsHandler.Record))))
	mux.Handle("POST /api/employees/{id}/assets/{aid}/return", authMW(requireManager(http.HandlerFunc(movementsHandler.Return))))

	// Photos: read (all roles), write (manager+).
	mux.Handle("PUT /api/employees/{id}/assets/{aid}/photo", authMW(requireManager(http.HandlerFunc(photosHandler.Upload))))
	mux.Handle("GET /api/employees/{id}/assets/{aid}/photo", authMW(http.HandlerFunc(photosHandler.Get)))

	return mux
}
