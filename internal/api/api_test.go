package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/oprema/internal/auth"
	"github.com/erazemk/oprema/internal/db"
	"github.com/erazemk/oprema/internal/model"
	"github.com/erazemk/oprema/internal/store"
)

const testJWTSecret = "test-secret"

func setupTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	database := db.NewTestDB(t)
	router := NewRouter(database, testJWTSecret)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	// Create admin user.
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	store.CreateUser(ctx, database, "admin", string(hash), model.RoleAdmin)

	// Get token.
	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "password"})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp map[string]string
	json.NewDecoder(resp.Body).Decode(&loginResp)
	token := loginResp["token"]
	if token == "" {
		t.Fatal("empty token from login")
	}

	return server, token
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func doJSON(t *testing.T, req *http.Request, target any) int {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if target != nil {
		json.NewDecoder(resp.Body).Decode(target)
	}
	return resp.StatusCode
}

func TestLoginEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	// Test invalid credentials.
	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
	resp, _ := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestHealthz(t *testing.T) {
	server, _ := setupTestServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 from healthz, got %d", resp.StatusCode)
	}
}

func TestAssetLifecycleFlow(t *testing.T) {
	server, token := setupTestServer(t)

	// Assign an asset.
	req, _ := authRequest("POST", server.URL+"/api/employees/emp-1/assets", token, map[string]any{
		"name":   "ThinkPad X1",
		"serial": "SN-1001",
		"type":   "laptop",
	})
	var asset model.Asset
	if status := doJSON(t, req, &asset); status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}
	if asset.Status != model.StatusAssigned {
		t.Fatalf("expected status 'assigned', got %q", asset.Status)
	}

	// A second assignment with the same serial conflicts.
	req, _ = authRequest("POST", server.URL+"/api/employees/emp-1/assets", token, map[string]any{
		"name":   "ThinkPad X1",
		"serial": "SN-1001",
	})
	if status := doJSON(t, req, nil); status != http.StatusConflict {
		t.Errorf("expected 409 for duplicate serial, got %d", status)
	}

	// Send to maintenance.
	req, _ = authRequest("POST", server.URL+"/api/employees/emp-1/assets/"+asset.ID+"/movements", token, map[string]any{
		"type":  "maintenance",
		"notes": "keyboard replacement",
	})
	var moved movementResponse
	if status := doJSON(t, req, &moved); status != http.StatusCreated {
		t.Fatalf("expected 201 for movement, got %d", status)
	}
	if moved.Asset.Status != model.StatusMaintenance {
		t.Errorf("expected status 'maintenance', got %q", moved.Asset.Status)
	}

	// Returning from maintenance is not allowed.
	req, _ = authRequest("POST", server.URL+"/api/employees/emp-1/assets/"+asset.ID+"/return", token, map[string]any{
		"condition": "good",
	})
	if status := doJSON(t, req, nil); status != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for return from maintenance, got %d", status)
	}

	// Back to the employee, then return.
	req, _ = authRequest("POST", server.URL+"/api/employees/emp-1/assets/"+asset.ID+"/movements", token, map[string]any{
		"type": "assign",
	})
	if status := doJSON(t, req, nil); status != http.StatusCreated {
		t.Fatalf("expected 201 for re-assign, got %d", status)
	}
	req, _ = authRequest("POST", server.URL+"/api/employees/emp-1/assets/"+asset.ID+"/return", token, map[string]any{
		"condition": "good",
	})
	var returned movementResponse
	if status := doJSON(t, req, &returned); status != http.StatusOK {
		t.Fatalf("expected 200 for return, got %d", status)
	}
	if returned.Asset.Status != model.StatusReturned {
		t.Errorf("expected status 'returned', got %q", returned.Asset.Status)
	}

	// The ledger shows the whole history.
	req, _ = authRequest("GET", server.URL+"/api/employees/emp-1/assets/"+asset.ID+"/movements", token, nil)
	var movements []model.Movement
	if status := doJSON(t, req, &movements); status != http.StatusOK {
		t.Fatalf("expected 200 for ledger, got %d", status)
	}
	if len(movements) != 4 {
		t.Errorf("expected 4 ledger entries, got %d", len(movements))
	}
}

func TestMovementIdempotencyHeader(t *testing.T) {
	server, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/employees/emp-1/assets", token, map[string]any{"name": "Laptop"})
	var asset model.Asset
	if status := doJSON(t, req, &asset); status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}

	record := func() movementResponse {
		req, _ := authRequest("POST", server.URL+"/api/employees/emp-1/assets/"+asset.ID+"/movements", token, map[string]any{
			"type": "lost",
		})
		req.Header.Set("Idempotency-Key", "client-retry-9")
		var out movementResponse
		if status := doJSON(t, req, &out); status != http.StatusCreated {
			t.Fatalf("expected 201, got %d", status)
		}
		return out
	}

	first := record()
	second := record()
	if first.Movement.ID != second.Movement.ID {
		t.Errorf("expected the retry to return the original movement, got %s and %s",
			first.Movement.ID, second.Movement.ID)
	}

	req, _ = authRequest("GET", server.URL+"/api/employees/emp-1/assets/"+asset.ID+"/movements", token, nil)
	var movements []model.Movement
	doJSON(t, req, &movements)
	if len(movements) != 2 {
		t.Errorf("expected 2 ledger entries after retry, got %d", len(movements))
	}
}

func TestListAndSummary(t *testing.T) {
	server, token := setupTestServer(t)

	for _, name := range []string{"Laptop", "Monitor", "Phone"} {
		req, _ := authRequest("POST", server.URL+"/api/employees/emp-1/assets", token, map[string]any{
			"name": name,
			"type": "hardware",
		})
		if status := doJSON(t, req, nil); status != http.StatusCreated {
			t.Fatalf("expected 201, got %d", status)
		}
	}

	req, _ := authRequest("GET", server.URL+"/api/employees/emp-1/assets?limit=2", token, nil)
	var list listAssetsResponse
	if status := doJSON(t, req, &list); status != http.StatusOK {
		t.Fatalf("expected 200 for list, got %d", status)
	}
	if list.Total != 3 || len(list.Assets) != 2 {
		t.Errorf("expected total 3 with 2 on the page, got total %d with %d", list.Total, len(list.Assets))
	}

	req, _ = authRequest("GET", server.URL+"/api/employees/emp-1/assets/summary", token, nil)
	var summary model.Summary
	if status := doJSON(t, req, &summary); status != http.StatusOK {
		t.Fatalf("expected 200 for summary, got %d", status)
	}
	if summary.Total != 3 {
		t.Errorf("expected summary total 3, got %d", summary.Total)
	}
	if summary.ByStatus[model.StatusAssigned] != 3 {
		t.Errorf("expected 3 assigned in summary, got %d", summary.ByStatus[model.StatusAssigned])
	}
}

func TestUnauthenticatedAccess(t *testing.T) {
	database := db.NewTestDB(t)
	router := NewRouter(database, testJWTSecret)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	resp, _ := http.Get(server.URL + "/api/employees/emp-1/assets")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for unauthenticated request, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRoleBasedAccess(t *testing.T) {
	database := db.NewTestDB(t)
	router := NewRouter(database, testJWTSecret)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	// Create a regular user.
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("pass"), bcrypt.DefaultCost)
	store.CreateUser(ctx, database, "user1", string(hash), model.RoleUser)

	userToken, _ := auth.GenerateToken(testJWTSecret, 1, "user1", model.RoleUser)

	// Regular user may read assets.
	req, _ := authRequest("GET", server.URL+"/api/employees/emp-1/assets", userToken, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for user listing assets, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Regular user should not be able to assign assets (manager+ required).
	req, _ = authRequest("POST", server.URL+"/api/employees/emp-1/assets", userToken, map[string]any{
		"name": "Test",
	})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for user assigning asset, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Regular user should not access /api/users.
	req, _ = authRequest("GET", server.URL+"/api/users", userToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for user accessing users, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLogoutRevokesToken(t *testing.T) {
	server, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/auth/logout", token, nil)
	if status := doJSON(t, req, nil); status != http.StatusOK {
		t.Fatalf("expected 200 for logout, got %d", status)
	}

	// The token no longer works.
	req, _ = authRequest("GET", server.URL+"/api/users", token, nil)
	if status := doJSON(t, req, nil); status != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", status)
	}
}
