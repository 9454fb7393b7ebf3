package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"hash/fnv"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/whereismy/whereismy/internal/auth"
	"github.com/whereismy/whereismy/internal/db"
	"github.com/whereismy/whereismy/internal/matching"
	"github.com/whereismy/whereismy/internal/model"
	"github.com/whereismy/whereismy/internal/store"
	"github.com/whereismy/whereismy/internal/vector"
)

const testJWTSecret = "test-secret"

// wordEmbedder maps each word onto a fixed axis so related descriptions rank
// close without a real model.
type wordEmbedder struct{}

func (wordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	v := make([]float32, vector.Dim)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(word))
		v[h.Sum32()%vector.Dim]++
	}
	return v, nil
}

func (wordEmbedder) Dimension() int { return vector.Dim }

type testEnv struct {
	server     *httptest.Server
	db         *sql.DB
	token      string
	categoryID int64
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	database := db.NewTestDB(t)
	svc := matching.NewService(database, wordEmbedder{})
	server := httptest.NewServer(NewRouter(database, svc, testJWTSecret))
	t.Cleanup(server.Close)

	ctx := context.Background()
	hash, _ := auth.HashPassword("password")
	if _, err := store.CreateModerator(ctx, database, "mod", hash); err != nil {
		t.Fatalf("CreateModerator: %v", err)
	}
	category, err := store.CreateCategory(ctx, database, "Electronics")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	body, _ := json.Marshal(map[string]string{"username": "mod", "password": "password"})
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

	return &testEnv{server: server, db: database, token: token, categoryID: category.ID}
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

func TestLoginEndpoint(t *testing.T) {
	env := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{"username": "mod", "password": "wrong"})
	resp, _ := http.Post(env.server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Telegram users have no password and can never log in.
	store.UpsertTelegramUser(context.Background(), env.db, 55, "bob")
	body, _ = json.Marshal(map[string]string{"username": "bob", "password": "anything"})
	resp, _ = http.Post(env.server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for non-moderator login, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestItemsAPIFlow(t *testing.T) {
	env := setupTestServer(t)

	// Report a found item as the moderator.
	req, _ := authRequest("POST", env.server.URL+"/api/items", env.token, map[string]any{
		"category_id":    env.categoryID,
		"type":           model.ItemTypeFound,
		"description":    "black wireless headphones",
		"contact_method": model.ContactLeftAt,
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var created model.Item
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()
	if created.Status != model.ItemStatusActive {
		t.Errorf("expected a new item to be active, got %q", created.Status)
	}

	// Public list.
	resp, _ = http.Get(env.server.URL + "/api/items?status=active&type=found")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var items []model.Item
	json.NewDecoder(resp.Body).Decode(&items)
	resp.Body.Close()
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	// Public semantic search, no token required.
	body, _ := json.Marshal(map[string]any{"query": "lost my black headphones", "type": model.ItemTypeFound})
	resp, _ = http.Post(env.server.URL+"/api/items/search", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("search: expected 200, got %d", resp.StatusCode)
	}
	var matches []model.Match
	json.NewDecoder(resp.Body).Decode(&matches)
	resp.Body.Close()
	if len(matches) != 1 || matches[0].Item.ID != created.ID {
		t.Fatalf("expected the headphones as a match, got %+v", matches)
	}

	// Partial moderation update.
	req, _ = authRequest("PATCH", env.server.URL+"/api/items/"+itoa(created.ID), env.token, map[string]any{
		"description": "black wireless headphones with case",
	})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch: expected 200, got %d", resp.StatusCode)
	}
	var updated model.Item
	json.NewDecoder(resp.Body).Decode(&updated)
	resp.Body.Close()
	if updated.ContactMethod != model.ContactLeftAt {
		t.Error("expected untouched fields to survive a partial update")
	}

	// Archive, then hard delete.
	req, _ = authRequest("POST", env.server.URL+"/api/items/"+itoa(created.ID)+"/archive", env.token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("archive: expected 200, got %d", resp.StatusCode)
	}
	var archived model.Item
	json.NewDecoder(resp.Body).Decode(&archived)
	resp.Body.Close()
	if archived.Status != model.ItemStatusArchived || archived.ArchivedAt == nil {
		t.Errorf("expected an archived item with timestamp, got %+v", archived)
	}

	req, _ = authRequest("DELETE", env.server.URL+"/api/items/"+itoa(created.ID), env.token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp, _ = http.Get(env.server.URL + "/api/items/" + itoa(created.ID))
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestSearchValidation(t *testing.T) {
	env := setupTestServer(t)

	body, _ := json.Marshal(map[string]any{"query": "   "})
	resp, _ := http.Post(env.server.URL+"/api/items/search", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for blank query, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	body, _ = json.Marshal(map[string]any{"query": "wallet", "type": "stolen"})
	resp, _ = http.Post(env.server.URL+"/api/items/search", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown type, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestModeratorGate(t *testing.T) {
	env := setupTestServer(t)

	// Mutations without a token.
	resp, _ := http.Post(env.server.URL+"/api/items", "application/json",
		bytes.NewReader([]byte(`{}`)))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// A user-role token is authenticated but not authorized.
	userToken, _ := auth.GenerateToken(testJWTSecret, 99, "bob", model.RoleUser)
	req, _ := authRequest("POST", env.server.URL+"/api/categories", userToken, map[string]string{"name": "Bags"})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for user token, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestCategoryConflicts(t *testing.T) {
	env := setupTestServer(t)

	req, _ := authRequest("POST", env.server.URL+"/api/categories", env.token, map[string]string{"name": "Electronics"})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for duplicate category, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// A referenced category cannot be deleted.
	req, _ = authRequest("POST", env.server.URL+"/api/items", env.token, map[string]any{
		"category_id":    env.categoryID,
		"type":           model.ItemTypeLost,
		"description":    "charger",
		"contact_method": model.ContactContactMe,
	})
	resp, _ = http.DefaultClient.Do(req)
	resp.Body.Close()

	req, _ = authRequest("DELETE", env.server.URL+"/api/categories/"+itoa(env.categoryID), env.token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 deleting a referenced category, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLogoutRevokesToken(t *testing.T) {
	env := setupTestServer(t)

	req, _ := authRequest("POST", env.server.URL+"/api/auth/logout", env.token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// The revoked token no longer works.
	req, _ = authRequest("POST", env.server.URL+"/api/categories", env.token, map[string]string{"name": "Bags"})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for revoked token, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
