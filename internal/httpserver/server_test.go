package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"caloriehub/internal/config"

	"golang.org/x/crypto/bcrypt"
)

func testServer() http.Handler {
	cfg := &config.Config{
		Env:                "local",
		Port:               8080,
		JWTSecret:          "test_secret",
		JWTIssuer:          "calorie-hub",
		JWTTTLMinutes:      60,
		BcryptCost:         bcrypt.MinCost,
		SearchDefaultLimit: 10,
		SearchMaxLimit:     50,
	}
	return New(cfg).Handler()
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if payload != nil {
		body, _ := json.Marshal(payload)
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	if !envelope.Success {
		t.Fatalf("expected success envelope, got error %q", envelope.Error)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
}

func TestHealthzIsPublic(t *testing.T) {
	handler := testServer()
	w := doJSON(t, handler, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestGatedRouteRequiresToken(t *testing.T) {
	handler := testServer()
	w := doJSON(t, handler, http.MethodGet, "/api/ingredients", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
	}

	var envelope struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	if envelope.Success || envelope.Error != "Authentication required" {
		t.Errorf("unexpected envelope: %+v", envelope)
	}
}

func TestFullFlow(t *testing.T) {
	handler := testServer()

	// Register
	w := doJSON(t, handler, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice",
		"password": "secret123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var authResp struct {
		Token string `json:"token"`
	}
	decodeData(t, w, &authResp)
	if authResp.Token == "" {
		t.Fatal("register returned no token")
	}
	token := authResp.Token

	// Create an ingredient
	w = doJSON(t, handler, http.MethodPost, "/api/ingredients", token, map[string]any{
		"name":            "Rice",
		"caloriesPer100g": 130,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create ingredient: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var ingredient struct {
		ID string `json:"id"`
	}
	decodeData(t, w, &ingredient)

	// Create a meal referencing it
	w = doJSON(t, handler, http.MethodPost, "/api/meals", token, map[string]any{
		"name":     "Lunch",
		"date":     "2026-09-01",
		"mealTime": "lunch",
		"items": []map[string]any{
			{"ingredientId": ingredient.ID, "amount": 200},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create meal: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var meal struct {
		TotalCalories float64 `json:"totalCalories"`
	}
	decodeData(t, w, &meal)
	if meal.TotalCalories != 260 {
		t.Errorf("expected meal total 260, got %v", meal.TotalCalories)
	}

	// Summary over all meals
	w = doJSON(t, handler, http.MethodGet, "/api/meals/calories-summary", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("summary: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var summary struct {
		TotalCalories float64        `json:"totalCalories"`
		MealsCount    int            `json:"mealsCount"`
		MealsByTime   map[string]int `json:"mealsByTime"`
	}
	decodeData(t, w, &summary)
	if summary.MealsCount != 1 || summary.TotalCalories != 260 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if summary.MealsByTime["lunch"] != 1 {
		t.Errorf("expected one lunch, got %+v", summary.MealsByTime)
	}
}

func TestSearchRouteTakesPrecedenceOverID(t *testing.T) {
	handler := testServer()

	w := doJSON(t, handler, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "bob",
		"password": "secret123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register failed: %d", w.Code)
	}
	var authResp struct {
		Token string `json:"token"`
	}
	decodeData(t, w, &authResp)

	// "search" must hit the search handler, not be parsed as an ID
	w = doJSON(t, handler, http.MethodGet, "/api/ingredients/search?q=ri", authResp.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var results []json.RawMessage
	decodeData(t, w, &results)
	if results == nil {
		t.Error("search must return an empty list, not null")
	}
}
