package meals

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"caloriehub/internal/storage"
	"caloriehub/internal/storage/memory"
	"caloriehub/internal/userctx"

	"github.com/google/uuid"
)

func testHandler() (*Handler, *memory.IngredientsMemoryStorage) {
	store := memory.New()
	ingredients := store.GetIngredientsStorage()
	return NewHandler(NewService(store.GetMealsStorage(), ingredients)), ingredients
}

func authedRequest(method, path string, payload any, user userctx.User) *http.Request {
	var req *http.Request
	if payload != nil {
		body, _ := json.Marshal(payload)
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	return req.WithContext(userctx.WithUser(context.Background(), user))
}

func seedIngredient(t *testing.T, store *memory.IngredientsMemoryStorage, owner uuid.UUID, name string, calories float64) uuid.UUID {
	t.Helper()
	ingredient := &storage.Ingredient{
		ID:              uuid.New(),
		Name:            name,
		CaloriesPer100g: calories,
		CreatedBy:       owner,
		CreatedAt:       time.Now(),
	}
	if err := store.UpsertIngredient(context.Background(), ingredient); err != nil {
		t.Fatalf("seed ingredient failed: %v", err)
	}
	return ingredient.ID
}

func TestHandleCreateAndGetMeal(t *testing.T) {
	handler, ingredients := testHandler()
	user := userctx.User{ID: uuid.New(), Username: "alice"}
	rice := seedIngredient(t, ingredients, user.ID, "Rice", 130)

	w := httptest.NewRecorder()
	handler.HandleCreate(w, authedRequest(http.MethodPost, "/api/meals", CreateMealRequest{
		Name:     "Lunch bowl",
		Date:     "2026-09-01",
		MealTime: "lunch",
		Items:    []MealItemRequest{{IngredientID: rice.String(), Amount: 200}},
	}, user))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var created struct {
		Success bool    `json:"success"`
		Data    MealDTO `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !created.Success || created.Data.TotalCalories != 260 {
		t.Errorf("unexpected created meal: %+v", created.Data)
	}

	w = httptest.NewRecorder()
	handler.HandleGet(w, authedRequest(http.MethodGet, "/api/meals/"+created.Data.ID.String(), nil, user))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var got struct {
		Data MealDTO `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Data.Name != "Lunch bowl" || len(got.Data.Items) != 1 {
		t.Errorf("unexpected meal: %+v", got.Data)
	}
}

func TestHandleSummaryQueryParam(t *testing.T) {
	handler, ingredients := testHandler()
	user := userctx.User{ID: uuid.New(), Username: "alice"}
	rice := seedIngredient(t, ingredients, user.ID, "Rice", 100)

	for _, meal := range []CreateMealRequest{
		{Name: "Breakfast", Date: "2026-09-01", MealTime: "breakfast", Items: []MealItemRequest{{IngredientID: rice.String(), Amount: 150}}},
		{Name: "Next day", Date: "2026-09-02", MealTime: "lunch", Items: []MealItemRequest{{IngredientID: rice.String(), Amount: 300}}},
	} {
		w := httptest.NewRecorder()
		handler.HandleCreate(w, authedRequest(http.MethodPost, "/api/meals", meal, user))
		if w.Code != http.StatusCreated {
			t.Fatalf("seed meal failed: %d %s", w.Code, w.Body.String())
		}
	}

	w := httptest.NewRecorder()
	handler.HandleSummary(w, authedRequest(http.MethodGet, "/api/meals/calories-summary?date=2026-09-01", nil, user))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data CaloriesSummary `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.MealsCount != 1 || resp.Data.TotalCalories != 150 {
		t.Errorf("unexpected summary: %+v", resp.Data)
	}
	if resp.Data.MealsByTime["breakfast"] != 1 || resp.Data.MealsByTime["snack"] != 0 {
		t.Errorf("unexpected meal time counts: %+v", resp.Data.MealsByTime)
	}

	w = httptest.NewRecorder()
	handler.HandleSummary(w, authedRequest(http.MethodGet, "/api/meals/calories-summary?date=garbage", nil, user))
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed date: expected 400, got %d", w.Code)
	}
}

func TestHandleDateRangeQueryParams(t *testing.T) {
	handler, ingredients := testHandler()
	user := userctx.User{ID: uuid.New(), Username: "alice"}
	rice := seedIngredient(t, ingredients, user.ID, "Rice", 100)

	w := httptest.NewRecorder()
	handler.HandleCreate(w, authedRequest(http.MethodPost, "/api/meals", CreateMealRequest{
		Name:     "Lunch",
		Date:     "2026-09-01",
		MealTime: "lunch",
		Items:    []MealItemRequest{{IngredientID: rice.String(), Amount: 100}},
	}, user))
	if w.Code != http.StatusCreated {
		t.Fatalf("seed meal failed: %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	handler.HandleDateRange(w, authedRequest(http.MethodGet, "/api/meals/date-range?startDate=2026-09-01&endDate=2026-09-07", nil, user))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data []DailySummary `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Date != "2026-09-01" {
		t.Errorf("unexpected summaries: %+v", resp.Data)
	}

	w = httptest.NewRecorder()
	handler.HandleDateRange(w, authedRequest(http.MethodGet, "/api/meals/date-range?startDate=2026-09-01", nil, user))
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing endDate: expected 400, got %d", w.Code)
	}
}

func TestHandleMealUnauthenticated(t *testing.T) {
	handler, _ := testHandler()

	w := httptest.NewRecorder()
	handler.HandleList(w, httptest.NewRequest(http.MethodGet, "/api/meals", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}
