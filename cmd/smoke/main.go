package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

const defaultAPIBase = "http://localhost:8080"

var (
	apiBase      string
	token        string
	testDate     string
	client       = &http.Client{Timeout: 30 * time.Second}
	smokeUser    string
	ingredientID string
	mealID       string
)

func main() {
	fmt.Println("=== Calorie Hub E2E Smoke Test ===")
	fmt.Println()

	apiBase = getEnv("API_BASE_URL", defaultAPIBase)
	smokeUser = fmt.Sprintf("smoke_%d", time.Now().UnixNano())
	testDate = time.Now().Format("2006-01-02")

	fmt.Printf("API Base: %s\n", apiBase)
	fmt.Printf("User: %s\n", smokeUser)
	fmt.Println()

	steps := []struct {
		name string
		fn   func() error
	}{
		{"Healthz", testHealthz},
		{"Register", testRegister},
		{"Login", testLogin},
		{"Verify Token", testVerifyToken},
		{"Create Ingredient", testCreateIngredient},
		{"Search Ingredients", testSearchIngredients},
		{"Calculate Calories", testCalculateCalories},
		{"Create Meal", testCreateMeal},
		{"Get Meal", testGetMeal},
		{"Calories Summary", testCaloriesSummary},
		{"Date Range", testDateRange},
		{"Delete Meal", testDeleteMeal},
		{"Delete Ingredient", testDeleteIngredient},
		{"Delete Account", testDeleteAccount},
	}

	failed := false
	for i, step := range steps {
		fmt.Printf("[%d/%d] %s... ", i+1, len(steps), step.name)
		if err := step.fn(); err != nil {
			fmt.Printf("❌ FAILED\n")
			fmt.Printf("  Error: %v\n\n", err)
			failed = true
			break
		}
		fmt.Printf("✅ OK\n")
	}

	fmt.Println()
	if failed {
		fmt.Println("❌ SMOKE TEST FAILED")
		os.Exit(1)
	}

	fmt.Println("✅ ALL SMOKE TESTS PASSED")
}

func testHealthz() error {
	resp, err := doRequest("GET", "/healthz", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return expectStatus(resp, http.StatusOK)
}

func testRegister() error {
	resp, err := doRequest("POST", "/api/auth/register", map[string]any{
		"username": smokeUser,
		"password": "smoke-pass-1",
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := expectStatus(resp, http.StatusCreated); err != nil {
		return err
	}

	var result struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	if result.Data.Token == "" {
		return fmt.Errorf("no token in register response")
	}
	return nil
}

func testLogin() error {
	resp, err := doRequest("POST", "/api/auth/login", map[string]any{
		"username": smokeUser,
		"password": "smoke-pass-1",
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := expectStatus(resp, http.StatusOK); err != nil {
		return err
	}

	var result struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	if result.Data.Token == "" {
		return fmt.Errorf("no token in login response")
	}

	token = result.Data.Token
	return nil
}

func testVerifyToken() error {
	resp, err := doRequest("POST", "/api/auth/verify-token", map[string]any{
		"token": token,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := expectStatus(resp, http.StatusOK); err != nil {
		return err
	}

	var result struct {
		Data struct {
			IsValid bool `json:"isValid"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	if !result.Data.IsValid {
		return fmt.Errorf("token reported invalid")
	}
	return nil
}

func testCreateIngredient() error {
	resp, err := doRequest("POST", "/api/ingredients", map[string]any{
		"name":            fmt.Sprintf("Smoke Rice %d", time.Now().UnixNano()),
		"caloriesPer100g": 130.0,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := expectStatus(resp, http.StatusCreated); err != nil {
		return err
	}

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}

	ingredientID = result.Data.ID
	return nil
}

func testSearchIngredients() error {
	resp, err := doRequest("GET", "/api/ingredients/search?q=smoke", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return expectStatus(resp, http.StatusOK)
}

func testCalculateCalories() error {
	resp, err := doRequest("POST", "/api/ingredients/calculate-calories", map[string]any{
		"ingredientId": ingredientID,
		"amount":       200.0,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := expectStatus(resp, http.StatusOK); err != nil {
		return err
	}

	var result struct {
		Data struct {
			Calories float64 `json:"calories"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	if result.Data.Calories != 260 {
		return fmt.Errorf("expected 260 calories, got %v", result.Data.Calories)
	}
	return nil
}

func testCreateMeal() error {
	resp, err := doRequest("POST", "/api/meals", map[string]any{
		"name":     "Smoke Lunch",
		"date":     testDate,
		"mealTime": "lunch",
		"items": []map[string]any{
			{"ingredientId": ingredientID, "amount": 150.0},
		},
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := expectStatus(resp, http.StatusCreated); err != nil {
		return err
	}

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}

	mealID = result.Data.ID
	return nil
}

func testGetMeal() error {
	resp, err := doRequest("GET", "/api/meals/"+mealID, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return expectStatus(resp, http.StatusOK)
}

func testCaloriesSummary() error {
	resp, err := doRequest("GET", "/api/meals/calories-summary?date="+testDate, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := expectStatus(resp, http.StatusOK); err != nil {
		return err
	}

	var result struct {
		Data struct {
			MealsCount int `json:"mealsCount"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	if result.Data.MealsCount < 1 {
		return fmt.Errorf("expected at least one meal in summary")
	}
	return nil
}

func testDateRange() error {
	url := fmt.Sprintf("/api/meals/date-range?startDate=%s&endDate=%s", testDate, testDate)
	resp, err := doRequest("GET", url, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return expectStatus(resp, http.StatusOK)
}

func testDeleteMeal() error {
	resp, err := doRequest("DELETE", "/api/meals/"+mealID, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return expectStatus(resp, http.StatusOK)
}

func testDeleteIngredient() error {
	resp, err := doRequest("DELETE", "/api/ingredients/"+ingredientID, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return expectStatus(resp, http.StatusOK)
}

func testDeleteAccount() error {
	resp, err := doRequest("DELETE", "/api/auth/account", map[string]any{
		"password": "smoke-pass-1",
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return expectStatus(resp, http.StatusOK)
}

// ---- helpers ----

func doRequest(method, path string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, apiBase+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return client.Do(req)
}

func expectStatus(resp *http.Response, want int) error {
	if resp.StatusCode != want {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body))
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
