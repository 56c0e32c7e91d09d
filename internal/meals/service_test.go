package meals

import (
	"context"
	"testing"
	"time"

	"caloriehub/internal/apperr"
	"caloriehub/internal/storage"
	"caloriehub/internal/storage/memory"

	"github.com/google/uuid"
)

type fixture struct {
	service     *Service
	ingredients *memory.IngredientsMemoryStorage
	owner       uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	return &fixture{
		service:     NewService(store.GetMealsStorage(), store.GetIngredientsStorage()),
		ingredients: store.GetIngredientsStorage(),
		owner:       uuid.New(),
	}
}

func (f *fixture) addIngredient(t *testing.T, owner uuid.UUID, name string, calories float64) uuid.UUID {
	t.Helper()
	ingredient := &storage.Ingredient{
		ID:              uuid.New(),
		Name:            name,
		CaloriesPer100g: calories,
		CreatedBy:       owner,
		CreatedAt:       time.Now(),
	}
	if err := f.ingredients.UpsertIngredient(context.Background(), ingredient); err != nil {
		t.Fatalf("seed ingredient failed: %v", err)
	}
	return ingredient.ID
}

func (f *fixture) createMeal(t *testing.T, name, date, mealTime string, items []MealItemRequest) *MealDTO {
	t.Helper()
	meal, err := f.service.Create(context.Background(), f.owner, CreateMealRequest{
		Name:     name,
		Date:     date,
		MealTime: mealTime,
		Items:    items,
	})
	if err != nil {
		t.Fatalf("create meal %q failed: %v", name, err)
	}
	return meal
}

func TestCreateMealComputesTotal(t *testing.T) {
	f := newFixture(t)
	rice := f.addIngredient(t, f.owner, "Rice", 130)
	chicken := f.addIngredient(t, f.owner, "Chicken", 165)

	meal := f.createMeal(t, "Lunch bowl", "2026-09-01", "lunch", []MealItemRequest{
		{IngredientID: rice.String(), Amount: 200},
		{IngredientID: chicken.String(), Amount: 150},
	})

	// 200*130/100 + 150*165/100 = 260 + 247.5
	if meal.TotalCalories != 507.5 {
		t.Errorf("expected total 507.5, got %v", meal.TotalCalories)
	}
	if len(meal.Items) != 2 {
		t.Fatalf("expected 2 breakdown lines, got %d", len(meal.Items))
	}
	if meal.Items[0].Name != "Rice" || meal.Items[0].Calories != 260 {
		t.Errorf("unexpected first line: %+v", meal.Items[0])
	}
	if meal.Date != "2026-09-01" {
		t.Errorf("expected date 2026-09-01, got %s", meal.Date)
	}
}

func TestCreateMealValidation(t *testing.T) {
	f := newFixture(t)
	rice := f.addIngredient(t, f.owner, "Rice", 130)
	foreign := f.addIngredient(t, uuid.New(), "Butter", 717)
	ctx := context.Background()

	cases := []struct {
		name   string
		req    CreateMealRequest
		status int
	}{
		{"short name", CreateMealRequest{Name: "L", Date: "2026-09-01", MealTime: "lunch", Items: []MealItemRequest{{IngredientID: rice.String(), Amount: 100}}}, 400},
		{"bad date", CreateMealRequest{Name: "Lunch", Date: "01.09.2026", MealTime: "lunch", Items: []MealItemRequest{{IngredientID: rice.String(), Amount: 100}}}, 400},
		{"bad meal time", CreateMealRequest{Name: "Lunch", Date: "2026-09-01", MealTime: "brunch", Items: []MealItemRequest{{IngredientID: rice.String(), Amount: 100}}}, 400},
		{"no items", CreateMealRequest{Name: "Lunch", Date: "2026-09-01", MealTime: "lunch"}, 400},
		{"zero amount", CreateMealRequest{Name: "Lunch", Date: "2026-09-01", MealTime: "lunch", Items: []MealItemRequest{{IngredientID: rice.String(), Amount: 0}}}, 400},
		{"unknown ingredient", CreateMealRequest{Name: "Lunch", Date: "2026-09-01", MealTime: "lunch", Items: []MealItemRequest{{IngredientID: uuid.New().String(), Amount: 100}}}, 404},
		{"foreign ingredient", CreateMealRequest{Name: "Lunch", Date: "2026-09-01", MealTime: "lunch", Items: []MealItemRequest{{IngredientID: foreign.String(), Amount: 100}}}, 403},
	}

	for _, tc := range cases {
		_, err := f.service.Create(ctx, f.owner, tc.req)
		if apperr.Status(err) != tc.status {
			t.Errorf("%s: expected %d, got %d (%v)", tc.name, tc.status, apperr.Status(err), err)
		}
	}
}

func TestStoredTotalImmuneToDensityEdits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	riceID := f.addIngredient(t, f.owner, "Rice", 130)

	meal := f.createMeal(t, "Lunch", "2026-09-01", "lunch", []MealItemRequest{
		{IngredientID: riceID.String(), Amount: 200},
	})
	if meal.TotalCalories != 260 {
		t.Fatalf("expected total 260, got %v", meal.TotalCalories)
	}

	// Bump the density after the meal is stored
	rice, err := f.ingredients.GetIngredient(ctx, riceID)
	if err != nil {
		t.Fatalf("get ingredient failed: %v", err)
	}
	rice.CaloriesPer100g = 200
	if err := f.ingredients.UpsertIngredient(ctx, rice); err != nil {
		t.Fatalf("update ingredient failed: %v", err)
	}

	got, err := f.service.GetByID(ctx, f.owner, meal.ID)
	if err != nil {
		t.Fatalf("get meal failed: %v", err)
	}
	if got.TotalCalories != 260 {
		t.Errorf("stored total changed: expected 260, got %v", got.TotalCalories)
	}
	// The live breakdown reflects the new density
	if len(got.Items) != 1 || got.Items[0].Calories != 400 {
		t.Errorf("expected breakdown at current density (400), got %+v", got.Items)
	}
}

func TestBreakdownSkipsDeletedIngredients(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rice := f.addIngredient(t, f.owner, "Rice", 130)
	chicken := f.addIngredient(t, f.owner, "Chicken", 165)

	meal := f.createMeal(t, "Lunch", "2026-09-01", "lunch", []MealItemRequest{
		{IngredientID: rice.String(), Amount: 200},
		{IngredientID: chicken.String(), Amount: 100},
	})

	if _, err := f.ingredients.DeleteIngredient(ctx, chicken, f.owner); err != nil {
		t.Fatalf("delete ingredient failed: %v", err)
	}

	got, err := f.service.GetByID(ctx, f.owner, meal.ID)
	if err != nil {
		t.Fatalf("get meal failed: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Name != "Rice" {
		t.Errorf("expected only Rice in breakdown, got %+v", got.Items)
	}
	if got.TotalCalories != 425 {
		t.Errorf("stored total should stand at 425, got %v", got.TotalCalories)
	}
}

func TestUpdateMealMergesAndRecomputes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rice := f.addIngredient(t, f.owner, "Rice", 130)
	chicken := f.addIngredient(t, f.owner, "Chicken", 165)

	meal := f.createMeal(t, "Lunch", "2026-09-01", "lunch", []MealItemRequest{
		{IngredientID: rice.String(), Amount: 200},
	})

	// Name-only update keeps items and total
	name := "Big lunch"
	updated, err := f.service.Update(ctx, f.owner, meal.ID, UpdateMealRequest{Name: &name})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "Big lunch" || updated.TotalCalories != 260 || len(updated.Items) != 1 {
		t.Errorf("unexpected meal after name update: %+v", updated)
	}

	// Replacing items recomputes the total
	items := []MealItemRequest{{IngredientID: chicken.String(), Amount: 100}}
	updated, err = f.service.Update(ctx, f.owner, meal.ID, UpdateMealRequest{Items: &items})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.TotalCalories != 165 {
		t.Errorf("expected recomputed total 165, got %v", updated.TotalCalories)
	}
	if updated.ID != meal.ID || updated.CreatedAt != meal.CreatedAt {
		t.Error("update must preserve identity and creation time")
	}
}

func TestMealOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stranger := uuid.New()
	rice := f.addIngredient(t, f.owner, "Rice", 130)

	meal := f.createMeal(t, "Lunch", "2026-09-01", "lunch", []MealItemRequest{
		{IngredientID: rice.String(), Amount: 100},
	})

	if _, err := f.service.GetByID(ctx, stranger, meal.ID); apperr.Status(err) != 404 {
		t.Errorf("foreign get: expected 404, got %d", apperr.Status(err))
	}
	if _, err := f.service.Update(ctx, stranger, meal.ID, UpdateMealRequest{}); apperr.Status(err) != 403 {
		t.Errorf("foreign update: expected 403, got %d", apperr.Status(err))
	}

	if err := f.service.Delete(ctx, stranger, meal.ID); apperr.Status(err) != 404 {
		t.Errorf("foreign delete: expected 404, got %d", apperr.Status(err))
	}
	if _, err := f.service.GetByID(ctx, f.owner, meal.ID); err != nil {
		t.Errorf("record should survive a foreign delete: %v", err)
	}

	if err := f.service.Delete(ctx, f.owner, meal.ID); err != nil {
		t.Fatalf("own delete failed: %v", err)
	}
	if err := f.service.Delete(ctx, f.owner, meal.ID); apperr.Status(err) != 404 {
		t.Errorf("second delete: expected 404, got %d", apperr.Status(err))
	}
}

func TestDateRangeGrouping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rice := f.addIngredient(t, f.owner, "Rice", 100)
	items := []MealItemRequest{{IngredientID: rice.String(), Amount: 100}}

	// Inserted out of order on purpose
	f.createMeal(t, "Day2 dinner", "2026-09-02", "dinner", items)
	f.createMeal(t, "Day1 lunch", "2026-09-01", "lunch", items)
	f.createMeal(t, "Day2 breakfast", "2026-09-02", "breakfast", items)
	f.createMeal(t, "Day3 snack", "2026-09-03", "snack", items)

	summaries, err := f.service.ListByDateRange(ctx, f.owner, mustDate(t, "2026-09-01"), mustDate(t, "2026-09-02"))
	if err != nil {
		t.Fatalf("date range failed: %v", err)
	}

	if len(summaries) != 2 {
		t.Fatalf("expected 2 days, got %d", len(summaries))
	}
	if summaries[0].Date != "2026-09-01" || summaries[1].Date != "2026-09-02" {
		t.Errorf("expected ascending dates, got %s then %s", summaries[0].Date, summaries[1].Date)
	}
	if summaries[0].TotalCalories != 100 || summaries[1].TotalCalories != 200 {
		t.Errorf("unexpected day totals: %v / %v", summaries[0].TotalCalories, summaries[1].TotalCalories)
	}

	day2 := summaries[1].Meals
	if len(day2) != 2 || day2[0].MealTime != "breakfast" || day2[1].MealTime != "dinner" {
		t.Errorf("expected breakfast before dinner, got %+v", day2)
	}

	// Inverted range is rejected
	_, err = f.service.ListByDateRange(ctx, f.owner, mustDate(t, "2026-09-05"), mustDate(t, "2026-09-01"))
	if apperr.Status(err) != 400 {
		t.Errorf("inverted range: expected 400, got %d", apperr.Status(err))
	}
}

func TestSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// No meals at all: everything zero
	summary, err := f.service.Summary(ctx, f.owner, nil)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.TotalCalories != 0 || summary.MealsCount != 0 || summary.AverageCaloriesPerMeal != 0 {
		t.Errorf("expected zero summary, got %+v", summary)
	}
	if summary.MealsByTime["breakfast"] != 0 {
		t.Errorf("expected zero breakfast count, got %d", summary.MealsByTime["breakfast"])
	}

	rice := f.addIngredient(t, f.owner, "Rice", 100)
	f.createMeal(t, "Breakfast", "2026-09-01", "breakfast", []MealItemRequest{{IngredientID: rice.String(), Amount: 150}})
	f.createMeal(t, "Lunch", "2026-09-01", "lunch", []MealItemRequest{{IngredientID: rice.String(), Amount: 100}})
	f.createMeal(t, "Other day", "2026-09-02", "lunch", []MealItemRequest{{IngredientID: rice.String(), Amount: 300}})

	day := mustDate(t, "2026-09-01")
	summary, err = f.service.Summary(ctx, f.owner, &day)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.MealsCount != 2 {
		t.Errorf("expected 2 meals, got %d", summary.MealsCount)
	}
	if summary.TotalCalories != 250 {
		t.Errorf("expected 250 calories, got %v", summary.TotalCalories)
	}
	// 250 / 2 = 125
	if summary.AverageCaloriesPerMeal != 125 {
		t.Errorf("expected average 125, got %d", summary.AverageCaloriesPerMeal)
	}
	if summary.MealsByTime["breakfast"] != 1 || summary.MealsByTime["lunch"] != 1 || summary.MealsByTime["dinner"] != 0 {
		t.Errorf("unexpected meal time counts: %+v", summary.MealsByTime)
	}
}

func TestSummaryAverageRounding(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rice := f.addIngredient(t, f.owner, "Rice", 100)

	// Totals 100 and 33 give average 66.5, rounded to 67
	f.createMeal(t, "Meal A", "2026-09-01", "lunch", []MealItemRequest{{IngredientID: rice.String(), Amount: 100}})
	f.createMeal(t, "Meal B", "2026-09-01", "dinner", []MealItemRequest{{IngredientID: rice.String(), Amount: 33}})

	summary, err := f.service.Summary(ctx, f.owner, nil)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.AverageCaloriesPerMeal != 67 {
		t.Errorf("expected rounded average 67, got %d", summary.AverageCaloriesPerMeal)
	}
}

func mustDate(t *testing.T, raw string) time.Time {
	t.Helper()
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		t.Fatalf("bad test date %q: %v", raw, err)
	}
	return date
}
