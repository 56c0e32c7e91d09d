package ingredients

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"caloriehub/internal/apperr"
	"caloriehub/internal/userctx"

	"github.com/google/uuid"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleCreate handles POST /api/ingredients
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.GetUser(r.Context())
	if !ok {
		sendError(w, apperr.Unauthorized("Authentication required"))
		return
	}

	var req CreateIngredientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, apperr.BadRequest("Invalid JSON body"))
		return
	}

	ingredient, err := h.service.Create(r.Context(), user.ID, req)
	if err != nil {
		sendError(w, err)
		return
	}

	sendData(w, http.StatusCreated, ingredient)
}

// HandleList handles GET /api/ingredients?search=
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.GetUser(r.Context())
	if !ok {
		sendError(w, apperr.Unauthorized("Authentication required"))
		return
	}

	ingredients, err := h.service.ListForOwner(r.Context(), user.ID, r.URL.Query().Get("search"))
	if err != nil {
		sendError(w, err)
		return
	}

	sendData(w, http.StatusOK, ingredients)
}

// HandleSearch handles GET /api/ingredients/search?q=&limit=
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if v, err := strconv.Atoi(limitStr); err == nil {
			limit = v
		}
	}

	results, err := h.service.Search(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		sendError(w, err)
		return
	}

	sendData(w, http.StatusOK, results)
}

// HandleGet handles GET /api/ingredients/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.GetUser(r.Context())
	if !ok {
		sendError(w, apperr.Unauthorized("Authentication required"))
		return
	}

	id, err := extractID(r.URL.Path)
	if err != nil {
		sendError(w, apperr.BadRequest("Invalid ingredient ID"))
		return
	}

	ingredient, err := h.service.GetByID(r.Context(), user.ID, id)
	if err != nil {
		sendError(w, err)
		return
	}

	sendData(w, http.StatusOK, ingredient)
}

// HandleUpdate handles PUT /api/ingredients/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.GetUser(r.Context())
	if !ok {
		sendError(w, apperr.Unauthorized("Authentication required"))
		return
	}

	id, err := extractID(r.URL.Path)
	if err != nil {
		sendError(w, apperr.BadRequest("Invalid ingredient ID"))
		return
	}

	var req UpdateIngredientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, apperr.BadRequest("Invalid JSON body"))
		return
	}

	ingredient, err := h.service.Update(r.Context(), user.ID, id, req)
	if err != nil {
		sendError(w, err)
		return
	}

	sendData(w, http.StatusOK, ingredient)
}

// HandleDelete handles DELETE /api/ingredients/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.GetUser(r.Context())
	if !ok {
		sendError(w, apperr.Unauthorized("Authentication required"))
		return
	}

	id, err := extractID(r.URL.Path)
	if err != nil {
		sendError(w, apperr.BadRequest("Invalid ingredient ID"))
		return
	}

	if err := h.service.Delete(r.Context(), user.ID, id); err != nil {
		sendError(w, err)
		return
	}

	sendData(w, http.StatusOK, map[string]string{"message": "Ingredient deleted"})
}

// HandleCalculate handles POST /api/ingredients/calculate-calories
func (h *Handler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.GetUser(r.Context())
	if !ok {
		sendError(w, apperr.Unauthorized("Authentication required"))
		return
	}

	var req CalculateCaloriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, apperr.BadRequest("Invalid JSON body"))
		return
	}

	id, err := uuid.Parse(req.IngredientID)
	if err != nil {
		sendError(w, apperr.BadRequest("Invalid ingredient ID"))
		return
	}

	result, err := h.service.CalculateCalories(r.Context(), user.ID, id, req.Amount)
	if err != nil {
		sendError(w, err)
		return
	}

	sendData(w, http.StatusOK, result)
}

// HandleCalculateBulk handles POST /api/ingredients/calculate-bulk-calories
func (h *Handler) HandleCalculateBulk(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.GetUser(r.Context())
	if !ok {
		sendError(w, apperr.Unauthorized("Authentication required"))
		return
	}

	var req BulkCalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, apperr.BadRequest("Invalid JSON body"))
		return
	}

	result, err := h.service.CalculateBulkCalories(r.Context(), user.ID, req)
	if err != nil {
		sendError(w, err)
		return
	}

	sendData(w, http.StatusOK, result)
}

// extractID pulls the UUID out of /api/ingredients/{id}.
func extractID(path string) (uuid.UUID, error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 3 {
		return uuid.Nil, errors.New("invalid path")
	}

	return uuid.Parse(parts[2])
}

func sendData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"data":    data,
	})
}

func sendError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperr.Status(err))
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   apperr.Message(err),
	})
}
