package meals

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

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

// HandleCreate handles POST /api/meals
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.GetUser(r.Context())
	if !ok {
		sendError(w, apperr.Unauthorized("Authentication required"))
		return
	}

	var req CreateMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, apperr.BadRequest("Invalid JSON body"))
		return
	}

	meal, err := h.service.Create(r.Context(), user.ID, req)
	if err != nil {
		sendError(w, err)
		return
	}

	sendData(w, http.StatusCreated, meal)
}

// HandleList handles GET /api/meals?date=YYYY-MM-DD
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.GetUser(r.Context())
	if !ok {
		sendError(w, apperr.Unauthorized("Authentication required"))
		return
	}

	date, err := optionalDate(r.URL.Query().Get("date"))
	if err != nil {
		sendError(w, err)
		return
	}

	meals, err := h.service.ListForOwner(r.Context(), user.ID, date)
	if err != nil {
		sendError(w, err)
		return
	}

	sendData(w, http.StatusOK, meals)
}

// HandleDateRange handles GET /api/meals/date-range?startDate=&endDate=
func (h *Handler) HandleDateRange(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.GetUser(r.Context())
	if !ok {
		sendError(w, apperr.Unauthorized("Authentication required"))
		return
	}

	start, err := requiredDate(r.URL.Query().Get("startDate"))
	if err != nil {
		sendError(w, err)
		return
	}
	end, err := requiredDate(r.URL.Query().Get("endDate"))
	if err != nil {
		sendError(w, err)
		return
	}

	summaries, err := h.service.ListByDateRange(r.Context(), user.ID, start, end)
	if err != nil {
		sendError(w, err)
		return
	}

	sendData(w, http.StatusOK, summaries)
}

// HandleSummary handles GET /api/meals/calories-summary?date=YYYY-MM-DD
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.GetUser(r.Context())
	if !ok {
		sendError(w, apperr.Unauthorized("Authentication required"))
		return
	}

	date, err := optionalDate(r.URL.Query().Get("date"))
	if err != nil {
		sendError(w, err)
		return
	}

	summary, err := h.service.Summary(r.Context(), user.ID, date)
	if err != nil {
		sendError(w, err)
		return
	}

	sendData(w, http.StatusOK, summary)
}

// HandleGet handles GET /api/meals/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.GetUser(r.Context())
	if !ok {
		sendError(w, apperr.Unauthorized("Authentication required"))
		return
	}

	id, err := extractID(r.URL.Path)
	if err != nil {
		sendError(w, apperr.BadRequest("Invalid meal ID"))
		return
	}

	meal, err := h.service.GetByID(r.Context(), user.ID, id)
	if err != nil {
		sendError(w, err)
		return
	}

	sendData(w, http.StatusOK, meal)
}

// HandleUpdate handles PUT /api/meals/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.GetUser(r.Context())
	if !ok {
		sendError(w, apperr.Unauthorized("Authentication required"))
		return
	}

	id, err := extractID(r.URL.Path)
	if err != nil {
		sendError(w, apperr.BadRequest("Invalid meal ID"))
		return
	}

	var req UpdateMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, apperr.BadRequest("Invalid JSON body"))
		return
	}

	meal, err := h.service.Update(r.Context(), user.ID, id, req)
	if err != nil {
		sendError(w, err)
		return
	}

	sendData(w, http.StatusOK, meal)
}

// HandleDelete handles DELETE /api/meals/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.GetUser(r.Context())
	if !ok {
		sendError(w, apperr.Unauthorized("Authentication required"))
		return
	}

	id, err := extractID(r.URL.Path)
	if err != nil {
		sendError(w, apperr.BadRequest("Invalid meal ID"))
		return
	}

	if err := h.service.Delete(r.Context(), user.ID, id); err != nil {
		sendError(w, err)
		return
	}

	sendData(w, http.StatusOK, map[string]string{"message": "Meal deleted"})
}

// extractID pulls the UUID out of /api/meals/{id}.
func extractID(path string) (uuid.UUID, error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 3 {
		return uuid.Nil, errors.New("invalid path")
	}

	return uuid.Parse(parts[2])
}

func optionalDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, apperr.BadRequest("Date must be in YYYY-MM-DD format")
	}
	return &date, nil
}

func requiredDate(raw string) (time.Time, error) {
	date, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, apperr.BadRequest("Date must be in YYYY-MM-DD format")
	}
	return date, nil
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
