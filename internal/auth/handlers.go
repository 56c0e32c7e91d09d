package auth

import (
	"encoding/json"
	"net/http"

	"caloriehub/internal/apperr"
	"caloriehub/internal/userctx"
)

type Handlers struct {
	service *Service
}

func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleRegister handles POST /api/auth/register
func (h *Handlers) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, apperr.BadRequest("Invalid JSON body"))
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		sendError(w, err)
		return
	}

	sendData(w, http.StatusCreated, resp)
}

// HandleLogin handles POST /api/auth/login
func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, apperr.BadRequest("Invalid JSON body"))
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		sendError(w, err)
		return
	}

	sendData(w, http.StatusOK, resp)
}

// HandleVerifyToken handles POST /api/auth/verify-token. The endpoint is
// public and always answers 200: validity lives inside the payload.
func (h *Handlers) HandleVerifyToken(w http.ResponseWriter, r *http.Request) {
	var req VerifyTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, apperr.BadRequest("Invalid JSON body"))
		return
	}

	result := h.service.VerifyToken(r.Context(), req.Token)
	sendData(w, http.StatusOK, result)
}

// HandleVerifySession handles GET /api/auth/verify-token. The route is
// bearer-gated, so reaching it means the header token already passed.
func (h *Handlers) HandleVerifySession(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.GetUser(r.Context())
	if !ok {
		sendError(w, apperr.Unauthorized("Authentication required"))
		return
	}

	profile, err := h.service.GetProfile(r.Context(), user.ID)
	if err != nil {
		sendError(w, err)
		return
	}

	sendData(w, http.StatusOK, VerifyTokenResult{IsValid: true, User: &profile.User})
}

// HandleGetProfile handles GET /api/auth/profile
func (h *Handlers) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.GetUser(r.Context())
	if !ok {
		sendError(w, apperr.Unauthorized("Authentication required"))
		return
	}

	resp, err := h.service.GetProfile(r.Context(), user.ID)
	if err != nil {
		sendError(w, err)
		return
	}

	sendData(w, http.StatusOK, resp)
}

// HandleUpdateProfile handles PUT /api/auth/profile
func (h *Handlers) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.GetUser(r.Context())
	if !ok {
		sendError(w, apperr.Unauthorized("Authentication required"))
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, apperr.BadRequest("Invalid JSON body"))
		return
	}

	resp, err := h.service.UpdateProfile(r.Context(), user.ID, req)
	if err != nil {
		sendError(w, err)
		return
	}

	sendData(w, http.StatusOK, resp)
}

// HandleChangePassword handles PUT /api/auth/password
func (h *Handlers) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.GetUser(r.Context())
	if !ok {
		sendError(w, apperr.Unauthorized("Authentication required"))
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, apperr.BadRequest("Invalid JSON body"))
		return
	}

	if err := h.service.ChangePassword(r.Context(), user.ID, req); err != nil {
		sendError(w, err)
		return
	}

	sendData(w, http.StatusOK, map[string]string{"message": "Password updated"})
}

// HandleDeleteAccount handles DELETE /api/auth/account
func (h *Handlers) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.GetUser(r.Context())
	if !ok {
		sendError(w, apperr.Unauthorized("Authentication required"))
		return
	}

	var req DeleteAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, apperr.BadRequest("Invalid JSON body"))
		return
	}

	if err := h.service.DeleteAccount(r.Context(), user.ID, req.Password); err != nil {
		sendError(w, err)
		return
	}

	sendData(w, http.StatusOK, map[string]string{"message": "Account deleted"})
}

// HandleLogout handles POST /api/auth/logout. Tokens are stateless, so
// the server only acknowledges; the client discards its copy.
func (h *Handlers) HandleLogout(w http.ResponseWriter, r *http.Request) {
	sendData(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// HandleHealth handles GET /api/auth/health
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	sendData(w, http.StatusOK, map[string]string{"status": "ok"})
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
