package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// Signup handles POST /api/auth/signup.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	user, err := h.users.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case writeValidation(w, err):
		case errors.Is(err, common.ErrorAlreadyExists):
			writeMessage(w, http.StatusBadRequest, "User already exists with this email")
		default:
			h.internalError(w, r, err)
		}
		return
	}

	h.startSession(w, r, http.StatusCreated, "User registered successfully", user)
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	user, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case writeValidation(w, err):
		case errors.Is(err, common.ErrorUnauthorized):
			writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
		default:
			h.internalError(w, r, err)
		}
		return
	}

	h.startSession(w, r, http.StatusOK, "Login successful", user)
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, status int, message string, user *models.User) {
	pair, err := h.auth.Issue(user.ID)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	setAuthCookies(w, pair, h.secureCookies)
	writeJSON(w, status, userResponse{Success: true, Message: message, User: toUserDTO(user)})
}

// Me handles GET /api/auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	user, err := h.users.Me(r.Context(), userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		h.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{Success: true, User: toUserDTO(user)})
}

// Logout handles POST /api/auth/logout. The presented refresh token is
// revoked when a revocation store is configured, and so is the pair Protect
// minted if it rotated on the way in. A store failure does not keep the
// cookies from being cleared.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	_, refresh := tokensFromRequest(r)
	tokens := []string{refresh}
	if pair, ok := RotatedFromContext(r.Context()); ok {
		tokens = append(tokens, pair.RefreshToken)
	}

	for _, t := range tokens {
		if t == "" {
			continue
		}
		if err := h.auth.RevokeRefresh(r.Context(), t); err != nil {
			h.log.Warn(r.Context(), "refresh token revocation failed", "error", err)
		}
	}

	clearAuthCookies(w, h.secureCookies)
	writeMessage(w, http.StatusOK, "Logged out successfully")
}
