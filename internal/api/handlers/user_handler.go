package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m0nesy/f1kz-be/internal/auth"
	"github.com/m0nesy/f1kz-be/internal/services"
	"github.com/rs/zerolog/log"
)

// UserHandler handles requests about the authenticated user.
type UserHandler struct {
	service services.UserServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider) *UserHandler {
	return &UserHandler{service: service}
}

// UpdateMePayload defines the partial-update body for PATCH /user/me.
// Omitted fields are left untouched.
type UpdateMePayload struct {
	Username          *string   `json:"username"`
	Email             *string   `json:"email"`
	Password          *string   `json:"password"`
	FavoriteDriverIDs *[]string `json:"favoriteDriversIds"`
	FavoriteTeamIDs   *[]string `json:"favoriteTeamsIds"`
}

// GetMe retrieves the currently authenticated user from the token.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve user claims from context")
		respondError(w, http.StatusInternalServerError, "Could not retrieve user from token")
		return
	}

	user, err := h.service.GetUserByID(claims.UserID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", claims.UserID).Msg("User from token not found in DB")
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// UpdateMe applies a partial profile update to the authenticated user.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve user claims from context")
		respondError(w, http.StatusInternalServerError, "Could not retrieve user from token")
		return
	}

	var payload UpdateMePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	update := services.UserUpdate{
		Username:          payload.Username,
		Email:             payload.Email,
		Password:          payload.Password,
		FavoriteDriverIDs: payload.FavoriteDriverIDs,
		FavoriteTeamIDs:   payload.FavoriteTeamIDs,
	}

	user, err := h.service.UpdateUser(claims.UserID, update)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Error().Err(err).Int64("user_id", claims.UserID).Msg("Failed to update user")
		respondError(w, http.StatusInternalServerError, "Failed to update user")
		return
	}

	respondJSON(w, http.StatusOK, user)
}
