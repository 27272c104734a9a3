package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/m0nesy/f1kz-be/internal/auth"
	"github.com/m0nesy/f1kz-be/internal/services"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	service   services.UserServiceProvider
	jwtSecret []byte
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service services.UserServiceProvider, jwtSecret []byte) *AuthHandler {
	return &AuthHandler{service: service, jwtSecret: jwtSecret}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Username          string   `json:"username"`
	Email             string   `json:"email"`
	Password          string   `json:"password"`
	FavoriteDriverIDs []string `json:"favoriteDriversIds"`
	FavoriteTeamIDs   []string `json:"favoriteTeamsIds"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
}

// Register handles new user registration. A successful registration does not
// log the user in; the client performs a separate login.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := services.ValidateRegistration(payload.Username, payload.Email, payload.Password); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.CreateUser(payload.Username, payload.Email, payload.Password, payload.FavoriteDriverIDs, payload.FavoriteTeamIDs)
	if err != nil {
		log.Error().Err(err).Str("username", payload.Username).Msg("Failed to register user")
		respondError(w, http.StatusConflict, "Failed to register user")
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

// Login handles user authentication and session token issuance. Unknown
// users and wrong passwords get the same answer.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.AuthenticateUser(payload.UsernameOrEmail, payload.Password)
	if err != nil {
		log.Warn().Str("login", payload.UsernameOrEmail).Msg("Failed authentication attempt")
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := auth.GenerateJWT(user, h.jwtSecret)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to generate JWT")
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}
