package client

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/m0nesy/f1kz-be/internal/models"
)

// Status is the lifecycle state of the last session operation.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// SessionState is a snapshot of the session manager.
type SessionState struct {
	Status Status
	Token  string
	User   *models.User
	Err    string
}

// SessionManager owns the authenticated identity: it performs the auth
// operations, persists the token through a TokenStore, and clears the
// session when the server answers 401. Operations are serialized by a
// mutex; the last writer wins on the identity slot.
type SessionManager struct {
	api   *Client
	store TokenStore

	mu     sync.Mutex
	status Status
	token  string
	user   *models.User
	errMsg string
}

// NewSessionManager creates a SessionManager over api, restoring nothing
// until FetchCurrentUser is called.
func NewSessionManager(api *Client, store TokenStore) *SessionManager {
	return &SessionManager{api: api, store: store, status: StatusIdle}
}

// State returns a snapshot of the current session.
func (m *SessionManager) State() SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return SessionState{Status: m.status, Token: m.token, User: m.user, Err: m.errMsg}
}

// RegisterInput is the payload for Register.
type RegisterInput struct {
	Username          string   `json:"username"`
	Email             string   `json:"email"`
	Password          string   `json:"password"`
	FavoriteDriverIDs []string `json:"favoriteDriversIds,omitempty"`
	FavoriteTeamIDs   []string `json:"favoriteTeamsIds,omitempty"`
}

// Register creates an account. Success does not authenticate; the caller
// logs in separately.
func (m *SessionManager) Register(ctx context.Context, input RegisterInput) (models.User, error) {
	m.setLoading()

	var user models.User
	err := m.api.do(ctx, http.MethodPost, "/auth/register", "", input, &user)
	if err != nil {
		m.setFailed(err)
		return models.User{}, err
	}

	m.setSucceeded()
	return user, nil
}

// Login authenticates and, on success, persists the token and stores the
// identity.
func (m *SessionManager) Login(ctx context.Context, usernameOrEmail, password string) (models.User, error) {
	m.setLoading()

	payload := map[string]string{"usernameOrEmail": usernameOrEmail, "password": password}
	var resp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	err := m.api.do(ctx, http.MethodPost, "/auth/login", "", payload, &resp)
	if err != nil {
		m.setFailed(err)
		return models.User{}, err
	}
	if resp.Token == "" {
		err := errors.New("invalid server response: missing token")
		m.setFailed(err)
		return models.User{}, err
	}

	if err := m.store.Save(resp.Token); err != nil {
		m.setFailed(err)
		return models.User{}, err
	}

	m.mu.Lock()
	m.status = StatusSucceeded
	m.token = resp.Token
	m.user = &resp.User
	m.errMsg = ""
	m.mu.Unlock()
	return resp.User, nil
}

// ErrNoToken is returned by FetchCurrentUser when no token is persisted.
var ErrNoToken = errors.New("no session token")

// FetchCurrentUser rehydrates the identity from the persisted token. It is
// meant to run once at application start. A 401 answer invalidates the
// session terminally: the persisted token and identity are cleared.
func (m *SessionManager) FetchCurrentUser(ctx context.Context) (models.User, error) {
	m.mu.Lock()
	token := m.token
	m.mu.Unlock()

	if token == "" {
		loaded, err := m.store.Load()
		if err != nil {
			return models.User{}, err
		}
		token = loaded
	}
	if token == "" {
		return models.User{}, ErrNoToken
	}

	m.setLoading()

	var user models.User
	err := m.api.do(ctx, http.MethodGet, "/user/me", token, nil, &user)
	if err != nil {
		m.failAuthenticated(err)
		return models.User{}, err
	}

	m.mu.Lock()
	m.status = StatusSucceeded
	m.token = token
	m.user = &user
	m.errMsg = ""
	m.mu.Unlock()
	return user, nil
}

// ProfileUpdate is the payload for UpdateProfile; nil fields are omitted.
type ProfileUpdate struct {
	Username          *string   `json:"username,omitempty"`
	Email             *string   `json:"email,omitempty"`
	Password          *string   `json:"password,omitempty"`
	FavoriteDriverIDs *[]string `json:"favoriteDriversIds,omitempty"`
	FavoriteTeamIDs   *[]string `json:"favoriteTeamsIds,omitempty"`
}

// UpdateProfile patches the authenticated user. A 401 clears the session
// like FetchCurrentUser does.
func (m *SessionManager) UpdateProfile(ctx context.Context, update ProfileUpdate) (models.User, error) {
	m.mu.Lock()
	token := m.token
	m.mu.Unlock()
	if token == "" {
		return models.User{}, ErrNoToken
	}

	m.setLoading()

	var user models.User
	err := m.api.do(ctx, http.MethodPatch, "/user/me", token, update, &user)
	if err != nil {
		m.failAuthenticated(err)
		return models.User{}, err
	}

	m.mu.Lock()
	m.status = StatusSucceeded
	m.user = &user
	m.errMsg = ""
	m.mu.Unlock()
	return user, nil
}

// Logout clears the persisted token and identity. Tokens are stateless so
// no server call is made.
func (m *SessionManager) Logout() error {
	m.mu.Lock()
	m.status = StatusIdle
	m.token = ""
	m.user = nil
	m.errMsg = ""
	m.mu.Unlock()
	return m.store.Clear()
}

func (m *SessionManager) setLoading() {
	m.mu.Lock()
	m.status = StatusLoading
	m.errMsg = ""
	m.mu.Unlock()
}

func (m *SessionManager) setSucceeded() {
	m.mu.Lock()
	m.status = StatusSucceeded
	m.errMsg = ""
	m.mu.Unlock()
}

func (m *SessionManager) setFailed(err error) {
	m.mu.Lock()
	m.status = StatusFailed
	m.errMsg = err.Error()
	m.mu.Unlock()
}

// failAuthenticated records a failure on an authenticated call. A 401 also
// wipes the persisted token and identity.
func (m *SessionManager) failAuthenticated(err error) {
	var apiErr *APIError
	unauthorized := errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized

	m.mu.Lock()
	m.status = StatusFailed
	m.errMsg = err.Error()
	if unauthorized {
		m.token = ""
		m.user = nil
	}
	m.mu.Unlock()

	if unauthorized {
		m.store.Clear()
	}
}
