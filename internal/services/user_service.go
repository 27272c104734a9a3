package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/m0nesy/f1kz-be/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for both unknown users and wrong
// passwords so that login failures do not reveal which accounts exist.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUserNotFound is returned when a lookup by ID finds no user.
var ErrUserNotFound = errors.New("user not found")

// UserUpdate describes a partial profile update. Nil fields are left
// untouched.
type UserUpdate struct {
	Username          *string
	Email             *string
	Password          *string
	FavoriteDriverIDs *[]string
	FavoriteTeamIDs   *[]string
}

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByID(id int64) (models.User, error)
	CreateUser(username, email, password string, favoriteDrivers, favoriteTeams []string) (models.User, error)
	UpdateUser(id int64, update UserUpdate) (models.User, error)
	AuthenticateUser(usernameOrEmail, password string) (models.User, error)
}

// UserService provides business logic for user management.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// ValidateRegistration rejects malformed registration fields before any
// database work happens.
func ValidateRegistration(username, email, password string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("username is required")
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("a valid email is required")
	}
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	return nil
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id int64) (models.User, error) {
	row := s.db.QueryRow(
		"SELECT id, username, email, password_hash, favorite_drivers_json, favorite_teams_json, created_at FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

// getUserByUsernameOrEmail retrieves a user by username or email, including
// the password hash.
func (s *UserService) getUserByUsernameOrEmail(usernameOrEmail string) (models.User, error) {
	row := s.db.QueryRow(
		"SELECT id, username, email, password_hash, favorite_drivers_json, favorite_teams_json, created_at FROM users WHERE username = ? OR email = ?",
		usernameOrEmail, usernameOrEmail)
	return scanUser(row)
}

// CreateUser creates a new user, hashing their password.
func (s *UserService) CreateUser(username, email, password string, favoriteDrivers, favoriteTeams []string) (models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	driversJSON, err := marshalIDs(favoriteDrivers)
	if err != nil {
		return models.User{}, err
	}
	teamsJSON, err := marshalIDs(favoriteTeams)
	if err != nil {
		return models.User{}, err
	}

	res, err := s.db.Exec(
		"INSERT INTO users(username, email, password_hash, favorite_drivers_json, favorite_teams_json) VALUES(?, ?, ?, ?, ?)",
		username, email, string(hashedPassword), driversJSON, teamsJSON)
	if err != nil {
		return models.User{}, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, err
	}
	return s.GetUserByID(id)
}

// UpdateUser applies a partial update to a user's profile. A new password is
// re-hashed; favorites lists are replaced wholesale.
func (s *UserService) UpdateUser(id int64, update UserUpdate) (models.User, error) {
	current, err := s.GetUserByID(id)
	if err != nil {
		return models.User{}, err
	}

	username := current.Username
	if update.Username != nil {
		username = *update.Username
	}
	email := current.Email
	if update.Email != nil {
		email = *update.Email
	}
	drivers := current.FavoriteDriverIDs
	if update.FavoriteDriverIDs != nil {
		drivers = *update.FavoriteDriverIDs
	}
	teams := current.FavoriteTeamIDs
	if update.FavoriteTeamIDs != nil {
		teams = *update.FavoriteTeamIDs
	}

	driversJSON, err := marshalIDs(drivers)
	if err != nil {
		return models.User{}, err
	}
	teamsJSON, err := marshalIDs(teams)
	if err != nil {
		return models.User{}, err
	}

	_, err = s.db.Exec(
		"UPDATE users SET username = ?, email = ?, favorite_drivers_json = ?, favorite_teams_json = ? WHERE id = ?",
		username, email, driversJSON, teamsJSON, id)
	if err != nil {
		return models.User{}, err
	}

	if update.Password != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*update.Password), bcrypt.DefaultCost)
		if err != nil {
			return models.User{}, fmt.Errorf("failed to hash new password: %w", err)
		}
		if _, err := s.db.Exec("UPDATE users SET password_hash = ? WHERE id = ?", string(hashedPassword), id); err != nil {
			return models.User{}, err
		}
	}

	return s.GetUserByID(id)
}

// AuthenticateUser verifies a user's credentials. Unknown users and wrong
// passwords produce the same error.
func (s *UserService) AuthenticateUser(usernameOrEmail, password string) (models.User, error) {
	user, err := s.getUserByUsernameOrEmail(usernameOrEmail)
	if err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var user models.User
	var driversJSON, teamsJSON string
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &driversJSON, &teamsJSON, &user.CreatedAt)
	if err != nil {
		return models.User{}, err
	}
	if err := json.Unmarshal([]byte(driversJSON), &user.FavoriteDriverIDs); err != nil {
		return models.User{}, fmt.Errorf("corrupt favorite drivers for user %d: %w", user.ID, err)
	}
	if err := json.Unmarshal([]byte(teamsJSON), &user.FavoriteTeamIDs); err != nil {
		return models.User{}, fmt.Errorf("corrupt favorite teams for user %d: %w", user.ID, err)
	}
	return user, nil
}

func marshalIDs(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
