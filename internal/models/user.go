package models

import "time"

// User represents a registered fan account.
type User struct {
	ID                int64     `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"` // Never expose this to the client
	FavoriteDriverIDs []string  `json:"favoriteDriversIds"`
	FavoriteTeamIDs   []string  `json:"favoriteTeamsIds"`
	CreatedAt         time.Time `json:"createdAt"`
}
