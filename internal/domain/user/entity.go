package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Role values. The users.role column is the single canonical source of
// authority; token claims only cache it until the next rotation.
const (
	RoleMember = "MEMBER"
	RoleNGO    = "NGO"
	RoleAdmin  = "ADMIN"
)

// User represents the users table
type User struct {
	ID           uuid.UUID
	Email        string
	DisplayName  string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session represents the user_sessions table. Refresh tokens are stored
// hashed; a revoked session rejects both refresh and access validation.
type Session struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	RefreshTokenHash string
	ExpiresAt        time.Time
	RevokedAt        sql.NullTime
	CreatedAt        time.Time
}

func (s Session) Revoked() bool {
	return s.RevokedAt.Valid
}

func (User) TableName() string {
	return "users"
}

func (Session) TableName() string {
	return "user_sessions"
}
