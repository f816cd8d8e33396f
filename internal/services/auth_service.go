package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
	"time"

	"carebridge-chat/internal/config"
	"carebridge-chat/internal/domain/user"
	"carebridge-chat/internal/repository"
	carebridge_errors "carebridge-chat/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	userRepo   repository.UserRepository
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(cfg.JWT.Secret),
		accessTTL:  time.Duration(cfg.JWT.AccessTTLMins) * time.Minute,
		refreshTTL: time.Duration(cfg.JWT.RefreshTTLDays) * 24 * time.Hour,
	}
}

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

type LoginInput struct {
	Email    string
	Password string
}

type RefreshInput struct {
	SessionID    string
	RefreshToken string
}

type AuthResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token,omitempty"`
	ExpiresIn    int64    `json:"expires_in"`
	SessionID    string   `json:"session_id"`
	User         UserInfo `json:"user"`
}

type UserInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	Role        string `json:"role"`
}

// AccessClaims carries the identity in access tokens. Role is a cache of
// users.role stamped at issue time and refreshed on rotation; the row stays
// the only source of authority.
type AccessClaims struct {
	UserID    string `json:"sub"`
	SessionID string `json:"sid"`
	Role      string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResponse, error) {
	if err := validateRegister(in); err != nil {
		return AuthResponse{}, err
	}

	if _, err := s.userRepo.GetByEmail(ctx, in.Email); err == nil {
		return AuthResponse{}, carebridge_errors.ErrAlreadyExists
	} else if err != carebridge_errors.ErrNotFound {
		return AuthResponse{}, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return AuthResponse{}, err
	}

	newUser := &user.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		DisplayName:  in.DisplayName,
		PasswordHash: hash,
		Role:         user.RoleMember,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return AuthResponse{}, err
	}

	return s.issueTokens(ctx, *newUser)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthResponse, error) {
	if in.Email == "" || in.Password == "" {
		return AuthResponse{}, carebridge_errors.ErrInvalidInput
	}

	u, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		if err == carebridge_errors.ErrNotFound {
			return AuthResponse{}, carebridge_errors.ErrNotAuthenticated
		}
		return AuthResponse{}, err
	}
	if !u.IsActive {
		return AuthResponse{}, carebridge_errors.ErrForbidden
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		return AuthResponse{}, carebridge_errors.ErrNotAuthenticated
	}

	return s.issueTokens(ctx, u)
}

// Refresh rotates a session's refresh token and re-stamps the role claim
// from the user row.
func (s *AuthService) Refresh(ctx context.Context, in RefreshInput) (AuthResponse, error) {
	sessionID, err := uuid.Parse(in.SessionID)
	if err != nil {
		return AuthResponse{}, carebridge_errors.ErrInvalidInput
	}

	session, err := s.userRepo.GetSession(ctx, sessionID)
	if err != nil {
		return AuthResponse{}, carebridge_errors.ErrNotAuthenticated
	}
	if session.Revoked() || time.Now().After(session.ExpiresAt) {
		return AuthResponse{}, carebridge_errors.ErrSessionRevoked
	}
	if !tokenMatches(session.RefreshTokenHash, in.RefreshToken) {
		return AuthResponse{}, carebridge_errors.ErrNotAuthenticated
	}

	u, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return AuthResponse{}, carebridge_errors.ErrNotAuthenticated
	}

	refreshToken, err := newRefreshToken()
	if err != nil {
		return AuthResponse{}, err
	}
	session.RefreshTokenHash = hashToken(refreshToken)
	session.ExpiresAt = time.Now().Add(s.refreshTTL)
	if err := s.userRepo.UpdateSession(ctx, session); err != nil {
		return AuthResponse{}, err
	}

	access, err := s.signAccessToken(u, session.ID)
	if err != nil {
		return AuthResponse{}, err
	}

	return AuthResponse{
		AccessToken:  access,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
		SessionID:    session.ID.String(),
		User:         userInfo(u),
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	return s.userRepo.RevokeSession(ctx, sessionID)
}

func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (user.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *AuthService) ParseAccessToken(token string) (AccessClaims, error) {
	if token == "" {
		return AccessClaims{}, carebridge_errors.ErrNotAuthenticated
	}
	var claims AccessClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, carebridge_errors.ErrNotAuthenticated
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return AccessClaims{}, carebridge_errors.ErrNotAuthenticated
	}
	return claims, nil
}

func (s *AuthService) ValidateSession(ctx context.Context, sessionID, userID uuid.UUID) (user.Session, error) {
	session, err := s.userRepo.GetSession(ctx, sessionID)
	if err != nil {
		return user.Session{}, carebridge_errors.ErrNotAuthenticated
	}
	if session.UserID != userID {
		return user.Session{}, carebridge_errors.ErrNotAuthenticated
	}
	if session.Revoked() || time.Now().After(session.ExpiresAt) {
		return user.Session{}, carebridge_errors.ErrSessionRevoked
	}
	return session, nil
}

func (s *AuthService) issueTokens(ctx context.Context, u user.User) (AuthResponse, error) {
	refreshToken, err := newRefreshToken()
	if err != nil {
		return AuthResponse{}, err
	}

	session := &user.Session{
		ID:               uuid.New(),
		UserID:           u.ID,
		RefreshTokenHash: hashToken(refreshToken),
		ExpiresAt:        time.Now().Add(s.refreshTTL),
		CreatedAt:        time.Now(),
	}
	if err := s.userRepo.CreateSession(ctx, session); err != nil {
		return AuthResponse{}, err
	}

	access, err := s.signAccessToken(u, session.ID)
	if err != nil {
		return AuthResponse{}, err
	}

	return AuthResponse{
		AccessToken:  access,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
		SessionID:    session.ID.String(),
		User:         userInfo(u),
	}, nil
}

func (s *AuthService) signAccessToken(u user.User, sessionID uuid.UUID) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID:    u.ID.String(),
		SessionID: sessionID.String(),
		Role:      u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func validateRegister(in RegisterInput) error {
	if !strings.Contains(in.Email, "@") {
		return carebridge_errors.ErrInvalidInput
	}
	if len(in.Password) < 8 {
		return carebridge_errors.ErrInvalidInput
	}
	if strings.TrimSpace(in.DisplayName) == "" {
		return carebridge_errors.ErrInvalidInput
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func newRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func tokenMatches(storedHash, token string) bool {
	computed := hashToken(token)
	return subtle.ConstantTimeCompare([]byte(storedHash), []byte(computed)) == 1
}

func userInfo(u user.User) UserInfo {
	return UserInfo{
		ID:          u.ID.String(),
		DisplayName: u.DisplayName,
		Email:       u.Email,
		Role:        u.Role,
	}
}
