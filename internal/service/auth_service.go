package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace/internal/models"
	"marketplace/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Domain errors for auth flows. Handlers collapse all of them into one
// undifferentiated "not authorized" response; the distinction exists for
// logging and tests only.
var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidToken    = errors.New("invalid token")
	ErrEmailTaken      = errors.New("email already registered")
)

// AuthService handles registration, login and token verification.
type AuthService struct {
	users      repository.Users
	events     repository.Events
	signingKey []byte
	tokenTTL   time.Duration
}

func NewAuthService(users repository.Users, events repository.Events, cfg AuthConfig) *AuthService {
	return &AuthService{
		users:      users,
		events:     events,
		signingKey: []byte(cfg.SigningKey),
		tokenTTL:   cfg.TokenTTL,
	}
}

// Claims defines JWT claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID int `json:"user_id"`
}

// normalizeEmail lowercases and trims; emails are unique case-insensitively.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp hashes the password, creates the user and mints a token for it.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (*models.User, string, error) {
	email = normalizeEmail(email)

	hash, err := hashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("invalid password: %w", err)
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrEmailTaken
	}

	id, err := s.users.Create(ctx, email, hash)
	if err != nil {
		return nil, "", err
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if u == nil {
		return nil, "", ErrUserNotFound
	}

	token, err := s.issueToken(u.ID)
	if err != nil {
		return nil, "", err
	}

	_ = s.events.Append(ctx, models.Event{
		Type:     models.EventRegister,
		Message:  "user registered",
		Metadata: map[string]any{"user_id": u.ID},
	})

	return u, token, nil
}

// SignIn validates credentials and returns the user with a fresh token.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*models.User, string, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, "", err
	}
	if u == nil {
		return nil, "", ErrUserNotFound
	}

	if err := verifyPassword(u.PasswordHash, password); err != nil {
		return nil, "", ErrInvalidPassword
	}

	token, err := s.issueToken(u.ID)
	if err != nil {
		return nil, "", err
	}

	_ = s.events.Append(ctx, models.Event{
		Type:     models.EventLogin,
		Message:  "user signed in",
		Metadata: map[string]any{"user_id": u.ID},
	})

	return u, token, nil
}

// ParseToken verifies the signature and returns the encoded user id.
func (s *AuthService) ParseToken(accessToken string) (int, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return 0, ErrInvalidToken
	}

	return claims.UserID, nil
}

// Authenticate resolves a token to a live user. A token that verifies but
// points at a deleted user is rejected.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	userID, err := s.ParseToken(accessToken)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// ChangePassword verifies the current password and stores a new hash. The
// stored credential is always recomputed from the new plaintext.
func (s *AuthService) ChangePassword(ctx context.Context, userID int, current, next string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrUserNotFound
	}
	if err := verifyPassword(u.PasswordHash, current); err != nil {
		return ErrInvalidPassword
	}
	hash, err := hashPassword(next)
	if err != nil {
		return fmt.Errorf("invalid password: %w", err)
	}
	return s.users.UpdatePasswordHash(ctx, userID, hash)
}

// DeleteAccount removes the user row. Items the user created are left in
// place; the subsystem does not guarantee cascading ownership references.
func (s *AuthService) DeleteAccount(ctx context.Context, userID int) error {
	deleted, err := s.users.Delete(ctx, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrUserNotFound
	}
	return nil
}

// helper: hash password safely
func hashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// helper: verify password against hash
func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// helper: issue a signed JWT for a user; TTL 0 means no expiry claim.
func (s *AuthService) issueToken(userID int) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
		UserID: userID,
	}
	if s.tokenTTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.tokenTTL))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.signingKey)
}
