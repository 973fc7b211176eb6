/**
 * @description
 * Authentication operations: signup with bcrypt password hashing, login with
 * HS256 token issuance, and the password-reset token flow. The reset token
 * is stored only as a SHA-256 hash; the raw token leaves the service once,
 * inside the reset event published for the mailer.
 *
 * @dependencies
 * - golang.org/x/crypto/bcrypt: Password hashing.
 * - github.com/golang-jwt/jwt/v5: Signed token issue/verify.
 */

package app

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/fundme/ledger-service/internal/domain"
	"github.com/fundme/ledger-service/internal/store"
	"github.com/fundme/ledger-service/pkg/rabbitmq"
)

var (
	ErrEmailExists        = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrResetTokenInvalid  = errors.New("invalid or expired reset token")
	ErrInvalidToken       = errors.New("invalid token")
)

// Identity is the authenticated caller as the core sees it. The core trusts
// it as given and performs no further credential verification.
type Identity struct {
	UserID  uuid.UUID
	Email   string
	IsAdmin bool
}

// tokenClaims is the JWT payload. Claim names match what existing clients
// of this API already decode.
type tokenClaims struct {
	UserID  string `json:"userId"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// Signup registers a new user and returns it with a fresh session token.
func (s *Service) Signup(ctx context.Context, req domain.SignupRequest) (*domain.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, store.ErrUserNotFound) {
		return nil, "", fmt.Errorf("failed to check for existing user: %w", err)
	}
	if existing != nil {
		return nil, "", ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		PasswordHash: string(hash),
	}
	created, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUser) {
			return nil, "", ErrEmailExists
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.issueToken(created)
	if err != nil {
		return nil, "", err
	}

	log.Printf("level=info component=service msg=\"user signed up\" user_id=%s", created.ID)
	return created, token, nil
}

// Login verifies credentials and returns the user with a session token.
// Lookup and comparison failures collapse into one error so the response
// does not reveal which half was wrong.
func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.User, string, error) {
	user, err := s.repo.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *Service) issueToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		UserID:  user.ID.String(),
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates a session token and extracts the caller identity.
func (s *Service) VerifyToken(tokenString string) (Identity, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}), jwt.WithLeeway(30*time.Second))
	claims := &tokenClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: userID, Email: claims.Email, IsAdmin: claims.IsAdmin}, nil
}

// ForgotPassword generates a reset token, stores its hash with a timestamp,
// and publishes a reset event for the mailer. The raw token is never
// persisted.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	token := hex.EncodeToString(raw)

	if err := s.repo.SetResetToken(ctx, user.ID, hashResetToken(token), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if s.producer != nil {
		event := rabbitmq.PasswordResetEvent{
			UserID:      user.ID,
			Email:       user.Email,
			FirstName:   user.FirstName,
			ResetToken:  token,
			RequestedAt: time.Now().UTC(),
		}
		if err := s.producer.PublishPasswordResetEvent(ctx, event); err != nil {
			log.Printf("level=warn component=service msg=\"reset event publish failed\" user_id=%s err=%v", user.ID, err)
		}
	}

	log.Printf("level=info component=service msg=\"password reset requested\" user_id=%s", user.ID)
	return nil
}

// ResetPassword completes the reset flow. Tokens older than the configured
// TTL are rejected even if the sweeper has not purged them yet.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	user, err := s.repo.FindUserByResetTokenHash(ctx, hashResetToken(token))
	if err != nil {
		if errors.Is(err, store.ErrResetTokenNotFound) {
			return ErrResetTokenInvalid
		}
		return fmt.Errorf("failed to look up reset token: %w", err)
	}

	if user.ResetTokenDate == nil || time.Since(*user.ResetTokenDate) > s.resetTokenTTL {
		return ErrResetTokenInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.repo.UpdateUserPassword(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if err := s.repo.ClearResetToken(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to clear reset token: %w", err)
	}

	log.Printf("level=info component=service msg=\"password reset completed\" user_id=%s", user.ID)
	return nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
