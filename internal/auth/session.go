// Package auth holds the clinic account session of this device: sign up,
// sign in, sign out and the current user. The session token is persisted in
// the local store so a restart keeps the device signed in.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/harentsoaR/dentist-sync/internal/models"
)

var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Roles of a clinic account.
const (
	RoleAdmin     = "admin"
	RoleDoctor    = "doctor"
	RoleSecretary = "secretary"
)

// TokenStore persists the device's session token.
type TokenStore interface {
	SessionToken(ctx context.Context) (string, error)
	SetSessionToken(ctx context.Context, token string) error
}

// Session is the signed-in state of this device.
type Session struct {
	dir    Directory
	issuer *TokenIssuer
	tokens TokenStore
	logger *log.Logger
}

// NewSession returns a Session. If logger is nil, a default logger writing to
// stderr is used.
func NewSession(dir Directory, issuer *TokenIssuer, tokens TokenStore, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.New(os.Stderr, "[auth] ", log.LstdFlags)
	}
	return &Session{dir: dir, issuer: issuer, tokens: tokens, logger: logger}
}

// Issuer returns the token issuer of the session.
func (s *Session) Issuer() *TokenIssuer { return s.issuer }

// Register creates an account and signs this device in with it.
func (s *Session) Register(ctx context.Context, fullName, email, password, role string) (*models.User, string, error) {
	if role == "" {
		role = RoleAdmin
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		FullName:  fullName,
		Email:     normalizeEmail(email),
		Password:  hash,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.dir.Create(ctx, user); err != nil {
		return nil, "", err
	}
	s.logger.Printf("Registered %s (%s)", user.Email, user.ID.Hex())

	token, err := s.start(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// SignIn checks the credentials and stores a fresh session token.
func (s *Session) SignIn(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.dir.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if !CheckPasswordHash(password, user.Password) {
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.start(ctx, user)
	if err != nil {
		return nil, "", err
	}
	s.logger.Printf("Signed in %s", user.Email)
	return user, token, nil
}

func (s *Session) start(ctx context.Context, user *models.User) (string, error) {
	token, err := s.issuer.Generate(user.ID.Hex(), user.Role)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	if err := s.tokens.SetSessionToken(ctx, token); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// SignOut forgets the session token. Local data is kept.
func (s *Session) SignOut(ctx context.Context) error {
	if err := s.tokens.SetSessionToken(ctx, ""); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.logger.Printf("Signed out")
	return nil
}

// Claims returns the claims of the stored token, or ErrNotAuthenticated if
// there is no valid token.
func (s *Session) Claims(ctx context.Context) (*Claims, error) {
	token, err := s.tokens.SessionToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	return s.issuer.Validate(token)
}

// UserID returns the id of the signed-in account.
func (s *Session) UserID(ctx context.Context) (string, error) {
	claims, err := s.Claims(ctx)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// Authenticated reports whether a valid session exists.
func (s *Session) Authenticated(ctx context.Context) bool {
	_, err := s.Claims(ctx)
	return err == nil
}

// GetUser returns the signed-in account.
func (s *Session) GetUser(ctx context.Context) (*models.User, error) {
	id, err := s.UserID(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.dir.FindByID(ctx, id)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrNotAuthenticated
	}
	return user, err
}
