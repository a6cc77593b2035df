package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/vidtube/backend/internal/models"
)

var (
	// ErrSessionNotFound indicates the user has no active session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrRefreshTokenReused indicates a refresh token that is validly signed but
	// is no longer the user's current one.
	ErrRefreshTokenReused = errors.New("refresh token is expired or used")
)

// SessionStore persists the single refresh token each user may hold.
type SessionStore interface {
	Save(ctx context.Context, session Session) error
	Find(ctx context.Context, userID string) (Session, error)
	// Rotate replaces the user's refresh token only while oldToken is still the
	// stored one, returning ErrRefreshTokenReused otherwise.
	Rotate(ctx context.Context, userID, oldToken string, next Session) error
	Delete(ctx context.Context, userID string) error
}

// Session is the stored refresh token together with the identity it was
// issued to, so the access token can be re-minted on rotation.
type Session struct {
	Identity     Identity
	RefreshToken string
	ExpiresAt    time.Time
}

// Manager manages the lifecycle of issued session tokens backed by a persistent store.
type Manager struct {
	signer *Signer
	store  SessionStore
}

// NewManager constructs a Manager that signs tokens with signer and records
// the current refresh token of every user in store.
func NewManager(signer *Signer, store SessionStore) *Manager {
	if signer == nil || store == nil {
		panic("auth: signer and session store must not be nil")
	}
	return &Manager{signer: signer, store: store}
}

// Issue creates a new pair of access and refresh tokens for the identity and
// replaces whatever session the user held before.
func (m *Manager) Issue(ctx context.Context, id Identity) (models.SessionTokens, error) {
	if id.UserID == "" {
		return models.SessionTokens{}, errors.New("user id must be provided")
	}

	tokens, session, err := m.mint(id)
	if err != nil {
		return models.SessionTokens{}, err
	}
	if err := m.store.Save(ctx, session); err != nil {
		return models.SessionTokens{}, err
	}
	return tokens, nil
}

func (m *Manager) mint(id Identity) (models.SessionTokens, Session, error) {
	accessToken, accessExpires, err := m.signer.SignAccess(id)
	if err != nil {
		return models.SessionTokens{}, Session{}, err
	}
	refreshToken, refreshExpires, err := m.signer.SignRefresh(id.UserID)
	if err != nil {
		return models.SessionTokens{}, Session{}, err
	}

	tokens := models.SessionTokens{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpires,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExpires,
	}
	return tokens, Session{Identity: id, RefreshToken: refreshToken, ExpiresAt: refreshExpires}, nil
}

// Refresh exchanges the user's current refresh token for a new pair. Any
// other token, including one that was current before the last rotation, is
// rejected.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error) {
	if refreshToken == "" {
		return models.SessionTokens{}, ErrSessionNotFound
	}

	userID, err := m.signer.ParseRefresh(refreshToken)
	if err != nil {
		return models.SessionTokens{}, err
	}

	session, err := m.store.Find(ctx, userID)
	if err != nil {
		return models.SessionTokens{}, err
	}

	if subtle.ConstantTimeCompare([]byte(session.RefreshToken), []byte(refreshToken)) != 1 {
		return models.SessionTokens{}, ErrRefreshTokenReused
	}

	tokens, next, err := m.mint(session.Identity)
	if err != nil {
		return models.SessionTokens{}, err
	}
	// Only one of several concurrent redemptions of the same token wins the swap.
	if err := m.store.Rotate(ctx, userID, refreshToken, next); err != nil {
		return models.SessionTokens{}, err
	}
	return tokens, nil
}

// Revoke ends the user's session.
func (m *Manager) Revoke(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	if err := m.store.Delete(ctx, userID); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return err
	}
	return nil
}

// Authenticate validates an access token.
func (m *Manager) Authenticate(accessToken string) (*AccessClaims, error) {
	if accessToken == "" {
		return nil, ErrInvalidToken
	}
	return m.signer.ParseAccess(accessToken)
}

// IsUnauthorized reports whether err means the caller presented no usable credentials.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrRefreshTokenReused)
}
