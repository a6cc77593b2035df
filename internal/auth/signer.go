package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/config"
)

var (
	// ErrInvalidToken indicates a token is malformed, forged or signed with the wrong key.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired indicates a well-formed token whose lifetime has elapsed.
	ErrTokenExpired = errors.New("token expired")
)

// Identity is the user information embedded into access tokens.
type Identity struct {
	UserID   string
	Email    string
	Username string
	Fullname string
}

// AccessClaims are carried by access tokens.
type AccessClaims struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Fullname string `json:"fullname"`
	jwt.RegisteredClaims
}

// Signer mints and verifies HS256 access and refresh tokens. The two token
// types use different secrets so one can never be replayed as the other.
type Signer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration

	now func() time.Time
}

// NewSigner constructs a Signer from token configuration.
func NewSigner(cfg config.TokenConfig) *Signer {
	return &Signer{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           time.Now,
	}
}

// SignAccess returns an access token for the identity and its expiry.
func (s *Signer) SignAccess(id Identity) (string, time.Time, error) {
	claims, expires, err := s.registered(id.UserID, s.accessTTL)
	if err != nil {
		return "", time.Time{}, err
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		Email:            id.Email,
		Username:         id.Username,
		Fullname:         id.Fullname,
		RegisteredClaims: claims,
	}).SignedString(s.accessSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return token, expires, nil
}

// SignRefresh returns a refresh token for the user and its expiry.
func (s *Signer) SignRefresh(userID string) (string, time.Time, error) {
	claims, expires, err := s.registered(userID, s.refreshTTL)
	if err != nil {
		return "", time.Time{}, err
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.refreshSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return token, expires, nil
}

// ParseAccess verifies an access token and returns its claims.
func (s *Signer) ParseAccess(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.parse(token, claims, s.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// ParseRefresh verifies a refresh token and returns the user id it was issued to.
func (s *Signer) ParseRefresh(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	if err := s.parse(token, claims, s.refreshSecret); err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (s *Signer) parse(token string, claims jwt.Claims, secret []byte) error {
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return ErrInvalidToken
	}
	return nil
}

func (s *Signer) registered(subject string, ttl time.Duration) (jwt.RegisteredClaims, time.Time, error) {
	if subject == "" {
		return jwt.RegisteredClaims{}, time.Time{}, errors.New("token subject must be provided")
	}
	jti, err := tokenID()
	if err != nil {
		return jwt.RegisteredClaims{}, time.Time{}, err
	}
	now := s.now().UTC()
	expires := now.Add(ttl)
	return jwt.RegisteredClaims{
		ID:        jti,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}, expires, nil
}

func tokenID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate token id: %w", err)
	}
	return id.String(), nil
}
