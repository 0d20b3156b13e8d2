package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims is the JWT payload for both token classes. Refresh tokens also
// carry a unique ID in the registered "jti" claim.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
	Type   string `json:"typ"`
}

// TokenPair is the result of minting: one access and one refresh token.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	RefreshID        string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
}

// Signer mints and verifies HS256 tokens. Expiry is always evaluated
// against the signer's own clock.
type Signer struct {
	secrets *Secrets
	now     func() time.Time
}

type SignerOption func(*Signer)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) SignerOption {
	return func(s *Signer) { s.now = now }
}

func NewSigner(secrets *Secrets, opts ...SignerOption) *Signer {
	s := &Signer{secrets: secrets, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue signs a fresh access/refresh pair for userID.
func (s *Signer) Issue(userID string) (TokenPair, error) {
	if userID == "" {
		return TokenPair{}, errors.New("auth: empty user id")
	}

	now := s.now()
	accessExp := now.Add(s.secrets.accessTTL)
	refreshExp := now.Add(s.secrets.refreshTTL)
	refreshID := uuid.NewString()

	access, err := sign(s.secrets.access, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExp),
		},
		UserID: userID,
		Type:   TokenTypeAccess,
	})
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := sign(s.secrets.refresh, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        refreshID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(refreshExp),
		},
		UserID: userID,
		Type:   TokenTypeRefresh,
	})
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		RefreshID:        refreshID,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
		AccessTTL:        s.secrets.accessTTL,
		RefreshTTL:       s.secrets.refreshTTL,
	}, nil
}

// VerifyAccess checks an access token under the access secret.
func (s *Signer) VerifyAccess(tokenString string) (*Claims, error) {
	return s.verify(tokenString, s.secrets.access, TokenTypeAccess)
}

// VerifyRefresh checks a refresh token under the refresh secret.
func (s *Signer) VerifyRefresh(tokenString string) (*Claims, error) {
	claims, err := s.verify(tokenString, s.secrets.refresh, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

func sign(secret []byte, claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}

	return tokenString, nil
}

func (s *Signer) verify(tokenString string, secret []byte, typ string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Type != typ || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
