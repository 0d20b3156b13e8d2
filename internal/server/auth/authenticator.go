// Package auth implements the session authenticator: HS256 access and
// refresh tokens signed with distinct secrets, and the decision procedure
// that gates every protected request, rotating both tokens when the access
// token is no longer valid but the refresh token is.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
)

type state int

const (
	stateNoTokens state = iota
	stateAccessValid
	stateAccessInvalidNoRefresh
	stateAccessInvalidRefreshValid
	stateAccessInvalidRefreshInvalid
)

// Result is a successful authentication. Rotated is non-nil only when the
// refresh path was taken; the caller must deliver both new tokens.
type Result struct {
	UserID  string
	Rotated *TokenPair
}

type Authenticator struct {
	signer      *Signer
	revocations RevocationStore
	metrics     *Metrics
	log         logging.Logger
}

type Option func(*Authenticator)

// WithRevocationStore makes rotation revoke the presented refresh token and
// rejects tokens that were revoked before.
func WithRevocationStore(store RevocationStore) Option {
	return func(a *Authenticator) { a.revocations = store }
}

func WithMetrics(m *Metrics) Option {
	return func(a *Authenticator) { a.metrics = m }
}

func WithLogger(l logging.Logger) Option {
	return func(a *Authenticator) { a.log = l }
}

func NewAuthenticator(signer *Signer, opts ...Option) *Authenticator {
	a := &Authenticator{signer: signer, log: logging.Nop{}}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Issue mints a new token pair, used at login and signup.
func (a *Authenticator) Issue(userID string) (TokenPair, error) {
	return a.signer.Issue(userID)
}

// Authenticate decides whether the given tokens identify a user. Either
// token may be empty. A failure is always an *AuthError.
func (a *Authenticator) Authenticate(ctx context.Context, accessToken, refreshToken string) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{}
			err = a.fail(ctx, VerificationCrash, fmt.Errorf("panic: %v", r))
		}
	}()

	st, claims, cause := a.classify(ctx, accessToken, refreshToken)
	if cause != nil && !errors.Is(cause, common.ErrInvalidToken) &&
		!errors.Is(cause, common.ErrTokenExpired) && !errors.Is(cause, common.ErrTokenRevoked) {
		return Result{}, a.fail(ctx, VerificationCrash, cause)
	}

	switch st {
	case stateNoTokens:
		return Result{}, a.fail(ctx, NoCredentials, nil)
	case stateAccessValid:
		return Result{UserID: claims.UserID}, nil
	case stateAccessInvalidNoRefresh:
		return Result{}, a.fail(ctx, AccessTokenExpiredNoRefresh, cause)
	case stateAccessInvalidRefreshValid:
		pair, err := a.rotate(ctx, claims)
		if errors.Is(err, common.ErrTokenRevoked) {
			return Result{}, a.fail(ctx, InvalidRefreshToken, err)
		}
		if err != nil {
			return Result{}, a.fail(ctx, VerificationCrash, err)
		}
		return Result{UserID: claims.UserID, Rotated: &pair}, nil
	case stateAccessInvalidRefreshInvalid:
		return Result{}, a.fail(ctx, InvalidRefreshToken, cause)
	default:
		return Result{}, a.fail(ctx, Unauthorized, cause)
	}
}

// classify verifies what is present and reports which branch applies. The
// returned error is the verification cause; token errors wrap the common
// sentinels, anything else means verification itself broke.
func (a *Authenticator) classify(ctx context.Context, accessToken, refreshToken string) (state, *Claims, error) {
	if accessToken == "" && refreshToken == "" {
		return stateNoTokens, nil, nil
	}

	if accessToken != "" {
		claims, err := a.signer.VerifyAccess(accessToken)
		if err == nil {
			return stateAccessValid, claims, nil
		}
		if refreshToken == "" {
			return stateAccessInvalidNoRefresh, nil, err
		}
	}

	claims, err := a.signer.VerifyRefresh(refreshToken)
	if err != nil {
		return stateAccessInvalidRefreshInvalid, nil, err
	}

	if a.revocations != nil {
		revoked, err := a.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return stateAccessInvalidRefreshInvalid, nil, fmt.Errorf("revocation lookup: %w", err)
		}
		if revoked {
			return stateAccessInvalidRefreshInvalid, nil, common.ErrTokenRevoked
		}
	}

	return stateAccessInvalidRefreshValid, claims, nil
}

// rotate claims the presented refresh token, then mints a full new pair.
// Losing the claim to a concurrent rotation yields common.ErrTokenRevoked.
func (a *Authenticator) rotate(ctx context.Context, old *Claims) (TokenPair, error) {
	if a.revocations != nil {
		claimed, err := a.revocations.Revoke(ctx, old.ID, old.ExpiresAt.Time)
		if err != nil {
			return TokenPair{}, fmt.Errorf("revoke rotated token: %w", err)
		}
		if !claimed {
			return TokenPair{}, common.ErrTokenRevoked
		}
	}

	pair, err := a.signer.Issue(old.UserID)
	if err != nil {
		return TokenPair{}, err
	}

	a.metrics.rotation(ctx)
	a.log.Debug(ctx, "tokens rotated", "user_id", old.UserID)

	return pair, nil
}

// RevokeRefresh retires a refresh token at logout. Invalid or expired tokens
// and a missing store are not errors: there is nothing to revoke.
func (a *Authenticator) RevokeRefresh(ctx context.Context, refreshToken string) error {
	if a.revocations == nil || refreshToken == "" {
		return nil
	}

	claims, err := a.signer.VerifyRefresh(refreshToken)
	if err != nil {
		return nil
	}

	_, err = a.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
	return err
}

func (a *Authenticator) fail(ctx context.Context, kind FailureKind, cause error) error {
	a.metrics.failure(ctx, kind)

	if kind == VerificationCrash {
		a.log.Error(ctx, "token verification failed", "kind", kind.String(), "error", cause)
	} else {
		a.log.Debug(ctx, "authentication rejected", "kind", kind.String(), "error", cause)
	}

	return &AuthError{Kind: kind, Err: cause}
}
