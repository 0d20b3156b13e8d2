package auth

import "fmt"

// FailureKind classifies why a request was not authenticated. All kinds map
// to 401 at the transport boundary; they stay distinct for logs and metrics.
type FailureKind int

const (
	NoCredentials FailureKind = iota + 1
	AccessTokenExpiredNoRefresh
	InvalidRefreshToken
	Unauthorized
	VerificationCrash
)

func (k FailureKind) String() string {
	switch k {
	case NoCredentials:
		return "no_credentials"
	case AccessTokenExpiredNoRefresh:
		return "access_expired_no_refresh"
	case InvalidRefreshToken:
		return "invalid_refresh_token"
	case Unauthorized:
		return "unauthorized"
	case VerificationCrash:
		return "verification_crash"
	default:
		return fmt.Sprintf("FailureKind(%d)", int(k))
	}
}

// Message is the stable, client-facing reason for the failure.
func (k FailureKind) Message() string {
	switch k {
	case NoCredentials:
		return "Not authorized, no token provided"
	case AccessTokenExpiredNoRefresh:
		return "Access token expired and no refresh token"
	case InvalidRefreshToken:
		return "Invalid or expired refresh token"
	case VerificationCrash:
		return "Not authorized, token verification failed"
	default:
		return "Not authorized"
	}
}

// AuthError is returned by Authenticate. Use errors.As to get the kind.
type AuthError struct {
	Kind FailureKind
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Kind, e.Err)
	}
	return "auth: " + e.Kind.String()
}

func (e *AuthError) Unwrap() error { return e.Err }
