package auth

import (
	"errors"
	"time"
)

// Secrets holds the signing material for both token classes. It is built
// once at startup and never mutated; share it by pointer.
type Secrets struct {
	access     []byte
	refresh    []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewSecrets validates and copies the signing secrets and lifetimes.
// The two secrets must be non-empty and different, so that one class of
// token can never be verified under the other's key.
func NewSecrets(access, refresh string, accessTTL, refreshTTL time.Duration) (*Secrets, error) {
	switch {
	case access == "" || refresh == "":
		return nil, errors.New("auth: empty signing secret")
	case access == refresh:
		return nil, errors.New("auth: access and refresh secrets must differ")
	case accessTTL <= 0 || refreshTTL <= 0:
		return nil, errors.New("auth: token lifetimes must be positive")
	}

	return &Secrets{
		access:     []byte(access),
		refresh:    []byte(refresh),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

func (s *Secrets) AccessTTL() time.Duration  { return s.accessTTL }
func (s *Secrets) RefreshTTL() time.Duration { return s.refreshTTL }
