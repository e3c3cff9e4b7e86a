package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthentication covers bad credentials and invalid external
	// assertions alike; callers never learn which part was wrong.
	ErrAuthentication = errors.New("authentication failed")

	ErrEmailExists    = errors.New("email already registered")
	ErrMethodConflict = errors.New("account registered with a different method")

	// ErrInvalidRefreshToken is the uniform failure for every refresh-token
	// problem. The sub-reasons below all match it via errors.Is so the
	// boundary can answer 401 without leaking which check failed.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	ErrExternalService = errors.New("external service error")
	ErrRoleResolution  = errors.New("role resolution failed")
)

var (
	ErrRefreshNotFound = fmt.Errorf("%w: not found", ErrInvalidRefreshToken)
	ErrRefreshExpired  = fmt.Errorf("%w: expired", ErrInvalidRefreshToken)
	ErrRefreshRevoked  = fmt.Errorf("%w: revoked", ErrInvalidRefreshToken)
)
