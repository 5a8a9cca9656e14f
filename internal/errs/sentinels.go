// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the referenced account/mobile does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredential indicates the supplied old secret does not match the stored hash.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrAlreadyBound indicates a mobile-binding attempt on an account that already has a bound mobile.
	ErrAlreadyBound = errors.New("mobile already bound")

	// ErrMobileTaken indicates a persistence-layer uniqueness violation (duplicate mobile).
	ErrMobileTaken = errors.New("mobile already taken")

	// ErrAuthRequired indicates a missing or invalid authentication credential.
	ErrAuthRequired = errors.New("authentication required")

	// ErrRateLimited indicates too many recovery attempts from one (mobile, ip).
	ErrRateLimited = errors.New("too many attempts, try again later")
)
