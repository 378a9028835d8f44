package models

import "errors"

var (
	// ErrUnknownComposer is returned when no style profile exists for a composer id
	ErrUnknownComposer = errors.New("unknown composer")

	// ErrGuidanceUnavailable covers timeouts, transport failures and a disabled provider
	ErrGuidanceUnavailable = errors.New("guidance unavailable")

	// ErrInvalidGuidancePayload marks a guidance response that failed validation
	ErrInvalidGuidancePayload = errors.New("invalid guidance payload")

	// ErrRateLimitExceeded is returned before any generation work starts
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrStructuralBounds marks an assembled piece outside the duration window
	ErrStructuralBounds = errors.New("structural bounds violation")

	// ErrGenerationFailed is terminal for a request
	ErrGenerationFailed = errors.New("generation failed")

	// ErrInvalidRequest wraps request validation problems
	ErrInvalidRequest = errors.New("invalid request")

	// ErrPieceNotFound is returned for unknown or expired piece ids
	ErrPieceNotFound = errors.New("piece not found")
)
