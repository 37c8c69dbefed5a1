package chain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors classifying chain failures. Nonce conflicts and rate
// limits are retryable after a nonce refresh; anything else is fatal for
// the attempt that produced it.
var (
	ErrNonceConflict         = errors.New("nonce conflict")
	ErrRateLimited           = errors.New("rate limited")
	ErrConfirmationAmbiguous = errors.New("confirmation ambiguous")
)

// RPC nodes report nonce and fee races as free-text errors; there is no
// structured code to switch on, so classification is by substring.
var nonceConflictMarkers = []string{
	"nonce too low",
	"nonce too high",
	"already known",
	"replacement transaction underpriced",
	"transaction underpriced",
	"future transaction tries to replace pending",
	"max fee per gas less than block base fee",
}

var rateLimitMarkers = []string{
	"429",
	"rate limit",
	"too many requests",
	"request limit reached",
}

// ClassifySubmitError wraps a submission rejection with the matching
// sentinel error, or returns it unchanged when no class matches.
func ClassifySubmitError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range nonceConflictMarkers {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %v", ErrNonceConflict, err)
		}
	}
	for _, marker := range rateLimitMarkers {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
	}
	return err
}

// IsRetryable reports whether a failed submission should be retried with a
// refreshed nonce.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrNonceConflict) || errors.Is(err, ErrRateLimited)
}
