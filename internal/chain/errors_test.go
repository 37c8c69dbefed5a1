package chain

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifySubmitError_NonceConflict(t *testing.T) {
	cases := []string{
		"nonce too low",
		"replacement transaction underpriced",
		"already known",
		"max fee per gas less than block base fee",
	}

	for _, msg := range cases {
		err := ClassifySubmitError(errors.New(msg))
		if !errors.Is(err, ErrNonceConflict) {
			t.Errorf("Expected %q to classify as nonce conflict, got %v", msg, err)
		}
		if !IsRetryable(err) {
			t.Errorf("Expected %q to be retryable", msg)
		}
	}
}

func TestClassifySubmitError_RateLimited(t *testing.T) {
	err := ClassifySubmitError(errors.New("HTTP 429 Too Many Requests"))
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("Expected rate limit classification, got %v", err)
	}
	if !IsRetryable(err) {
		t.Error("Expected rate limit errors to be retryable")
	}
}

func TestClassifySubmitError_FatalUnchanged(t *testing.T) {
	original := errors.New("insufficient funds for gas * price + value")
	err := ClassifySubmitError(original)
	if err != original {
		t.Errorf("Expected fatal error to pass through unchanged, got %v", err)
	}
	if IsRetryable(err) {
		t.Error("Expected fatal errors to not be retryable")
	}
}

func TestClassifySubmitError_Nil(t *testing.T) {
	if err := ClassifySubmitError(nil); err != nil {
		t.Errorf("Expected nil, got %v", err)
	}
}

func TestIsRetryable_WrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("attempt 2: %w", ClassifySubmitError(errors.New("nonce too low")))
	if !IsRetryable(wrapped) {
		t.Error("Expected wrapped nonce conflict to remain retryable")
	}
}
