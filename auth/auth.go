// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidReviewKey = errors.New("invalid review key")

// NewRunID returns a random UUID for a simulation run.
func NewRunID() string {
	return uuid.NewString()
}

// IsRunID reports whether s parses as a run ID.
func IsRunID(s string) bool {
	return uuid.Validate(s) == nil
}

// GenerateReviewKey creates an HMAC-based review key for a run
// This is deterministic and verifiable
func GenerateReviewKey(runID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(runID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateReviewKey checks if the provided review key is valid for the run
func ValidateReviewKey(runID, reviewKey, salt string) error {
	expected := GenerateReviewKey(runID, salt)
	if !hmac.Equal([]byte(reviewKey), []byte(expected)) {
		return ErrInvalidReviewKey
	}
	return nil
}
