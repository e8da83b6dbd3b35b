// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides run identifiers and review keys.

# Run IDs

Runs are identified by random UUIDs (google/uuid):

	runID := auth.NewRunID()

# Review Keys

Review keys use HMAC-SHA256 to create deterministic, verifiable keys:

	reviewKey := auth.GenerateReviewKey(runID, salt)
	err := auth.ValidateReviewKey(runID, reviewKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same run ID and salt always produce the same key. This allows validation
without storing the key in the database. Handlers expect it in the
X-Review-Key header.
*/
package auth
