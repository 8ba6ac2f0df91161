// Copyright (c) 2026 VidTube. All rights reserved.
// Author: arjun.mehra.dev@gmail.com

package username_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arjunmehra/vidtube/pkg/username"
)

/*
TestCanonical verifies case folding, trimming, and Unicode normalization.
*/
func TestCanonical(t *testing.T) {
	assert.Equal(t, "alice", username.Canonical("Alice"))
	assert.Equal(t, "alice", username.Canonical("  alice  "))
	assert.Equal(t, "alice", username.Canonical("ALICE"))

	// NFKC folds the ligature into plain letters.
	assert.Equal(t, "fish", username.Canonical("ﬁsh"))

	// Same canonical form means the uniqueness check treats them as one handle.
	assert.Equal(t, username.Canonical("alice"), username.Canonical("Alice"))
}

/*
TestCanonicalEmail verifies email folding.
*/
func TestCanonicalEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", username.CanonicalEmail(" A@X.COM "))
}

/*
TestIsBlank verifies the whitespace-only detection.
*/
func TestIsBlank(t *testing.T) {
	assert.True(t, username.IsBlank(""))
	assert.True(t, username.IsBlank("   \t\n"))
	assert.False(t, username.IsBlank(" a "))
}
