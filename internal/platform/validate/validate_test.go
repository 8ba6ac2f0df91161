// Copyright (c) 2026 VidTube. All rights reserved.
// Author: arjun.mehra.dev@gmail.com

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjunmehra/vidtube/internal/platform/apperr"
	"github.com/arjunmehra/vidtube/internal/platform/validate"
)

/*
TestValidator_AllPass verifies that a fully valid chain yields no error.
*/
func TestValidator_AllPass(t *testing.T) {
	v := &validate.Validator{}
	v.Required("username", "alice").
		Username("username", "alice").
		Required("email", "a@x.com").
		Email("email", "a@x.com").
		MinLen("password", "supersecret", 8)

	assert.NoError(t, v.Err())
	assert.False(t, v.HasErrors())
}

/*
TestValidator_CollectsEveryMissingField verifies that a request with several
blank fields reports all of them in one VALIDATION_ERROR, not just the first.
*/
func TestValidator_CollectsEveryMissingField(t *testing.T) {
	v := &validate.Validator{}
	v.Required("full_name", "").
		Required("username", "  ").
		Required("email", "").
		Required("password", "")

	err := v.Err()
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	require.Len(t, appError.Details, 4)

	fields := make([]string, 0, len(appError.Details))
	for _, detail := range appError.Details {
		fields = append(fields, detail.Field)
	}
	assert.ElementsMatch(t, []string{"full_name", "username", "email", "password"}, fields)
}

/*
TestValidator_Email verifies RFC 5322 address checking.
*/
func TestValidator_Email(t *testing.T) {
	v := &validate.Validator{}
	v.Email("email", "not-an-email")
	assert.Error(t, v.Err())

	v = &validate.Validator{}
	v.Email("email", "user@example.com")
	assert.NoError(t, v.Err())
}

/*
TestValidator_Username verifies the handle format rules.
*/
func TestValidator_Username(t *testing.T) {
	valid := []string{"alice", "alice.b", "a_1", "99problems"}
	for _, handle := range valid {
		v := &validate.Validator{}
		assert.NoError(t, v.Username("username", handle).Err(), handle)
	}

	invalid := []string{"Alice", "_leading", "with space", "émile", ""}
	for _, handle := range invalid {
		v := &validate.Validator{}
		assert.Error(t, v.Username("username", handle).Err(), handle)
	}
}

/*
TestValidator_Custom verifies conditional failures.
*/
func TestValidator_Custom(t *testing.T) {
	v := &validate.Validator{}
	v.Custom("avatar", true, "Avatar image is required")

	err := v.Err()
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	require.Len(t, appError.Details, 1)
	assert.Equal(t, "avatar", appError.Details[0].Field)
}
