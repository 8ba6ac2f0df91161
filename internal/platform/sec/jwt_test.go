// Copyright (c) 2026 VidTube. All rights reserved.
// Author: arjun.mehra.dev@gmail.com

package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjunmehra/vidtube/internal/platform/sec"
)

// newTestService builds a TokenService with a throwaway RSA keypair.
func newTestService(t *testing.T) *sec.TokenService {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	return sec.NewTokenServiceFromKeys(key, &key.PublicKey, "vidtube.test")
}

/*
TestTokenService_RoundTrip verifies that a minted token carries the subject
and kind through verification.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service := newTestService(t)

	token, err := service.Generate("user-123", sec.KindAccess, time.Minute)
	require.NoError(t, err)

	claims, err := service.Verify(token, sec.KindAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID())
	assert.Equal(t, sec.KindAccess, claims.Kind)
}

/*
TestTokenService_KindMismatch verifies that a refresh token is rejected where
an access token is expected, and vice versa.
*/
func TestTokenService_KindMismatch(t *testing.T) {
	service := newTestService(t)

	refresh, err := service.Generate("user-123", sec.KindRefresh, time.Minute)
	require.NoError(t, err)

	_, err = service.Verify(refresh, sec.KindAccess)
	assert.Error(t, err)

	access, err := service.Generate("user-123", sec.KindAccess, time.Minute)
	require.NoError(t, err)

	_, err = service.Verify(access, sec.KindRefresh)
	assert.Error(t, err)
}

/*
TestTokenService_Expired verifies that verification fails closed on expiry.
*/
func TestTokenService_Expired(t *testing.T) {
	service := newTestService(t)

	token, err := service.Generate("user-123", sec.KindAccess, -time.Minute)
	require.NoError(t, err)

	_, err = service.Verify(token, sec.KindAccess)
	assert.Error(t, err)
}

/*
TestTokenService_WrongKey verifies that a token signed by another keypair is rejected.
*/
func TestTokenService_WrongKey(t *testing.T) {
	minter := newTestService(t)
	verifier := newTestService(t)

	token, err := minter.Generate("user-123", sec.KindAccess, time.Minute)
	require.NoError(t, err)

	_, err = verifier.Verify(token, sec.KindAccess)
	assert.Error(t, err)
}

/*
TestPasswordHash_RoundTrip verifies bcrypt hashing and comparison.
*/
func TestPasswordHash_RoundTrip(t *testing.T) {
	hash, err := sec.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, sec.CheckPasswordHash("correct horse battery staple", hash))
	assert.False(t, sec.CheckPasswordHash("wrong password", hash))
}
