// Copyright (c) 2026 Safar. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/safar/internal/platform/sec"
)

var digitsOnly = regexp.MustCompile(`^[0-9]+$`)

/*
TestTokenService_RoundTrip signs with an ephemeral key and verifies the claims.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service, err := sec.NewEphemeralTokenService("safar.test")
	require.NoError(t, err)

	token, err := service.GenerateAccessToken("acc-1", "989123456789", string(sec.RoleUser), time.Hour)
	require.NoError(t, err)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", claims.UserID)
	assert.Equal(t, "989123456789", claims.Mobile)
	assert.Equal(t, "USER", claims.Role)
	assert.Equal(t, "safar.test", claims.Issuer)
}

/*
TestTokenService_RejectsForeignKey ensures a token from another key pair fails.
*/
func TestTokenService_RejectsForeignKey(t *testing.T) {
	signer, err := sec.NewEphemeralTokenService("safar.test")
	require.NoError(t, err)
	verifier, err := sec.NewEphemeralTokenService("safar.test")
	require.NoError(t, err)

	token, err := signer.GenerateAccessToken("acc-1", "98912", "USER", time.Hour)
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	assert.Error(t, err)
}

/*
TestPeekClaims reads claims without a key and rejects garbage.
*/
func TestPeekClaims(t *testing.T) {
	service, err := sec.NewEphemeralTokenService("safar.test")
	require.NoError(t, err)

	token, err := service.GenerateAccessToken("acc-9", "98935", string(sec.RoleAdmin), time.Hour)
	require.NoError(t, err)

	claims, err := sec.PeekClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "acc-9", claims.UserID)
	assert.True(t, sec.UserRole(claims.Role).IsAdmin())
	require.NotNil(t, claims.ExpiresAt)

	_, err = sec.PeekClaims("not-a-jwt")
	assert.Error(t, err)
}

/*
TestPasswordHash covers matching, mismatching and empty hashes.
*/
func TestPasswordHash(t *testing.T) {
	hash, err := sec.HashPassword("s3cret!")
	require.NoError(t, err)

	assert.True(t, sec.CheckPasswordHash("s3cret!", hash))
	assert.False(t, sec.CheckPasswordHash("wrong", hash))
	assert.False(t, sec.CheckPasswordHash("", ""))
}

/*
TestGenerateNumericCode checks length and alphabet over many draws.
*/
func TestGenerateNumericCode(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := sec.GenerateNumericCode(6)
		require.NoError(t, err)
		assert.Len(t, code, 6)
		assert.Regexp(t, digitsOnly, code)
	}
}

/*
TestDigestsMatch compares code digests.
*/
func TestDigestsMatch(t *testing.T) {
	stored := sec.HashCode("123456")

	assert.True(t, sec.DigestsMatch(sec.HashCode("123456"), stored))
	assert.False(t, sec.DigestsMatch(sec.HashCode("654321"), stored))
	assert.NotEqual(t, "123456", stored)
}
