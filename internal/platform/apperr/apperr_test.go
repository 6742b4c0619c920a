// Copyright (c) 2026 Safar. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/safar/internal/platform/apperr"
)

/*
TestAs_WrappedChain verifies extraction through fmt.Errorf wrapping.
*/
func TestAs_WrappedChain(t *testing.T) {
	wrapped := fmt.Errorf("devauth_service_login_failed: %w", apperr.Unauthorized("bad password"))

	ae := apperr.As(wrapped)
	require.NotNil(t, ae)
	assert.Equal(t, "UNAUTHORIZED", ae.Code)
	assert.Equal(t, http.StatusUnauthorized, ae.HTTPStatus)
	assert.True(t, apperr.IsAppError(wrapped))

	assert.Nil(t, apperr.As(errors.New("plain")))
}

/*
TestIsClientError classifies statuses.
*/
func TestIsClientError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"not_found", apperr.NotFound("missing"), true},
		{"rate_limited", apperr.RateLimited("slow down"), true},
		{"internal", apperr.Internal(errors.New("boom")), false},
		{"plain", errors.New("plain"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, apperr.IsClientError(tt.err))
		})
	}
}

/*
TestInternal_HidesCause checks that the cause never becomes the message.
*/
func TestInternal_HidesCause(t *testing.T) {
	cause := errors.New("pq: relation does not exist")
	ae := apperr.Internal(cause)

	assert.NotContains(t, ae.Error(), "relation")
	assert.ErrorIs(t, ae, cause)
}

/*
TestIsNotFound matches only NOT_FOUND through wrapping.
*/
func TestIsNotFound(t *testing.T) {
	assert.True(t, apperr.IsNotFound(fmt.Errorf("lookup: %w", apperr.NotFound("missing"))))
	assert.False(t, apperr.IsNotFound(apperr.Conflict("dup")))
	assert.False(t, apperr.IsNotFound(errors.New("plain")))
}
