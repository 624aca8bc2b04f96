package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfrosal/portfolio-api/errs"
)

func TestCodec_IssueAndVerify(t *testing.T) {
	codec := NewCodec("test-secret", time.Minute)

	userID := uuid.New()
	token, err := codec.Issue(userID, "admin@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID())
	assert.Equal(t, "admin@example.com", claims.Email)
}

func TestCodec_ExpiredToken(t *testing.T) {
	codec := NewCodec("test-secret", -time.Minute) // already expired

	token, err := codec.Issue(uuid.New(), "admin@example.com")
	require.NoError(t, err)

	claims, err := codec.Verify(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, errs.ErrTokenExpired)
	assert.True(t, errs.ShouldClearCookie(err))
}

func TestCodec_WrongSecret(t *testing.T) {
	issuer := NewCodec("secret-one", time.Minute)
	verifier := NewCodec("secret-two", time.Minute)

	token, err := issuer.Issue(uuid.New(), "admin@example.com")
	require.NoError(t, err)

	claims, err := verifier.Verify(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, errs.ErrTokenSignature)
	assert.True(t, errs.ShouldClearCookie(err))
}

func TestCodec_MalformedToken(t *testing.T) {
	codec := NewCodec("test-secret", time.Minute)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"empty", ""},
		{"truncated", "eyJhbGciOiJIUzI1NiJ9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := codec.Verify(tt.token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, errs.ErrTokenInvalid)
			assert.False(t, errs.ShouldClearCookie(err))
		})
	}
}

func TestCodec_NilSubject(t *testing.T) {
	codec := NewCodec("test-secret", time.Minute)

	// A token without a real user id is rejected even though the signature
	// checks out.
	token, err := codec.Issue(uuid.Nil, "admin@example.com")
	require.NoError(t, err)

	claims, err := codec.Verify(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, errs.ErrTokenInvalid)
}

func TestCodec_FallbackSecret(t *testing.T) {
	// An empty secret must not break issuance; it falls back to the
	// development secret.
	codec := NewCodec("", time.Minute)

	token, err := codec.Issue(uuid.New(), "admin@example.com")
	require.NoError(t, err)

	claims, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", claims.Email)
}

func TestVerify_ErrorsAreUnauthorized(t *testing.T) {
	codec := NewCodec("test-secret", -time.Minute)
	token, err := codec.Issue(uuid.New(), "admin@example.com")
	require.NoError(t, err)

	_, err = codec.Verify(token)
	require.Error(t, err)
	assert.True(t, errs.IsUnauthorized(err))

	var apiErr *errs.ApiErr
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 401, apiErr.StatusCode)
	assert.Equal(t, errs.CodeTokenExpired, apiErr.Code)
}
