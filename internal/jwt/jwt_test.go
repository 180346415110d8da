package jwt

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_IssueAndVerify(t *testing.T) {
	j := New(WithSecretKey("test-secret"), WithExpiration(time.Minute))

	userID := uuid.New()
	ctx := context.Background()

	token, err := j.Issue(ctx, userID)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := j.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, KindAccess, claims.Kind)
	assert.NotEmpty(t, claims.ID)
}

func TestJWT_Issue_Deterministic(t *testing.T) {
	fixed := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	opts := []Option{
		WithSecretKey("secret"),
		WithClock(func() time.Time { return fixed }),
		WithIDGenerator(func() string { return "jti-1" }),
	}
	userID := uuid.New()

	t1, err := New(opts...).Issue(context.Background(), userID)
	require.NoError(t, err)
	t2, err := New(opts...).Issue(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, t1, t2)
}

func TestJWT_Issue_UniquePerCall(t *testing.T) {
	j := New(WithSecretKey("secret"))
	userID := uuid.New()

	t1, err := j.Issue(context.Background(), userID)
	require.NoError(t, err)
	t2, err := j.Issue(context.Background(), userID)
	require.NoError(t, err)

	assert.NotEqual(t, t1, t2)
}

func TestJWT_ExpiredToken(t *testing.T) {
	j := New(WithSecretKey("test-secret"), WithExpiration(-time.Minute)) // already expired

	token, err := j.Issue(context.Background(), uuid.New())
	require.NoError(t, err)

	claims, err := j.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrExpiredCredential)
	assert.Nil(t, claims)
}

func TestJWT_MalformedToken(t *testing.T) {
	j := New(WithSecretKey("secret"))

	for _, token := range []string{"invalid.token.string", "", "abc"} {
		claims, err := j.Verify(context.Background(), token)
		assert.ErrorIs(t, err, ErrMalformedCredential, token)
		assert.Nil(t, claims)
	}
}

func TestJWT_Verify_WrongSecret(t *testing.T) {
	access := New(WithSecretKey("access-secret"))
	refresh := New(WithSecretKey("refresh-secret"), WithKind(KindRefresh), WithExpiration(time.Hour))
	ctx := context.Background()

	token, err := refresh.Issue(ctx, uuid.New())
	require.NoError(t, err)

	_, err = access.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	claims, err := refresh.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, KindRefresh, claims.Kind)
}

func TestJWT_DefaultCookieNames(t *testing.T) {
	assert.Equal(t, AccessCookieName, New().CookieName)
	assert.Equal(t, RefreshCookieName, New(WithKind(KindRefresh)).CookieName)
	assert.Equal(t, "custom", New(WithCookieName("custom")).CookieName)
}

func TestJWT_GetTokenFromRequest(t *testing.T) {
	j := New()
	ctx := context.Background()

	tests := []struct {
		name          string
		cookie        string
		header        string
		expectedToken string
		expectedErr   error
	}{
		{"ValidBearer", "", "Bearer mytoken123", "mytoken123", nil},
		{"LowercaseBearer", "", "bearer mytoken123", "mytoken123", nil},
		{"CookieOnly", "cookietoken", "", "cookietoken", nil},
		{"CookieWinsOverHeader", "cookietoken", "Bearer headertoken", "cookietoken", nil},
		{"NoHeader", "", "", "", ErrTokenNotFound},
		{"InvalidFormat", "", "Token mytoken123", "", ErrInvalidAuthorizationHeader},
		{"TooManyParts", "", "Bearer a b c", "", ErrInvalidAuthorizationHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: AccessCookieName, Value: tt.cookie})
			}

			token, err := j.GetTokenFromRequest(ctx, req)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Empty(t, token)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedToken, token)
			}
		})
	}
}
