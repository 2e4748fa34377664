package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supabase-community/gotrue-go/types"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims() Claims {
	now := time.Now()
	return Claims{
		UserID: "0b6f3c1e-5a57-4d0e-9d3f-2c1b5e8f9a10",
		Email:  "sam@example.com",
		Role:   "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{SupabaseAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
}

func TestJWTValidator(t *testing.T) {
	validator, err := NewJWTValidator(testSecret, SupabaseAudience)
	require.NoError(t, err)

	t.Run("Should accept a Supabase token", func(t *testing.T) {
		// Arrange
		token := signToken(t, testSecret, validClaims())

		// Act
		user, err := validator.Verify(context.Background(), "Bearer "+token)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "0b6f3c1e-5a57-4d0e-9d3f-2c1b5e8f9a10", user.UserID)
		assert.Equal(t, "sam@example.com", user.Email)
	})

	t.Run("Should reject an expired token", func(t *testing.T) {
		claims := validClaims()
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

		_, err := validator.ValidateToken(signToken(t, testSecret, claims))

		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("Should reject a token signed with another secret", func(t *testing.T) {
		_, err := validator.ValidateToken(signToken(t, "another-secret-another-secret-another", validClaims()))

		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("Should reject the wrong audience", func(t *testing.T) {
		claims := validClaims()
		claims.Audience = jwt.ClaimStrings{"anon"}

		_, err := validator.ValidateToken(signToken(t, testSecret, claims))

		assert.ErrorIs(t, err, ErrInvalidClaims)
	})

	t.Run("Should reject a token without a subject", func(t *testing.T) {
		claims := validClaims()
		claims.UserID = ""

		_, err := validator.ValidateToken(signToken(t, testSecret, claims))

		assert.ErrorIs(t, err, ErrInvalidClaims)
	})

	t.Run("Should report a missing token", func(t *testing.T) {
		_, err := validator.ValidateToken("Bearer ")
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("Should require a secret", func(t *testing.T) {
		_, err := NewJWTValidator("", SupabaseAudience)
		assert.Error(t, err)
	})
}

func TestSupabaseVerifier(t *testing.T) {
	userID := uuid.New()

	t.Run("Should resolve the user from Supabase Auth", func(t *testing.T) {
		v := &SupabaseVerifier{fetch: func(token string) (*types.UserResponse, error) {
			assert.Equal(t, "tok", token)
			resp := &types.UserResponse{}
			resp.ID = userID
			resp.Email = "sam@example.com"
			return resp, nil
		}}

		user, err := v.Verify(context.Background(), "Bearer tok")

		require.NoError(t, err)
		assert.Equal(t, userID.String(), user.UserID)
	})

	t.Run("Should map lookup failures to invalid token", func(t *testing.T) {
		v := &SupabaseVerifier{fetch: func(string) (*types.UserResponse, error) {
			return nil, errors.New("401")
		}}

		_, err := v.Verify(context.Background(), "tok")

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Should honour a cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		v := &SupabaseVerifier{fetch: func(string) (*types.UserResponse, error) {
			t.Fatal("fetch must not be called")
			return nil, nil
		}}

		_, err := v.Verify(ctx, "tok")

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestKeyedLimiter(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	limiter := NewKeyedLimiter(2)
	limiter.now = func() time.Time { return clock }

	t.Run("Should block once the burst is spent", func(t *testing.T) {
		ok1, _ := limiter.Allow(ctx, "ip:1")
		ok2, _ := limiter.Allow(ctx, "ip:1")
		ok3, _ := limiter.Allow(ctx, "ip:1")

		assert.True(t, ok1)
		assert.True(t, ok2)
		assert.False(t, ok3)
	})

	t.Run("Should keep keys independent", func(t *testing.T) {
		ok, _ := limiter.Allow(ctx, "ip:2")
		assert.True(t, ok)
	})

	t.Run("Should refill one token per share of the minute", func(t *testing.T) {
		clock = clock.Add(30 * time.Second)

		ok1, _ := limiter.Allow(ctx, "ip:1")
		ok2, _ := limiter.Allow(ctx, "ip:1")

		assert.True(t, ok1)
		assert.False(t, ok2)
	})

	t.Run("Should forget a key on reset", func(t *testing.T) {
		require.NoError(t, limiter.Reset(ctx, "ip:1"))

		ok, _ := limiter.Allow(ctx, "ip:1")
		assert.True(t, ok)
	})

	t.Run("Should drop keys left idle", func(t *testing.T) {
		// Arrange
		require.Equal(t, 2, limiter.Len())
		clock = clock.Add(idleTTL + time.Second)

		// Act
		_, _ = limiter.Allow(ctx, "ip:3")

		// Assert
		assert.Equal(t, 1, limiter.Len())
	})

	t.Run("Should admit everything without a limit", func(t *testing.T) {
		open := NewKeyedLimiter(0)
		for i := 0; i < 100; i++ {
			ok, err := open.Allow(ctx, "ip:1")
			require.NoError(t, err)
			require.True(t, ok)
		}
	})
}
