package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrMissingToken     = errors.New("missing authentication token")
	ErrInvalidClaims    = errors.New("invalid token claims")
)

// SupabaseAudience is the audience Supabase stamps on user access tokens
const SupabaseAudience = "authenticated"

// TokenVerifier resolves an access token to the user it was issued for
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*UserContext, error)
}

// Claims represents the Supabase access token claims
type Claims struct {
	UserID string `json:"sub"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTValidator verifies Supabase access tokens locally with the project's
// HS256 JWT secret
type JWTValidator struct {
	secretKey []byte
	audience  string
}

// NewJWTValidator creates a new JWT validator
func NewJWTValidator(secret, audience string) (*JWTValidator, error) {
	if secret == "" {
		return nil, errors.New("secret key required for HS256")
	}
	return &JWTValidator{
		secretKey: []byte(secret),
		audience:  audience,
	}, nil
}

// ValidateToken validates a JWT token and returns the claims
func (v *JWTValidator) ValidateToken(tokenString string) (*Claims, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return v.secretKey, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenInvalidAudience):
			return nil, fmt.Errorf("%w: invalid audience", ErrInvalidClaims)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing user ID", ErrInvalidClaims)
	}

	return claims, nil
}

// Verify implements TokenVerifier
func (v *JWTValidator) Verify(_ context.Context, token string) (*UserContext, error) {
	claims, err := v.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return &UserContext{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
}

// SupabaseVerifier asks Supabase Auth who a token belongs to. It is used
// when the deployment has no JWT secret to verify tokens locally.
type SupabaseVerifier struct {
	fetch func(token string) (*types.UserResponse, error)
}

// NewSupabaseVerifier creates a verifier backed by a GoTrue client
func NewSupabaseVerifier(client gotrue.Client) *SupabaseVerifier {
	return &SupabaseVerifier{
		fetch: func(token string) (*types.UserResponse, error) {
			return client.WithToken(token).GetUser()
		},
	}
}

// Verify implements TokenVerifier
func (v *SupabaseVerifier) Verify(ctx context.Context, token string) (*UserContext, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return nil, ErrMissingToken
	}

	resp, err := v.fetch(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if resp == nil || resp.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing user ID", ErrInvalidClaims)
	}

	return &UserContext{UserID: resp.ID.String(), Email: resp.Email, Role: resp.Role}, nil
}

// UserContext represents the authenticated caller
type UserContext struct {
	UserID string
	Email  string
	Role   string
}

type contextKey string

const UserContextKey contextKey = "user"

// GetUserFromContext extracts user from context
func GetUserFromContext(ctx context.Context) (*UserContext, error) {
	user, ok := ctx.Value(UserContextKey).(*UserContext)
	if !ok || user == nil {
		return nil, errors.New("user not found in context")
	}
	return user, nil
}

// SetUserInContext adds user to context
func SetUserInContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}
