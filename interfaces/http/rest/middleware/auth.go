package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"symptocare-backend/pkg/auth"
	pkgerrors "symptocare-backend/pkg/errors"
)

// Limiter admits or rejects one request for a key
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// AuthConfig holds what Authenticate needs
type AuthConfig struct {
	Verifier    auth.TokenVerifier
	IPLimiter   Limiter
	UserLimiter Limiter
	Errors      *pkgerrors.ErrorHandler
	Logger      *zap.Logger
}

// Authenticate verifies the bearer token, applies per-IP and per-user rate
// limits and stores the caller in the request context
func Authenticate(cfg AuthConfig) func(next http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	errs := cfg.Errors
	if errs == nil {
		errs = pkgerrors.NewErrorHandler(logger, false)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allow(r.Context(), cfg.IPLimiter, clientIP(r), logger) {
				errs.HandleStatus(w, r, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}

			token, problem := bearerToken(r)
			if problem != "" {
				errs.HandleStatus(w, r, http.StatusUnauthorized, problem)
				return
			}

			user, err := cfg.Verifier.Verify(r.Context(), token)
			if err != nil {
				errs.HandleStatus(w, r, http.StatusUnauthorized, unauthorizedMessage(err))
				return
			}

			if !allow(r.Context(), cfg.UserLimiter, user.UserID, logger) {
				errs.HandleStatus(w, r, http.StatusTooManyRequests, "User rate limit exceeded")
				return
			}

			ctx := auth.SetUserInContext(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// allow fails open when the limiter itself errors
func allow(ctx context.Context, limiter Limiter, key string, logger *zap.Logger) bool {
	if limiter == nil {
		return true
	}
	ok, err := limiter.Allow(ctx, key)
	if err != nil {
		logger.Warn("Rate limiter failed", zap.Error(err))
		return true
	}
	return ok
}

// bearerToken returns the token or the reason the header is unusable
func bearerToken(r *http.Request) (string, string) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", "Missing authorization header"
	}
	scheme, token, found := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", "Invalid authorization header format"
	}
	return token, ""
}

func unauthorizedMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token has expired"
	case errors.Is(err, auth.ErrInvalidSignature):
		return "Invalid token signature"
	default:
		return "Invalid token"
	}
}

// clientIP reads the address chi's RealIP middleware left in RemoteAddr
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
