package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"

	"symptocare-backend/pkg/auth"
)

type stubVerifier struct {
	users map[string]string
	err   error
}

func (v stubVerifier) Verify(_ context.Context, token string) (*auth.UserContext, error) {
	if v.err != nil {
		return nil, v.err
	}
	userID, ok := v.users[token]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return &auth.UserContext{UserID: userID}, nil
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	_, _ = w.Write([]byte(user.UserID))
}

func request(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/moods", nil)
	req.RemoteAddr = "203.0.113.7:5555"
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate(t *testing.T) {
	verifier := stubVerifier{users: map[string]string{"good": "user-1"}}

	t.Run("Should put the verified user in the context", func(t *testing.T) {
		// Arrange
		h := Authenticate(AuthConfig{Verifier: verifier, Logger: zap.NewNop()})(http.HandlerFunc(echoUser))

		// Act
		rec := request(h, "Bearer good")

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-1", rec.Body.String())
	})

	t.Run("Should accept a lowercase scheme", func(t *testing.T) {
		h := Authenticate(AuthConfig{Verifier: verifier})(http.HandlerFunc(echoUser))

		rec := request(h, "bearer good")

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Should reject missing and malformed headers", func(t *testing.T) {
		h := Authenticate(AuthConfig{Verifier: verifier})(http.HandlerFunc(echoUser))

		for _, header := range []string{"", "good", "Basic good", "Bearer   "} {
			rec := request(h, header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
		}
	})

	t.Run("Should report expired tokens", func(t *testing.T) {
		h := Authenticate(AuthConfig{Verifier: stubVerifier{err: auth.ErrExpiredToken}})(http.HandlerFunc(echoUser))

		rec := request(h, "Bearer old")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Token has expired")
	})

	t.Run("Should limit requests per user", func(t *testing.T) {
		// Arrange
		h := Authenticate(AuthConfig{
			Verifier:    verifier,
			IPLimiter:   auth.NewIPRateLimiter(100),
			UserLimiter: auth.NewUserRateLimiter(1),
		})(http.HandlerFunc(echoUser))

		// Act
		first := request(h, "Bearer good")
		second := request(h, "Bearer good")

		// Assert
		assert.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, http.StatusTooManyRequests, second.Code)
	})

	t.Run("Should limit requests per IP before verifying", func(t *testing.T) {
		h := Authenticate(AuthConfig{
			Verifier:  verifier,
			IPLimiter: auth.NewIPRateLimiter(1),
		})(http.HandlerFunc(echoUser))

		request(h, "Bearer nope")
		rec := request(h, "Bearer good")

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("Should fail open when the limiter errors", func(t *testing.T) {
		h := Authenticate(AuthConfig{
			Verifier:  verifier,
			IPLimiter: failingLimiter{},
		})(http.HandlerFunc(echoUser))

		rec := request(h, "Bearer good")

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("store down")
}

func TestCircuitBreaker(t *testing.T) {
	t.Run("Should open after repeated server errors and stop calling the handler", func(t *testing.T) {
		// Arrange
		calls := 0
		failing := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls++
			w.WriteHeader(http.StatusInternalServerError)
		})
		cfg := DefaultCircuitBreakerConfig("llm-test")
		cfg.MinRequests = 2
		cfg.FailureThreshold = 0.5
		h := CircuitBreaker(cfg, nil, zap.NewNop())(failing)

		// Act
		codes := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			codes = append(codes, request(h, "").Code)
		}

		// Assert
		assert.Equal(t, []int{500, 500, 503}, codes)
		assert.Equal(t, 2, calls)
	})

	t.Run("Should pass client errors through without tripping", func(t *testing.T) {
		badRequest := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		})
		cfg := DefaultCircuitBreakerConfig("llm-test-4xx")
		cfg.MinRequests = 1
		h := CircuitBreaker(cfg, nil, nil)(badRequest)

		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusBadRequest, request(h, "").Code)
		}
	})
}

type recordedRequest struct {
	method, route string
	status        int
}

type fakeRecorder struct {
	mu   sync.Mutex
	seen []recordedRequest
}

func (f *fakeRecorder) RecordHTTPRequest(method, route string, status int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, recordedRequest{method, route, status})
}

func TestMetrics(t *testing.T) {
	t.Run("Should label requests with the route pattern", func(t *testing.T) {
		// Arrange
		recorder := &fakeRecorder{}
		router := chi.NewRouter()
		router.Use(Metrics(recorder))
		router.Get("/api/v1/episodes/{episodeID}", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})

		// Act
		req := httptest.NewRequest(http.MethodGet, "/api/v1/episodes/abc-123", nil)
		router.ServeHTTP(httptest.NewRecorder(), req)

		// Assert
		require.Len(t, recorder.seen, 1)
		assert.Equal(t, recordedRequest{http.MethodGet, "/api/v1/episodes/{episodeID}", http.StatusTeapot}, recorder.seen[0])
	})
}

func TestTracing(t *testing.T) {
	previous := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(previous) })

	spansFor := func(t *testing.T, status int, header http.Header) []sdktrace.ReadOnlySpan {
		t.Helper()
		recorder := tracetest.NewSpanRecorder()
		tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)).Tracer("test")
		router := chi.NewRouter()
		router.Use(Tracing(tracer))
		router.Get("/api/v1/episodes/{episodeID}", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/episodes/abc-123", nil)
		for k, v := range header {
			req.Header[k] = v
		}
		router.ServeHTTP(httptest.NewRecorder(), req)
		return recorder.Ended()
	}

	t.Run("Should name the span after the route pattern", func(t *testing.T) {
		spans := spansFor(t, http.StatusOK, nil)

		require.Len(t, spans, 1)
		assert.Equal(t, "GET /api/v1/episodes/{episodeID}", spans[0].Name())
		assert.Equal(t, codes.Unset, spans[0].Status().Code)
	})

	t.Run("Should continue the caller's trace", func(t *testing.T) {
		// Arrange
		header := http.Header{}
		header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")

		// Act
		spans := spansFor(t, http.StatusOK, header)

		// Assert
		require.Len(t, spans, 1)
		assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", spans[0].SpanContext().TraceID().String())
		assert.Equal(t, "00f067aa0ba902b7", spans[0].Parent().SpanID().String())
	})

	t.Run("Should mark server errors", func(t *testing.T) {
		spans := spansFor(t, http.StatusBadGateway, nil)

		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code)
	})
}

func TestLogger(t *testing.T) {
	t.Run("Should pass the response through untouched", func(t *testing.T) {
		h := Logger(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte("ok"))
		}))

		rec := request(h, "")

		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, "ok", rec.Body.String())
	})
}
