package common

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Mood int `json:"mood"`
	}

	t.Run("Should decode a single object", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"mood":5}`))
		var b body

		require.NoError(t, DecodeJSON(httptest.NewRecorder(), r, &b))
		assert.Equal(t, 5, b.Mood)
	})

	t.Run("Should reject unknown fields", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"mood":5,"extra":1}`))
		var b body

		assert.Error(t, DecodeJSON(httptest.NewRecorder(), r, &b))
	})

	t.Run("Should reject an empty body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		var b body

		err := DecodeJSON(httptest.NewRecorder(), r, &b)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty")
	})

	t.Run("Should reject trailing documents", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"mood":5}{"mood":6}`))
		var b body

		assert.Error(t, DecodeJSON(httptest.NewRecorder(), r, &b))
	})
}

func TestPagination(t *testing.T) {
	t.Run("Should clamp page size and ignore junk", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/?page=abc&page_size=500", nil)

		p := ExtractPaginationParams(r)

		assert.Equal(t, 1, p.Page)
		assert.Equal(t, 100, p.PageSize)
	})

	t.Run("Should compute bounds past the end", func(t *testing.T) {
		p := PaginationParams{Page: 3, PageSize: 10}

		start, end := p.Bounds(25)
		assert.Equal(t, 20, start)
		assert.Equal(t, 25, end)

		start, end = PaginationParams{Page: 9, PageSize: 10}.Bounds(25)
		assert.Equal(t, 25, start)
		assert.Equal(t, 25, end)
	})

	t.Run("Should build metadata", func(t *testing.T) {
		meta := BuildPaginationMeta(2, 10, 25)
		assert.Equal(t, 3, meta.TotalPages)
		assert.True(t, meta.HasNext)
		assert.True(t, meta.HasPrev)
	})
}

func TestDetach(t *testing.T) {
	// Arrange
	type key struct{}
	parent := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")
	parent = context.WithValue(parent, key{}, "user-1")
	parent, cancel := context.WithTimeout(parent, time.Minute)
	cancel()

	// Act
	detached := Detach(parent)

	// Assert
	assert.Error(t, parent.Err())
	assert.NoError(t, detached.Err())
	assert.Equal(t, "req-1", middleware.GetReqID(detached))
	assert.Equal(t, "user-1", detached.Value(key{}))
}

func TestExtractRequestID(t *testing.T) {
	t.Run("Should prefer the id chi assigned", func(t *testing.T) {
		// Arrange
		req := httptest.NewRequest(http.MethodGet, "/api/v1/moods", nil)
		req.Header.Set("X-Request-ID", "from-header")
		req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "from-chi"))

		// Act & Assert
		assert.Equal(t, "from-chi", ExtractRequestID(req))
	})

	t.Run("Should fall back to the inbound header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/moods", nil)
		req.Header.Set("X-Request-ID", "from-header")

		assert.Equal(t, "from-header", ExtractRequestID(req))
	})

	t.Run("Should be empty without either", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/moods", nil)

		assert.Empty(t, ExtractRequestID(req))
	})
}
