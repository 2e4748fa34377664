package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"symptocare-backend/application/services"
	"symptocare-backend/infrastructure/config"
	"symptocare-backend/infrastructure/di"
	"symptocare-backend/interfaces/http/rest"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

type apiClient struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	cfg := &config.Config{
		Environment:            "test",
		SupabaseJWTSecret:      testSecret,
		SummaryModel:           "gpt-4",
		ChatModel:              "gpt-4o-mini",
		LLMTimeout:             time.Second,
		RateLimitIPPerMinute:   1000,
		RateLimitUserPerMinute: 1000,
		EnableMetrics:          true,
		CORSAllowedOrigins:     []string{"http://localhost:3000"},
	}
	container, err := di.NewContainerWithLogger(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Shutdown(context.Background()) })

	router := rest.NewRouter(rest.Dependencies{
		CommandBus:     container.CommandBus,
		QueryBus:       container.QueryBus,
		Summaries:      container.Summaries,
		Chat:           container.Chat,
		Verifier:       container.Verifier,
		IPLimiter:      container.IPLimiter,
		UserLimiter:    container.UserLimiter,
		Metrics:        container.Metrics,
		EnableMetrics:  cfg.EnableMetrics,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Ready:          container.Ready,
		Logger:         zap.NewNop(),
	})

	return &apiClient{t: t, handler: router.Setup(), token: signToken(t, "user-1")}
}

func signToken(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"aud": "authenticated",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (c *apiClient) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestRouter_PublicEndpoints(t *testing.T) {
	api := newAPI(t)
	api.token = ""

	t.Run("Should report healthy and ready", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/health", nil).Code)
		assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/ready", nil).Code)
	})

	t.Run("Should list crisis resources without a token", func(t *testing.T) {
		rec := api.do(http.MethodGet, "/api/v1/crisis-resources", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var resources []map[string]string
		decodeBody(t, rec, &resources)
		require.Len(t, resources, 3)
		assert.Equal(t, "988 Suicide & Crisis Lifeline", resources[0]["name"])
	})

	t.Run("Should serve the API document without a token", func(t *testing.T) {
		// Act
		rec := api.do(http.MethodGet, "/api/v1/swagger/doc.json", nil)

		// Assert
		require.Equal(t, http.StatusOK, rec.Code)
		var doc struct {
			Swagger  string                            `json:"swagger"`
			BasePath string                            `json:"basePath"`
			Info     map[string]interface{}            `json:"info"`
			Paths    map[string]map[string]interface{} `json:"paths"`
		}
		decodeBody(t, rec, &doc)
		assert.Equal(t, "2.0", doc.Swagger)
		assert.Equal(t, "/api/v1", doc.BasePath)
		assert.Equal(t, "SymptoCare API", doc.Info["title"])
		assert.Contains(t, doc.Paths, "/moods")
		assert.Contains(t, doc.Paths["/episodes/{episodeID}"], "delete")
		assert.Contains(t, doc.Paths["/analytics/episodes/inferred"], "get")
	})

	t.Run("Should reject protected routes without a token", func(t *testing.T) {
		rec := api.do(http.MethodGet, "/api/v1/moods", nil)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Should expose metrics when enabled", func(t *testing.T) {
		rec := api.do(http.MethodGet, "/metrics", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Should answer unknown routes with a JSON 404", func(t *testing.T) {
		rec := api.do(http.MethodGet, "/api/v1/nope", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	})
}

func TestRouter_Moods(t *testing.T) {
	api := newAPI(t)

	t.Run("Should record a mood and derive its emoji", func(t *testing.T) {
		// Arrange
		body := map[string]interface{}{
			"mood":         2,
			"reflection":   "I feel hopeless today",
			"sleep_hours":  5.5,
			"energy_level": 2,
			"triggers":     []string{" work ", "work", "sleep"},
		}

		// Act
		rec := api.do(http.MethodPost, "/api/v1/moods", body)

		// Assert
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var entry map[string]interface{}
		decodeBody(t, rec, &entry)
		assert.EqualValues(t, 2, entry["mood"])
		assert.NotEmpty(t, entry["mood_emoji"])
		assert.NotEmpty(t, entry["id"])
	})

	t.Run("Should list the recorded entry", func(t *testing.T) {
		rec := api.do(http.MethodGet, "/api/v1/moods?days=7", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var list struct {
			Items []map[string]interface{} `json:"items"`
			Count int                      `json:"count"`
		}
		decodeBody(t, rec, &list)
		assert.Equal(t, 1, list.Count)
	})

	t.Run("Should reject an out-of-range mood", func(t *testing.T) {
		rec := api.do(http.MethodPost, "/api/v1/moods", map[string]interface{}{"mood": 9})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Should reject unknown fields", func(t *testing.T) {
		rec := api.do(http.MethodPost, "/api/v1/moods", map[string]interface{}{"mood": 4, "colour": "blue"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Should reject a window over a year", func(t *testing.T) {
		rec := api.do(http.MethodGet, "/api/v1/moods?days=400", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRouter_Analytics(t *testing.T) {
	api := newAPI(t)
	rec := api.do(http.MethodPost, "/api/v1/moods", map[string]interface{}{"mood": 2, "reflection": "everything feels hopeless"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	t.Run("Should flag concerning reflections", func(t *testing.T) {
		rec := api.do(http.MethodGet, "/api/v1/analytics/flags", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Flags []struct {
				Type string `json:"type"`
			} `json:"flags"`
		}
		decodeBody(t, rec, &body)
		types := make([]string, 0, len(body.Flags))
		for _, f := range body.Flags {
			types = append(types, f.Type)
		}
		assert.Contains(t, types, "concerning_text")
	})

	t.Run("Should drop dismissed alert types", func(t *testing.T) {
		rec := api.do(http.MethodGet, "/api/v1/analytics/alerts?dismissed=concerning_text", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Flags []struct {
				Type string `json:"type"`
			} `json:"flags"`
		}
		decodeBody(t, rec, &body)
		for _, f := range body.Flags {
			assert.NotEqual(t, "concerning_text", f.Type)
		}
	})

	t.Run("Should reject unknown dismissed types", func(t *testing.T) {
		rec := api.do(http.MethodGet, "/api/v1/analytics/alerts?dismissed=bogus", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Should return null stability for a single entry", func(t *testing.T) {
		rec := api.do(http.MethodGet, "/api/v1/analytics/stability?days=30", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "null", string(bytes.TrimSpace(rec.Body.Bytes())))
	})

	t.Run("Should count today in the streak", func(t *testing.T) {
		rec := api.do(http.MethodGet, "/api/v1/analytics/streak", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]int
		decodeBody(t, rec, &body)
		assert.Equal(t, 1, body["streak"])
	})

	t.Run("Should infer a mild depressive episode from one low entry", func(t *testing.T) {
		rec := api.do(http.MethodGet, "/api/v1/analytics/episodes/inferred", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var episodes []map[string]interface{}
		decodeBody(t, rec, &episodes)
		require.Len(t, episodes, 1)
		assert.Equal(t, "depressive", episodes[0]["type"])
		assert.Equal(t, "mild", episodes[0]["severity"])
	})

	t.Run("Should return an empty trigger list rather than null", func(t *testing.T) {
		rec := api.do(http.MethodGet, "/api/v1/analytics/triggers", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "[]", string(bytes.TrimSpace(rec.Body.Bytes())))
	})

	t.Run("Should only accept dashboard ranges from the selector", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/api/v1/analytics/dashboard?days=45", nil).Code)

		rec := api.do(http.MethodGet, "/api/v1/analytics/dashboard?days=30", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]interface{}
		decodeBody(t, rec, &body)
		assert.EqualValues(t, 30, body["days"])
		assert.EqualValues(t, 1, body["entry_count"])
	})
}

func TestRouter_Episodes(t *testing.T) {
	api := newAPI(t)

	t.Run("Should run the episode lifecycle", func(t *testing.T) {
		// Arrange
		body := map[string]interface{}{
			"episode_type": "depressive",
			"severity":     "moderate",
			"start_date":   "2024-03-01",
			"symptoms":     []string{"fatigue", ""},
		}

		// Act
		created := api.do(http.MethodPost, "/api/v1/episodes", body)
		require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
		var episode map[string]interface{}
		decodeBody(t, created, &episode)
		id := episode["id"].(string)

		fetched := api.do(http.MethodGet, "/api/v1/episodes/"+id, nil)
		list := api.do(http.MethodGet, "/api/v1/episodes?page=1&page_size=10", nil)
		deleted := api.do(http.MethodDelete, "/api/v1/episodes/"+id, nil)
		gone := api.do(http.MethodGet, "/api/v1/episodes/"+id, nil)

		// Assert
		assert.Equal(t, "depressive", episode["episode_type"])
		assert.Equal(t, "2024-03-01", episode["start_date"])
		assert.Equal(t, true, episode["ongoing"])
		assert.Equal(t, http.StatusOK, fetched.Code)
		require.Equal(t, http.StatusOK, list.Code)
		var page struct {
			Items      []map[string]interface{} `json:"items"`
			Pagination struct {
				Total int `json:"total"`
			} `json:"pagination"`
		}
		decodeBody(t, list, &page)
		assert.Equal(t, 1, page.Pagination.Total)
		assert.Equal(t, http.StatusNoContent, deleted.Code)
		assert.Equal(t, http.StatusNotFound, gone.Code)
	})

	t.Run("Should reject an unknown episode type", func(t *testing.T) {
		rec := api.do(http.MethodPost, "/api/v1/episodes", map[string]interface{}{
			"episode_type": "sad",
			"severity":     "mild",
			"start_date":   "2024-03-01",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Should reject an end before the start", func(t *testing.T) {
		rec := api.do(http.MethodPost, "/api/v1/episodes", map[string]interface{}{
			"episode_type": "manic",
			"severity":     "mild",
			"start_date":   "2024-03-10",
			"end_date":     "2024-03-01",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestRouter_SafetyPlan(t *testing.T) {
	api := newAPI(t)

	t.Run("Should return an empty plan before one is saved", func(t *testing.T) {
		rec := api.do(http.MethodGet, "/api/v1/safety-plan", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var plan map[string]interface{}
		decodeBody(t, rec, &plan)
		assert.Equal(t, false, plan["saved"])
		assert.Equal(t, []interface{}{}, plan["warning_signs"])
	})

	t.Run("Should save the plan and drop empty strings", func(t *testing.T) {
		// Arrange
		body := map[string]interface{}{
			"warning_signs":    []string{"not sleeping", " "},
			"support_contacts": []map[string]string{{"name": "Sam", "phone": "555-0100", "relationship": "friend"}},
		}

		// Act
		saved := api.do(http.MethodPut, "/api/v1/safety-plan", body)
		fetched := api.do(http.MethodGet, "/api/v1/safety-plan", nil)

		// Assert
		require.Equal(t, http.StatusOK, saved.Code, saved.Body.String())
		require.Equal(t, http.StatusOK, fetched.Code)
		var plan struct {
			Saved           bool     `json:"saved"`
			WarningSigns    []string `json:"warning_signs"`
			SupportContacts []struct {
				Name string `json:"name"`
			} `json:"support_contacts"`
		}
		decodeBody(t, fetched, &plan)
		assert.True(t, plan.Saved)
		assert.Equal(t, []string{"not sleeping"}, plan.WarningSigns)
		require.Len(t, plan.SupportContacts, 1)
		assert.Equal(t, "Sam", plan.SupportContacts[0].Name)
	})
}

func TestRouter_AI(t *testing.T) {
	api := newAPI(t)

	t.Run("Should explain that there is nothing to summarize", func(t *testing.T) {
		rec := api.do(http.MethodGet, "/api/v1/insights/summary", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]string
		decodeBody(t, rec, &body)
		assert.Equal(t, services.NoWeeklyEntriesMessage, body["summary"])
	})

	t.Run("Should summarize posted entries and ignore extra columns", func(t *testing.T) {
		rec := api.do(http.MethodPost, "/api/v1/weekly-summary", map[string]interface{}{"entries": []interface{}{}})

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]string
		decodeBody(t, rec, &body)
		assert.Equal(t, services.NoEntriesMessage, body["summary"])

		rec = api.do(http.MethodPost, "/api/v1/weekly-summary", map[string]interface{}{
			"entries": []map[string]interface{}{
				{"id": 7, "user_id": "user-1", "mood": 6, "emoji": "🙂", "reflection": "good day", "created_at": "2024-03-01T10:00:00Z"},
			},
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		decodeBody(t, rec, &body)
		assert.NotEmpty(t, body["summary"])
	})

	t.Run("Should answer chat offline without an API key", func(t *testing.T) {
		rec := api.do(http.MethodPost, "/api/v1/chat", map[string]interface{}{
			"question":  "How have I been sleeping?",
			"thread_id": "t-1",
			"context": map[string]interface{}{
				"recent_moods": []map[string]interface{}{{"mood": 4, "mood_emoji": "😐", "sleep_hours": 6}},
			},
		})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var body map[string]string
		decodeBody(t, rec, &body)
		assert.Equal(t, services.OfflineReply, body["reply"])
	})

	t.Run("Should require a question", func(t *testing.T) {
		rec := api.do(http.MethodPost, "/api/v1/chat", map[string]interface{}{"question": ""})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
