package supabase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"

	"symptocare-backend/application/ports"
	"symptocare-backend/domain/core/entities"
	pkgerrors "symptocare-backend/pkg/errors"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
	APIKey string
}

// fakePostgREST answers every request to a table with a canned body
type fakePostgREST struct {
	mu        sync.Mutex
	responses map[string]string
	requests  []recordedRequest
}

func (f *fakePostgREST) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Body:   string(body),
		APIKey: r.Header.Get("apikey"),
	})
	resp, ok := f.responses[strings.TrimPrefix(r.URL.Path, restPath+"/")]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusCreated)
		return
	}
	if !ok {
		resp = "[]"
	}
	_, _ = w.Write([]byte(resp))
}

func (f *fakePostgREST) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newTestStore(t *testing.T, responses map[string]string) (*Store, *fakePostgREST) {
	t.Helper()
	fake := &fakePostgREST{responses: responses}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	store, err := NewStore(server.URL, "service-key", DefaultBreakerConfig(), nil, zap.NewNop())
	require.NoError(t, err)
	return store, fake
}

func TestNewStore(t *testing.T) {
	t.Run("Should require a URL and key", func(t *testing.T) {
		_, err := NewStore("", "key", DefaultBreakerConfig(), nil, nil)
		assert.Error(t, err)

		_, err = NewStore("https://example.supabase.co", "", DefaultBreakerConfig(), nil, nil)
		assert.Error(t, err)
	})
}

func TestMoodEntryRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Should decode enhanced rows with optional factors", func(t *testing.T) {
		// Arrange
		store, fake := newTestStore(t, map[string]string{
			TableEnhancedMoodEntries: `[{"id":"7d2c0d0a-7b8e-4d43-9a55-0b9f0f3d8f11","user_id":"u1","mood":6,
				"mood_emoji":"😊","reflection":null,"sleep_hours":7.5,"energy_level":4,"social_interaction":null,
				"medication_taken":true,"triggers":["work"],"created_at":"2024-03-10T09:00:00.123+00:00"}]`,
		})
		repo := NewMoodEntryRepository(store)

		// Act
		entries, err := repo.ListSince(ctx, "u1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

		// Assert
		require.NoError(t, err)
		require.Len(t, entries, 1)
		e := entries[0]
		assert.Equal(t, 6, e.Mood().Int())
		assert.Equal(t, 7.5, *e.SleepHours())
		assert.Nil(t, e.SocialInteraction())
		assert.True(t, *e.MedicationTaken())
		assert.Equal(t, []string{"work"}, e.Triggers())
		assert.True(t, e.Reflection().IsEmpty())
		assert.Equal(t, time.Date(2024, 3, 10, 9, 0, 0, 123000000, time.UTC), e.CreatedAt())

		req := fake.last()
		assert.Equal(t, http.MethodGet, req.Method)
		assert.Equal(t, restPath+"/"+TableEnhancedMoodEntries, req.Path)
		assert.Contains(t, req.Query, "user_id=eq.u1")
		assert.Equal(t, "service-key", req.APIKey)
	})

	t.Run("Should accept integer ids and naive timestamps from the legacy table", func(t *testing.T) {
		store, _ := newTestStore(t, map[string]string{
			TableMoodEntries: `[{"id":42,"user_id":"u1","mood":3,"emoji":"😢","reflection":"rough day","created_at":"2024-03-09 21:15:00"}]`,
		})
		repo := NewMoodEntryRepository(store)

		entries, err := repo.RecentLegacy(ctx, "u1", 5)

		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "42", entries[0].ID().String())
		assert.Equal(t, entities.SourceLegacy, entries[0].Source())
		assert.Equal(t, "rough day", entries[0].Reflection().String())
		assert.Equal(t, time.Date(2024, 3, 9, 21, 15, 0, 0, time.UTC), entries[0].CreatedAt())
	})

	t.Run("Should insert the entry with the mood_emoji column", func(t *testing.T) {
		store, fake := newTestStore(t, nil)
		repo := NewMoodEntryRepository(store)
		entry, err := entities.NewMoodEntry("u1", entities.MoodEntryInput{Mood: 7, Triggers: []string{"exercise"}}, nil,
			time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		require.NoError(t, repo.Save(ctx, entry))

		req := fake.last()
		assert.Equal(t, http.MethodPost, req.Method)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(req.Body), &body))
		assert.Equal(t, "u1", body["user_id"])
		assert.Equal(t, float64(7), body["mood"])
		assert.Equal(t, entry.Emoji(), body["mood_emoji"])
		assert.Nil(t, body["reflection"])
	})
}

func TestEpisodeRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Should map the type column and a date-only start", func(t *testing.T) {
		store, _ := newTestStore(t, map[string]string{
			TableEpisodes: `[{"id":"0b5f9a55-3c43-4b8e-8d8a-7d1f0d2a6c01","user_id":"u1","type":"depressive","severity":"moderate",
				"start_date":"2024-02-01","end_date":null,"symptoms":["fatigue"],"triggers":[],"notes":null,
				"hospitalization":false,"medication_changes":null,
				"created_at":"2024-02-02T10:00:00Z","updated_at":"2024-02-02T10:00:00Z"}]`,
		})

		episodes, err := NewEpisodeRepository(store).ListByUser(ctx, "u1")

		require.NoError(t, err)
		require.Len(t, episodes, 1)
		d := episodes[0].Details()
		assert.Equal(t, "depressive", string(d.Type))
		assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), d.StartDate)
		assert.Nil(t, d.EndDate)
		assert.Equal(t, []string{"fatigue"}, d.Symptoms)
	})

	t.Run("Should report a missing episode as not found", func(t *testing.T) {
		store, fake := newTestStore(t, nil)

		_, err := NewEpisodeRepository(store).GetByID(ctx, "u1", "missing")

		assert.ErrorIs(t, err, pkgerrors.ErrEpisodeNotFound)
		assert.Contains(t, fake.last().Query, "user_id=eq.u1")
	})
}

func TestSafetyPlanRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Should return nil when the user has no plan", func(t *testing.T) {
		store, _ := newTestStore(t, nil)

		plan, err := NewSafetyPlanRepository(store).GetByUser(ctx, "u1")

		require.NoError(t, err)
		assert.Nil(t, plan)
	})

	t.Run("Should decode contacts from JSON columns", func(t *testing.T) {
		store, _ := newTestStore(t, map[string]string{
			TableSafetyPlans: `[{"id":"5a0f6c52-8a8e-4b53-9e3f-3f7a1c2b9d10","user_id":"u1","warning_signs":["isolating"],
				"coping_strategies":[],"support_contacts":[{"name":"Sam","phone":"555","relationship":"sibling"}],
				"safe_environment_steps":[],"reasons_to_live":["my dog"],"professional_contacts":[],
				"created_at":"2024-01-01T00:00:00Z","updated_at":"2024-01-05T00:00:00Z"}]`,
		})

		plan, err := NewSafetyPlanRepository(store).GetByUser(ctx, "u1")

		require.NoError(t, err)
		require.NotNil(t, plan)
		assert.Equal(t, "Sam", plan.Content().SupportContacts[0].Name)
		assert.Equal(t, []string{"my dog"}, plan.Content().ReasonsToLive)
	})
}

func TestChatRepository(t *testing.T) {
	t.Run("Should write both turns in one insert with the default thread", func(t *testing.T) {
		store, fake := newTestStore(t, nil)
		at := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

		err := NewChatRepository(store).AppendMessages(context.Background(),
			ports.ChatMessage{UserID: "u1", Role: ports.ChatRoleUser, Content: "hi", CreatedAt: at},
			ports.ChatMessage{UserID: "u1", Role: ports.ChatRoleAssistant, Content: "hello", CreatedAt: at},
		)

		require.NoError(t, err)
		var rows []map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(fake.last().Body), &rows))
		require.Len(t, rows, 2)
		assert.Equal(t, ports.DefaultThreadID, rows[0]["thread_id"])
		assert.Equal(t, "assistant", rows[1]["role"])
	})
}

func TestStoreCircuitBreaker(t *testing.T) {
	t.Run("Should fail fast once the backend keeps failing", func(t *testing.T) {
		// Arrange
		server := httptest.NewServer(http.NotFoundHandler())
		serverURL := server.URL
		server.Close()

		store, err := NewStore(serverURL, "key", BreakerConfig{
			Name:             "test",
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          time.Minute,
			FailureThreshold: 0.5,
			MinRequests:      2,
		}, nil, zap.NewNop())
		require.NoError(t, err)
		repo := NewMoodEntryRepository(store)

		// Act
		_, first := repo.Recent(context.Background(), "u1", 1)
		_, second := repo.Recent(context.Background(), "u1", 1)
		_, third := repo.Recent(context.Background(), "u1", 1)

		// Assert
		assert.Equal(t, http.StatusInternalServerError, pkgerrors.HTTPStatusOf(first))
		assert.Equal(t, http.StatusInternalServerError, pkgerrors.HTTPStatusOf(second))
		assert.True(t, pkgerrors.IsUnavailable(third))
	})

	t.Run("Should not call out on a cancelled context", func(t *testing.T) {
		store, fake := newTestStore(t, nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewMoodEntryRepository(store).Recent(ctx, "u1", 1)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, fake.requests)
	})
}

func TestStoreTracing(t *testing.T) {
	record := func(store *Store) *tracetest.SpanRecorder {
		recorder := tracetest.NewSpanRecorder()
		store.tracer = sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)).Tracer("test")
		return recorder
	}

	t.Run("Should record one client span per call", func(t *testing.T) {
		// Arrange
		store, _ := newTestStore(t, nil)
		recorder := record(store)

		// Act
		_, err := NewMoodEntryRepository(store).Recent(context.Background(), "u1", 1)

		// Assert
		require.NoError(t, err)
		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Contains(t, spans[0].Name(), "supabase.")
		assert.Equal(t, codes.Unset, spans[0].Status().Code)
		var table string
		for _, kv := range spans[0].Attributes() {
			if kv.Key == "db.sql.table" {
				table = kv.Value.AsString()
			}
		}
		assert.Equal(t, TableEnhancedMoodEntries, table)
	})

	t.Run("Should mark failed calls as errors", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		serverURL := server.URL
		server.Close()
		store, err := NewStore(serverURL, "key", DefaultBreakerConfig(), nil, zap.NewNop())
		require.NoError(t, err)
		recorder := record(store)

		_, err = NewMoodEntryRepository(store).Recent(context.Background(), "u1", 1)

		require.Error(t, err)
		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code)
		assert.NotEmpty(t, spans[0].Events())
	})
}
