package handlers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"symptocare-backend/application/ports"
	"symptocare-backend/application/queries"
	"symptocare-backend/application/queries/bus"
	"symptocare-backend/domain/analysis"
	"symptocare-backend/domain/config"
	"symptocare-backend/domain/core/entities"
	pkgerrors "symptocare-backend/pkg/errors"
)

// streakWindowDays bounds how far back the streak walks
const streakWindowDays = 90

// AnalyticsHandler answers every analytics query. It only fetches records
// and hands them to the analysis package; nothing is cached or mutated.
type AnalyticsHandler struct {
	moodRepo ports.MoodEntryRepository
	config   ports.AnalysisConfigSource
	clock    ports.Clock
	logger   *zap.Logger
}

// NewAnalyticsHandler creates a new analytics query handler
func NewAnalyticsHandler(
	moodRepo ports.MoodEntryRepository,
	config ports.AnalysisConfigSource,
	clock ports.Clock,
	logger *zap.Logger,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		moodRepo: moodRepo,
		config:   config,
		clock:    clock,
		logger:   logger,
	}
}

// Queries lists the query types this handler serves, for bus registration
func (h *AnalyticsHandler) Queries() []bus.Query {
	return []bus.Query{
		queries.ListMoodEntriesQuery{},
		queries.GetCrisisFlagsQuery{},
		queries.GetWellnessAlertsQuery{},
		queries.GetStabilityQuery{},
		queries.GetCorrelationsQuery{},
		queries.GetInferredEpisodesQuery{},
		queries.GetTopTriggersQuery{},
		queries.GetStreakQuery{},
		queries.GetDashboardQuery{},
	}
}

// Handle implements bus.QueryHandler
func (h *AnalyticsHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	cfg := h.config.Current()
	now := h.clock.Now()

	switch q := query.(type) {
	case queries.ListMoodEntriesQuery:
		return h.moodRepo.ListSince(ctx, q.UserID, now.AddDate(0, 0, -q.Days))

	case queries.GetCrisisFlagsQuery:
		flags, err := h.crisisFlags(ctx, q.UserID, cfg, now)
		if err != nil {
			return nil, err
		}
		return &queries.CrisisFlagsResult{Flags: flags, HasHighSeverity: analysis.HasHighSeverity(flags)}, nil

	case queries.GetWellnessAlertsQuery:
		return h.wellnessAlerts(ctx, q, cfg, now)

	case queries.GetStabilityQuery:
		records, err := h.records(ctx, q.UserID, q.Days, now)
		if err != nil {
			return nil, err
		}
		return analysis.CalculateStability(records, cfg), nil

	case queries.GetCorrelationsQuery:
		records, err := h.records(ctx, q.UserID, q.Days, now)
		if err != nil {
			return nil, err
		}
		return analysis.CalculateCorrelations(records, cfg), nil

	case queries.GetInferredEpisodesQuery:
		records, err := h.records(ctx, q.UserID, q.Days, now)
		if err != nil {
			return nil, err
		}
		return analysis.DetectEpisodes(records, cfg), nil

	case queries.GetTopTriggersQuery:
		records, err := h.records(ctx, q.UserID, q.Days, now)
		if err != nil {
			return nil, err
		}
		return analysis.TopTriggers(records, cfg.TopTriggersLimit), nil

	case queries.GetStreakQuery:
		return h.streak(ctx, q.UserID, cfg, now)

	case queries.GetDashboardQuery:
		if !cfg.IsAllowedRange(q.Days) {
			return nil, pkgerrors.ErrInvalidAnalysisRange.Clone().WithDetail("days", q.Days)
		}
		records, err := h.records(ctx, q.UserID, q.Days, now)
		if err != nil {
			return nil, err
		}
		dashboard := analysis.BuildDashboard(records, q.Days, cfg)
		return &dashboard, nil

	default:
		return nil, fmt.Errorf("unexpected query %T", query)
	}
}

func (h *AnalyticsHandler) records(ctx context.Context, userID string, days int, now time.Time) ([]analysis.MoodRecord, error) {
	entries, err := h.moodRepo.ListSince(ctx, userID, now.AddDate(0, 0, -days))
	if err != nil {
		h.logger.Error("Failed to load mood entries",
			zap.String("userID", userID),
			zap.Int("days", days),
			zap.Error(err),
		)
		return nil, err
	}
	return entities.ToRecords(entries), nil
}

func (h *AnalyticsHandler) crisisFlags(ctx context.Context, userID string, cfg *config.AnalysisConfig, now time.Time) ([]analysis.CrisisFlag, error) {
	records, err := h.records(ctx, userID, cfg.FlagWindowDays, now)
	if err != nil {
		return nil, err
	}
	analyzer := analysis.NewPatternAnalyzer(cfg, func() time.Time { return now })
	if len(records) > 0 {
		return analyzer.Analyze(records), nil
	}

	// An empty window can still hide an older entry that is overdue.
	latest, err := h.moodRepo.Recent(ctx, userID, 1)
	if err != nil {
		return nil, err
	}
	flags := []analysis.CrisisFlag{}
	if len(latest) > 0 {
		if f, ok := analyzer.MissingSince(latest[0].CreatedAt()); ok {
			flags = append(flags, f)
		}
	}
	return flags, nil
}

func (h *AnalyticsHandler) wellnessAlerts(ctx context.Context, q queries.GetWellnessAlertsQuery, cfg *config.AnalysisConfig, now time.Time) ([]analysis.CrisisFlag, error) {
	flags, err := h.crisisFlags(ctx, q.UserID, cfg, now)
	if err != nil {
		return nil, err
	}

	// Staleness looks at both tables regardless of the flag window.
	latestEnhanced, err := h.moodRepo.Recent(ctx, q.UserID, 1)
	if err != nil {
		return nil, err
	}
	latestLegacy, err := h.moodRepo.RecentLegacy(ctx, q.UserID, 1)
	if err != nil {
		return nil, err
	}
	latest, hasEntries := analysis.LatestOf(entities.ToRecords(latestEnhanced), entities.ToRecords(latestLegacy))

	policy := analysis.NewAlertPolicy(cfg.AlertMissingDaysThreshold)
	alerts := policy.Apply(flags, latest, hasEntries, now)

	return analysis.WithoutTypes(alerts, q.Dismissed...), nil
}

func (h *AnalyticsHandler) streak(ctx context.Context, userID string, cfg *config.AnalysisConfig, now time.Time) (*queries.StreakResult, error) {
	since := now.AddDate(0, 0, -streakWindowDays)

	enhanced, err := h.moodRepo.ListSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	legacy, err := h.moodRepo.ListLegacySince(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	records := append(entities.ToRecords(enhanced), entities.ToRecords(legacy)...)
	return &queries.StreakResult{Days: analysis.CheckInStreak(records, now, cfg.Location())}, nil
}
