// Package mocks holds testify mocks of the application ports
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"symptocare-backend/application/ports"
	"symptocare-backend/domain/core/entities"
	"symptocare-backend/domain/events"
)

type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockTextGenerator) Available() bool {
	args := m.Called()
	return args.Bool(0)
}

type MockMoodEntryRepository struct {
	mock.Mock
}

func (m *MockMoodEntryRepository) Save(ctx context.Context, entry *entities.MoodEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockMoodEntryRepository) ListSince(ctx context.Context, userID string, since time.Time) ([]*entities.MoodEntry, error) {
	args := m.Called(ctx, userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.MoodEntry), args.Error(1)
}

func (m *MockMoodEntryRepository) ListLegacySince(ctx context.Context, userID string, since time.Time) ([]*entities.MoodEntry, error) {
	args := m.Called(ctx, userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.MoodEntry), args.Error(1)
}

func (m *MockMoodEntryRepository) Recent(ctx context.Context, userID string, limit int) ([]*entities.MoodEntry, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.MoodEntry), args.Error(1)
}

func (m *MockMoodEntryRepository) RecentLegacy(ctx context.Context, userID string, limit int) ([]*entities.MoodEntry, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.MoodEntry), args.Error(1)
}

type MockInsightRepository struct {
	mock.Mock
}

func (m *MockInsightRepository) SaveInsight(ctx context.Context, insight ports.Insight) error {
	args := m.Called(ctx, insight)
	return args.Error(0)
}

type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) AppendMessages(ctx context.Context, messages ...ports.ChatMessage) error {
	args := m.Called(ctx, messages)
	return args.Error(0)
}

// MockEventPublisher records published events without a mock expectation
type MockEventPublisher struct {
	Published []events.DomainEvent
}

func (m *MockEventPublisher) Publish(_ context.Context, evts ...events.DomainEvent) {
	m.Published = append(m.Published, evts...)
}

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordMoodEntry() {
	m.Called()
}

func (m *MockMetrics) RecordCrisisFlag(flagType, severity string) {
	m.Called(flagType, severity)
}

func (m *MockMetrics) RecordLLMRequest(operation, outcome string) {
	m.Called(operation, outcome)
}
