package extensions

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"symptocare-backend/domain/events"
)

func TestHookManager_Publish(t *testing.T) {
	t.Run("Should route events to the hook for their type", func(t *testing.T) {
		// Arrange
		m := NewHookManager(zap.NewNop())
		received := make(chan events.MoodEntryRecorded, 1)
		m.Register(HookMoodEntryRecorded, func(_ context.Context, data interface{}) error {
			received <- data.(events.MoodEntryRecorded)
			return nil
		})
		m.Register(HookSafetyPlanSaved, func(context.Context, interface{}) error {
			t.Error("safety plan hook must not run")
			return nil
		})

		// Act
		m.Publish(context.Background(), events.NewMoodEntryRecorded("e1", "user-1", 2, time.Now()))
		require.NoError(t, m.Wait(context.Background()))

		// Assert
		evt := <-received
		assert.Equal(t, "user-1", evt.UserID)
	})

	t.Run("Should survive a panicking hook", func(t *testing.T) {
		m := NewHookManager(nil)
		m.Register(HookEpisodeDeleted, func(context.Context, interface{}) error { panic("boom") })

		m.Publish(context.Background(), events.NewEpisodeDeleted("ep", "user-1", time.Now()))

		assert.NoError(t, m.Wait(context.Background()))
	})

	t.Run("Should keep running other hooks when one fails", func(t *testing.T) {
		// Arrange
		m := NewHookManager(zap.NewNop())
		var calls int32
		m.Register(HookEpisodeLogged, func(context.Context, interface{}) error {
			atomic.AddInt32(&calls, 1)
			return errors.New("nope")
		})
		m.Register(HookEpisodeLogged, func(context.Context, interface{}) error {
			atomic.AddInt32(&calls, 1)
			return nil
		})

		// Act
		m.Publish(context.Background(), events.NewEpisodeLogged("ep", "user-1", "depressive", "mild", time.Now()))
		require.NoError(t, m.Wait(context.Background()))

		// Assert
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	})
}
