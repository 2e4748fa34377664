package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "symptocare-backend/pkg/errors"
)

type moodBody struct {
	Mood       int    `json:"mood" validate:"min=1,max=8"`
	Reflection string `json:"reflection" validate:"max=5"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("Should pass valid input", func(t *testing.T) {
		assert.NoError(t, ValidateStruct(moodBody{Mood: 4}))
	})

	t.Run("Should report fields by json name", func(t *testing.T) {
		// Act
		err := ValidateStruct(moodBody{Mood: 9, Reflection: "too long"})

		// Assert
		var verrs *pkgerrors.ValidationErrors
		require.True(t, errors.As(err, &verrs))
		fields := verrs.ToMap()
		assert.Equal(t, []string{"mood must be at most 8"}, fields["mood"])
		assert.Contains(t, fields, "reflection")
	})
}

func TestParseDaysParam(t *testing.T) {
	t.Run("Should default when empty", func(t *testing.T) {
		n, err := ParseDaysParam("", 30, 365)
		require.NoError(t, err)
		assert.Equal(t, 30, n)
	})

	t.Run("Should reject out of range and junk", func(t *testing.T) {
		for _, raw := range []string{"0", "-1", "366", "abc"} {
			_, err := ParseDaysParam(raw, 30, 365)
			assert.Error(t, err, raw)
		}
	})
}

func TestParseDateOrTime(t *testing.T) {
	d, err := ParseDateOrTime("2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), d)

	ts, err := ParseDateOrTime("2025-03-01T10:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, 8, ts.Hour())

	_, err = ParseDateOrTime("March 1")
	assert.Error(t, err)
}
