package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"symptocare-backend/domain/analysis"
)

func writeExport(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (Report, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newAnalyzeCmd()
	cmd.SetArgs(append([]string{}, args...))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)

	if err := cmd.Execute(); err != nil {
		return Report{}, err
	}

	var report Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	return report, nil
}

func flagTypes(flags []analysis.CrisisFlag) []analysis.FlagType {
	out := make([]analysis.FlagType, 0, len(flags))
	for _, f := range flags {
		out = append(out, f.Type)
	}
	return out
}

func TestRootCommand(t *testing.T) {
	t.Run("Should register analyze with its flags", func(t *testing.T) {
		var analyze bool
		for _, c := range rootCmd.Commands() {
			if c.Name() != "analyze" {
				continue
			}
			analyze = true
			for _, name := range []string{"file", "now", "alert-threshold", "config", "episode-scale"} {
				assert.NotNil(t, c.Flags().Lookup(name), name)
			}
		}
		assert.True(t, analyze)
	})
}

func TestAnalyze(t *testing.T) {
	t.Run("Should report flags, streak and counts for a split export", func(t *testing.T) {
		// Arrange
		path := writeExport(t, `{
			"enhanced_mood_entries": [
				{"id": "a", "mood": 1, "created_at": "2024-03-10T08:00:00Z", "reflection": "I feel hopeless", "triggers": ["work"]},
				{"id": "b", "mood": 2, "created_at": "2024-03-09T08:00:00Z", "triggers": ["work", "sleep"]}
			],
			"mood_entries": [
				{"mood": 3, "created_at": "2024-03-08T20:00:00Z"}
			]
		}`)

		// Act
		report, err := execute(t, "--file", path, "--now", "2024-03-10T09:00:00Z")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 2, report.EntryCount)
		assert.Equal(t, 1, report.LegacyEntryCount)
		assert.Equal(t, 3, report.Streak)
		assert.Contains(t, flagTypes(report.Flags), analysis.FlagConcerningText)
		assert.NotContains(t, flagTypes(report.Alerts), analysis.FlagMissingEntries)
		require.NotEmpty(t, report.TopTriggers)
		assert.Equal(t, "work", report.TopTriggers[0].Trigger)
		assert.Equal(t, 2, report.TopTriggers[0].Count)
		assert.NotNil(t, report.Stability)
	})

	t.Run("Should raise the alert banner from a bare array past the threshold", func(t *testing.T) {
		// Arrange
		path := writeExport(t, `[{"mood": 3, "created_at": "2024-02-01T12:00:00Z"}]`)

		// Act
		report, err := execute(t, "--file", path, "--now", "2024-03-10T09:00:00Z", "--alert-threshold", "7")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 1, report.EntryCount)
		assert.Equal(t, 0, report.Streak)
		assert.Nil(t, report.Stability)
		require.Len(t, report.Alerts, 1)
		assert.Equal(t, analysis.FlagMissingEntries, report.Alerts[0].Type)
		assert.Equal(t, analysis.SeverityHigh, report.Alerts[0].Severity)
	})

	t.Run("Should emit empty lists for an empty export", func(t *testing.T) {
		path := writeExport(t, `[]`)

		report, err := execute(t, "--file", path)

		require.NoError(t, err)
		assert.Empty(t, report.Flags)
		assert.NotNil(t, report.TopTriggers)
		require.Len(t, report.Alerts, 1)
		assert.Equal(t, "No mood entries yet.", report.Alerts[0].Description)
	})

	t.Run("Should reject bad input", func(t *testing.T) {
		path := writeExport(t, `[]`)

		cases := [][]string{
			{},
			{"--file", filepath.Join(t.TempDir(), "missing.json")},
			{"--file", writeExport(t, `{not json`)},
			{"--file", path, "--now", "yesterday"},
			{"--file", path, "--episode-scale", "ten_point"},
		}
		for _, args := range cases {
			_, err := execute(t, args...)
			assert.Error(t, err, args)
		}
	})
}
