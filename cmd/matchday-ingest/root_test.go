package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/matchday-ingest/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmd := getRootCmd()
	require.NotNil(t, cmd)

	names := make(map[string]bool)
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"day", "range", "rebuild-statistics", "migrate"} {
		assert.True(t, names[want], "%s subcommand should exist", want)
	}
}

func TestRootCommand_PersistentFlags(t *testing.T) {
	cmd := getRootCmd()

	for _, name := range []string{"dry-run", "no-progress", "log-level", "log-format"} {
		require.NotNil(t, cmd.PersistentFlags().Lookup(name), "--%s flag should exist", name)
	}
	assert.Equal(t, "bool", cmd.PersistentFlags().Lookup("dry-run").Value.Type())
}

func TestRootCommand_Help(t *testing.T) {
	cmd := getRootCmd()

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})
	require.NoError(t, cmd.Execute())

	help := buf.String()
	assert.Contains(t, help, "matchday-ingest")
	assert.Contains(t, help, "DB_URL")
	assert.Contains(t, help, "Available Commands")
}

func TestMigrateCommand_HasSubcommands(t *testing.T) {
	cmd := getMigrateCmd(&rootOptions{})

	names := make([]string, 0, len(cmd.Commands()))
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"up", "down", "goto", "force", "version"}, names)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("dir"))
}

func TestDayCommand_RejectsBadDate(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "false")
	t.Setenv("APP_LOG_LEVEL", "")

	cmd := getRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"day", "02/03/2024", "--dry-run", "--log-level", "error"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.True(t, errors.Is(err, usecase.ErrInvalidInput), "unexpected error: %v", err)
}

func TestRangeCommand_RequiresBounds(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "false")

	cmd := getRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"range", "--from", "2024-03-01"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "to")
}

func TestPrintDaySummary(t *testing.T) {
	buf := new(bytes.Buffer)
	printDaySummary(buf, usecase.DaySummary{
		Date:              time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		State:             usecase.DayStateDone,
		Listed:            1200,
		New:               1199,
		Failed:            1,
		ProjectionRebuilt: true,
		ProjectionRows:    15000,
		Duration:          1500 * time.Millisecond,
		Events: []usecase.EventResult{
			{MatchID: 11, Outcome: usecase.EventNew, Attempts: 1},
			{MatchID: 12, Outcome: usecase.EventFailed, Attempts: 3, Message: "graphics: retries exhausted"},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "2024-03-02")
	assert.Contains(t, out, "listed 1,200")
	assert.Contains(t, out, "statistics rows 15,000")
	assert.NotContains(t, out, "undecodable")
	assert.Contains(t, out, "match 12 failed after 3 attempts")
	assert.NotContains(t, out, "match 11")
}

func TestPrintDaySummary_SkippedSnapshots(t *testing.T) {
	buf := new(bytes.Buffer)
	printDaySummary(buf, usecase.DaySummary{
		Date:              time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		State:             usecase.DayStateDone,
		ProjectionRebuilt: true,
		ProjectionRows:    40,
		ProjectionSkipped: 2,
	})
	assert.Contains(t, buf.String(), "statistics rows 40 (2 undecodable snapshots)")
}

func TestPrintDaySummary_FailedDateShowsReason(t *testing.T) {
	buf := new(bytes.Buffer)
	printDaySummary(buf, usecase.DaySummary{
		Date:          time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		State:         usecase.DayStateFailed,
		FailureReason: usecase.FailureListUnavailable,
	})
	assert.True(t, strings.HasPrefix(buf.String(), "2024-03-02  list_unavailable"), buf.String())
}

func TestPrintBatchSummary(t *testing.T) {
	buf := new(bytes.Buffer)
	printBatchSummary(buf, usecase.BatchResult{
		DateCount:      2,
		SucceededDates: 1,
		FailedDates:    1,
		NewEvents:      3,
		WorkerCount:    1,
		Days: []usecase.DaySummary{
			{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), State: usecase.DayStateDone, New: 3},
			{Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), State: usecase.DayStateFailed, FailureReason: usecase.FailureListMalformed},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "2024-03-01")
	assert.Contains(t, out, "list_malformed")
	assert.Contains(t, out, "2 dates (1 ok, 1 failed) with 1 worker")
}

func TestProgressBars_TracksDates(t *testing.T) {
	buf := new(bytes.Buffer)
	bars := newProgressBars(buf)
	date := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	bars.DayStarted(date, 2)
	bars.EventFinished(date, usecase.EventResult{MatchID: 1, Outcome: usecase.EventNew})
	require.NotNil(t, bars.lookup(date))
	assert.Equal(t, int64(1), bars.lookup(date).Current())

	bars.DayFinished(usecase.DaySummary{Date: date})
	assert.Nil(t, bars.lookup(date))

	// Events for an unknown date are ignored.
	bars.EventFinished(date, usecase.EventResult{MatchID: 2})
}
