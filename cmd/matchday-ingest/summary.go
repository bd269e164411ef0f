package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/riskibarqy/matchday-ingest/internal/usecase"
)

func printDaySummary(w io.Writer, s usecase.DaySummary) {
	date := "----------"
	if !s.Date.IsZero() {
		date = s.Date.Format(usecase.DayLayout)
	}

	fmt.Fprintf(w, "%s  %-8s listed %s  new %s  skipped %s  failed %s",
		date,
		stateLabel(s),
		humanize.Comma(int64(s.Listed)),
		humanize.Comma(int64(s.New)),
		humanize.Comma(int64(s.Skipped)),
		humanize.Comma(int64(s.Failed)),
	)
	if s.Rejected > 0 {
		fmt.Fprintf(w, "  rejected %s", humanize.Comma(int64(s.Rejected)))
	}
	if s.ProjectionRebuilt {
		fmt.Fprintf(w, "  statistics rows %s", humanize.Comma(int64(s.ProjectionRows)))
		if s.ProjectionSkipped > 0 {
			fmt.Fprintf(w, " (%d undecodable %s)", s.ProjectionSkipped, plural(s.ProjectionSkipped, "snapshot"))
		}
	}
	fmt.Fprintf(w, "  in %s\n", formatDuration(s.Duration))

	for _, event := range s.Events {
		if event.Outcome != usecase.EventFailed {
			continue
		}
		fmt.Fprintf(w, "    match %d failed after %d %s: %s\n",
			event.MatchID, event.Attempts, plural(event.Attempts, "attempt"), event.Message)
	}
}

func printBatchSummary(w io.Writer, r usecase.BatchResult) {
	for _, day := range r.Days {
		printDaySummary(w, day)
	}
	fmt.Fprintf(w, "%s %s (%d ok, %d failed) with %d %s: new %s  skipped %s  failed %s  in %s\n",
		humanize.Comma(int64(r.DateCount)),
		plural(r.DateCount, "date"),
		r.SucceededDates,
		r.FailedDates,
		r.WorkerCount,
		plural(r.WorkerCount, "worker"),
		humanize.Comma(int64(r.NewEvents)),
		humanize.Comma(int64(r.SkippedEvents)),
		humanize.Comma(int64(r.FailedEvents)),
		formatDuration(r.Duration),
	)
}

func stateLabel(s usecase.DaySummary) string {
	if s.State == usecase.DayStateFailed && s.FailureReason != "" {
		return string(s.FailureReason)
	}
	return string(s.State)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
