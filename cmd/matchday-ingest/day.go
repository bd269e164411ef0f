package main

import (
	"fmt"

	"github.com/riskibarqy/matchday-ingest/internal/observability"
	"github.com/riskibarqy/matchday-ingest/internal/usecase"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
)

func getDayCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "day <YYYY-MM-DD>",
		Short: "Ingests every scheduled event of one date",
		Long: `Ingests every scheduled event of one date.

The command exits non-zero when the event list of the date could not be
fetched. Individual events that fail are reported but do not fail the run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := usecase.ParseDay(args[0])
			if err != nil {
				return err
			}

			ctx, span := observability.StartCommandSpan(cmd.Context(), "day",
				attribute.String("date", args[0]))
			defer span.End()

			a, closeFn, err := opts.open(ctx, opts.progress(cmd, 1))
			if err != nil {
				return err
			}
			defer closeFn()

			summary, err := a.Days.IngestDay(ctx, date)
			printDaySummary(cmd.OutOrStdout(), summary)
			if err != nil {
				span.RecordError(err)
				return fmt.Errorf("date %s failed: %w", args[0], err)
			}
			return nil
		},
	}
}
