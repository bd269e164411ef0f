package main

import (
	"fmt"

	"github.com/riskibarqy/matchday-ingest/internal/observability"
	"github.com/riskibarqy/matchday-ingest/internal/usecase"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
)

type rangeFlags struct {
	from    string
	to      string
	workers int
}

func getRangeCmd(opts *rootOptions) *cobra.Command {
	flags := &rangeFlags{}

	cmd := &cobra.Command{
		Use:   "range --from <YYYY-MM-DD> --to <YYYY-MM-DD>",
		Short: "Ingests every date of an inclusive range",
		Long: `Ingests every date of an inclusive range.

Each date runs with its own session and database connection. With --workers
greater than one, dates run in parallel and the progress bar is replaced by
log lines. The command exits non-zero when any date's event list could not be
fetched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := usecase.ParseDay(flags.from)
			if err != nil {
				return err
			}
			to, err := usecase.ParseDay(flags.to)
			if err != nil {
				return err
			}
			workers := flags.workers
			if workers <= 0 {
				workers = opts.cfg.IngestWorkers
			}

			ctx, span := observability.StartCommandSpan(cmd.Context(), "range",
				attribute.String("from", flags.from),
				attribute.String("to", flags.to),
				attribute.Int("workers", workers),
			)
			defer span.End()

			a, closeFn, err := opts.open(ctx, opts.progress(cmd, workers))
			if err != nil {
				return err
			}
			defer closeFn()

			result, err := a.Batch.Run(ctx, usecase.BatchInput{From: from, To: to, Workers: workers})
			printBatchSummary(cmd.OutOrStdout(), result)
			if err != nil {
				span.RecordError(err)
				return err
			}
			if !result.AllListsFetched() {
				return fmt.Errorf("%d of %d dates failed to fetch their event list", result.FailedDates, result.DateCount)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.from, "from", "", "first date, YYYY-MM-DD")
	cmd.Flags().StringVar(&flags.to, "to", "", "last date, inclusive, YYYY-MM-DD")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "dates processed in parallel (default INGEST_WORKERS)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}
