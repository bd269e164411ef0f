package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/riskibarqy/matchday-ingest/internal/observability"
	"github.com/spf13/cobra"
)

func getRebuildStatisticsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild-statistics",
		Short: "Regenerates the statistics projection from stored snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, span := observability.StartCommandSpan(cmd.Context(), "rebuild-statistics")
			defer span.End()

			a, closeFn, err := opts.open(ctx, nil)
			if err != nil {
				return err
			}
			defer closeFn()

			rows, err := a.Rebuild.Rebuild(ctx)
			if err != nil {
				span.RecordError(err)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "statistics projection rebuilt: %s rows\n", humanize.Comma(int64(rows)))
			return nil
		},
	}
}
