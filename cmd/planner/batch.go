package main

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/warp/rest-planner/timeoff"
	"go.uber.org/zap"
)

func newBatchCmd(a *app) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "batch FILE...",
		Short: "Optimize several plan files in parallel",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("workers") {
				workers = a.cfg.Planner.BatchWorkers
			}
			return a.batch(cmd, args, workers)
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Plans in flight (default: planner.batch_workers, 0 = one per CPU)")
	return cmd
}

// batch reports one line per file. A bad file fails its own line only;
// the command fails when any file did.
func (a *app) batch(cmd *cobra.Command, paths []string, workers int) error {
	reqs := make([]timeoff.Request, 0, len(paths))
	var parseErrs []error
	var planned []string
	out := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tYEAR\tREGION\tLEAVE\tREST\tSCORE\tERROR")

	for _, path := range paths {
		req, _, err := a.factory.ParsePlanFile(path)
		if err != nil {
			fmt.Fprintf(tw, "%s\t\t\t\t\t\t%v\n", filepath.Base(path), err)
			parseErrs = append(parseErrs, err)
			continue
		}
		reqs = append(reqs, req)
		planned = append(planned, path)
	}

	failed := len(parseErrs)
	for _, item := range a.planner.PlanAll(cmd.Context(), reqs, workers) {
		name := filepath.Base(planned[item.Index])
		if item.Err != nil {
			failed++
			a.logger.Warn("Plan failed", zap.String("file", planned[item.Index]), zap.Error(item.Err))
			fmt.Fprintf(tw, "%s\t%d\t%s\t\t\t\t%v\n", name, item.Request.Year, item.Request.CountryCode, item.Err)
			continue
		}
		r := item.Result
		region := r.CountryCode
		if r.Subdivision != "" {
			region += "-" + r.Subdivision
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%d\t%.1f\t\n", name, r.Year, region, trim(r.UsedLeaveDays.Float64()), r.TotalRestDays, r.Score)
	}
	tw.Flush()

	if failed > 0 {
		return fmt.Errorf("%d of %d plans failed", failed, len(paths))
	}
	return nil
}
