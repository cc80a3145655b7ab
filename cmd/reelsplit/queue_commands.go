package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"reelsplit/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the run queue",
	}
	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueRetryCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	queueCmd.AddCommand(newQueueHealthCommand(ctx))
	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List runs, optionally filtered by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			defer ctx.closeStore()

			var statuses []queue.Status
			if statusFilter != "" {
				status, ok := queue.ParseStatus(statusFilter)
				if !ok {
					return fmt.Errorf("unknown status %q", statusFilter)
				}
				statuses = append(statuses, status)
			}

			runs, err := store.List(cmd.Context(), statuses...)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				progress := run.ProgressStage
				if run.ProgressMessage != "" {
					progress = run.ProgressMessage
				}
				rows = append(rows, []string{
					strconv.FormatInt(run.ID, 10),
					run.CarrierID,
					string(run.Status),
					fmt.Sprintf("%d/%d", run.SegmentsDone, run.SegmentsTotal),
					progress,
					run.UpdatedAt.Local().Format(time.DateTime),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Carrier", "Status", "Segments", "Progress", "Updated"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVarP(&statusFilter, "status", "s", "", "Filter by run status")
	return cmd
}

func newQueueRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [run-id]...",
		Short: "Return failed runs to pending",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			defer ctx.closeStore()

			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid run id %q", arg)
				}
				ids = append(ids, id)
			}

			retried, err := store.RetryFailed(cmd.Context(), ids...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Returned %d run(s) to pending\n", retried)
			return nil
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var includeFailed bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove completed runs and their registrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			defer ctx.closeStore()

			statuses := []queue.Status{queue.StatusCompleted}
			if includeFailed {
				statuses = append(statuses, queue.StatusFailed)
			}
			removed, err := store.Clear(cmd.Context(), statuses...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d run(s)\n", removed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&includeFailed, "failed", false, "Also remove failed runs")
	return cmd
}

func newQueueHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show aggregate queue counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			defer ctx.closeStore()

			health, err := store.Health(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total:      %d\n", health.Total)
			fmt.Fprintf(out, "Pending:    %d\n", health.Pending)
			fmt.Fprintf(out, "Processing: %d\n", health.Processing)
			fmt.Fprintf(out, "Completed:  %d\n", health.Completed)
			fmt.Fprintf(out, "Failed:     %d\n", health.Failed)
			return nil
		},
	}
}
