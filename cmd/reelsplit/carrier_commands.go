package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"reelsplit/internal/workflow"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <carrier-id-or-file>...",
		Short: "Enqueue carriers for segmentation",
		Long: `Enqueue one or more carriers. Arguments may be carrier identifiers or
paths to digitised files, in which case the identifier is derived from the
file stem.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			defer ctx.closeStore()
			loader, err := ctx.newLoader()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, arg := range args {
				carrierID := strings.TrimSpace(arg)
				sourcePath := ""
				if looksLikePath(carrierID) {
					derived, err := loader.CarrierIDFromPath(carrierID)
					if err != nil {
						return err
					}
					sourcePath = carrierID
					carrierID = derived
				}
				run, err := store.NewRun(cmd.Context(), carrierID, sourcePath)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Queued carrier %s (run %d, %s)\n", run.CarrierID, run.ID, run.Status)
			}
			return nil
		},
	}
}

func newProcessCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "process <carrier-id>",
		Short: "Segment a single carrier immediately",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := ctx.newOrchestrator()
			if err != nil {
				return err
			}
			defer ctx.closeStore()

			result, err := orch.ProcessCarrier(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Carrier %s: %s (%d of %d segments registered)\n",
				result.CarrierID, result.Status, result.SegmentsRegistered, result.SegmentsTotal)
			return nil
		},
	}
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Process every pending carrier in queue order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			defer ctx.closeStore()
			orch, err := ctx.newOrchestrator()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			batch := workflow.NewBatch(cfg, store, orch, logger)
			return batch.Run(cmd.Context())
		},
	}
}

func looksLikePath(value string) bool {
	if strings.ContainsAny(value, "/\\") {
		return true
	}
	if _, err := os.Stat(value); err == nil {
		return true
	}
	return false
}
