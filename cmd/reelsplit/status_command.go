package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <carrier-id>",
		Short: "Show a carrier's run state and registered segments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			defer ctx.closeStore()

			carrierID := strings.TrimSpace(args[0])
			run, err := store.GetByCarrierID(cmd.Context(), carrierID)
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("no run for carrier %s", carrierID)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Carrier:  %s\n", run.CarrierID)
			fmt.Fprintf(out, "Status:   %s\n", run.Status)
			if run.Mode != "" {
				fmt.Fprintf(out, "Mode:     %s\n", run.Mode)
			}
			fmt.Fprintf(out, "Segments: %d/%d\n", run.SegmentsDone, run.SegmentsTotal)
			if run.ProgressMessage != "" {
				fmt.Fprintf(out, "Progress: %s\n", run.ProgressMessage)
			}
			if run.ErrorMessage != "" {
				fmt.Fprintf(out, "Error:    %s\n", run.ErrorMessage)
			}

			regs, err := store.RegistrationsForCarrier(cmd.Context(), carrierID)
			if err != nil {
				return err
			}
			if len(regs) == 0 {
				return nil
			}

			rows := make([][]string, 0, len(regs))
			for _, reg := range regs {
				rows = append(rows, []string{
					strconv.Itoa(reg.Sequence),
					reg.ItemID,
					reg.Digest,
					reg.OutputPath,
				})
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderTable(
				[]string{"Seq", "Item", "Digest", "Output"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
