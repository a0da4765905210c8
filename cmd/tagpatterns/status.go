package main

import (
	"github.com/spf13/cobra"

	"tagpatterns/internal/config"
	"tagpatterns/internal/orchestrator"
	"tagpatterns/internal/output"
	"tagpatterns/internal/table"
)

func (a *app) statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "List the customers in the input table with their row counts",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.bindFlags(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.readConfig()
			if err != nil {
				return err
			}
			result := &config.ValidationResult{Errors: config.ValidateInput(cfg)}
			if err := result.Err(); err != nil {
				return err
			}

			tbl, err := table.Load(cmd.Context(), cfg.InputLocation())
			if err != nil {
				return err
			}
			status, err := orchestrator.Status(tbl, orchestrator.OptionsFromConfig(cfg))
			if err != nil {
				return err
			}

			a.out.Print(output.RenderStatus(status))
			return nil
		},
	}
	addInputFlags(cmd)
	cmd.Flags().Bool("nfc", false, "apply Unicode NFC normalization to tags")
	return cmd
}
