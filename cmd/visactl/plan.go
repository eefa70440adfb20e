package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"visaverse-backend/internal/plans"
)

func newPlanCmd(load loader) *cobra.Command {
	var (
		profilePath string
		xlsxPath    string
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Build a preparation plan for a profile file",
		Example: `  visactl plan --profile profile.json
  visactl plan --profile profile.json --xlsx plan.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := readProfile(profilePath)
			if err != nil {
				return err
			}
			app, err := buildApp(cmd.Context(), load)
			if err != nil {
				return err
			}
			defer app.Close()

			plan, err := app.Assembler.BuildPlan(cmd.Context(), profile)
			if err != nil {
				return err
			}
			if xlsxPath != "" {
				f, err := os.Create(xlsxPath)
				if err != nil {
					return err
				}
				if err := plans.WriteWorkbook(f, plan); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", xlsxPath)
				return nil
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(plan)
		},
	}
	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "profile JSON file")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write the plan as an XLSX workbook instead of JSON")
	_ = cmd.MarkFlagRequired("profile")
	return cmd
}
