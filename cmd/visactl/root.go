package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"visaverse-backend/internal/bootstrap"
	"visaverse-backend/internal/domain"
	"visaverse-backend/internal/shared/config"
	"visaverse-backend/internal/shared/storage/db"
)

type loader func() config.Config

func newRootCmd(load loader) *cobra.Command {
	root := &cobra.Command{
		Use:           "visactl",
		Short:         "VisaVerse operator tools",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newPlanCmd(load), newKBCmd(load))
	return root
}

func buildApp(ctx context.Context, load loader) (*bootstrap.App, error) {
	opts := db.OptionsFromEnv(db.DefaultCLIOptions())
	return bootstrap.Build(ctx, load(), bootstrap.Options{SkipRouter: true, DBOptions: &opts})
}

// readProfile loads and validates a profile JSON file.
func readProfile(path string) (domain.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Profile{}, err
	}
	var p domain.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return domain.Profile{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return domain.NewProfile(p)
}
