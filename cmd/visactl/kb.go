package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"visaverse-backend/internal/audit"
	"visaverse-backend/internal/kb"
	"visaverse-backend/internal/shared/storage/object"
	localstore "visaverse-backend/internal/shared/storage/object/local"
)

func newKBCmd(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kb",
		Short: "Inspect and seed the knowledge base",
	}
	cmd.AddCommand(newKBSearchCmd(load), newKBSeedCmd(load))
	return cmd
}

func newKBSearchCmd(load loader) *cobra.Command {
	var (
		profilePath string
		k           int
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Show the ranked snippets retrieved for a profile",
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

			if k <= 0 {
				k = app.Config.MaxSnippets
			}
			snippets, err := app.Retriever.Retrieve(cmd.Context(), profile, k)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(snippets) == 0 {
				fmt.Fprintln(out, "no matching snippets")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SCORE\tTITLE\tREF")
			for _, s := range snippets {
				fmt.Fprintf(w, "%d\t%s\t%s\n", s.Score, s.Title, s.Ref)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "profile JSON file")
	cmd.Flags().IntVarP(&k, "top", "k", 0, "number of snippets (default MAX_SNIPPETS)")
	_ = cmd.MarkFlagRequired("profile")
	return cmd
}

func newKBSeedCmd(load loader) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import markdown files as published admin documents",
		Long: `Imports every top-level *.md file as a published version-1 document.
Titles come from the file name; documents whose title already exists are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(cmd.Context(), load)
			if err != nil {
				return err
			}
			defer app.Close()

			var store object.Store = app.KBStore
			if dir != "" {
				store = localstore.New(dir)
			}
			res, err := kb.Seed(cmd.Context(), app.KB, store, audit.Actor{UserID: "visactl"})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d, skipped %d\n", res.Imported, res.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory to import (default: the configured KB source)")
	return cmd
}
