package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"akili/internal/articles"
	"akili/internal/events"
	"akili/internal/ingest"
)

var ingestParams ingest.Params

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch top news once, classify and store new articles",
	Args:  cobra.NoArgs,
	RunE:  runIngest,
}

func init() {
	f := ingestCmd.Flags()
	f.StringVar(&ingestParams.Location, "location", "us", "provider location")
	f.StringVar(&ingestParams.Language, "language", "en", "provider language")
	f.IntVar(&ingestParams.Page, "page", 1, "result page")
	f.StringVar(&ingestParams.Query, "query", "", "search query")
	f.StringVar(&ingestParams.FromDate, "from", "", "start date MM/DD/YYYY (enables time bounding)")
	f.StringVar(&ingestParams.ToDate, "to", "", "end date MM/DD/YYYY (enables time bounding)")
}

func runIngest(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	svc, err := ingest.FromConfig(cmd.Context(), e.cfg, articles.NewRepo(e.db), events.Discard{}, e.logger)
	if err != nil {
		return err
	}

	res, err := svc.Run(cmd.Context(), ingestParams)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(map[string]any{
		"added":   res.Added,
		"skipped": res.Skipped,
		"failed":  res.Failed,
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
