package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"akili/internal/articles"
)

var (
	exportOut      string
	exportStatus   string
	exportCategory string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export store contents as CSV",
}

var exportArticlesCmd = &cobra.Command{
	Use:   "articles",
	Short: "Export articles to CSV",
	Args:  cobra.NoArgs,
	RunE:  runExportArticles,
}

func init() {
	f := exportArticlesCmd.Flags()
	f.StringVarP(&exportOut, "out", "o", "data/articles.csv", "output CSV path, - for stdout")
	f.StringVar(&exportStatus, "status", "", "only this status")
	f.StringVar(&exportCategory, "category", "", "only this category")

	exportCmd.AddCommand(exportArticlesCmd)
}

func runExportArticles(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	w := cmd.OutOrStdout()
	if exportOut != "-" {
		if err := os.MkdirAll(filepath.Dir(exportOut), 0o755); err != nil {
			return err
		}
		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	n, err := articles.NewRepo(e.db).ExportCSV(cmd.Context(), w, articles.ListQuery{
		Status:   exportStatus,
		Category: exportCategory,
	})
	if err != nil {
		return err
	}
	if exportOut != "-" {
		fmt.Fprintf(cmd.ErrOrStderr(), "exported %d articles to %s\n", n, exportOut)
	}
	return nil
}
