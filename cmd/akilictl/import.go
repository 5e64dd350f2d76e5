package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"akili/internal/articles"
)

var importIn string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load CSV files into the store",
}

var importArticlesCmd = &cobra.Command{
	Use:   "articles",
	Short: "Import articles from a CSV written by export articles",
	Args:  cobra.NoArgs,
	RunE:  runImportArticles,
}

func init() {
	importArticlesCmd.Flags().StringVarP(&importIn, "in", "i", "data/articles.csv", "input CSV path, - for stdin")
	importCmd.AddCommand(importArticlesCmd)
}

func runImportArticles(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	var r io.Reader = cmd.InOrStdin()
	if importIn != "-" {
		f, err := os.Open(importIn)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	res, err := articles.NewRepo(e.db).ImportCSV(cmd.Context(), r)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
