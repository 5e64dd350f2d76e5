package articles

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

var exportHeader = []string{
	"id", "title", "author", "category", "status", "featured", "view_count",
	"publish_date", "read_time", "tags", "source_url", "created_at",
}

// ExportCSV writes every article matching q as CSV, newest first. Tags are
// joined with "|".
func (r *Repo) ExportCSV(ctx context.Context, w io.Writer, q ListQuery) (int, error) {
	q.Limit = -1
	items, err := r.List(ctx, q)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return 0, fmt.Errorf("write csv header: %w", err)
	}
	for _, a := range items {
		if err := cw.Write([]string{
			a.ID,
			a.Title,
			a.Author,
			a.Category,
			a.Status,
			strconv.FormatBool(a.Featured),
			strconv.Itoa(a.ViewCount),
			a.PublishDate,
			a.ReadTime,
			strings.Join(a.Tags, "|"),
			a.SourceURL,
			a.CreatedAt.UTC().Format(time.RFC3339),
		}); err != nil {
			return 0, fmt.Errorf("write csv row %s: %w", a.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flush csv: %w", err)
	}
	return len(items), nil
}
