package articles

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"akili/pkg/models"
)

// ImportResult counts what ImportCSV did with each data row.
type ImportResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// ImportCSV reads rows in the ExportCSV layout (plus optional content,
// excerpt and image_url columns) and creates the ones whose id and title are
// not stored yet. Columns are matched by header name. Rows without a title
// are skipped.
func (r *Repo) ImportCSV(ctx context.Context, in io.Reader) (ImportResult, error) {
	var res ImportResult

	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	header, err := readHeader(cr)
	if err != nil {
		return res, err
	}

	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read csv line %d: %w", line, err)
		}

		a, err := articleFromRow(header, row)
		if err != nil {
			return res, fmt.Errorf("csv line %d: %w", line, err)
		}
		if a == nil {
			res.Skipped++
			continue
		}

		dup, err := r.ExistsByTitle(ctx, a.Title)
		if err != nil {
			return res, err
		}
		if !dup && a.ID != "" {
			existing, err := r.GetByID(ctx, a.ID)
			if err != nil {
				return res, err
			}
			dup = existing != nil
		}
		if dup {
			res.Skipped++
			continue
		}

		if err := r.Create(ctx, a); err != nil {
			return res, err
		}
		res.Added++
	}
	return res, nil
}

func readHeader(cr *csv.Reader) (map[string]int, error) {
	row, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	if _, ok := header["title"]; !ok {
		return nil, errors.New("csv header has no title column")
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// articleFromRow returns nil for rows that carry no title.
func articleFromRow(header map[string]int, row []string) (*models.Article, error) {
	get := func(key string) string { return valueAt(header, row, key) }

	a := &models.Article{
		ID:          get("id"),
		Title:       get("title"),
		Content:     get("content"),
		Excerpt:     get("excerpt"),
		Author:      get("author"),
		Category:    get("category"),
		Status:      get("status"),
		PublishDate: get("publish_date"),
		ReadTime:    get("read_time"),
		ImageURL:    get("image_url"),
		SourceURL:   get("source_url"),
		Tags:        []string{},
	}
	if a.Title == "" {
		return nil, nil
	}

	if a.Status == "" {
		a.Status = models.StatusDraft
	}
	if !models.ValidStatus(a.Status) {
		return nil, fmt.Errorf("%q: %w", a.Status, ErrInvalidStatus)
	}
	if a.ReadTime == "" {
		a.ReadTime = ReadTime(a.Content)
	}
	if a.Excerpt == "" && a.Content != "" {
		a.Excerpt = Excerpt(a.Content)
	}
	for _, t := range strings.Split(get("tags"), "|") {
		if t = strings.TrimSpace(t); t != "" {
			a.Tags = append(a.Tags, t)
		}
	}

	if raw := get("featured"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("parse featured: %w", err)
		}
		a.Featured = b
	}
	if raw := get("view_count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("parse view_count %q", raw)
		}
		a.ViewCount = n
	}
	if raw := get("created_at"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		a.CreatedAt = t.UTC()
	}
	return a, nil
}
