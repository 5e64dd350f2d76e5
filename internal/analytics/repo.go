package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"akili/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Track(ctx context.Context, v models.PageView) error {
	if v.At.IsZero() {
		v.At = time.Now().UTC()
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO page_views (url, user_agent, referrer, at) VALUES (?, ?, ?, ?)
	`, v.URL, v.UserAgent, v.Referrer, v.At.UTC())
	if err != nil {
		return fmt.Errorf("track page view: %w", err)
	}
	return nil
}

// Range bounds a summary. Zero times are open ends; To is exclusive.
type Range struct {
	From time.Time
	To   time.Time
}

// Traffic counts page views and distinct user agents in rg.
func (r *Repo) Traffic(ctx context.Context, rg Range) (views, visitors int, err error) {
	q := `SELECT COUNT(*), COUNT(DISTINCT user_agent) FROM page_views`
	var where []string
	var args []any
	if !rg.From.IsZero() {
		where = append(where, "at >= ?")
		args = append(args, rg.From.UTC())
	}
	if !rg.To.IsZero() {
		where = append(where, "at < ?")
		args = append(args, rg.To.UTC())
	}
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}

	if err := r.DB.QueryRowContext(ctx, q, args...).Scan(&views, &visitors); err != nil {
		return 0, 0, fmt.Errorf("traffic: %w", err)
	}
	return views, visitors, nil
}
