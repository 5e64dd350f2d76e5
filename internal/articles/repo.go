package articles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"akili/pkg/models"
)

var ErrNotFound = errors.New("article not found")

// Sort fields accepted by ListQuery.OrderBy.
const (
	OrderPublishDate = "publishDate"
	OrderViewCount   = "viewCount"
	OrderCreatedAt   = "createdAt"
)

var orderColumns = map[string]string{
	OrderPublishDate: "publish_date",
	OrderViewCount:   "view_count",
	OrderCreatedAt:   "created_at",
}

const articleColumns = `
	id, title, content, excerpt, author, author_id, publish_date, category, subcategory,
	image_url, tags, view_count, read_time, status, featured, source_url,
	seo_title, seo_description, seo_keywords, scheduled_date, created_at, updated_at`

type Repo struct {
	DB *sql.DB
}

type ListQuery struct {
	Status   string
	Category string
	AuthorID string
	Featured *bool
	OrderBy  string // publishDate, viewCount or createdAt; always descending
	Limit    int
	Offset   int
}

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Paged returns q with the paging the query will actually use: a zero or
// oversized limit becomes DefaultListLimit and a negative offset 0. A negative
// limit means no limit and is kept.
func (q ListQuery) Paged() ListQuery {
	if q.Limit == 0 || q.Limit > MaxListLimit {
		q.Limit = DefaultListLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Create inserts a. ID and timestamps are filled in when empty.
func (r *Repo) Create(ctx context.Context, a *models.Article) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}

	tagsJSON, err := json.Marshal(a.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags for %s: %w", a.ID, err)
	}
	keywords := a.SEOKeywords
	if keywords == nil {
		keywords = []string{}
	}
	keywordsJSON, err := json.Marshal(keywords)
	if err != nil {
		return fmt.Errorf("marshal seo keywords for %s: %w", a.ID, err)
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO articles (`+articleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		a.ID, a.Title, a.Content, a.Excerpt, a.Author, a.AuthorID, a.PublishDate, a.Category,
		nullString(a.Subcategory), a.ImageURL, string(tagsJSON), a.ViewCount, a.ReadTime, a.Status,
		a.Featured, nullString(a.SourceURL), nullString(a.SEOTitle), nullString(a.SEODescription),
		string(keywordsJSON), a.ScheduledDate, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Article, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)
	a, err := scanArticle(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get article: %w", err)
	}
	return a, nil
}

// ExistsByTitle is the ingestion dedup check: exact, case-sensitive match.
func (r *Repo) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, `SELECT 1 FROM articles WHERE title = ? LIMIT 1`, title).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("exists by title: %w", err)
	}
	return true, nil
}

func (r *Repo) Count(ctx context.Context, q ListQuery) (int, error) {
	sqlStr, args := buildListSQL(q, true)
	var total int
	if err := r.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return total, nil
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]models.Article, error) {
	sqlStr, args := buildListSQL(q, false)
	return r.query(ctx, sqlStr, args...)
}

// ListByIDs returns the articles with the given ids in no particular order.
func (r *Repo) ListByIDs(ctx context.Context, ids []string) ([]models.Article, error) {
	if len(ids) == 0 {
		return []models.Article{}, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return r.query(ctx, `
		SELECT `+articleColumns+`
		FROM articles
		WHERE id IN (`+placeholders(len(ids))+`)
		ORDER BY created_at DESC
	`, args...)
}

// Search does a case-insensitive substring match over title, content and tags
// of published articles, optionally within one category.
func (r *Repo) Search(ctx context.Context, term, category string) ([]models.Article, error) {
	all, err := r.List(ctx, ListQuery{
		Status:   models.StatusPublished,
		Category: category,
		OrderBy:  OrderPublishDate,
		Limit:    -1,
	})
	if err != nil {
		return nil, fmt.Errorf("search articles: %w", err)
	}

	term = strings.ToLower(term)
	out := make([]models.Article, 0)
	for _, a := range all {
		if matchesTerm(a, term) {
			out = append(out, a)
		}
	}
	return out, nil
}

func matchesTerm(a models.Article, term string) bool {
	if strings.Contains(strings.ToLower(a.Title), term) || strings.Contains(strings.ToLower(a.Content), term) {
		return true
	}
	for _, tag := range a.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

// Update applies a validated patch and returns the stored result.
func (r *Repo) Update(ctx context.Context, id string, p ArticlePatch) (*models.Article, error) {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}
	if err := p.ValidateAgainst(existing); err != nil {
		return nil, err
	}

	sets, args, err := p.assignments()
	if err != nil {
		return nil, err
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	res, err := r.DB.ExecContext(ctx, `UPDATE articles SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("update article: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// BulkUpdate applies p to every id in one transaction. A missing id rolls the
// whole batch back.
func (r *Repo) BulkUpdate(ctx context.Context, ids []string, p BulkPatch) error {
	if len(ids) == 0 {
		return nil
	}
	if err := p.Validate(); err != nil {
		return err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk update: %w", err)
	}
	defer tx.Rollback()

	sets, args := p.assignments()
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC())

	stmt, err := tx.PrepareContext(ctx, `UPDATE articles SET `+strings.Join(sets, ", ")+` WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("prepare bulk update: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		res, err := stmt.ExecContext(ctx, append(args, id)...)
		if err != nil {
			return fmt.Errorf("bulk update %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("bulk update %s: %w", id, ErrNotFound)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk update: %w", err)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete article: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// DeleteMany deletes ids one by one and stops at the first error. It is not
// atomic: the returned slice holds the ids removed before the failure.
func (r *Repo) DeleteMany(ctx context.Context, ids []string) ([]string, error) {
	deleted := make([]string, 0, len(ids))
	for _, id := range ids {
		ok, err := r.Delete(ctx, id)
		if err != nil {
			return deleted, err
		}
		if ok {
			deleted = append(deleted, id)
		}
	}
	return deleted, nil
}

func (r *Repo) IncrementViewCount(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE articles SET view_count = view_count + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("increment view count: %w", err)
	}
	return nil
}

// TopByViews returns the most viewed articles of any status.
func (r *Repo) TopByViews(ctx context.Context, limit int) ([]models.ArticleViews, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, title, view_count
		FROM articles
		ORDER BY view_count DESC, title ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("top articles: %w", err)
	}
	defer rows.Close()

	out := make([]models.ArticleViews, 0, limit)
	for rows.Next() {
		var v models.ArticleViews
		if err := rows.Scan(&v.ID, &v.Title, &v.Views); err != nil {
			return nil, fmt.Errorf("scan top article: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// ViewsByCategory sums view counts per category, highest first.
func (r *Repo) ViewsByCategory(ctx context.Context, limit int) ([]models.CategoryViews, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT category, SUM(view_count) AS views
		FROM articles
		WHERE category <> ''
		GROUP BY category
		ORDER BY views DESC, category ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("category views: %w", err)
	}
	defer rows.Close()

	out := make([]models.CategoryViews, 0, limit)
	for rows.Next() {
		var v models.CategoryViews
		if err := rows.Scan(&v.Name, &v.Views); err != nil {
			return nil, fmt.Errorf("scan category views: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) query(ctx context.Context, sqlStr string, args ...any) ([]models.Article, error) {
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	out := make([]models.Article, 0)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(s scanner) (*models.Article, error) {
	var (
		a              models.Article
		subcategory    sql.NullString
		tagsJSON       string
		sourceURL      sql.NullString
		seoTitle       sql.NullString
		seoDescription sql.NullString
		keywordsJSON   string
		scheduled      sql.NullTime
	)

	if err := s.Scan(
		&a.ID, &a.Title, &a.Content, &a.Excerpt, &a.Author, &a.AuthorID, &a.PublishDate, &a.Category,
		&subcategory, &a.ImageURL, &tagsJSON, &a.ViewCount, &a.ReadTime, &a.Status, &a.Featured,
		&sourceURL, &seoTitle, &seoDescription, &keywordsJSON, &scheduled, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}

	a.Subcategory = subcategory.String
	a.SourceURL = sourceURL.String
	a.SEOTitle = seoTitle.String
	a.SEODescription = seoDescription.String
	if scheduled.Valid {
		t := scheduled.Time
		a.ScheduledDate = &t
	}

	a.Tags = []string{}
	_ = json.Unmarshal([]byte(tagsJSON), &a.Tags)
	_ = json.Unmarshal([]byte(keywordsJSON), &a.SEOKeywords)
	return &a, nil
}

// buildListSQL builds either COUNT(*) or SELECT list. A negative limit means
// no limit.
func buildListSQL(q ListQuery, countOnly bool) (string, []any) {
	baseSelect := `SELECT ` + articleColumns + ` FROM articles`
	if countOnly {
		baseSelect = `SELECT COUNT(*) FROM articles`
	}

	var where []string
	var args []any

	if s := strings.TrimSpace(q.Status); s != "" {
		where = append(where, "status = ?")
		args = append(args, s)
	}
	if c := strings.TrimSpace(q.Category); c != "" {
		where = append(where, "category = ?")
		args = append(args, c)
	}
	if a := strings.TrimSpace(q.AuthorID); a != "" {
		where = append(where, "author_id = ?")
		args = append(args, a)
	}
	if q.Featured != nil {
		where = append(where, "featured = ?")
		args = append(args, *q.Featured)
	}

	sqlStr := baseSelect
	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}
	if countOnly {
		return sqlStr, args
	}

	col, ok := orderColumns[q.OrderBy]
	if !ok {
		col = "created_at"
	}
	sqlStr += " ORDER BY " + col + " DESC, id ASC"

	q = q.Paged()
	if q.Limit < 0 {
		return sqlStr, args
	}
	sqlStr += " LIMIT ? OFFSET ?"
	args = append(args, q.Limit, q.Offset)
	return sqlStr, args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
