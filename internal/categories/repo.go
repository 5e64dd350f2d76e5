package categories

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

var (
	ErrNotFound     = errors.New("category not found")
	ErrEmptyName    = errors.New("name must not be empty")
	ErrEmptyPatch   = errors.New("no fields to update")
	ErrEmptyReorder = errors.New("ids required")
)

const categoryColumns = `
	id, name, description, color, sort_order, subcategories, slug, is_active, created_at, updated_at`

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// List returns categories by display order. activeOnly hides disabled ones
// from readers.
func (r *Repo) List(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	q := `SELECT ` + categoryColumns + ` FROM categories`
	if activeOnly {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY sort_order ASC, name ASC`

	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := make([]models.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Category, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// Create stores c. An empty slug is derived from the name and an order of 0
// places the category after the current last one.
func (r *Repo) Create(ctx context.Context, c *models.Category) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return ErrEmptyName
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Slug == "" {
		c.Slug = Slugify(c.Name)
	}
	if c.Subcategories == nil {
		c.Subcategories = []string{}
	}
	if c.Order == 0 {
		var maxOrder int
		if err := r.DB.QueryRowContext(ctx, `SELECT COALESCE(MAX(sort_order), 0) FROM categories`).Scan(&maxOrder); err != nil {
			return fmt.Errorf("max order: %w", err)
		}
		c.Order = maxOrder + 1
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now

	subs, err := json.Marshal(c.Subcategories)
	if err != nil {
		return fmt.Errorf("marshal subcategories: %w", err)
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO categories (`+categoryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.Description, c.Color, c.Order, string(subs), c.Slug, c.IsActive, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// Patch lists the editable category fields. Nil means unchanged.
type Patch struct {
	Name          *string   `json:"name"`
	Description   *string   `json:"description"`
	Color         *string   `json:"color"`
	Order         *int      `json:"order"`
	Subcategories *[]string `json:"subcategories"`
	Slug          *string   `json:"slug"`
	IsActive      *bool     `json:"isActive"`
}

func (p Patch) Validate() error {
	if p.Name == nil && p.Description == nil && p.Color == nil && p.Order == nil &&
		p.Subcategories == nil && p.Slug == nil && p.IsActive == nil {
		return ErrEmptyPatch
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (r *Repo) Update(ctx context.Context, id string, p Patch) (*models.Category, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var sets []string
	var args []any
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if p.Name != nil {
		add("name", strings.TrimSpace(*p.Name))
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.Color != nil {
		add("color", *p.Color)
	}
	if p.Order != nil {
		add("sort_order", *p.Order)
	}
	if p.Subcategories != nil {
		subs := *p.Subcategories
		if subs == nil {
			subs = []string{}
		}
		b, err := json.Marshal(subs)
		if err != nil {
			return nil, fmt.Errorf("marshal subcategories: %w", err)
		}
		add("subcategories", string(b))
	}
	if p.Slug != nil {
		add("slug", Slugify(*p.Slug))
	}
	if p.IsActive != nil {
		add("is_active", *p.IsActive)
	}
	add("updated_at", time.Now().UTC())
	args = append(args, id)

	res, err := r.DB.ExecContext(ctx, `UPDATE categories SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete category: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Reorder sets order = index+1 for each id in one transaction. An unknown id
// aborts the whole reorder.
func (r *Repo) Reorder(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return ErrEmptyReorder
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reorder: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE categories SET sort_order = ?, updated_at = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("prepare reorder: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i, id := range ids {
		res, err := stmt.ExecContext(ctx, i+1, now, id)
		if err != nil {
			return fmt.Errorf("reorder %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("reorder %s: %w", id, ErrNotFound)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reorder: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCategory(s scanner) (*models.Category, error) {
	var (
		c        models.Category
		subsJSON string
	)
	if err := s.Scan(
		&c.ID, &c.Name, &c.Description, &c.Color, &c.Order, &subsJSON, &c.Slug, &c.IsActive,
		&c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.Subcategories = []string{}
	_ = json.Unmarshal([]byte(subsJSON), &c.Subcategories)
	return &c, nil
}
