package media

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"akili/pkg/models"
)

const mediaColumns = `id, name, folder, stored_path, url, content_type, size, uploaded_by, uploaded_at`

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Create(ctx context.Context, m *models.MediaFile) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO media_files (`+mediaColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.Name, m.Folder, m.StoredPath, m.URL, m.ContentType, m.Size, m.UploadedBy, m.UploadedAt)
	if err != nil {
		return fmt.Errorf("insert media: %w", err)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.MediaFile, error) {
	var m models.MediaFile
	err := r.DB.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media_files WHERE id = ?`, id).Scan(
		&m.ID, &m.Name, &m.Folder, &m.StoredPath, &m.URL, &m.ContentType, &m.Size, &m.UploadedBy, &m.UploadedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get media: %w", err)
	}
	return &m, nil
}

// List returns files newest first, optionally within one folder.
func (r *Repo) List(ctx context.Context, folder string) ([]models.MediaFile, error) {
	q := `SELECT ` + mediaColumns + ` FROM media_files`
	var args []any
	if folder != "" {
		q += ` WHERE folder = ?`
		args = append(args, folder)
	}
	q += ` ORDER BY uploaded_at DESC, id ASC`

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()

	out := make([]models.MediaFile, 0)
	for rows.Next() {
		var m models.MediaFile
		if err := rows.Scan(
			&m.ID, &m.Name, &m.Folder, &m.StoredPath, &m.URL, &m.ContentType, &m.Size, &m.UploadedBy, &m.UploadedAt,
		); err != nil {
			return nil, fmt.Errorf("scan media: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM media_files WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete media: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
