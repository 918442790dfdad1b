package mediaindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cofit/cofitcli/internal/client/models"
	"github.com/cofit/cofitcli/internal/dbx"
	"github.com/google/uuid"
)

var (
	newHandle = func() string { return HandleScheme + uuid.NewString() }
	now       = time.Now
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Register(ctx context.Context, rec models.MediaRecord) (*models.MediaRecord, error) {
	if rec.FilePath == "" {
		return nil, errors.New("media record has no file path")
	}
	if rec.Handle == "" {
		rec.Handle = newHandle()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now()
	}

	query := `INSERT INTO media_index (handle, file_path, mime_type, file_name, file_size, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(handle) DO UPDATE SET file_path = excluded.file_path,
			mime_type = excluded.mime_type,
			file_name = excluded.file_name,
			file_size = excluded.file_size`

	_, err := r.db.ExecContext(ctx, query, rec.Handle, rec.FilePath, rec.MimeType, rec.FileName, rec.FileSize, rec.CreatedAt.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to register media[%s]: %w", rec.Handle, err)
	}
	return &rec, nil
}

const selectColumns = `SELECT handle, file_path, mime_type, file_name, file_size, created_at FROM media_index`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*models.MediaRecord, error) {
	var rec models.MediaRecord
	var created int64
	if err := s.Scan(&rec.Handle, &rec.FilePath, &rec.MimeType, &rec.FileName, &rec.FileSize, &created); err != nil {
		return nil, err
	}
	rec.CreatedAt = time.UnixMilli(created)
	return &rec, nil
}

func (r *SQLiteRepository) Lookup(ctx context.Context, handle string) (*models.MediaRecord, error) {
	rec, err := scanRecord(r.db.QueryRowContext(ctx, selectColumns+` WHERE handle = ?`, handle))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lookup media[%s]: %w", handle, err)
	}
	return rec, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, handle string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM media_index WHERE handle = ?`, handle); err != nil {
		return fmt.Errorf("failed to delete media[%s]: %w", handle, err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*models.MediaRecord, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` ORDER BY created_at, handle`)
	if err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	defer rows.Close()

	var out []*models.MediaRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan media row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate media rows: %w", err)
	}
	return out, nil
}
