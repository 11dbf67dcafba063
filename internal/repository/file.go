package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/casefile/casefile/internal/model"
)

// CreateFile stores an upload under a person the user owns. The payload is
// already fully in memory by the time this runs, so the insert either
// commits a complete file row or nothing. The ownership chain is resolved
// inside the insert itself.
func (r *Repository) CreateFile(ctx context.Context, userID, personID int64, file *model.File) (*model.File, error) {
	query := `
		INSERT INTO files (name, payload, content_type, kind, description, size, person_id, created_at)
		SELECT $1, $2, $3, $4, $5, $6, p.id, $7
		FROM persons p
		JOIN categories c ON c.id = p.category_id
		WHERE p.id = $8 AND c.user_id = $9
		RETURNING id
	`

	file.PersonID = personID
	file.Size = int64(len(file.Payload))
	file.CreatedAt = time.Now().UTC()

	err := r.pool.QueryRow(ctx, query,
		file.Name,
		file.Payload,
		file.ContentType,
		file.Kind,
		file.Description,
		file.Size,
		file.CreatedAt,
		personID,
		userID,
	).Scan(&file.ID)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	return file, nil
}

// ListFiles returns file metadata (no payloads) for a person owned by the
// user. Non-owned persons yield ErrNotFound.
func (r *Repository) ListFiles(ctx context.Context, userID, personID int64) ([]*model.File, error) {
	owned, err := r.personOwned(ctx, r.pool, userID, personID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, ErrNotFound
	}

	query := `
		SELECT f.id, f.name, f.content_type, f.kind, f.description, f.size, f.person_id, f.created_at
		FROM files f
		JOIN persons p ON p.id = f.person_id
		JOIN categories c ON c.id = p.category_id
		WHERE f.person_id = $1 AND c.user_id = $2
		ORDER BY f.created_at DESC, f.id DESC
	`

	rows, err := r.pool.Query(ctx, query, personID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var files []*model.File
	for rows.Next() {
		var f model.File
		if err := rows.Scan(&f.ID, &f.Name, &f.ContentType, &f.Kind, &f.Description, &f.Size, &f.PersonID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, &f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating files: %w", err)
	}

	return files, nil
}

// GetFile retrieves a single file with its payload, addressed by id under a
// specific person, scoped by the full ownership chain in one filtered
// lookup.
func (r *Repository) GetFile(ctx context.Context, userID, personID, fileID int64) (*model.File, error) {
	query := `
		SELECT f.id, f.name, f.payload, f.content_type, f.kind, f.description, f.size, f.person_id, f.created_at
		FROM files f
		JOIN persons p ON p.id = f.person_id
		JOIN categories c ON c.id = p.category_id
		WHERE f.id = $1 AND f.person_id = $2 AND c.user_id = $3
	`

	var f model.File
	err := r.pool.QueryRow(ctx, query, fileID, personID, userID).Scan(
		&f.ID,
		&f.Name,
		&f.Payload,
		&f.ContentType,
		&f.Kind,
		&f.Description,
		&f.Size,
		&f.PersonID,
		&f.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	return &f, nil
}

// DeleteFile removes one file, scoped by the ownership chain. A single
// statement is already atomic, so no explicit transaction is opened.
func (r *Repository) DeleteFile(ctx context.Context, userID, personID, fileID int64) error {
	query := `
		DELETE FROM files f
		USING persons p, categories c
		WHERE f.id = $1
		  AND f.person_id = $2
		  AND f.person_id = p.id
		  AND p.category_id = c.id
		  AND c.user_id = $3
	`

	tag, err := r.pool.Exec(ctx, query, fileID, personID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
