package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/casefile/casefile/internal/model"
)

// CreateCategory inserts a category owned by the given user. The schema
// enforces per-user name uniqueness; a duplicate yields ErrCategoryExists.
func (r *Repository) CreateCategory(ctx context.Context, userID int64, name string) (*model.Category, error) {
	query := `
		INSERT INTO categories (name, user_id, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	category := &model.Category{
		Name:      name,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	err := r.pool.QueryRow(ctx, query, category.Name, category.UserID, category.CreatedAt).Scan(&category.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrCategoryExists
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return category, nil
}

// ListCategories returns every category owned by the user, newest first.
func (r *Repository) ListCategories(ctx context.Context, userID int64) ([]*model.Category, error) {
	query := `
		SELECT id, name, user_id, created_at
		FROM categories
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.UserID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// categoryOwned reports whether the category exists and belongs to the user.
func (r *Repository) categoryOwned(ctx context.Context, q querier, userID, categoryID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM categories WHERE id = $1 AND user_id = $2
		)
	`

	var owned bool
	if err := q.QueryRow(ctx, query, categoryID, userID).Scan(&owned); err != nil {
		return false, fmt.Errorf("failed to check category ownership: %w", err)
	}
	return owned, nil
}

// DeleteCategory removes a category and every person and file beneath it in
// one transaction, leaf-first. A category that is absent or owned by another
// user yields ErrNotFound with nothing removed.
func (r *Repository) DeleteCategory(ctx context.Context, userID, categoryID int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	owned, err := r.categoryOwned(ctx, tx, userID, categoryID)
	if err != nil {
		return err
	}
	if !owned {
		return ErrNotFound
	}

	// Leaf-first: files, then persons, then the category itself.
	_, err = tx.Exec(ctx, `
		DELETE FROM files
		WHERE person_id IN (SELECT id FROM persons WHERE category_id = $1)
	`, categoryID)
	if err != nil {
		return fmt.Errorf("failed to delete files in category: %w", err)
	}

	_, err = tx.Exec(ctx, `DELETE FROM persons WHERE category_id = $1`, categoryID)
	if err != nil {
		return fmt.Errorf("failed to delete persons in category: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM categories WHERE id = $1 AND user_id = $2`, categoryID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Deleted concurrently between the ownership check and now.
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit category delete: %w", err)
	}

	return nil
}
