package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/casefile/casefile/internal/model"
)

// CreatePerson inserts a person under a category the user owns. The insert
// selects against the owned category in one statement, so a category that is
// missing or owned by someone else inserts nothing and yields ErrNotFound.
func (r *Repository) CreatePerson(ctx context.Context, userID, categoryID int64, name string) (*model.Person, error) {
	query := `
		INSERT INTO persons (name, category_id, created_at)
		SELECT $1, c.id, $2
		FROM categories c
		WHERE c.id = $3 AND c.user_id = $4
		RETURNING id
	`

	person := &model.Person{
		Name:       name,
		CategoryID: categoryID,
		CreatedAt:  time.Now().UTC(),
	}

	err := r.pool.QueryRow(ctx, query, person.Name, person.CreatedAt, categoryID, userID).Scan(&person.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to create person: %w", err)
	}

	return person, nil
}

// ListPeople returns the people in a category owned by the user.
// A non-owned category yields ErrNotFound, never an empty list, so callers
// cannot probe for foreign category ids.
func (r *Repository) ListPeople(ctx context.Context, userID, categoryID int64) ([]*model.Person, error) {
	owned, err := r.categoryOwned(ctx, r.pool, userID, categoryID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, ErrNotFound
	}

	query := `
		SELECT p.id, p.name, p.category_id, p.created_at
		FROM persons p
		JOIN categories c ON c.id = p.category_id
		WHERE p.category_id = $1 AND c.user_id = $2
		ORDER BY p.created_at DESC, p.id DESC
	`

	rows, err := r.pool.Query(ctx, query, categoryID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	defer rows.Close()

	var people []*model.Person
	for rows.Next() {
		var p model.Person
		if err := rows.Scan(&p.ID, &p.Name, &p.CategoryID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating people: %w", err)
	}

	return people, nil
}

// personOwned reports whether the person exists and its ownership chain
// terminates at the user. A person whose category has vanished is treated
// as not owned.
func (r *Repository) personOwned(ctx context.Context, q querier, userID, personID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM persons p
			JOIN categories c ON c.id = p.category_id
			WHERE p.id = $1 AND c.user_id = $2
		)
	`

	var owned bool
	if err := q.QueryRow(ctx, query, personID, userID).Scan(&owned); err != nil {
		return false, fmt.Errorf("failed to check person ownership: %w", err)
	}
	return owned, nil
}

// DeletePerson removes a person and all their files in one transaction,
// files first. Absent or non-owned persons yield ErrNotFound.
func (r *Repository) DeletePerson(ctx context.Context, userID, personID int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	owned, err := r.personOwned(ctx, tx, userID, personID)
	if err != nil {
		return err
	}
	if !owned {
		return ErrNotFound
	}

	_, err = tx.Exec(ctx, `DELETE FROM files WHERE person_id = $1`, personID)
	if err != nil {
		return fmt.Errorf("failed to delete files for person: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		DELETE FROM persons p
		USING categories c
		WHERE p.id = $1 AND p.category_id = c.id AND c.user_id = $2
	`, personID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit person delete: %w", err)
	}

	return nil
}
