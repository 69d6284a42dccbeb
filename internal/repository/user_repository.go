package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/vehicle-fleet-service/internal/model"
)

// UserRepo manages the borrower directory.  Borrowers are identified
// by full name, which must be unique.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// Create adds a borrower.  Duplicate names return a ConflictError
// naming the existing entry.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	var existing uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM users WHERE full_name = ?`, u.FullName).Scan(&existing)
	switch {
	case err == nil:
		return &ConflictError{ExistingID: existing, Reason: "borrower already exists"}
	case !errors.Is(err, sql.ErrNoRows):
		return wrapStore(err)
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (full_name) VALUES (?)`, u.FullName)
	if err != nil {
		return wrapStore(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return wrapStore(err)
	}
	u.ID = uint64(id)
	return nil
}

// GetByID loads a borrower by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, full_name, created_at FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.FullName, &u.CreatedAt)
	if err != nil {
		return nil, wrapStore(err)
	}
	return &u, nil
}

// List returns all borrowers ordered by name.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, full_name, created_at FROM users ORDER BY full_name ASC`)
	if err != nil {
		return nil, wrapStore(err)
	}
	defer rows.Close()
	out := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.FullName, &u.CreatedAt); err != nil {
			return nil, wrapStore(err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStore(err)
	}
	return out, nil
}
