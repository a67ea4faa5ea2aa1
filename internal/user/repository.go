// Package user manages user profiles and their persistence.
package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/misionesarrienda/api/internal/db"
)

// User is a row of the users table. Accounts are created by the hosted auth
// provider; this service only reads and edits profiles.
type User struct {
	ID        string
	Email     string
	Name      *string
	Phone     *string
	Bio       *string
	Avatar    *string
	UserType  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfileUpdate holds the columns a user may change. Nil fields are kept.
type ProfileUpdate struct {
	Name  *string
	Phone *string
	Bio   *string
}

// ErrNotFound is returned when a user does not exist.
var ErrNotFound = errors.New("user not found")

const userColumns = `id, email, name, phone, bio, avatar, user_type, created_at, updated_at`

// Repository handles all user database operations.
type Repository struct {
	db db.DBTX
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db db.DBTX) *Repository {
	return &Repository{db: db}
}

// GetByID fetches a user by their UUID.
func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// UpdateProfile writes the non-nil fields of upd and returns the updated row.
func (r *Repository) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`UPDATE users
		 SET name = COALESCE($2, name),
		     phone = COALESCE($3, phone),
		     bio = COALESCE($4, bio),
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, upd.Name, upd.Phone, upd.Bio,
	))
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

// SetAvatar stores the avatar URL and returns the updated row.
func (r *Repository) SetAvatar(ctx context.Context, id, avatar string) (*User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`UPDATE users SET avatar = $2, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, avatar,
	))
	if err != nil {
		return nil, fmt.Errorf("set avatar: %w", err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (*User, error) {
	u := &User{}
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Phone, &u.Bio, &u.Avatar, &u.UserType, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
