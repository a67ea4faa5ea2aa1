// Package roommate serves shared-housing posts.
package roommate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/misionesarrienda/api/internal/db"
	"github.com/misionesarrienda/api/internal/media"
)

// Post is a row of the roommates table joined with its author.
type Post struct {
	ID           string
	UserID       string
	AuthorName   *string
	AuthorAvatar *string
	Title        string
	Description  string
	City         string
	Budget       decimal.Decimal
	Images       any
	CoverKey     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ErrNotFound is returned when a post does not exist.
var ErrNotFound = errors.New("roommate post not found")

const postColumns = `r.id, r.user_id, u.name, u.avatar, r.title, r.description, r.city,
	r.budget, r.images, r.cover_key, r.created_at, r.updated_at`

// Repository handles roommate post persistence.
type Repository struct {
	db db.DBTX
}

// NewRepository creates a new roommate Repository.
func NewRepository(db db.DBTX) *Repository {
	return &Repository{db: db}
}

// List returns posts newest first, optionally narrowed to a city.
func (r *Repository) List(ctx context.Context, city string, limit, offset int) ([]Post, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+postColumns+`
		 FROM roommates r
		 LEFT JOIN users u ON u.id = r.user_id
		 WHERE ($1 = '' OR lower(r.city) = lower($1))
		 ORDER BY r.created_at DESC
		 LIMIT $2 OFFSET $3`,
		city, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list roommate posts: %w", err)
	}
	defer rows.Close()

	var out []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roommate posts: %w", err)
	}
	return out, nil
}

// GetByID fetches a post by its UUID.
func (r *Repository) GetByID(ctx context.Context, id string) (*Post, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+postColumns+`
		 FROM roommates r
		 LEFT JOIN users u ON u.id = r.user_id
		 WHERE r.id = $1`,
		id,
	)
	p, err := scanPost(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func scanPost(row pgx.Row) (*Post, error) {
	var (
		p      Post
		images []byte
	)
	if err := row.Scan(
		&p.ID, &p.UserID, &p.AuthorName, &p.AuthorAvatar, &p.Title, &p.Description, &p.City,
		&p.Budget, &images, &p.CoverKey, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan roommate post: %w", err)
	}
	p.Images = media.DecodeImages(images)
	return &p, nil
}
