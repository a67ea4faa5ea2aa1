// Package property serves rental listings and their image galleries.
package property

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/misionesarrienda/api/internal/db"
	"github.com/misionesarrienda/api/internal/media"
)

// Status values of a listing.
const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

// Property is a row of the properties table joined with its owner.
type Property struct {
	ID           string
	OwnerID      string
	OwnerName    *string
	OwnerAvatar  *string
	Title        string
	Description  string
	Price        decimal.Decimal
	Currency     string
	City         string
	Province     string
	PropertyType string
	Bedrooms     int
	Bathrooms    int
	// Images is the raw decoded images column. Older rows hold a bare
	// string, newer ones an array of keys or URLs.
	Images    any
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Filter narrows a listing query.
type Filter struct {
	City   string
	Type   string
	Limit  int
	Offset int
}

var (
	// ErrNotFound is returned when a property does not exist.
	ErrNotFound = errors.New("property not found")
	// ErrForbidden is returned when a user acts on a listing they do not own.
	ErrForbidden = errors.New("property belongs to another user")
)

const propertyColumns = `p.id, p.owner_id, u.name, u.avatar, p.title, p.description, p.price,
	p.currency, p.city, p.province, p.property_type, p.bedrooms, p.bathrooms,
	p.images, p.status, p.created_at, p.updated_at`

// Repository handles property persistence.
type Repository struct {
	db db.DBTX
}

// NewRepository creates a new property Repository.
func NewRepository(db db.DBTX) *Repository {
	return &Repository{db: db}
}

// List returns active properties matching f, newest first, and the total
// number of matches.
func (r *Repository) List(ctx context.Context, f Filter) ([]Property, int, error) {
	where := []string{"p.status = $1"}
	args := []any{StatusActive}
	if f.City != "" {
		args = append(args, f.City)
		where = append(where, fmt.Sprintf("lower(p.city) = lower($%d)", len(args)))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		where = append(where, fmt.Sprintf("p.property_type = $%d", len(args)))
	}
	args = append(args, f.Limit, f.Offset)

	query := `SELECT ` + propertyColumns + `, COUNT(*) OVER() AS total_count
		FROM properties p
		LEFT JOIN users u ON u.id = p.owner_id
		WHERE ` + strings.Join(where, " AND ") + fmt.Sprintf(`
		ORDER BY p.created_at DESC
		LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list properties: %w", err)
	}
	defer rows.Close()

	var (
		out   []Property
		total int
	)
	for rows.Next() {
		var (
			p      Property
			images []byte
		)
		if err := rows.Scan(
			&p.ID, &p.OwnerID, &p.OwnerName, &p.OwnerAvatar, &p.Title, &p.Description, &p.Price,
			&p.Currency, &p.City, &p.Province, &p.PropertyType, &p.Bedrooms, &p.Bathrooms,
			&images, &p.Status, &p.CreatedAt, &p.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan property: %w", err)
		}
		p.Images = media.DecodeImages(images)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate properties: %w", err)
	}
	return out, total, nil
}

// GetByID fetches a property by its UUID regardless of status.
func (r *Repository) GetByID(ctx context.Context, id string) (*Property, error) {
	var (
		p      Property
		images []byte
	)
	err := r.db.QueryRow(ctx,
		`SELECT `+propertyColumns+`
		 FROM properties p
		 LEFT JOIN users u ON u.id = p.owner_id
		 WHERE p.id = $1`,
		id,
	).Scan(
		&p.ID, &p.OwnerID, &p.OwnerName, &p.OwnerAvatar, &p.Title, &p.Description, &p.Price,
		&p.Currency, &p.City, &p.Province, &p.PropertyType, &p.Bedrooms, &p.Bathrooms,
		&images, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get property by id: %w", err)
	}
	p.Images = media.DecodeImages(images)
	return &p, nil
}

// AppendImage adds key to the end of the property's images array.
func (r *Repository) AppendImage(ctx context.Context, id, key string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE properties
		 SET images = CASE jsonb_typeof(images)
		                WHEN 'array' THEN images
		                WHEN 'string' THEN CASE
		                  WHEN left(btrim(images #>> '{}'), 1) = '[' THEN (images #>> '{}')::jsonb
		                  ELSE jsonb_build_array(images)
		                END
		                ELSE '[]'::jsonb
		              END || to_jsonb($2::text),
		     updated_at = NOW()
		 WHERE id = $1`,
		id, key,
	)
	if err != nil {
		return fmt.Errorf("append property image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
