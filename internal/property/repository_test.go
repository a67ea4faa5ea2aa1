package property

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testOwnerID    = "a4ef1f3d-c3e8-46df-b186-5b5c837cc14b"
	testPropertyID = "7d0c2b7e-58f4-4d0e-9a43-2f0b6c1d9e11"
)

var propertyColumnNames = []string{
	"id", "owner_id", "name", "avatar", "title", "description", "price",
	"currency", "city", "province", "property_type", "bedrooms", "bathrooms",
	"images", "status", "created_at", "updated_at",
}

func strPtr(s string) *string { return &s }

func sampleProperty() Property {
	ts := time.Date(2025, 4, 2, 9, 30, 0, 0, time.UTC)
	return Property{
		ID:           testPropertyID,
		OwnerID:      testOwnerID,
		OwnerName:    strPtr("Carla Benítez"),
		Title:        "Departamento céntrico",
		Description:  "Dos ambientes a metros de la costanera",
		Price:        decimal.RequireFromString("185000.50"),
		Currency:     "ARS",
		City:         "Posadas",
		Province:     "Misiones",
		PropertyType: "departamento",
		Bedrooms:     1,
		Bathrooms:    1,
		Status:       StatusActive,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
}

func propertyRow(p Property, images string) []any {
	var raw []byte
	if images != "" {
		raw = []byte(images)
	}
	return []any{
		p.ID, p.OwnerID, p.OwnerName, p.OwnerAvatar, p.Title, p.Description, p.Price,
		p.Currency, p.City, p.Province, p.PropertyType, p.Bedrooms, p.Bathrooms,
		raw, p.Status, p.CreatedAt, p.UpdatedAt,
	}
}

func propertyRows(p Property, images string) *pgxmock.Rows {
	return pgxmock.NewRows(propertyColumnNames).AddRow(propertyRow(p, images)...)
}

func setupRepo(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewRepository(mock), mock
}

func TestRepository_List_Filters(t *testing.T) {
	repo, mock := setupRepo(t)
	p := sampleProperty()

	rows := pgxmock.NewRows(append(propertyColumnNames, "total_count")).
		AddRow(append(propertyRow(p, `["a.jpg"]`), 42)...)
	mock.ExpectQuery(`SELECT .+ FROM properties p\s+LEFT JOIN users u .+ lower\(p.city\) = lower\(\$2\) AND p.property_type = \$3`).
		WithArgs(StatusActive, "posadas", "departamento", 10, 20).
		WillReturnRows(rows)

	got, total, err := repo.List(context.Background(), Filter{City: "posadas", Type: "departamento", Limit: 10, Offset: 20})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 42, total)
	assert.True(t, decimal.RequireFromString("185000.5").Equal(got[0].Price))
	assert.Equal(t, []any{"a.jpg"}, got[0].Images)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_List_NoFilters(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(`SELECT .+ FROM properties p`).
		WithArgs(StatusActive, 20, 0).
		WillReturnRows(pgxmock.NewRows(append(propertyColumnNames, "total_count")))

	got, total, err := repo.List(context.Background(), Filter{Limit: 20})

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(`SELECT .+ WHERE p.id = \$1`).
		WithArgs(testPropertyID).
		WillReturnRows(propertyRows(sampleProperty(), `"legacy/cover.jpg"`))

	got, err := repo.GetByID(context.Background(), testPropertyID)

	require.NoError(t, err)
	assert.Equal(t, "Departamento céntrico", got.Title)
	assert.Equal(t, "legacy/cover.jpg", got.Images)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(`SELECT .+ WHERE p.id = \$1`).
		WithArgs(testPropertyID).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), testPropertyID)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_AppendImage(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectExec("UPDATE properties").
		WithArgs(testPropertyID, "k.jpg").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.AppendImage(context.Background(), testPropertyID, "k.jpg"))

	mock.ExpectExec("UPDATE properties").
		WithArgs(testPropertyID, "k.jpg").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repo.AppendImage(context.Background(), testPropertyID, "k.jpg"), ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
