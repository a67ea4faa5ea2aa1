package property

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/misionesarrienda/api/internal/displayname"
	"github.com/misionesarrienda/api/internal/media"
	"github.com/misionesarrienda/api/internal/storage"
	"github.com/misionesarrienda/api/internal/upload"
)

// Owner is the public card of a listing's publisher.
type Owner struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
}

// Summary is a property in a listing page.
type Summary struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Price        decimal.Decimal `json:"price"`
	Currency     string          `json:"currency"`
	City         string          `json:"city"`
	PropertyType string          `json:"propertyType"`
	Bedrooms     int             `json:"bedrooms"`
	Bathrooms    int             `json:"bathrooms"`
	CoverURL     *string         `json:"coverUrl,omitempty"`
	Owner        Owner           `json:"owner"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Detail is a single property with its full gallery.
type Detail struct {
	Summary
	Description string    `json:"description"`
	Province    string    `json:"province"`
	Status      string    `json:"status"`
	Images      []string  `json:"images"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Page is one page of summaries.
type Page struct {
	Items  []Summary `json:"items"`
	Total  int       `json:"total"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
}

// Service contains the business logic for property listings.
type Service struct {
	repo    *Repository
	store   storage.Storage
	gallery *storage.Gallery
	avatars displayname.AvatarPolicy
	log     *zap.Logger
}

// NewService creates a new property Service.
func NewService(repo *Repository, store storage.Storage, gallery *storage.Gallery, avatars displayname.AvatarPolicy, log *zap.Logger) *Service {
	return &Service{repo: repo, store: store, gallery: gallery, avatars: avatars, log: log}
}

// List returns one page of active properties.
func (s *Service) List(ctx context.Context, f Filter) (*Page, error) {
	props, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}

	items := make([]Summary, 0, len(props))
	for i := range props {
		items = append(items, s.summary(&props[i]))
	}
	return &Page{Items: items, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

// Get returns the property with images from the bucket first and the
// record second.
func (s *Service) Get(ctx context.Context, id string) (*Detail, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	images := s.gallery.Images(ctx, imagePrefix(p), p.Images)
	d := &Detail{
		Summary:     s.summary(p),
		Description: p.Description,
		Province:    p.Province,
		Status:      p.Status,
		Images:      images,
		UpdatedAt:   p.UpdatedAt,
	}
	if len(images) > 0 {
		d.CoverURL = &images[0]
	}
	return d, nil
}

// AddImage uploads img into the property's folder and records its key.
// Only the owner may add images.
func (s *Service) AddImage(ctx context.Context, userID, id string, img *upload.Image) (*Detail, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != userID {
		return nil, ErrForbidden
	}

	key := media.ObjectKey(p.OwnerID, p.ID, uuid.NewString()+img.Extension())
	if err := s.store.Upload(ctx, key, img.Reader(), img.Size(), img.ContentType); err != nil {
		return nil, fmt.Errorf("upload property image: %w", err)
	}
	if err := s.repo.AppendImage(ctx, p.ID, key); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.log.Warn("remove orphaned property image", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}
	s.gallery.Invalidate(ctx, imagePrefix(p))

	return s.Get(ctx, id)
}

// IsNotFound returns true when the error indicates a property was not found.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsForbidden returns true when the caller does not own the property.
func (s *Service) IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func (s *Service) summary(p *Property) Summary {
	sum := Summary{
		ID:           p.ID,
		Title:        p.Title,
		Price:        p.Price,
		Currency:     p.Currency,
		City:         p.City,
		PropertyType: p.PropertyType,
		Bedrooms:     p.Bedrooms,
		Bathrooms:    p.Bathrooms,
		Owner: Owner{
			ID:          p.OwnerID,
			DisplayName: displayname.SanitizePtr(p.OwnerName),
		},
		CreatedAt: p.CreatedAt,
	}
	if cover, ok := s.gallery.Cover(p.Images); ok {
		sum.CoverURL = &cover
	}
	if p.OwnerAvatar != nil {
		if a, ok := s.avatars.Clean(*p.OwnerAvatar); ok {
			sum.Owner.AvatarURL = &a
		}
	}
	return sum
}

// imagePrefix is the bucket folder holding a property's uploads.
func imagePrefix(p *Property) string {
	return media.Prefix(p.OwnerID, p.ID)
}
