package roommate

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/misionesarrienda/api/internal/displayname"
	"github.com/misionesarrienda/api/internal/media"
	"github.com/misionesarrienda/api/internal/storage"
)

// Author is the public card of a post's author.
type Author struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
}

// View is a roommate post as returned by the API.
type View struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	City        string          `json:"city"`
	Budget      decimal.Decimal `json:"budget"`
	CoverURL    *string         `json:"coverUrl,omitempty"`
	Images      []string        `json:"images"`
	Author      Author          `json:"author"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Service contains the business logic for roommate posts.
type Service struct {
	repo    *Repository
	gallery *storage.Gallery
	avatars displayname.AvatarPolicy
}

// NewService creates a new roommate Service.
func NewService(repo *Repository, gallery *storage.Gallery, avatars displayname.AvatarPolicy) *Service {
	return &Service{repo: repo, gallery: gallery, avatars: avatars}
}

// List returns posts with their recorded images only. Bucket folders are
// listed on the detail view.
func (s *Service) List(ctx context.Context, city string, limit, offset int) ([]View, error) {
	posts, err := s.repo.List(ctx, city, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]View, 0, len(posts))
	for i := range posts {
		out = append(out, s.view(&posts[i], s.gallery.RecordImages(posts[i].Images)))
	}
	return out, nil
}

// Get returns a post with images from its storage folder first.
func (s *Service) Get(ctx context.Context, id string) (*View, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	images := s.gallery.Images(ctx, media.Prefix(p.UserID, p.ID), p.Images)
	v := s.view(p, images)
	return &v, nil
}

// IsNotFound returns true when the error indicates a post was not found.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// view builds the response; the cover is the cover key when it resolves,
// otherwise the first image.
func (s *Service) view(p *Post, images []string) View {
	v := View{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		City:        p.City,
		Budget:      p.Budget,
		Images:      images,
		Author: Author{
			ID:          p.UserID,
			DisplayName: displayname.SanitizePtr(p.AuthorName),
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}

	if p.CoverKey != nil {
		if u, ok := s.gallery.Resolve(*p.CoverKey); ok {
			v.CoverURL = &u
		}
	}
	if v.CoverURL == nil && len(images) > 0 {
		v.CoverURL = &images[0]
	}

	if p.AuthorAvatar != nil {
		if a, ok := s.avatars.Clean(*p.AuthorAvatar); ok {
			v.Author.AvatarURL = &a
		}
	}
	return v
}
