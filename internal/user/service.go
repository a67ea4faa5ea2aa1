package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/misionesarrienda/api/internal/displayname"
	"github.com/misionesarrienda/api/internal/media"
	"github.com/misionesarrienda/api/internal/storage"
	"github.com/misionesarrienda/api/internal/upload"
)

// Profile is the user as shown to clients.
type Profile struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	AvatarURL   *string   `json:"avatarUrl,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	Bio         *string   `json:"bio,omitempty"`
	UserType    string    `json:"userType"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// UpdateInput is a validated profile edit.
type UpdateInput struct {
	Name  *string
	Phone *string
	Bio   *string
}

// Service contains business logic for user profiles.
type Service struct {
	repo     *Repository
	avatars  storage.Storage
	resolver *media.Resolver
	policy   displayname.AvatarPolicy
	guard    displayname.Guard
	log      *zap.Logger
}

// NewService creates a new user Service. resolver must share the avatar
// bucket's public base so that previous avatars can be recognised.
func NewService(repo *Repository, avatars storage.Storage, resolver *media.Resolver, policy displayname.AvatarPolicy, guard displayname.Guard, log *zap.Logger) *Service {
	return &Service{repo: repo, avatars: avatars, resolver: resolver, policy: policy, guard: guard, log: log}
}

// GetProfile returns the profile of user id.
func (s *Service) GetProfile(ctx context.Context, id string) (*Profile, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toProfile(u), nil
}

// UpdateProfile applies the display-name guards and persists in.
// Without a new name, an invalid stored name is repaired from the email.
func (s *Service) UpdateProfile(ctx context.Context, id string, in UpdateInput) (*Profile, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var stored string
	if current.Name != nil {
		stored = *current.Name
	}

	var res displayname.Result
	if in.Name != nil {
		res = s.guard.Apply(*in.Name, current.Email, "")
	} else {
		res = s.guard.Apply("", current.Email, stored)
	}
	if !s.guard.Enabled {
		s.log.Debug("display name guard disabled, name kept as given", zap.String("user_id", id))
	}

	upd := ProfileUpdate{Phone: in.Phone, Bio: in.Bio}
	if res.Name != stored {
		upd.Name = &res.Name
	}
	if res.Modified {
		s.log.Info("display name guard applied",
			zap.String("user_id", id),
			zap.String("source", string(res.Source)),
			zap.String("reason", res.Reason),
		)
	}

	u, err := s.repo.UpdateProfile(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	return s.toProfile(u), nil
}

// UploadAvatar stores img as the user's avatar and removes the previous
// object when it lives in the avatar bucket.
func (s *Service) UploadAvatar(ctx context.Context, id string, img *upload.Image) (*Profile, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	key := media.ObjectKey(id, "avatar-"+uuid.NewString()+img.Extension())
	if err := s.avatars.Upload(ctx, key, img.Reader(), img.Size(), img.ContentType); err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}

	u, err := s.repo.SetAvatar(ctx, id, s.avatars.PublicURL(key))
	if err != nil {
		if delErr := s.avatars.Delete(ctx, key); delErr != nil {
			s.log.Warn("remove orphaned avatar", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}

	if current.Avatar != nil {
		if oldKey, ok := s.resolver.KeyOf(*current.Avatar); ok && oldKey != key {
			if err := s.avatars.Delete(ctx, oldKey); err != nil {
				s.log.Warn("remove previous avatar", zap.String("key", oldKey), zap.Error(err))
			}
		}
	}

	return s.toProfile(u), nil
}

// IsNotFound returns true when the error indicates a user was not found.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func (s *Service) toProfile(u *User) *Profile {
	p := &Profile{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: displayname.SanitizePtr(u.Name),
		Phone:       u.Phone,
		Bio:         u.Bio,
		UserType:    u.UserType,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
	if u.Avatar != nil {
		if a, ok := s.policy.Clean(*u.Avatar); ok {
			p.AvatarURL = &a
		}
	}
	return p
}
