package content

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/veloraworld/velora-backend/pkg/db/models"
	pkgerrors "github.com/veloraworld/velora-backend/pkg/errors"
)

// HomepageKey is the content block backing the storefront landing page.
const HomepageKey = "homepage"

// UpdateHomepageInput carries the admin media edits. Nil fields are untouched.
type UpdateHomepageInput struct {
	VideoURL *string `json:"video_url,omitempty" validate:"omitempty,url"`
	ImageURL *string `json:"image_url,omitempty" validate:"omitempty,url"`
}

// Service reads homepage media publicly and writes it from the console.
type Service interface {
	Homepage(ctx context.Context) (*models.ContentBlock, error)
	UpdateHomepage(ctx context.Context, input UpdateHomepageInput) (*models.ContentBlock, error)
}

type service struct {
	repo Repository
}

// NewService builds the content service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("content repository required")
	}
	return &service{repo: repo}, nil
}

// Homepage returns the landing page media. A missing row is not an error; the
// storefront falls back to its bundled defaults.
func (s *service) Homepage(ctx context.Context) (*models.ContentBlock, error) {
	block, err := s.repo.Find(ctx, HomepageKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.ContentBlock{Key: HomepageKey}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load homepage content")
	}
	return block, nil
}

func (s *service) UpdateHomepage(ctx context.Context, input UpdateHomepageInput) (*models.ContentBlock, error) {
	current, err := s.Homepage(ctx)
	if err != nil {
		return nil, err
	}

	if input.VideoURL != nil {
		current.VideoURL = input.VideoURL
	}
	if input.ImageURL != nil {
		current.ImageURL = input.ImageURL
	}
	current.Key = HomepageKey

	if err := s.repo.Upsert(ctx, current); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save homepage content")
	}
	return current, nil
}
