package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veloraworld/velora-backend/pkg/db/models"
	pkgerrors "github.com/veloraworld/velora-backend/pkg/errors"
	"github.com/veloraworld/velora-backend/pkg/types"
)

// Service exposes catalog reads for the storefront and writes for the admin console.
type Service interface {
	ListProducts(ctx context.Context, filters ListFilters) ([]models.Product, error)
	ListRecommended(ctx context.Context, limit int) ([]models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService builds the catalog service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListProducts(ctx context.Context, filters ListFilters) ([]models.Product, error) {
	rows, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return rows, nil
}

func (s *service) ListRecommended(ctx context.Context, limit int) ([]models.Product, error) {
	rows, err := s.repo.ListRecommended(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list recommended products")
	}
	return rows, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

// CreateProduct registers a listing. Every size starts with a stock count of
// one; the console adjusts counters afterwards.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	sizes := normalizeSizes(input.Sizes)
	if len(sizes) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one size is required")
	}

	inventory := types.InventoryMap{}
	for _, size := range sizes {
		inventory[size] = 1
	}

	product := &models.Product{
		Name:            strings.TrimSpace(input.Name),
		Category:        strings.TrimSpace(input.Category),
		PriceCents:      input.PriceCents,
		DiscountPercent: input.DiscountPercent,
		ImageURL:        strings.TrimSpace(input.ImageURL),
		HoverImageURL:   input.HoverImageURL,
		Images:          types.StringList(input.Images),
		Sizes:           sizes,
		Inventory:       inventory,
		Recommended:     input.Recommended,
		IsFeatured:      input.IsFeatured,
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return created, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
	}
	if input.PriceCents != nil {
		product.PriceCents = *input.PriceCents
	}
	if input.DiscountPercent != nil {
		product.DiscountPercent = *input.DiscountPercent
	}
	if input.ImageURL != nil {
		product.ImageURL = strings.TrimSpace(*input.ImageURL)
	}
	if input.HoverImageURL != nil {
		product.HoverImageURL = input.HoverImageURL
	}
	if input.Images != nil {
		product.Images = types.StringList(*input.Images)
	}
	if input.Sizes != nil {
		sizes := normalizeSizes(*input.Sizes)
		if len(sizes) == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one size is required")
		}
		product.Sizes = sizes
		// New sizes start at one unit; counters for removed sizes are dropped.
		next := types.InventoryMap{}
		for _, size := range sizes {
			if qty, ok := product.Inventory[size]; ok {
				next[size] = qty
			} else {
				next[size] = 1
			}
		}
		product.Inventory = next
	}
	if input.Inventory != nil {
		next := types.InventoryMap{}
		for size, qty := range *input.Inventory {
			if !product.Sizes.Contains(size) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown size %q", size))
			}
			if qty < 0 {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "inventory counts cannot be negative")
			}
			next[size] = qty
		}
		product.Inventory = next
	}
	if input.Recommended != nil {
		product.Recommended = *input.Recommended
	}
	if input.IsFeatured != nil {
		product.IsFeatured = *input.IsFeatured
	}

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return product, nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func normalizeSizes(raw []string) types.StringList {
	seen := map[string]bool{}
	out := types.StringList{}
	for _, size := range raw {
		trimmed := strings.TrimSpace(size)
		if trimmed == "" || seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		out = append(out, trimmed)
	}
	return out
}
