package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/veloraworld/velora-backend/pkg/config"
	"github.com/veloraworld/velora-backend/pkg/db/models"
	pkgerrors "github.com/veloraworld/velora-backend/pkg/errors"
	"github.com/veloraworld/velora-backend/pkg/logger"
	"github.com/veloraworld/velora-backend/pkg/types"
)

// kvStore is the slice of the redis client the cart needs.
type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(session string) string
}

// productReader resolves listings for stock ceilings and price snapshots.
type productReader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service manages per-session carts stored in Redis.
type Service interface {
	AddItem(ctx context.Context, session string, input AddItemInput) (*Snapshot, error)
	Snapshot(ctx context.Context, session string) (*Snapshot, error)
	Clear(ctx context.Context, session string) error
}

type service struct {
	store    kvStore
	products productReader
	logger   *logger.Logger
	ttl      time.Duration
}

// NewService builds the cart service.
func NewService(store kvStore, products productReader, logg *logger.Logger, cfg config.CartConfig) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &service{store: store, products: products, logger: logg, ttl: ttl}, nil
}

// AddItem merges the line into the cart. Lines are keyed by (product, size);
// a request that would push the merged quantity past the current stock for
// that size is rejected, not capped.
func (s *service) AddItem(ctx context.Context, session string, input AddItemInput) (*Snapshot, error) {
	session = strings.TrimSpace(session)
	if session == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart session required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	productID, err := uuid.Parse(strings.TrimSpace(input.ProductID))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id")
	}
	size := strings.TrimSpace(input.Size)
	if size == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "size required")
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.Sizes.Contains(size) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("size %q not offered", size))
	}

	ceiling := product.Inventory[size]
	if ceiling <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("size %q is out of stock", size))
	}

	items := s.loadItems(ctx, session)

	merged := false
	for i := range items {
		if items[i].ProductID == productID.String() && items[i].Size == size {
			next := items[i].Quantity + input.Quantity
			if next > ceiling {
				return nil, pkgerrors.New(pkgerrors.CodeConflict,
					fmt.Sprintf("insufficient stock: only %d left for size %q", ceiling, size))
			}
			items[i].Quantity = next
			merged = true
			break
		}
	}
	if !merged {
		if input.Quantity > ceiling {
			return nil, pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("insufficient stock: only %d left for size %q", ceiling, size))
		}
		items = append(items, types.OrderLine{
			ProductID:      productID.String(),
			Name:           product.Name,
			Size:           size,
			Quantity:       input.Quantity,
			UnitPriceCents: discountedPriceCents(product),
			ImageURL:       product.ImageURL,
		})
	}

	if err := s.saveItems(ctx, session, items); err != nil {
		return nil, err
	}
	return snapshotOf(items), nil
}

// Snapshot returns the cart for the session. Missing, unreadable, or corrupt
// state yields an empty cart rather than an error.
func (s *service) Snapshot(ctx context.Context, session string) (*Snapshot, error) {
	session = strings.TrimSpace(session)
	if session == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart session required")
	}
	return snapshotOf(s.loadItems(ctx, session)), nil
}

// Clear drops the cart. Clearing an absent cart is a no-op.
func (s *service) Clear(ctx context.Context, session string) error {
	session = strings.TrimSpace(session)
	if session == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart session required")
	}
	if err := s.store.Del(ctx, s.store.CartKey(session)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) loadItems(ctx context.Context, session string) types.OrderLines {
	raw, err := s.store.Get(ctx, s.store.CartKey(session))
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			s.logger.Warn(s.logger.WithCartSession(ctx, session), "cart read failed, starting empty")
		}
		return types.OrderLines{}
	}

	var items types.OrderLines
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.logger.Warn(s.logger.WithCartSession(ctx, session), "cart payload corrupt, starting empty")
		return types.OrderLines{}
	}
	return items
}

func (s *service) saveItems(ctx context.Context, session string, items types.OrderLines) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	if err := s.store.Set(ctx, s.store.CartKey(session), string(payload), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	return nil
}

func discountedPriceCents(product *models.Product) int {
	if product.DiscountPercent <= 0 {
		return product.PriceCents
	}
	discounted := product.PriceCents * (100 - product.DiscountPercent) / 100
	if discounted < 0 {
		return 0
	}
	return discounted
}
