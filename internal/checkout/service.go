package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/veloraworld/velora-backend/internal/cart"
	"github.com/veloraworld/velora-backend/internal/orders"
	"github.com/veloraworld/velora-backend/internal/products"
	"github.com/veloraworld/velora-backend/pkg/config"
	"github.com/veloraworld/velora-backend/pkg/db/models"
	"github.com/veloraworld/velora-backend/pkg/enums"
	pkgerrors "github.com/veloraworld/velora-backend/pkg/errors"
	"github.com/veloraworld/velora-backend/pkg/logger"
	"github.com/veloraworld/velora-backend/pkg/metrics"
	"github.com/veloraworld/velora-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartReader interface {
	Snapshot(ctx context.Context, session string) (*cart.Snapshot, error)
}

type couponRedeemer interface {
	Redeem(ctx context.Context, code string) (*models.Coupon, error)
}

// PaymentVerifier confirms a payment reference with the provider before
// settlement opens a transaction. A nil verifier skips the check.
type PaymentVerifier interface {
	VerifyPaymentRef(ctx context.Context, paymentRef string) error
}

// OrderNotifier dispatches the confirmation email after settlement. The
// implementation is fire-and-forget; settlement never waits on it.
type OrderNotifier interface {
	OrderConfirmation(ctx context.Context, order *models.Order)
}

// Service quotes carts and settles paid checkouts.
type Service interface {
	Quote(ctx context.Context, input QuoteInput) (*Quote, error)
	Settle(ctx context.Context, input SettleInput) (*SettlementResult, error)
}

type service struct {
	carts    cartReader
	coupons  couponRedeemer
	products products.Repository
	orders   orders.Repository
	tx       txRunner
	verifier PaymentVerifier
	notifier OrderNotifier
	metrics  *metrics.CheckoutMetrics
	logger   *logger.Logger
	cfg      config.CheckoutConfig
}

// NewService builds the checkout service. The verifier and notifier are
// optional; everything else is required.
func NewService(
	carts cartReader,
	coupons couponRedeemer,
	productsRepo products.Repository,
	ordersRepo orders.Repository,
	tx txRunner,
	verifier PaymentVerifier,
	notifier OrderNotifier,
	checkoutMetrics *metrics.CheckoutMetrics,
	logg *logger.Logger,
	cfg config.CheckoutConfig,
) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart reader required")
	}
	if coupons == nil {
		return nil, fmt.Errorf("coupon redeemer required")
	}
	if productsRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		carts:    carts,
		coupons:  coupons,
		products: productsRepo,
		orders:   ordersRepo,
		tx:       tx,
		verifier: verifier,
		notifier: notifier,
		metrics:  checkoutMetrics,
		logger:   logg,
		cfg:      cfg,
	}, nil
}

// Quote recomputes the checkout summary server-side from the stored cart.
func (s *service) Quote(ctx context.Context, input QuoteInput) (*Quote, error) {
	if !input.DeliveryZone.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery zone")
	}

	snapshot, err := s.carts.Snapshot(ctx, input.Session)
	if err != nil {
		return nil, err
	}
	return s.buildQuote(ctx, snapshot.Items, input.DeliveryZone, input.CouponCode)
}

// Settle runs the post-payment settlement. The caller clears the cart on any
// non-nil result, success or not; a nil result means nothing was attempted
// and the cart survives.
func (s *service) Settle(ctx context.Context, input SettleInput) (*SettlementResult, error) {
	if !input.DeliveryZone.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery zone")
	}
	if strings.TrimSpace(input.PaymentRef) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment reference required")
	}

	snapshot, err := s.carts.Snapshot(ctx, input.Session)
	if err != nil {
		return nil, err
	}
	if len(snapshot.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	quote, err := s.buildQuote(ctx, snapshot.Items, input.DeliveryZone, input.CouponCode)
	if err != nil {
		return nil, err
	}

	if s.verifier != nil {
		if err := s.verifier.VerifyPaymentRef(ctx, input.PaymentRef); err != nil {
			return nil, err
		}
	}

	order := &models.Order{
		ID:               uuid.New(),
		CustomerName:     strings.TrimSpace(input.CustomerName),
		CustomerEmail:    strings.ToLower(strings.TrimSpace(input.CustomerEmail)),
		CustomerPhone:    input.CustomerPhone,
		Address:          strings.TrimSpace(input.Address),
		DeliveryZone:     input.DeliveryZone,
		Items:            quote.Items,
		SubtotalCents:    quote.SubtotalCents,
		DiscountCents:    quote.DiscountCents,
		DeliveryFeeCents: quote.DeliveryFeeCents,
		TotalCents:       quote.TotalCents,
		PaymentRef:       strings.TrimSpace(input.PaymentRef),
		Status:           enums.OrderStatusPaid,
	}

	started := time.Now()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.decrementInventory(ctx, tx, quote.Items); err != nil {
			return err
		}
		if _, err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		return nil
	})
	if err != nil {
		s.metrics.IncFailure("commit")
		s.metrics.ObserveSettlement("failure", time.Since(started))
		ctx := s.logger.WithFields(ctx, map[string]any{
			"payment_ref": order.PaymentRef,
			"total_cents": order.TotalCents,
		})
		s.logger.Error(ctx, "settlement transaction failed after payment, manual follow-up required", err)
		return &SettlementResult{TotalCents: quote.TotalCents},
			pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order settlement failed")
	}

	s.metrics.IncSettled(string(order.DeliveryZone))
	s.metrics.ObserveSettlement("success", time.Since(started))

	if s.notifier != nil {
		s.notifier.OrderConfirmation(ctx, order)
	}

	return &SettlementResult{
		OrderID:    order.ID,
		TotalCents: order.TotalCents,
		Committed:  true,
	}, nil
}

// decrementInventory applies the per-line stock writes. Missing products and
// exhausted sizes are skipped; the order is recorded regardless.
func (s *service) decrementInventory(ctx context.Context, tx *gorm.DB, items types.OrderLines) error {
	repo := s.products.WithTx(tx)
	for _, item := range items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			s.warnAnomaly(ctx, item, "unparseable product id")
			s.metrics.IncAnomaly("bad_product_id")
			continue
		}

		product, err := repo.FindByIDForUpdate(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.warnAnomaly(ctx, item, "product missing at settlement")
				s.metrics.IncAnomaly("missing_product")
				continue
			}
			return fmt.Errorf("load product %s: %w", item.ProductID, err)
		}

		current := product.Inventory[item.Size]
		if current <= 0 {
			s.warnAnomaly(ctx, item, "size already exhausted at settlement")
			s.metrics.IncAnomaly("zero_stock")
			continue
		}

		next := current - item.Quantity
		if next < 0 {
			next = 0
		}
		if product.Inventory == nil {
			product.Inventory = types.InventoryMap{}
		}
		product.Inventory[item.Size] = next

		if err := repo.Save(ctx, product); err != nil {
			return fmt.Errorf("update inventory for %s: %w", item.ProductID, err)
		}
	}
	return nil
}

func (s *service) buildQuote(ctx context.Context, items types.OrderLines, zone enums.DeliveryZone, couponCode string) (*Quote, error) {
	subtotal := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromInt(int64(item.UnitPriceCents)).Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
	}

	discount := decimal.Zero
	if strings.TrimSpace(couponCode) != "" {
		coupon, err := s.coupons.Redeem(ctx, couponCode)
		if err != nil {
			return nil, err
		}
		discount = decimal.NewFromInt(int64(coupon.AmountCents))
	}

	fee := decimal.NewFromInt(int64(s.cfg.DeliveryFeeOutsideCents))
	if zone == enums.DeliveryZoneLagos {
		fee = decimal.NewFromInt(int64(s.cfg.DeliveryFeeLagosCents))
	}

	total := subtotal.Sub(discount).Add(fee)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return &Quote{
		Items:            items,
		SubtotalCents:    int(subtotal.IntPart()),
		DiscountCents:    int(discount.IntPart()),
		DeliveryFeeCents: int(fee.IntPart()),
		TotalCents:       int(total.IntPart()),
	}, nil
}

func (s *service) warnAnomaly(ctx context.Context, item types.OrderLine, msg string) {
	ctx = s.logger.WithFields(ctx, map[string]any{
		"product_id": item.ProductID,
		"size":       item.Size,
		"quantity":   item.Quantity,
	})
	s.logger.Warn(ctx, msg)
}
