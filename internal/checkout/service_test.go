package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/veloraworld/velora-backend/internal/cart"
	"github.com/veloraworld/velora-backend/internal/orders"
	"github.com/veloraworld/velora-backend/internal/products"
	"github.com/veloraworld/velora-backend/pkg/config"
	"github.com/veloraworld/velora-backend/pkg/db/models"
	"github.com/veloraworld/velora-backend/pkg/enums"
	pkgerrors "github.com/veloraworld/velora-backend/pkg/errors"
	"github.com/veloraworld/velora-backend/pkg/logger"
	"github.com/veloraworld/velora-backend/pkg/types"
)

func setupCheckoutTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	productsSchema := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  category TEXT NOT NULL,
  price_cents INTEGER NOT NULL,
  discount_percent INTEGER NOT NULL DEFAULT 0,
  image_url TEXT NOT NULL,
  hover_image_url TEXT,
  images TEXT,
  sizes TEXT,
  inventory TEXT,
  recommended INTEGER NOT NULL DEFAULT 0,
  is_featured INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	ordersSchema := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  customer_name TEXT NOT NULL,
  customer_email TEXT NOT NULL,
  customer_phone TEXT,
  address TEXT NOT NULL,
  delivery_zone TEXT NOT NULL,
  items TEXT,
  subtotal_cents INTEGER NOT NULL,
  discount_cents INTEGER NOT NULL DEFAULT 0,
  delivery_fee_cents INTEGER NOT NULL DEFAULT 0,
  total_cents INTEGER NOT NULL,
  payment_ref TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'paid',
  created_at DATETIME
);`
	require.NoError(t, db.Exec(productsSchema).Error)
	require.NoError(t, db.Exec(ordersSchema).Error)
	require.NoError(t, db.Exec("DELETE FROM products").Error)
	require.NoError(t, db.Exec("DELETE FROM orders").Error)
	return db
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// failingTxRunner rolls back after the callback to simulate a commit failure.
type failingTxRunner struct {
	db *gorm.DB
}

func (r failingTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := fn(tx); err != nil {
			return err
		}
		return errors.New("connection reset during commit")
	})
	return err
}

type stubCartReader struct {
	items types.OrderLines
}

func (s stubCartReader) Snapshot(ctx context.Context, session string) (*cart.Snapshot, error) {
	subtotal := 0
	for _, item := range s.items {
		subtotal += item.UnitPriceCents * item.Quantity
	}
	return &cart.Snapshot{Items: s.items, SubtotalCents: subtotal}, nil
}

type stubRedeemer struct {
	coupon *models.Coupon
	err    error
}

func (s stubRedeemer) Redeem(ctx context.Context, code string) (*models.Coupon, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.coupon, nil
}

type stubVerifier struct {
	err   error
	calls int
}

func (s *stubVerifier) VerifyPaymentRef(ctx context.Context, paymentRef string) error {
	s.calls++
	return s.err
}

type captureNotifier struct {
	order *models.Order
}

func (c *captureNotifier) OrderConfirmation(ctx context.Context, order *models.Order) {
	c.order = order
}

func testCheckoutLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled})
}

func testCheckoutConfig() config.CheckoutConfig {
	return config.CheckoutConfig{
		DeliveryFeeLagosCents:   450000,
		DeliveryFeeOutsideCents: 500000,
	}
}

func seedSettlementProduct(t *testing.T, db *gorm.DB, inventory types.InventoryMap) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:         uuid.New(),
		Name:       "Velour Hoodie",
		Category:   "hoodies",
		PriceCents: 2000000,
		ImageURL:   "https://cdn.velora.test/hoodie.jpg",
		Sizes:      types.StringList{"S", "M", "L"},
		Inventory:  inventory,
	}
	created, err := products.NewRepository(db).Create(context.Background(), product)
	require.NoError(t, err)
	return created
}

func newSettlementService(t *testing.T, db *gorm.DB, tx txRunner, items types.OrderLines, opts ...func(*serviceDeps)) Service {
	t.Helper()
	deps := &serviceDeps{
		carts:    stubCartReader{items: items},
		coupons:  stubRedeemer{},
		verifier: nil,
		notifier: nil,
	}
	for _, opt := range opts {
		opt(deps)
	}
	svc, err := NewService(
		deps.carts,
		deps.coupons,
		products.NewRepository(db),
		orders.NewRepository(db),
		tx,
		deps.verifier,
		deps.notifier,
		nil,
		testCheckoutLogger(),
		testCheckoutConfig(),
	)
	require.NoError(t, err)
	return svc
}

type serviceDeps struct {
	carts    cartReader
	coupons  couponRedeemer
	verifier PaymentVerifier
	notifier OrderNotifier
}

func line(productID uuid.UUID, size string, qty, unitPrice int) types.OrderLine {
	return types.OrderLine{
		ProductID:      productID.String(),
		Name:           "Velour Hoodie",
		Size:           size,
		Quantity:       qty,
		UnitPriceCents: unitPrice,
	}
}

func settleInput(session string) SettleInput {
	return SettleInput{
		Session:       session,
		CustomerName:  "Ada Obi",
		CustomerEmail: "Ada@Velora.Test",
		Address:       "12 Marina Rd",
		DeliveryZone:  enums.DeliveryZoneLagos,
		PaymentRef:    "pay_ref_123",
	}
}

func TestSettleDecrementsInventoryAndCreatesOrder(t *testing.T) {
	db := setupCheckoutTestDB(t)
	product := seedSettlementProduct(t, db, types.InventoryMap{"S": 5, "M": 2, "L": 0})
	items := types.OrderLines{line(product.ID, "S", 2, 2000000)}
	notifier := &captureNotifier{}
	svc := newSettlementService(t, db, gormTxRunner{db}, items, func(d *serviceDeps) {
		d.notifier = notifier
	})

	result, err := svc.Settle(context.Background(), settleInput("sess-1"))
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Committed)
	assert.NotEqual(t, uuid.Nil, result.OrderID)

	reloaded, err := products.NewRepository(db).FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.Inventory["S"])

	order, err := orders.NewRepository(db).FindByID(context.Background(), result.OrderID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPaid, order.Status)
	assert.Equal(t, "ada@velora.test", order.CustomerEmail)
	assert.Equal(t, 4000000, order.SubtotalCents)
	assert.Equal(t, 450000, order.DeliveryFeeCents)
	assert.Equal(t, 4450000, order.TotalCents)
	assert.False(t, order.CreatedAt.IsZero(), "timestamp assigned at settlement")

	require.NotNil(t, notifier.order)
	assert.Equal(t, result.OrderID, notifier.order.ID)
}

func TestSettleClampsDecrementAtZero(t *testing.T) {
	db := setupCheckoutTestDB(t)
	product := seedSettlementProduct(t, db, types.InventoryMap{"M": 1})
	items := types.OrderLines{line(product.ID, "M", 4, 2000000)}
	svc := newSettlementService(t, db, gormTxRunner{db}, items)

	result, err := svc.Settle(context.Background(), settleInput("sess-1"))
	require.NoError(t, err)
	assert.True(t, result.Committed)

	reloaded, err := products.NewRepository(db).FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.Inventory["M"], "counter floors at zero, never negative")
}

func TestSettleSkipsMissingProduct(t *testing.T) {
	db := setupCheckoutTestDB(t)
	product := seedSettlementProduct(t, db, types.InventoryMap{"S": 3})
	items := types.OrderLines{
		line(uuid.New(), "S", 1, 1000000), // product deleted since add-to-cart
		line(product.ID, "S", 1, 2000000),
	}
	svc := newSettlementService(t, db, gormTxRunner{db}, items)

	result, err := svc.Settle(context.Background(), settleInput("sess-1"))
	require.NoError(t, err, "missing products never fail settlement")
	assert.True(t, result.Committed)

	order, err := orders.NewRepository(db).FindByID(context.Background(), result.OrderID)
	require.NoError(t, err)
	assert.Len(t, order.Items, 2, "order snapshot keeps every cart line")

	reloaded, err := products.NewRepository(db).FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Inventory["S"])
}

func TestSettleSkipsExhaustedSize(t *testing.T) {
	db := setupCheckoutTestDB(t)
	product := seedSettlementProduct(t, db, types.InventoryMap{"L": 0})
	items := types.OrderLines{line(product.ID, "L", 2, 2000000)}
	svc := newSettlementService(t, db, gormTxRunner{db}, items)

	result, err := svc.Settle(context.Background(), settleInput("sess-1"))
	require.NoError(t, err, "exhausted sizes never fail settlement")
	assert.True(t, result.Committed)

	reloaded, err := products.NewRepository(db).FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.Inventory["L"], "no write for exhausted size")
}

func TestSettleUnknownSizeDefaultsToZeroStock(t *testing.T) {
	db := setupCheckoutTestDB(t)
	product := seedSettlementProduct(t, db, types.InventoryMap{"S": 1})
	items := types.OrderLines{line(product.ID, "XXL", 1, 2000000)}
	svc := newSettlementService(t, db, gormTxRunner{db}, items)

	result, err := svc.Settle(context.Background(), settleInput("sess-1"))
	require.NoError(t, err)
	assert.True(t, result.Committed)

	reloaded, err := products.NewRepository(db).FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Inventory["S"], "other counters untouched")
	_, exists := reloaded.Inventory["XXL"]
	assert.False(t, exists)
}

func TestSettleRejectsEmptyCartBeforePayment(t *testing.T) {
	db := setupCheckoutTestDB(t)
	verifier := &stubVerifier{}
	svc := newSettlementService(t, db, gormTxRunner{db}, types.OrderLines{}, func(d *serviceDeps) {
		d.verifier = verifier
	})

	result, err := svc.Settle(context.Background(), settleInput("sess-1"))
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	assert.Zero(t, verifier.calls, "payment provider never contacted for an empty cart")
}

func TestSettleShortCircuitsOnFailedPaymentVerification(t *testing.T) {
	db := setupCheckoutTestDB(t)
	product := seedSettlementProduct(t, db, types.InventoryMap{"S": 3})
	items := types.OrderLines{line(product.ID, "S", 1, 2000000)}
	verifier := &stubVerifier{err: pkgerrors.New(pkgerrors.CodePayment, "payment pending")}
	svc := newSettlementService(t, db, gormTxRunner{db}, items, func(d *serviceDeps) {
		d.verifier = verifier
	})

	result, err := svc.Settle(context.Background(), settleInput("sess-1"))
	require.Error(t, err)
	assert.Nil(t, result, "nil result means the cart survives")
	assert.Equal(t, pkgerrors.CodePayment, pkgerrors.As(err).Code())

	reloaded, err := products.NewRepository(db).FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.Inventory["S"], "no inventory writes before verification passes")
}

func TestSettleCommitFailureRollsBackAndReportsResult(t *testing.T) {
	db := setupCheckoutTestDB(t)
	product := seedSettlementProduct(t, db, types.InventoryMap{"S": 3})
	items := types.OrderLines{line(product.ID, "S", 1, 2000000)}
	svc := newSettlementService(t, db, failingTxRunner{db}, items)

	result, err := svc.Settle(context.Background(), settleInput("sess-1"))
	require.Error(t, err)
	require.NotNil(t, result, "non-nil result tells the caller to clear the cart anyway")
	assert.False(t, result.Committed)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())

	reloaded, err := products.NewRepository(db).FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.Inventory["S"], "rollback restores the counter")

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count, "no order row survives a failed commit")
}

func TestQuoteAppliesCouponFeeAndClamp(t *testing.T) {
	db := setupCheckoutTestDB(t)
	product := seedSettlementProduct(t, db, types.InventoryMap{"S": 3})
	items := types.OrderLines{line(product.ID, "S", 1, 300000)}
	svc := newSettlementService(t, db, gormTxRunner{db}, items, func(d *serviceDeps) {
		d.coupons = stubRedeemer{coupon: &models.Coupon{Code: "BIG", AmountCents: 10000000}}
	})

	quote, err := svc.Quote(context.Background(), QuoteInput{
		Session:      "sess-1",
		DeliveryZone: enums.DeliveryZoneOutsideLagos,
		CouponCode:   "BIG",
	})
	require.NoError(t, err)

	assert.Equal(t, 300000, quote.SubtotalCents)
	assert.Equal(t, 10000000, quote.DiscountCents)
	assert.Equal(t, 500000, quote.DeliveryFeeCents)
	assert.Equal(t, 0, quote.TotalCents, "oversized coupon clamps the total at zero")
}

func TestQuotePropagatesCouponErrors(t *testing.T) {
	db := setupCheckoutTestDB(t)
	svc := newSettlementService(t, db, gormTxRunner{db}, types.OrderLines{}, func(d *serviceDeps) {
		d.coupons = stubRedeemer{err: pkgerrors.New(pkgerrors.CodeValidation, "invalid coupon code")}
	})

	_, err := svc.Quote(context.Background(), QuoteInput{
		Session:      "sess-1",
		DeliveryZone: enums.DeliveryZoneLagos,
		CouponCode:   "GHOST",
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
