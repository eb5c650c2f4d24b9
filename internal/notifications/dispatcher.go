package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/veloraworld/velora-backend/pkg/db/models"
	"github.com/veloraworld/velora-backend/pkg/logger"
)

const defaultSendTimeout = 15 * time.Second

// sender posts template parameters to the email relay.
type sender interface {
	Send(ctx context.Context, params map[string]any) error
}

// Dispatcher sends order confirmation emails off the request path. Failures
// are logged and never surface to the checkout flow.
type Dispatcher struct {
	sender  sender
	logger  *logger.Logger
	timeout time.Duration
}

// NewDispatcher builds the notification dispatcher. A nil sender yields a
// dispatcher that only logs, which keeps dev environments working without
// relay credentials.
func NewDispatcher(s sender, logg *logger.Logger) (*Dispatcher, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Dispatcher{sender: s, logger: logg, timeout: defaultSendTimeout}, nil
}

// OrderConfirmation dispatches the confirmation email on a detached goroutine
// with its own timeout. The request context is not reused; settlement has
// already responded by the time the email goes out.
func (d *Dispatcher) OrderConfirmation(ctx context.Context, order *models.Order) {
	if order == nil {
		return
	}
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		d.send(sendCtx, order)
	}()
}

func (d *Dispatcher) send(ctx context.Context, order *models.Order) {
	ctx = d.logger.WithField(ctx, "order_id", order.ID.String())

	if d.sender == nil {
		d.logger.Info(ctx, "email relay not configured, skipping order confirmation")
		return
	}

	params := map[string]any{
		"order_id":       order.ID.String(),
		"customer_name":  order.CustomerName,
		"customer_email": order.CustomerEmail,
		"order_summary":  SummarizeItems(order),
		"order_total":    FormatNaira(order.TotalCents),
		"delivery_zone":  string(order.DeliveryZone),
		"address":        order.Address,
	}

	if err := d.sender.Send(ctx, params); err != nil {
		d.logger.Error(ctx, "order confirmation email failed", err)
		return
	}
	d.logger.Info(ctx, "order confirmation email sent")
}

// SummarizeItems renders the line items as "name (size) xN" joined by commas.
func SummarizeItems(order *models.Order) string {
	parts := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		parts = append(parts, fmt.Sprintf("%s (%s) x%d", item.Name, item.Size, item.Quantity))
	}
	return strings.Join(parts, ", ")
}

// FormatNaira renders a kobo amount as a naira string, e.g. "₦4500.00".
func FormatNaira(amountCents int) string {
	naira := decimal.NewFromInt(int64(amountCents)).Div(decimal.NewFromInt(100))
	return "₦" + naira.StringFixed(2)
}
