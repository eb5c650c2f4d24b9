package controllers

import (
	"net/http"

	"github.com/veloraworld/velora-backend/api/middleware"
	"github.com/veloraworld/velora-backend/api/responses"
	"github.com/veloraworld/velora-backend/api/validators"
	cartsvc "github.com/veloraworld/velora-backend/internal/cart"
	checkoutsvc "github.com/veloraworld/velora-backend/internal/checkout"
	pkgerrors "github.com/veloraworld/velora-backend/pkg/errors"
	"github.com/veloraworld/velora-backend/pkg/logger"
)

// CheckoutQuote prices the session's cart without committing anything.
func CheckoutQuote(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		session := middleware.CartSessionFromContext(r.Context())
		if session == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart session is required"))
			return
		}

		var payload checkoutsvc.QuoteInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload.Session = session

		quote, err := svc.Quote(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// CheckoutSettle turns a paid cart into an order. Any settlement attempt that
// got far enough to produce a result clears the cart, even when the order
// commit failed after payment; retaining the cart there would invite a second
// charge for the same goods.
func CheckoutSettle(svc checkoutsvc.Service, carts cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		session := middleware.CartSessionFromContext(r.Context())
		if session == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart session is required"))
			return
		}

		var payload checkoutsvc.SettleInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload.Session = session

		result, err := svc.Settle(r.Context(), payload)

		if result != nil && carts != nil {
			if clearErr := carts.Clear(r.Context(), session); clearErr != nil {
				logError(r.Context(), logg, "clearing cart after settlement", clearErr)
			}
		}

		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
