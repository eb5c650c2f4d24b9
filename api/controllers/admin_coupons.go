package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/veloraworld/velora-backend/api/responses"
	"github.com/veloraworld/velora-backend/api/validators"
	couponsvc "github.com/veloraworld/velora-backend/internal/coupons"
	pkgerrors "github.com/veloraworld/velora-backend/pkg/errors"
	"github.com/veloraworld/velora-backend/pkg/logger"
)

// AdminCreateCoupon registers a single-use discount code.
func AdminCreateCoupon(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		var payload couponsvc.CreateCouponInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := svc.CreateCoupon(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, coupon)
	}
}

// AdminListCoupons returns every coupon with its redemption state.
func AdminListCoupons(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		coupons, err := svc.ListCoupons(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, coupons)
	}
}

// AdminMarkCouponUsed retires a code after the discount was honored.
func AdminMarkCouponUsed(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		code := couponCodeParam(r)
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required"))
			return
		}

		if err := svc.MarkUsed(r.Context(), code); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "used"})
	}
}

// AdminDeleteCoupon removes a code entirely.
func AdminDeleteCoupon(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		code := couponCodeParam(r)
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required"))
			return
		}

		if err := svc.DeleteCoupon(r.Context(), code); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func couponCodeParam(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "code"))
}
