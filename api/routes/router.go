package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/veloraworld/velora-backend/api/controllers"
	"github.com/veloraworld/velora-backend/api/middleware"
	authsvc "github.com/veloraworld/velora-backend/internal/auth"
	cartsvc "github.com/veloraworld/velora-backend/internal/cart"
	checkoutsvc "github.com/veloraworld/velora-backend/internal/checkout"
	contentsvc "github.com/veloraworld/velora-backend/internal/content"
	couponsvc "github.com/veloraworld/velora-backend/internal/coupons"
	ordersvc "github.com/veloraworld/velora-backend/internal/orders"
	productsvc "github.com/veloraworld/velora-backend/internal/products"
	"github.com/veloraworld/velora-backend/pkg/config"
	"github.com/veloraworld/velora-backend/pkg/db"
	"github.com/veloraworld/velora-backend/pkg/logger"
	"github.com/veloraworld/velora-backend/pkg/redis"
)

// Services bundles everything the router hands to controllers.
type Services struct {
	Auth     authsvc.Service
	Products productsvc.Service
	Cart     cartsvc.Service
	Checkout checkoutsvc.Service
	Coupons  couponsvc.Service
	Orders   ordersvc.Service
	Content  contentsvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	svcs Services,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisClient, logg))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	// Storefront surface. Anonymous, keyed by the cart session header.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CartSession(logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.PublicListProducts(svcs.Products, logg))
			r.Get("/recommended", controllers.PublicRecommendedProducts(svcs.Products, logg))
			r.Get("/{productId}", controllers.PublicProductDetail(svcs.Products, logg))
		})

		r.Get("/content/homepage", controllers.PublicHomepageContent(svcs.Content, logg))
		r.Post("/coupons/validate", controllers.PublicValidateCoupon(svcs.Coupons, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartView(svcs.Cart, logg))
			r.Post("/items", controllers.CartAddItem(svcs.Cart, logg))
			r.Delete("/", controllers.CartClear(svcs.Cart, logg))
		})

		r.Post("/checkout/quote", controllers.CheckoutQuote(svcs.Checkout, logg))
		r.Post("/checkout", controllers.CheckoutSettle(svcs.Checkout, svcs.Cart, logg))

		// Console surface.
		r.Route("/admin", func(r chi.Router) {
			r.Route("/auth", func(r chi.Router) {
				if !cfg.App.IsProd() {
					r.Post("/register", controllers.AdminRegister(svcs.Auth, logg))
				}
				r.Post("/login", controllers.AdminLogin(svcs.Auth, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWT, logg))

				r.Route("/products", func(r chi.Router) {
					r.Get("/", controllers.PublicListProducts(svcs.Products, logg))
					r.Post("/", controllers.AdminCreateProduct(svcs.Products, logg))
					r.Patch("/{productId}", controllers.AdminUpdateProduct(svcs.Products, logg))
					r.Delete("/{productId}", controllers.AdminDeleteProduct(svcs.Products, logg))
				})

				r.Route("/orders", func(r chi.Router) {
					r.Get("/", controllers.AdminListOrders(svcs.Orders, logg))
					r.Get("/{orderId}", controllers.AdminOrderDetail(svcs.Orders, logg))
				})

				r.Route("/coupons", func(r chi.Router) {
					r.Get("/", controllers.AdminListCoupons(svcs.Coupons, logg))
					r.Post("/", controllers.AdminCreateCoupon(svcs.Coupons, logg))
					r.Post("/{code}/use", controllers.AdminMarkCouponUsed(svcs.Coupons, logg))
					r.Delete("/{code}", controllers.AdminDeleteCoupon(svcs.Coupons, logg))
				})

				r.Put("/content/homepage", controllers.AdminUpdateHomepage(svcs.Content, logg))
			})
		})
	})

	return r
}
