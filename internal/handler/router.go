package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"foodorder/internal/mw"
	"foodorder/internal/service"
)

type Services struct {
	Auth        *service.AuthService
	Checkout    *service.CheckoutService
	Reconciler  *service.Reconciler
	Ledger      *service.Ledger
	Orders      *service.OrderQueries
	Restaurants *service.RestaurantService
}

type RouterConfig struct {
	JWTSecret      string
	RequestTimeout time.Duration
	AllowedOrigins []string
}

func NewRouter(svc Services, cfg RouterConfig) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public routes
	r.Post("/user/register", RegisterHandler(svc.Auth, cfg.JWTSecret))
	r.Post("/user/login", LoginHandler(svc.Auth, cfg.JWTSecret))
	r.Post("/order/checkout/webhook", WebhookHandler(svc.Reconciler))
	r.Get("/restaurant/search/{city}", SearchRestaurantsHandler(svc.Restaurants))
	r.Get("/restaurant/{restaurantId}", GetRestaurantHandler(svc.Restaurants))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.JWTSecret))

		r.Post("/order/checkout/create-checkout-session", CreateCheckoutSessionHandler(svc.Checkout))
		r.Get("/order", ListMyOrdersHandler(svc.Orders))
		r.Get("/order/{orderId}", GetOrderHandler(svc.Orders))

		r.Get("/my/user", GetMyUserHandler(svc.Auth))
		r.Put("/my/user", UpdateMyUserHandler(svc.Auth))

		r.Get("/my/restaurant", GetMyRestaurantHandler(svc.Restaurants))
		r.Post("/my/restaurant", CreateMyRestaurantHandler(svc.Restaurants))
		r.Put("/my/restaurant", UpdateMyRestaurantHandler(svc.Restaurants))
		r.Get("/my/restaurant/order", ListRestaurantOrdersHandler(svc.Orders))
		r.Patch("/my/restaurant/order/{orderId}/status", UpdateOrderStatusHandler(svc.Ledger))
	})

	return r
}
