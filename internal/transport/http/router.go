package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/foodshare/foodshare-api/internal/application/auth"
	"github.com/foodshare/foodshare-api/internal/application/food"
	"github.com/foodshare/foodshare-api/internal/application/notification"
	"github.com/foodshare/foodshare-api/internal/application/upload"
	"github.com/foodshare/foodshare-api/internal/config"
	"github.com/foodshare/foodshare-api/internal/transport/http/handler"
	appmiddleware "github.com/foodshare/foodshare-api/internal/transport/http/middleware"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)

	// 5 requests/second, burst of 10, on the credential endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	var pusher notification.Pusher
	if deps.Hub != nil {
		pusher = deps.Hub
	}
	notifSvc := notification.NewService(deps.NotificationRepo, pusher, cfg.NotificationTTL)
	foodSvc := food.NewService(food.ServiceDeps{
		FoodRepo: deps.FoodRepo,
		UserRepo: deps.UserRepo,
		Notifier: notifSvc,
		Mailer:   deps.Mailer,
		Pusher:   pusher,
	})
	authSvc := auth.NewService(deps.UserRepo, deps.JWTProvider, deps.Mailer)
	uploadSvc := upload.NewService(deps.S3Store)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	foodH := handler.NewFoodHandler(foodSvc)
	notifH := handler.NewNotificationHandler(notifSvc)
	uploadH := handler.NewUploadHandler(uploadSvc)

	if deps.Hub != nil {
		r.Get("/ws", deps.Hub.ServeHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Get("/health", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/auth/register", authH.Register)
		r.With(sensitiveRL.Limit).Post("/auth/login", authH.Login)
		r.Get("/food", foodH.List)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/auth/me", authH.Me)

			r.Post("/food", foodH.Create)
			r.Get("/food/my-donations", foodH.MyDonations)
			r.Get("/food/my-claims", foodH.MyClaims)
			r.Patch("/food/{id}/claim", foodH.Claim)
			r.Delete("/food/{id}", foodH.Delete)

			r.Get("/notifications", notifH.List)
			r.Get("/notifications/unread-count", notifH.UnreadCount)
			r.Patch("/notifications/mark-all-read", notifH.MarkAllAsRead)
			r.Patch("/notifications/{id}/read", notifH.MarkAsRead)

			r.Post("/upload/image", uploadH.UploadImage)
			r.Post("/upload/images", uploadH.UploadImages)
			r.Delete("/upload/image/{publicId}", uploadH.DeleteImage)
		})
	})

	return r
}
