package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/luminastudio/studio-backend/api/controllers"
	"github.com/luminastudio/studio-backend/api/middleware"
	"github.com/luminastudio/studio-backend/internal/auth"
	"github.com/luminastudio/studio-backend/internal/events"
	"github.com/luminastudio/studio-backend/internal/photos"
	"github.com/luminastudio/studio-backend/pkg/auth/session"
	"github.com/luminastudio/studio-backend/pkg/config"
	"github.com/luminastudio/studio-backend/pkg/db"
	"github.com/luminastudio/studio-backend/pkg/enums"
	"github.com/luminastudio/studio-backend/pkg/logger"
	"github.com/luminastudio/studio-backend/pkg/redis"
	"github.com/luminastudio/studio-backend/pkg/storage/gcs"
)

const (
	freeUploadRateLimit  = 10
	freeUploadRateWindow = time.Minute
)

// NewRouter assembles the HTTP surface.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gcsClient gcs.Pinger,
	sessions *session.Manager,
	authService auth.Service,
	photoService photos.Service,
	eventService events.Service,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)
	r.Use(middleware.CORS())

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, controllers.ReadyDeps(dbP, redisClient, gcsClient)))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/gallery/{accessCode}", controllers.Gallery(eventService, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.Login(authService, logg))
		r.Post("/refresh", controllers.Refresh(authService, logg))
		r.With(middleware.Auth(cfg.JWT, sessions, logg)).
			Post("/logout", controllers.Logout(authService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))

		r.Route("/photos", func(r chi.Router) {
			r.Get("/", controllers.PhotosList(photoService, logg))

			r.With(middleware.UploadRateLimit(redisClient, "free_upload", freeUploadRateLimit, freeUploadRateWindow, logg)).
				Post("/free-upload", controllers.PhotosFreeUpload(photoService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.UserRoleAdmin.String(), logg))
				r.Post("/", controllers.PhotosUpload(photoService, logg))
				r.Patch("/", controllers.PhotosPatch(photoService, logg))
			})
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", controllers.EventsList(eventService, logg))
			r.Get("/{id}", controllers.EventsGet(eventService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.UserRoleAdmin.String(), logg))
				r.Post("/", controllers.EventsCreate(eventService, logg))
				r.Patch("/{id}", controllers.EventsUpdate(eventService, logg))
				r.Delete("/{id}", controllers.EventsDelete(eventService, logg))
			})
		})
	})

	return r
}
