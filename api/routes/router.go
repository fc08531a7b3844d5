package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vitrine-labs/signage-backend/api/controllers"
	"github.com/vitrine-labs/signage-backend/api/middleware"
	"github.com/vitrine-labs/signage-backend/internal/auth"
	"github.com/vitrine-labs/signage-backend/internal/dashboard"
	"github.com/vitrine-labs/signage-backend/internal/devices"
	"github.com/vitrine-labs/signage-backend/internal/links"
	"github.com/vitrine-labs/signage-backend/internal/media"
	"github.com/vitrine-labs/signage-backend/internal/playlists"
	"github.com/vitrine-labs/signage-backend/internal/preview"
	"github.com/vitrine-labs/signage-backend/pkg/auth/session"
	"github.com/vitrine-labs/signage-backend/pkg/config"
	"github.com/vitrine-labs/signage-backend/pkg/db"
	"github.com/vitrine-labs/signage-backend/pkg/logger"
	"github.com/vitrine-labs/signage-backend/pkg/metrics"
	"github.com/vitrine-labs/signage-backend/pkg/redis"
	"github.com/vitrine-labs/signage-backend/pkg/storage/gcs"
)

// RouterParams bundles everything the HTTP surface needs.
type RouterParams struct {
	Config  *config.Config
	Logger  *logger.Logger
	DB      db.Pinger
	Redis   *redis.Client
	GCS     gcs.Pinger
	Session session.AccessSessionChecker

	HTTPMetrics *metrics.HTTPMetrics
	Registry    prometheus.Gatherer

	AuthService      auth.Service
	DeviceService    devices.Service
	MediaService     media.Service
	LinkService      links.Service
	PlaylistService  playlists.Service
	PreviewService   preview.Service
	DashboardService dashboard.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.HTTPMetrics),
		middleware.CORS(cfg.CORS),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	var redisPinger redis.Pinger
	if p.Redis != nil {
		redisPinger = p.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, redisPinger, p.GCS))
	})

	if p.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		login := controllers.AuthLogin(p.AuthService, logg)
		if p.Redis != nil {
			r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", login)
		} else {
			r.Post("/login", login)
		}
		r.Post("/refresh", controllers.AuthRefresh(p.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(p.AuthService, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Session, logg))

		r.Route("/devices", func(r chi.Router) {
			r.Get("/", controllers.DevicesList(p.DeviceService, logg))
			r.Post("/", controllers.DevicesRegister(p.DeviceService, logg))
			r.Get("/{id}", controllers.DevicesGet(p.DeviceService, logg))
			r.Patch("/{id}", controllers.DevicesUpdate(p.DeviceService, logg))
			r.Delete("/{id}", controllers.DevicesDelete(p.DeviceService, logg))
			r.Post("/{id}/heartbeat", controllers.DevicesHeartbeat(p.DeviceService, logg))
			r.Put("/{id}/playlist", controllers.DevicesAssignPlaylist(p.DeviceService, logg))
		})

		r.Route("/media", func(r chi.Router) {
			r.Get("/", controllers.MediaList(p.MediaService, logg))
			r.Post("/presign", controllers.MediaPresign(p.MediaService, logg))
			r.Delete("/{id}", controllers.MediaDelete(p.MediaService, logg))
		})

		r.Route("/links", func(r chi.Router) {
			r.Get("/", controllers.LinksList(p.LinkService, logg))
			r.Post("/", controllers.LinksCreate(p.LinkService, logg))
			r.Patch("/{id}", controllers.LinksUpdate(p.LinkService, logg))
			r.Delete("/{id}", controllers.LinksDelete(p.LinkService, logg))
		})

		r.Route("/playlists", func(r chi.Router) {
			r.Get("/", controllers.PlaylistsList(p.PlaylistService, logg))
			r.Post("/", controllers.PlaylistsCreate(p.PlaylistService, logg))
			r.Get("/{id}", controllers.PlaylistsGet(p.PlaylistService, logg))
			r.Patch("/{id}", controllers.PlaylistsUpdate(p.PlaylistService, logg))
			r.Delete("/{id}", controllers.PlaylistsDelete(p.PlaylistService, logg))

			r.Get("/{id}/items", controllers.PlaylistItemsList(p.PlaylistService, logg))
			r.Post("/{id}/items", controllers.PlaylistItemsAdd(p.PlaylistService, logg))
			r.Post("/{id}/items/{itemID}/move", controllers.PlaylistItemsMove(p.PlaylistService, logg))
			r.Patch("/{id}/items/{itemID}", controllers.PlaylistItemsSetDuration(p.PlaylistService, logg))
			r.Delete("/{id}/items/{itemID}", controllers.PlaylistItemsRemove(p.PlaylistService, logg))

			r.Post("/{id}/preview", controllers.PreviewStart(p.PreviewService, logg))
		})

		r.Route("/preview/{sid}", func(r chi.Router) {
			r.Get("/", controllers.PreviewGet(p.PreviewService, logg))
			r.Post("/next", controllers.PreviewNext(p.PreviewService, logg))
			r.Post("/prev", controllers.PreviewPrev(p.PreviewService, logg))
			r.Post("/autoplay", controllers.PreviewToggleAutoplay(p.PreviewService, logg))
			r.Post("/ended", controllers.PreviewMediaEnded(p.PreviewService, logg))
			r.Delete("/", controllers.PreviewStop(p.PreviewService, logg))
		})

		r.Get("/dashboard/stats", controllers.DashboardStats(p.DashboardService, logg))
	})

	return r
}
