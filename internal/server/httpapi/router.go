package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/pdfdesk/internal/logging"
	"github.com/dmitrijs2005/pdfdesk/internal/server/metrics"
	"github.com/dmitrijs2005/pdfdesk/internal/server/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/unrolled/secure"
)

// Options wires the router's dependencies.
type Options struct {
	Users          UserService
	Documents      DocumentService
	Metrics        *metrics.Collector
	Gatherer       prometheus.Gatherer
	Logger         logging.Logger
	SecretKey      []byte
	MaxUploadBytes int64

	// AuthRateLimit is the per-IP limit for signup and login per minute;
	// zero disables it.
	AuthRateLimit int
}

// NewRouter builds the chi router serving the JSON API, /healthz and /metrics.
func NewRouter(opts Options) http.Handler {
	log := opts.Logger.With("module", "http")
	h := &Handler{
		users:          opts.Users,
		documents:      opts.Documents,
		metrics:        opts.Metrics,
		log:            log,
		maxUploadBytes: opts.MaxUploadBytes,
	}

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'none'",
	})

	authenticate := Authenticate(opts.SecretKey, log)

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		accessLog(log),
		middleware.Recoverer,
		secureMiddleware.Handler,
		opts.Metrics.Middleware,
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler(opts.Gatherer))

	r.Route("/api/users", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if opts.AuthRateLimit > 0 {
				r.Use(httprate.Limit(opts.AuthRateLimit, time.Minute,
					httprate.WithKeyFuncs(httprate.KeyByIP),
					httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
						writeError(w, http.StatusTooManyRequests, "too many requests")
					}),
				))
			}
			r.Post("/signup", h.signup)
			r.Post("/login", h.login)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/me", h.me)
			r.Patch("/me", h.updateMe)
			r.Delete("/me", h.deactivateMe)
			r.With(RequireRole(models.RoleAdmin)).Put("/{id}/role", h.changeRole)
		})
	})

	r.Route("/api/docs", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/mine", h.listDocuments)
		r.Post("/upload", h.uploadDocument)
		r.Get("/{id}", h.getDocument)
		r.Delete("/{id}", h.deleteDocument)
	})

	return r
}
