/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request, included in request logs
  2. Logger:     zap request logging (method, path, status, duration)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for a separately served frontend
  5. Metrics:    Prometheus request counters, when RouterOptions.Metrics is set

ROUTE GROUPS:
  /api/shifts/*     Shift entry and deletion
  /api/periods/*    Pay period table
  /api/pay/*        Pay reports and projection
  /api/state        View state
  /api/params       Calculator parameters
  /api/demos/*      Demo timesheets
  /metrics          Prometheus metrics, when enabled
  /*                Static files (frontend), if a build exists

SECURITY NOTE:
  No authentication. The server is meant to listen on localhost for a
  single user.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/timesheet/serve.go: Server startup
*/
package api

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// AllowedOrigins for CORS. Empty allows the Vite and local dev servers.
	AllowedOrigins []string
	// StaticDir holds a built frontend. Empty disables static serving.
	StaticDir string
	// Metrics enables request metrics and the /metrics route.
	Metrics *Metrics
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:5000"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/shifts", func(r chi.Router) {
			r.Get("/", h.ListShifts)
			r.Post("/", h.CreateShift)
			r.Delete("/", h.DeleteAllShifts)
			r.Post("/bulk", h.CreateShiftsBulk)
			r.Delete("/{id}", h.DeleteShift)
		})

		r.Route("/periods", func(r chi.Router) {
			r.Get("/", h.ListPeriods)
			r.Get("/current", h.CurrentPeriods)
		})

		r.Route("/pay", func(r chi.Router) {
			r.Get("/period", h.PeriodPay)
			r.Get("/current", h.CurrentPay)
			r.Get("/analysis", h.Analysis)
			r.Get("/projection", h.Projection)
		})

		r.Get("/state", h.GetState)
		r.Put("/params", h.UpdateParams)

		r.Route("/demos", func(r chi.Router) {
			r.Get("/", h.ListDemos)
			r.Post("/load", h.LoadDemo)
		})
	})

	if opts.StaticDir != "" {
		if _, err := os.Stat(opts.StaticDir); err == nil {
			staticDir := opts.StaticDir
			fileServer := http.FileServer(http.Dir(staticDir))
			r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
				fullPath := filepath.Join(staticDir, filepath.Clean("/"+r.URL.Path))
				if _, err := os.Stat(fullPath); os.IsNotExist(err) {
					// SPA routing: serve index.html
					http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
					return
				}
				fileServer.ServeHTTP(w, r)
			})
		} else {
			h.Logger.Warn("static directory not found, serving API only", zap.String("dir", opts.StaticDir))
		}
	}

	return r
}

// requestLogger logs one line per request with zap.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				fields := []zap.Field{
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				}
				if ww.Status() >= http.StatusInternalServerError {
					logger.Warn("request", fields...)
					return
				}
				logger.Debug("request", fields...)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
