/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the browser UI

ROUTE GROUPS:
  /api/calendars/*      Calendars and their entries
  /api/summary          Month summary of the active calendar
  /api/days, /duration, /holidays   Calculators
  /api/export, /import  Export documents
  /api/debt/*           Debt notices
  /api/scenarios/*      Demo scenarios
  /*                    Static files (frontend)

STATIC FILE SERVING:
  Serves the built UI from web/dist/ when present.
  Falls back to index.html for client-side routing.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/warp/pontaj/config"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, corsCfg config.CORSConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsCfg.Origins(),
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         corsCfg.MaxAge,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Calendar routes
		r.Route("/calendars", func(r chi.Router) {
			r.Get("/", h.ListCalendars)
			r.Post("/", h.CreateCalendar)
			r.Get("/active", h.GetActiveCalendar)
			r.Put("/active", h.SetActiveCalendar)

			r.Route("/{id}", func(r chi.Router) {
				r.Patch("/", h.RenameCalendar)
				r.Delete("/", h.DeleteCalendar)

				r.Get("/entries", h.ListEntries)
				r.Get("/entries/{date}", h.GetEntry)
				r.Put("/entries/{date}", h.PutEntry)
				r.Delete("/entries/{date}", h.DeleteEntry)

				r.Get("/summary", h.GetSummary)
				r.Get("/summary/{year}", h.GetYearSummary)
				r.Get("/breakdown", h.GetBreakdown)
			})
		})

		r.Get("/summary", h.GetActiveSummary)

		// Calculators
		r.Get("/days/{date}", h.GetDay)
		r.Get("/duration", h.GetDuration)
		r.Get("/holidays", h.ListHolidays)

		// Export documents
		r.Get("/export", h.Export)
		r.Post("/import", h.Import)

		// Debt notice routes
		r.Route("/debt", func(r chi.Router) {
			r.Get("/notices", h.ListDebtNotices)
			r.Post("/check", h.CheckDebts)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	// Serve static files
	// First try ./web/dist (development), then next to the executable
	staticDir := "./web/dist"
	if _, err := os.Stat(staticDir); os.IsNotExist(err) {
		exe, _ := os.Executable()
		staticDir = filepath.Join(filepath.Dir(exe), "web", "dist")
	}

	if _, err := os.Stat(staticDir); err == nil {
		fileServer := http.FileServer(http.Dir(staticDir))
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			fullPath := filepath.Join(staticDir, filepath.Clean(r.URL.Path))

			if _, err := os.Stat(fullPath); os.IsNotExist(err) {
				// SPA routing: serve index.html
				http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
				return
			}
			fileServer.ServeHTTP(w, r)
		})
	} else {
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Pontaj</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Pontaj API</h1>
<p>The frontend is not built. The JSON API is available under /api.</p>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/calendars">/api/calendars</a> - List calendars</li>
<li><a href="/api/summary">/api/summary</a> - Month summary of the active calendar</li>
<li><a href="/api/holidays">/api/holidays</a> - Public holidays</li>
<li><a href="/api/scenarios">/api/scenarios</a> - List scenarios</li>
</ul>
</body>
</html>`))
		})
	}

	return r
}
