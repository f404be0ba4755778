package rest

import (
	"net/http"

	appclipboard "patchbay/application/clipboard"
	"patchbay/application/composite"
	"patchbay/application/services"
	"patchbay/domain/catalog"
	"patchbay/infrastructure/diagnostics"
	"patchbay/interfaces/http/rest/handlers"
	"patchbay/interfaces/http/rest/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	store       *services.GraphStore
	definitions *composite.DefinitionService
	coordinator *appclipboard.Coordinator
	catalog     *catalog.Catalog
	sink        *diagnostics.Sink
	registry    *prometheus.Registry
	logger      *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	store *services.GraphStore,
	definitions *composite.DefinitionService,
	coordinator *appclipboard.Coordinator,
	c *catalog.Catalog,
	sink *diagnostics.Sink,
	registry *prometheus.Registry,
	logger *zap.Logger,
) *Router {
	return &Router{
		store:       store,
		definitions: definitions,
		coordinator: coordinator,
		catalog:     c,
		sink:        sink,
		registry:    registry,
		logger:      logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Health and metrics
	router.Get("/health", rt.healthCheck)
	if rt.registry != nil {
		router.Method("GET", "/metrics", promhttp.HandlerFor(rt.registry, promhttp.HandlerOpts{}))
	}

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		graphHandler := handlers.NewGraphHandler(rt.store, rt.logger)

		r.Route("/nodes", func(r chi.Router) {
			r.Post("/", graphHandler.CreateNode)
			r.Delete("/{nodeID}", graphHandler.DeleteNode)
			r.Put("/{nodeID}/position", graphHandler.MoveNode)
			r.Put("/{nodeID}/properties/{name}", graphHandler.UpdateProperty)
			r.Get("/{nodeID}/properties/{name}", graphHandler.GetProperty)
		})

		r.Route("/edges", func(r chi.Router) {
			r.Post("/", graphHandler.CreateEdge)
			r.Delete("/{edgeID}", graphHandler.DeleteEdge)
		})

		r.Route("/graph", func(r chi.Router) {
			r.Get("/", graphHandler.GetGraph)
			r.Put("/", graphHandler.LoadGraph)
			r.Post("/undo", graphHandler.Undo)
			r.Post("/redo", graphHandler.Redo)
			r.Post("/clear", graphHandler.Clear)
			r.Post("/playback", graphHandler.TogglePlayback)
			r.Post("/batch/begin", graphHandler.BeginBatch)
			r.Post("/batch/end", graphHandler.EndBatch)
		})

		r.Get("/events", graphHandler.DrainEvents)

		r.Route("/definitions", func(r chi.Router) {
			definitionHandler := handlers.NewDefinitionHandler(rt.definitions, rt.logger)
			r.Get("/", definitionHandler.List)
			r.Post("/", definitionHandler.Create)
			r.Post("/import", definitionHandler.Import)
			r.Get("/{definitionID}", definitionHandler.Get)
			r.Put("/{definitionID}", definitionHandler.Update)
			r.Delete("/{definitionID}", definitionHandler.Delete)
			r.Post("/{definitionID}/save-as", definitionHandler.SaveAs)
			r.Get("/{definitionID}/export", definitionHandler.Export)
		})

		r.Route("/clipboard", func(r chi.Router) {
			clipboardHandler := handlers.NewClipboardHandler(rt.coordinator, rt.logger)
			r.Post("/copy", clipboardHandler.Copy)
			r.Post("/cut", clipboardHandler.Cut)
			r.Post("/paste", clipboardHandler.Paste)
			r.Put("/focus", clipboardHandler.SetFocus)
		})

		catalogHandler := handlers.NewCatalogHandler(rt.catalog, rt.sink, rt.logger)
		r.Get("/catalog", catalogHandler.ListTypes)
		r.Get("/diagnostics", catalogHandler.ListDiagnostics)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
