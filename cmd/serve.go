package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pindrop/pindrop/internal/export"
	"github.com/pindrop/pindrop/internal/model"
	"github.com/pindrop/pindrop/internal/pipeline"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API serving map locations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, err := newPipeline()
		if err != nil {
			return err
		}

		api := &locationsAPI{runner: p, defaultDB: cfg.Notion.Database}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: api.router(),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(context.Background())
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// batchRunner is the slice of the pipeline the handlers need.
type batchRunner interface {
	Run(ctx context.Context, dbID string) (*model.Batch, error)
}

// locationsAPI serves processed batches over HTTP.
type locationsAPI struct {
	runner    batchRunner
	defaultDB string
}

// locationsResponse is the success payload of GET /api/locations.
type locationsResponse struct {
	Locations []model.Location `json:"locations"`
	Count     int              `json:"count"`
	Errors    []string         `json:"errors,omitempty"`
}

// errorResponse is the failure payload.
type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func (api *locationsAPI) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/api/locations", api.handleLocations)
	r.Get("/api/locations.geojson", api.handleLocationsGeoJSON)

	return r
}

// databaseID picks the database from the query string, falling back to the
// configured default.
func (api *locationsAPI) databaseID(r *http.Request) string {
	if db := r.URL.Query().Get("db"); db != "" {
		return db
	}
	return api.defaultDB
}

func (api *locationsAPI) handleLocations(w http.ResponseWriter, r *http.Request) {
	db := api.databaseID(r)
	if db == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "Missing database ID. Please provide a ?db= parameter.",
		})
		return
	}

	batch, err := api.runner.Run(r.Context(), db)
	if err != nil {
		writeBatchError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, locationsResponse{
		Locations: batch.Locations,
		Count:     len(batch.Locations),
		Errors:    batch.Messages(),
	})
}

func (api *locationsAPI) handleLocationsGeoJSON(w http.ResponseWriter, r *http.Request) {
	db := api.databaseID(r)
	if db == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "Missing database ID. Please provide a ?db= parameter.",
		})
		return
	}

	batch, err := api.runner.Run(r.Context(), db)
	if err != nil {
		writeBatchError(w, err)
		return
	}

	data, err := export.GeoJSON(batch)
	if err != nil {
		zap.L().Error("geojson encode failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to encode GeoJSON."})
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// writeBatchError maps a pipeline error onto a transport status and a
// user-facing message.
func writeBatchError(w http.ResponseWriter, err error) {
	var batchErr *pipeline.BatchError

	resp := errorResponse{}
	status := http.StatusInternalServerError

	switch pipeline.Classify(err) {
	case pipeline.ClassClient:
		status = http.StatusBadRequest
		resp.Error = err.Error()
	case pipeline.ClassAuth:
		status = http.StatusForbidden
		resp.Error = "Notion integration not authorized. Please share your database with the integration."
	case pipeline.ClassNotFound:
		status = http.StatusNotFound
		resp.Error = "Database not found. Please check your database ID and ensure the integration has access."
	default:
		resp.Error = "Failed to fetch data from Notion. Please check your configuration."
	}

	if errors.As(err, &batchErr) {
		resp.Details = batchErr.Details
	}

	zap.L().Warn("locations request failed", zap.Int("status", status), zap.Error(err))
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
