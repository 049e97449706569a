package app

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/g3tech/donation-engine/internal/config"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {
	r.Handle("/metrics", deps.Metrics.Handler()).Methods("GET")
	r.HandleFunc("/health", health(deps)).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(rateLimit(cfg.RateLimit))

	// Catalog
	api.HandleFunc("/catalog/categories", deps.CatalogHandler.ListDefaultCategories).Methods("GET")
	api.HandleFunc("/catalog/colors", deps.CatalogHandler.ListColors).Methods("GET")

	// List
	lists := api.PathPrefix("/list").Subrouter()
	lists.Use(requireUser)
	lists.HandleFunc("", deps.ListHandler.GetList).Methods("GET")
	lists.HandleFunc("", deps.ListHandler.UpdateList).Methods("PUT")
	lists.HandleFunc("/preview", deps.ListHandler.Preview).Methods("POST")
	lists.HandleFunc("/validation", deps.ListHandler.Validate).Methods("GET")
	lists.HandleFunc("/checkout", deps.ListHandler.Checkout).Methods("POST")
}

type healthDTO struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func health(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		status := healthDTO{Status: "ok", Database: "ok"}
		code := http.StatusOK

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if deps.DB == nil {
			status.Database = "not configured"
		} else if err := deps.DB.Ping(ctx); err != nil {
			log.Warnf("health check: database unreachable: %v", err)
			status = healthDTO{Status: "degraded", Database: "unreachable"}
			code = http.StatusServiceUnavailable
		}

		w.WriteHeader(code)
		if err := json.NewEncoder(w).Encode(status); err != nil {
			log.Errorf("failed to encode health: %v", err)
		}
	}
}
