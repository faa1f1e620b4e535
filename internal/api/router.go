package api

import (
	"net/http"

	"trip-map-service/internal/adapters/repositories"
	"trip-map-service/internal/api/handlers"
)

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root (handlers stay
// unaware of concrete adapters).
func NewRouter(store *repositories.MemoryTripStore, deps handlers.PipelineDeps) http.Handler {
	mux := http.NewServeMux()

	trips := &handlers.TripHandler{Store: store, Deps: deps}

	mux.HandleFunc("GET /health", handlers.Health)
	mux.HandleFunc("POST /trips", trips.Create)
	mux.HandleFunc("POST /trips/{id}/select", trips.SelectDay)
	mux.HandleFunc("POST /trips/{id}/reset", trips.Reset)
	mux.HandleFunc("DELETE /trips/{id}", trips.Close)
	mux.HandleFunc("GET /trips/{id}/map", trips.Map)
	mux.HandleFunc("GET /trips/{id}/status", trips.Status)

	return requestID(logging(mux))
}
