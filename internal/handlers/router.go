package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/xelth-com/eckscalego/internal/middleware"
	"github.com/xelth-com/eckscalego/internal/repository"
	"github.com/xelth-com/eckscalego/internal/scale"
	"github.com/xelth-com/eckscalego/internal/services/weighing"
	ws "github.com/xelth-com/eckscalego/internal/websocket"
)

// Router wraps the mux router and the weighbridge services
type Router struct {
	*mux.Router
	store     repository.Store
	weighings *weighing.Service
	gateway   scale.Gateway
	hub       *ws.Hub
	jwtSecret string
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(store repository.Store, svc *weighing.Service, gateway scale.Gateway, hub *ws.Hub, jwtSecret string) *Router {
	r := &Router{
		Router:    mux.NewRouter(),
		store:     store,
		weighings: svc,
		gateway:   gateway,
		hub:       hub,
		jwtSecret: jwtSecret,
	}

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// Hardware ingress: the scale middleware pushes weights here without
	// authentication.
	r.HandleFunc("/scale/receive_weight", r.receiveWeight).Methods("POST")

	// Auth routes
	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", r.login).Methods("POST")
	auth.HandleFunc("/register", r.register).Methods("POST")

	// API routes (protected)
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Auth(jwtSecret))
	api.HandleFunc("/status", r.getStatus).Methods("GET")

	api.HandleFunc("/weighings", r.listWeighings).Methods("GET")
	api.HandleFunc("/weighings", r.createWeighing).Methods("POST")
	api.HandleFunc("/weighings/{id}", r.getWeighing).Methods("GET")
	api.HandleFunc("/weighings/{id}", r.updateWeighing).Methods("PUT")
	api.HandleFunc("/weighings/{id}/barcode", r.weighingBarcode).Methods("GET")
	api.HandleFunc("/weighings/{id}/fetch_weight", r.fetchWeight).Methods("POST")
	api.HandleFunc("/weighings/{id}/capture_first", r.captureFirst).Methods("POST")
	api.HandleFunc("/weighings/{id}/capture_second", r.captureSecond).Methods("POST")
	api.HandleFunc("/weighings/{id}/reconcile", r.reconcileWeighing).Methods("POST")
	api.HandleFunc("/weighings/{id}/cancel", r.cancelWeighing).Methods("POST")

	api.HandleFunc("/scales", r.listScales).Methods("GET")
	api.HandleFunc("/scales", r.createScale).Methods("POST")
	api.HandleFunc("/scales/{id}/test", r.testScale).Methods("POST")
	api.HandleFunc("/scales/{id}/enable", r.enableScale).Methods("POST")
	api.HandleFunc("/scales/{id}/disable", r.disableScale).Methods("POST")

	api.HandleFunc("/trucks", r.listTrucks).Methods("GET")
	api.HandleFunc("/trucks", r.createTruck).Methods("POST")
	api.HandleFunc("/trucks/{id}", r.getTruck).Methods("GET")

	// Live dashboard feed
	r.HandleFunc("/ws/scale", func(w http.ResponseWriter, req *http.Request) {
		ws.ServeWs(hub, w, req)
	})

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"server": "eckscalego",
	})
}

// getStatus returns the current status
func (r *Router) getStatus(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "running",
		"version": "1.0.0",
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondServiceError maps the engine's error taxonomy onto HTTP statuses.
// Messages go through verbatim.
func respondServiceError(w http.ResponseWriter, err error) {
	var (
		ve *weighing.ValidationError
		nf *weighing.NotFoundError
		ue *weighing.UnavailableError
		ce *weighing.ConflictError
	)
	switch {
	case errors.As(err, &ve):
		respondError(w, http.StatusBadRequest, ve.Error())
	case errors.As(err, &nf):
		respondError(w, http.StatusNotFound, nf.Error())
	case errors.As(err, &ue):
		respondError(w, http.StatusBadGateway, ue.Error())
	case errors.As(err, &ce):
		respondError(w, http.StatusConflict, ce.Error())
	default:
		log.Printf("❌ Internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
