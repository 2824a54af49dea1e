package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/xelth-com/eckscalego/internal/models"
	"github.com/xelth-com/eckscalego/internal/repository"
)

// listTrucks returns the registered fleet
func (r *Router) listTrucks(w http.ResponseWriter, req *http.Request) {
	trucks, err := r.store.Trucks().List(req.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, trucks)
}

// createTruck registers a new truck
func (r *Router) createTruck(w http.ResponseWriter, req *http.Request) {
	var truck models.TruckFleet
	if err := json.NewDecoder(req.Body).Decode(&truck); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if truck.PlateNumber == "" {
		respondError(w, http.StatusBadRequest, "plate_number is required")
		return
	}
	if truck.TrailerCount == 0 {
		truck.TrailerCount = 1
	}
	truck.Active = true
	if truck.Status == "" {
		truck.Status = models.TruckAvailable
	}

	if err := r.store.Trucks().Create(req.Context(), &truck); err != nil {
		respondError(w, http.StatusBadRequest, "Failed to create truck (plate might exist)")
		return
	}
	respondJSON(w, http.StatusCreated, truck)
}

// getTruck returns one truck
func (r *Router) getTruck(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(req)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	truck, err := r.store.Trucks().ByID(req.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Truck not found")
			return
		}
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, truck)
}
