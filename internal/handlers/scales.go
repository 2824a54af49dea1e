package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/xelth-com/eckscalego/internal/models"
	"github.com/xelth-com/eckscalego/internal/repository"
	"github.com/xelth-com/eckscalego/internal/scale"
)

// listScales returns all configured scales
func (r *Router) listScales(w http.ResponseWriter, req *http.Request) {
	scales, err := r.store.Scales().List(req.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, scales)
}

// createScale registers a new scale
func (r *Router) createScale(w http.ResponseWriter, req *http.Request) {
	var sc models.WeighingScale
	if err := json.NewDecoder(req.Body).Decode(&sc); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if sc.Name == "" || sc.IPAddress == "" {
		respondError(w, http.StatusBadRequest, "Name and ip_address are required")
		return
	}
	if sc.Port == 0 {
		sc.Port = 5000
	}
	sc.Active = true
	sc.IsEnabled = true
	sc.ConnectionStatus = models.ScaleDisconnected

	if err := r.store.Scales().Create(req.Context(), &sc); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, sc)
}

func (r *Router) loadScale(w http.ResponseWriter, req *http.Request) (*models.WeighingScale, bool) {
	id, ok := pathID(req)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return nil, false
	}
	sc, err := r.store.Scales().ByID(req.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Scale not found")
		} else {
			respondServiceError(w, err)
		}
		return nil, false
	}
	return sc, true
}

// testScale reads the scale once and records the outcome
func (r *Router) testScale(w http.ResponseWriter, req *http.Request) {
	sc, ok := r.loadScale(w, req)
	if !ok {
		return
	}

	readErr := scale.TestConnection(req.Context(), r.gateway, sc)
	if err := r.store.Scales().Save(req.Context(), sc); err != nil {
		respondServiceError(w, err)
		return
	}

	if readErr != nil {
		respondJSON(w, http.StatusBadGateway, map[string]interface{}{
			"scale":   sc,
			"success": false,
			"error":   readErr.Error(),
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"scale":   sc,
		"success": true,
		"weight":  sc.LastReadWeight,
	})
}

// enableScale switches a scale back on
func (r *Router) enableScale(w http.ResponseWriter, req *http.Request) {
	r.setScaleEnabled(w, req, true)
}

// disableScale takes a scale out of service without deleting it
func (r *Router) disableScale(w http.ResponseWriter, req *http.Request) {
	r.setScaleEnabled(w, req, false)
}

func (r *Router) setScaleEnabled(w http.ResponseWriter, req *http.Request, enabled bool) {
	sc, ok := r.loadScale(w, req)
	if !ok {
		return
	}
	sc.IsEnabled = enabled
	if !enabled {
		sc.ConnectionStatus = models.ScaleDisconnected
	}
	if err := r.store.Scales().Save(req.Context(), sc); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sc)
}
