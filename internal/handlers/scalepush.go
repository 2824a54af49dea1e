package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/xelth-com/eckscalego/internal/services/weighing"
)

// scalePushRequest is the payload the scale middleware posts on every
// stable reading. scale_id is optional for single-bridge sites.
type scalePushRequest struct {
	Weight  *float64 `json:"weight"`
	ScaleID *int64   `json:"scale_id"`
}

// receiveWeight is the unauthenticated hardware ingress. The engine claims
// the open weighing record and advances it one step; the response tells the
// middleware what happened in a flat success/error shape.
func (r *Router) receiveWeight(w http.ResponseWriter, req *http.Request) {
	var push scalePushRequest
	if err := json.NewDecoder(req.Body).Decode(&push); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":   "Invalid request payload",
			"success": false,
		})
		return
	}
	if push.Weight == nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":   "Missing 'weight' field",
			"success": false,
		})
		return
	}

	result, err := r.weighings.ApplyScalePush(req.Context(), push.ScaleID, *push.Weight)
	if err != nil {
		status := http.StatusBadRequest
		switch err.(type) {
		case *weighing.NotFoundError:
			status = http.StatusNotFound
		case *weighing.ConflictError:
			status = http.StatusConflict
		}
		respondJSON(w, status, map[string]interface{}{
			"error":   err.Error(),
			"success": false,
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  result.Message,
		"weighing": result.Weighing.Name,
		"state":    result.Weighing.State,
		"net":      result.Weighing.NetWeight,
		"success":  true,
	})
}
