package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/xelth-com/eckscalego/internal/middleware"
	"github.com/xelth-com/eckscalego/internal/models"
	"github.com/xelth-com/eckscalego/internal/repository"
	"github.com/xelth-com/eckscalego/internal/services/weighing"
)

func pathID(req *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(req)["id"], 10, 64)
	return id, err == nil
}

// listWeighings returns weighing records, optionally filtered by state,
// truck or scale.
func (r *Router) listWeighings(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	filter := repository.WeighingFilter{
		State: models.WeighingState(q.Get("state")),
	}
	if v, err := strconv.ParseInt(q.Get("truck_id"), 10, 64); err == nil {
		filter.TruckID = v
	}
	if v, err := strconv.ParseInt(q.Get("scale_id"), 10, 64); err == nil {
		filter.ScaleID = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = v
	} else {
		filter.Limit = 100
	}

	records, err := r.weighings.List(req.Context(), filter)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, records)
}

// createWeighing opens a new weighing record
func (r *Router) createWeighing(w http.ResponseWriter, req *http.Request) {
	var params weighing.CreateParams
	if err := json.NewDecoder(req.Body).Decode(&params); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	params.Username = middleware.Username(req)

	record, err := r.weighings.Create(req.Context(), params)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, record)
}

// getWeighing returns one weighing record
func (r *Router) getWeighing(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(req)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	record, err := r.weighings.Get(req.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, record)
}

// updateWeighing applies operator edits and re-resolves document links
func (r *Router) updateWeighing(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(req)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	var params weighing.UpdateParams
	if err := json.NewDecoder(req.Body).Decode(&params); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	record, err := r.weighings.Update(req.Context(), id, params)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, record)
}

// weighingBarcode renders the record's reference as a QR PNG
func (r *Router) weighingBarcode(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(req)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	record, err := r.weighings.Get(req.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	png, err := qrcode.Encode(record.Barcode, qrcode.Medium, 256)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to render barcode")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// fetchWeight reads the assigned scale into the record's live weight
func (r *Router) fetchWeight(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(req)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	record, err := r.weighings.FetchLiveWeight(req.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, record)
}

// captureFirst commits the live weight as the first measurement
func (r *Router) captureFirst(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(req)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	record, err := r.weighings.CaptureFirst(req.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, record)
}

// captureSecond commits the live weight as the second measurement
func (r *Router) captureSecond(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(req)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	record, err := r.weighings.CaptureSecond(req.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, record)
}

// reconcileWeighing writes the net weight into the linked document
func (r *Router) reconcileWeighing(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(req)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	record, result, err := r.weighings.Reconcile(req.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"weighing":       record,
		"reconciliation": result,
	})
}

// cancelWeighing abandons a record
func (r *Router) cancelWeighing(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(req)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	record, err := r.weighings.Cancel(req.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, record)
}
