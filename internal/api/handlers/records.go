package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/wonny/ndxcap/internal/contracts"
	"github.com/wonny/ndxcap/internal/store"
	"github.com/wonny/ndxcap/pkg/logger"
)

// RecordsHandler serves the persisted market cap dataset
// ⭐ SSOT: 레코드 API 핸들러는 이 구조체에서만
type RecordsHandler struct {
	store  *store.Store
	logger *logger.Logger
}

// NewRecordsHandler creates a new records handler
func NewRecordsHandler(st *store.Store, log *logger.Logger) *RecordsHandler {
	return &RecordsHandler{
		store:  st,
		logger: log,
	}
}

// GetRecords returns the full dataset
// GET /api/records
func (h *RecordsHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	ds, err := h.store.Load()
	if err != nil {
		h.logger.WithError(err).Error("Failed to load dataset")
		respondError(w, http.StatusInternalServerError, "Failed to load dataset")
		return
	}

	respondJSON(w, http.StatusOK, ds)
}

// GetLatestRecords returns the records for the newest date
// GET /api/records/latest
func (h *RecordsHandler) GetLatestRecords(w http.ResponseWriter, r *http.Request) {
	ds, err := h.store.Load()
	if err != nil {
		h.logger.WithError(err).Error("Failed to load dataset")
		respondError(w, http.StatusInternalServerError, "Failed to load dataset")
		return
	}

	last, ok := ds.LastDate()
	if !ok {
		respondJSON(w, http.StatusOK, contracts.Dataset{})
		return
	}

	lastStr := last.Format(contracts.DateFormat)
	latest := make(contracts.Dataset, 0)
	for _, rec := range ds {
		if rec.Date == lastStr {
			latest = append(latest, rec)
		}
	}

	respondJSON(w, http.StatusOK, latest)
}

// GetStatus returns a dataset summary
// GET /api/status
func (h *RecordsHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ds, err := h.store.Load()
	if err != nil {
		h.logger.WithError(err).Error("Failed to load dataset")
		respondError(w, http.StatusInternalServerError, "Failed to load dataset")
		return
	}

	status := map[string]interface{}{
		"records": len(ds),
		"tickers": len(ds.Tickers()),
		"file":    h.store.Path(),
	}
	if last, ok := ds.LastDate(); ok {
		status["last_date"] = last.Format(contracts.DateFormat)
	}

	respondJSON(w, http.StatusOK, status)
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
