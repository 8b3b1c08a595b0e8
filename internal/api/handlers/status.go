package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cherry0021/ryot/internal/models"
	"github.com/sirupsen/logrus"
)

// StatusHandler handles status requests
type StatusHandler struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(db *models.Database, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		db:     db,
		logger: logger,
	}
}

// StatusResponse represents the status response
type StatusResponse struct {
	TotalMedia      int            `json:"total_media"`
	TotalSeen       int            `json:"total_seen"`
	MediaByLot      map[string]int `json:"media_by_lot"`
	MediaBySource   map[string]int `json:"media_by_source"`
	SeenWithoutDate int            `json:"seen_without_date"`
}

// ServeHTTP handles the status endpoint
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	media, err := h.db.GetAllMetadata()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get metadata")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	seen, err := h.db.GetAllSeen()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get seen records")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	response := StatusResponse{
		TotalMedia:    len(media),
		TotalSeen:     len(seen),
		MediaByLot:    make(map[string]int),
		MediaBySource: make(map[string]int),
	}

	for _, item := range media {
		response.MediaByLot[string(item.Lot)]++
		response.MediaBySource[string(item.Source)]++
	}

	for _, record := range seen {
		if record.FinishedOn == nil {
			response.SeenWithoutDate++
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
