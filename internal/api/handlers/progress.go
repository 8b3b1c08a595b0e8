package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/cherry0021/ryot/internal/controllers"
	"github.com/cherry0021/ryot/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/timshannon/bolthold"
)

// ProgressHandler handles the update-progress endpoint. It accepts the
// same query parameters the web page submits (item, onlySeason,
// selectedSeason, selectedEpisode) and redirects to the item's details
// view on success.
type ProgressHandler struct {
	progressCtrl *controllers.ProgressController
	logger       *logrus.Logger
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(progressCtrl *controllers.ProgressController, logger *logrus.Logger) *ProgressHandler {
	return &ProgressHandler{
		progressCtrl: progressCtrl,
		logger:       logger,
	}
}

// ServeHTTP handles the update-progress endpoint
func (h *ProgressHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()

	item, err := strconv.ParseUint(query.Get("item"), 10, 64)
	if err != nil {
		http.Error(w, "Missing or invalid item parameter", http.StatusBadRequest)
		return
	}

	input := controllers.ProgressInput{MetadataID: item}

	switch query.Get("action") {
	case "", "now":
		input.Action = models.ActionNow
	case "inThePast":
		input.Action = models.ActionInThePast
	default:
		http.Error(w, "Invalid action parameter", http.StatusBadRequest)
		return
	}

	if query.Has("date") {
		date := query.Get("date")
		input.Date = &date
	}

	if query.Get("onlySeason") == "true" {
		input.AllEpisodesOfSeason = true
	}

	if query.Has("selectedSeason") {
		season, err := strconv.Atoi(query.Get("selectedSeason"))
		if err != nil {
			http.Error(w, "Invalid selectedSeason parameter", http.StatusBadRequest)
			return
		}
		input.SeasonNumber = &season
	}

	if query.Has("selectedEpisode") {
		episode, err := strconv.Atoi(query.Get("selectedEpisode"))
		if err != nil {
			http.Error(w, "Invalid selectedEpisode parameter", http.StatusBadRequest)
			return
		}
		input.EpisodeNumber = &episode
	}

	result, err := h.progressCtrl.Submit(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, bolthold.ErrNotFound):
			http.Error(w, "Media item not found", http.StatusNotFound)
		case controllers.IsValidation(err):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.WithError(err).Error("Failed to submit progress update")
			http.Error(w, "Failed to record progress", http.StatusInternalServerError)
		}
		return
	}

	h.logger.WithFields(logrus.Fields{
		"metadata_id": result.MetadataID,
		"recorded":    result.Recorded,
	}).Info("Progress update submitted")

	// Send the caller back to the item's details view
	w.Header().Set("Location", "/media?item="+strconv.FormatUint(result.MetadataID, 10))
	w.WriteHeader(http.StatusSeeOther)
}
