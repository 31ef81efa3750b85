package rest

import (
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/gorilla/mux"

	"github.com/fortuna/courtside/internal/season"
	"github.com/fortuna/courtside/internal/service"
)

var seasonIDPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	players *service.PlayerService
}

// NewHandler creates a new handler
func NewHandler(players *service.PlayerService) *Handler {
	return &Handler{players: players}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "courtside",
	})
}

// GetSeason returns the resolved current and prior season windows.
func (h *Handler) GetSeason(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]season.Window{
		"current": season.Current(),
		"prior":   season.Prior(),
	})
}

// GetPlayers returns the merged player set for the current stats season.
func (h *Handler) GetPlayers(w http.ResponseWriter, r *http.Request) {
	h.servePlayers(w, r, "")
}

// GetPlayersBySeason returns the merged player set for a caller-supplied
// season, enabling historical lookups.
func (h *Handler) GetPlayersBySeason(w http.ResponseWriter, r *http.Request) {
	seasonID := mux.Vars(r)["season"]
	if !seasonIDPattern.MatchString(seasonID) {
		respondError(w, http.StatusBadRequest, "Invalid season format (use YYYY-YY, e.g. 2024-25)", nil)
		return
	}
	h.servePlayers(w, r, seasonID)
}

// GetLastSeasonPlayers returns the merged player set for the season before
// the active one.
func (h *Handler) GetLastSeasonPlayers(w http.ResponseWriter, r *http.Request) {
	h.servePlayers(w, r, season.Prior().StatsSeason)
}

func (h *Handler) servePlayers(w http.ResponseWriter, r *http.Request, seasonID string) {
	result, err := h.players.FetchPlayers(r.Context(), seasonID)
	if err != nil {
		// Primary-source failure: explicit "data unavailable", never a
		// partial player list.
		respondError(w, http.StatusServiceUnavailable, "Failed to fetch NBA data", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetCacheInfo reports freshness for every dataset family.
func (h *Handler) GetCacheInfo(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.players.CacheInfo())
}

// RefreshInjuries forces an immediate refetch of the injury family.
func (h *Handler) RefreshInjuries(w http.ResponseWriter, r *http.Request) {
	count, err := h.players.RefreshInjuries(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to refresh injury data", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Injury cache refreshed",
		"injuries": count,
	})
}

// RefreshBios forces an immediate refetch of the bio family.
func (h *Handler) RefreshBios(w http.ResponseWriter, r *http.Request) {
	count, err := h.players.RefreshBios(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to refresh bio data", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Bio cache refreshed",
		"players": count,
	})
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}
