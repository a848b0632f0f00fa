package leaderboard

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/constitution-quest/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Get serves GET /api/v1/leaderboard?scope=alltime|weekly&limit=N.
// Authentication is optional; a signed-in user gets their own entry
// appended when they fall outside the top N.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	scope := r.URL.Query().Get("scope")
	if scope == "" {
		scope = ScopeAllTime
	}
	if _, err := scopeColumn(scope); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid scope, use alltime or weekly"})
		return
	}

	limit := DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid limit"})
			return
		}
		limit = n
	}

	var currentUserID int64
	if uid, ok := r.Context().Value("user_id").(int64); ok {
		currentUserID = uid
	}

	resp, err := h.service.Leaderboard(r.Context(), scope, limit, currentUserID)
	if err != nil {
		log.Printf("[leaderboard] %s leaderboard: %v", scope, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load leaderboard"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
