package discussions

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/constitution-quest/backend/internal/models"
	"github.com/constitution-quest/backend/internal/progress"
	"github.com/gorilla/mux"
)

type Handler struct {
	store   *Store
	rewards *progress.Service
}

func NewHandler(store *Store, rewards *progress.Service) *Handler {
	return &Handler{store: store, rewards: rewards}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		Sort: q.Get("sort"),
		Tag:  strings.ToLower(strings.TrimSpace(q.Get("tag"))),
	}
	if raw := q.Get("page"); raw != "" {
		filter.Page, _ = strconv.Atoi(raw)
	}
	if raw := q.Get("limit"); raw != "" {
		filter.Limit, _ = strconv.Atoi(raw)
	}

	resp, err := h.store.List(r.Context(), filter)
	if err != nil {
		if strings.HasPrefix(err.Error(), "unknown sort") {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid sort, use recent, popular, or unanswered"})
			return
		}
		log.Printf("[discussions] list: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load discussions"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid discussion id"})
		return
	}

	resp, err := h.store.Get(r.Context(), id)
	if errors.Is(err, ErrDiscussionNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Discussion not found"})
		return
	}
	if err != nil {
		log.Printf("[discussions] get %d: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load discussion"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create starts a discussion and reports the reward outcome. A failed
// reward write never rolls back the discussion; the first-discussion
// badge self-heals on the author's next post.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int64)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.CreateDiscussionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	if req.Title == "" || req.Content == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Title and content are required"})
		return
	}

	d, err := h.store.Create(r.Context(), userID, req)
	if err != nil {
		log.Printf("[discussions] create: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create discussion"})
		return
	}

	resp := models.CreateDiscussionResponse{Discussion: *d}
	if reward, err := h.rewards.OnDiscussionCreated(r.Context(), userID); err != nil {
		log.Printf("[discussions] reward for user %d: %v", userID, err)
	} else {
		resp.Reward = reward
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int64)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	discussionID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid discussion id"})
		return
	}

	var req models.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Content is required"})
		return
	}

	c, err := h.store.AddComment(r.Context(), discussionID, userID, req)
	if errors.Is(err, ErrDiscussionNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Discussion not found"})
		return
	}
	if err != nil {
		log.Printf("[discussions] comment on %d: %v", discussionID, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create comment"})
		return
	}

	writeJSON(w, http.StatusCreated, c)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
