package content

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/constitution-quest/backend/internal/generator"
	"github.com/constitution-quest/backend/internal/models"
	"github.com/gorilla/mux"
)

const defaultQuizQuestions = 5

type Handler struct {
	store     *Store
	generator *generator.Generator
}

func NewHandler(store *Store, gen *generator.Generator) *Handler {
	return &Handler{store: store, generator: gen}
}

func (h *Handler) ListModules(w http.ResponseWriter, r *http.Request) {
	modules, err := h.store.ListModules(r.Context())
	if err != nil {
		log.Printf("[content] list modules: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load modules"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"modules": modules})
}

func (h *Handler) GetModule(w http.ResponseWriter, r *http.Request) {
	moduleID, ok := pathID(w, r, "moduleId")
	if !ok {
		return
	}

	mod, err := h.store.GetModule(r.Context(), moduleID)
	if errors.Is(err, ErrModuleNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Module not found"})
		return
	}
	if err != nil {
		log.Printf("[content] get module %d: %v", moduleID, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load module"})
		return
	}
	writeJSON(w, http.StatusOK, mod)
}

func (h *Handler) GetChapter(w http.ResponseWriter, r *http.Request) {
	moduleID, ok := pathID(w, r, "moduleId")
	if !ok {
		return
	}
	chapterID, ok := pathID(w, r, "chapterId")
	if !ok {
		return
	}

	chapter, err := h.store.GetChapter(r.Context(), moduleID, chapterID)
	if errors.Is(err, ErrChapterNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Chapter not found"})
		return
	}
	if err != nil {
		log.Printf("[content] get chapter %d/%d: %v", moduleID, chapterID, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load chapter"})
		return
	}
	writeJSON(w, http.StatusOK, chapter)
}

// GetQuiz returns a chapter quiz. Answers and explanations are stripped
// unless ?reveal=true is passed, so the client can grade after submission
// without leaking answers up front.
func (h *Handler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	moduleID, ok := pathID(w, r, "moduleId")
	if !ok {
		return
	}
	chapterID, ok := pathID(w, r, "chapterId")
	if !ok {
		return
	}
	reveal := r.URL.Query().Get("reveal") == "true"

	quiz, err := h.store.GetQuiz(r.Context(), moduleID, chapterID, reveal)
	if errors.Is(err, ErrQuizNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Quiz not found"})
		return
	}
	if err != nil {
		log.Printf("[content] get quiz %d/%d: %v", moduleID, chapterID, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load quiz"})
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

// GenerateQuiz builds a fresh quiz for a chapter with the LLM generator
// and replaces whatever quiz the chapter had.
func (h *Handler) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	moduleID, ok := pathID(w, r, "moduleId")
	if !ok {
		return
	}
	chapterID, ok := pathID(w, r, "chapterId")
	if !ok {
		return
	}

	count := defaultQuizQuestions
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 20 {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Count must be between 1 and 20"})
			return
		}
		count = n
	}

	mod, err := h.store.GetModule(r.Context(), moduleID)
	if errors.Is(err, ErrModuleNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Module not found"})
		return
	}
	if err != nil {
		log.Printf("[content] get module %d: %v", moduleID, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load module"})
		return
	}
	chapter, err := h.store.GetChapter(r.Context(), moduleID, chapterID)
	if errors.Is(err, ErrChapterNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Chapter not found"})
		return
	}
	if err != nil {
		log.Printf("[content] get chapter %d/%d: %v", moduleID, chapterID, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load chapter"})
		return
	}

	quiz, resp, err := h.generator.GenerateQuiz(r.Context(), mod, chapter, count)
	if err != nil {
		log.Printf("[content] generate quiz %d/%d: %v", moduleID, chapterID, err)
		writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Quiz generation failed"})
		return
	}
	log.Printf("[content] generated %d questions for %d/%d (model=%s, tokens=%d/%d)",
		len(quiz.Questions), moduleID, chapterID, h.generator.ModelName(), resp.PromptTokens, resp.OutputTokens)

	questions := quiz.ToQuizQuestions()
	if err := h.store.ReplaceQuiz(r.Context(), moduleID, chapterID, questions); err != nil {
		log.Printf("[content] store quiz %d/%d: %v", moduleID, chapterID, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to store quiz"})
		return
	}

	writeJSON(w, http.StatusCreated, models.Quiz{
		ModuleID:  moduleID,
		ChapterID: chapterID,
		Title:     chapter.Title,
		Questions: questions,
	})
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id < 1 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid " + name})
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
