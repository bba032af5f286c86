package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"research-paper-ai/internal/domain"
	"research-paper-ai/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

// ===== DTOs =====

type topicCreateRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Field       string   `json:"field"`
	Keywords    []string `json:"keywords"`
}

type topicResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Field       string    `json:"field"`
	Keywords    []string  `json:"keywords"`
	CreatedAt   time.Time `json:"created_at"`
}

type generateRequest struct {
	TopicIDs []string `json:"topic_ids"`
	PaperID  string   `json:"paper_id,omitempty"` // resume into an existing record
}

type paperResponse struct {
	ID        string                 `json:"id"`
	TopicIDs  []string               `json:"topic_ids"`
	Title     string                 `json:"title"`
	Status    string                 `json:"status"`
	Abstract  string                 `json:"abstract,omitempty"`
	Content   string                 `json:"content,omitempty"`
	Version   int                    `json:"version"`
	Scores    *model.DimensionScores `json:"scores,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

type stageRecordResponse struct {
	ID             string    `json:"id"`
	AgentRole      string    `json:"agent_role"`
	StepName       string    `json:"step_name"`
	Iteration      int       `json:"iteration"`
	Output         string    `json:"output"`
	ModelSignature string    `json:"model_signature"`
	CreatedAt      time.Time `json:"created_at"`
}

func toTopicResponse(t *model.Topic) topicResponse {
	return topicResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Field:       t.Field,
		Keywords:    t.Keywords,
		CreatedAt:   t.CreatedAt,
	}
}

// toPaperResponse maps a job to its API shape. Content is omitted on list
// views to keep payloads small.
func toPaperResponse(p *model.Paper, withContent bool) paperResponse {
	resp := paperResponse{
		ID:        p.ID,
		TopicIDs:  p.TopicIDs,
		Title:     p.Title,
		Status:    string(p.Status),
		Abstract:  p.Abstract,
		Version:   p.Version,
		Scores:    p.Score,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if withContent {
		resp.Content = p.Content
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDomainError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrTopicNotFound),
		errors.Is(err, domain.ErrPaperNotFound):
		http.NotFound(w, r)
	case errors.Is(err, domain.ErrInvalidArgument):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrAlreadyExists):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, fallback, http.StatusInternalServerError)
	}
}

// ===== Admin =====

func (s *Server) adminTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Secret string `json:"secret"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		token, err := s.auth.Mint(req.Secret)
		if err != nil {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}

// ===== Topics =====

func (s *Server) topicCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req topicCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		topic, err := s.topicUC.Create(r.Context(), req.Title, req.Description, req.Field, req.Keywords)
		if err != nil {
			writeDomainError(w, r, err, "Failed to create topic")
			return
		}
		writeJSON(w, http.StatusCreated, toTopicResponse(topic))
	}
}

func (s *Server) topicsListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topics, err := s.topicUC.List(r.Context())
		if err != nil {
			http.Error(w, "Failed to list topics", http.StatusInternalServerError)
			return
		}
		data := make([]topicResponse, 0, len(topics))
		for _, t := range topics {
			data = append(data, toTopicResponse(t))
		}
		writeJSON(w, http.StatusOK, struct {
			Data []topicResponse `json:"data"`
		}{Data: data})
	}
}

func (s *Server) topicGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topic, err := s.topicUC.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeDomainError(w, r, err, "Failed to get topic")
			return
		}
		writeJSON(w, http.StatusOK, toTopicResponse(topic))
	}
}

func (s *Server) topicDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.topicUC.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeDomainError(w, r, err, "Failed to delete topic")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ===== Papers =====

// paperGenerateHandler accepts a job and returns 202 immediately; the paper
// record carries status `processing` until the pipeline settles it.
func (s *Server) paperGenerateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		paper, err := s.paperUC.Submit(r.Context(), req.TopicIDs, req.PaperID)
		if err != nil {
			if errors.Is(err, domain.ErrGenerationFailed) {
				http.Error(w, "Generation queue is full, try again later", http.StatusServiceUnavailable)
				return
			}
			writeDomainError(w, r, err, "Failed to submit paper job")
			return
		}
		writeJSON(w, http.StatusAccepted, toPaperResponse(paper, false))
	}
}

func (s *Server) papersListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		papers, err := s.paperUC.List(r.Context())
		if err != nil {
			http.Error(w, "Failed to list papers", http.StatusInternalServerError)
			return
		}
		data := make([]paperResponse, 0, len(papers))
		for _, p := range papers {
			data = append(data, toPaperResponse(p, false))
		}
		writeJSON(w, http.StatusOK, struct {
			Data []paperResponse `json:"data"`
		}{Data: data})
	}
}

func (s *Server) paperGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		paper, err := s.paperUC.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeDomainError(w, r, err, "Failed to get paper")
			return
		}
		writeJSON(w, http.StatusOK, toPaperResponse(paper, true))
	}
}

func (s *Server) paperTraceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := s.paperUC.Trace(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeDomainError(w, r, err, "Failed to get paper trace")
			return
		}
		data := make([]stageRecordResponse, 0, len(records))
		for _, rec := range records {
			data = append(data, stageRecordResponse{
				ID:             rec.ID,
				AgentRole:      rec.AgentRole,
				StepName:       rec.StepName,
				Iteration:      rec.Iteration,
				Output:         rec.Output,
				ModelSignature: rec.ModelSignature,
				CreatedAt:      rec.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, struct {
			Data []stageRecordResponse `json:"data"`
		}{Data: data})
	}
}

func (s *Server) paperDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.paperUC.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeDomainError(w, r, err, "Failed to delete paper")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
