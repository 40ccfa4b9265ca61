// Package server is the HTTP chat front-end: a JSON chat API, a
// health probe, and an inline single-page chat UI.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Elainezzz001/kkh-nursing-chatbot/internal/chat"
	"github.com/Elainezzz001/kkh-nursing-chatbot/internal/llm"
)

// Answerer is the slice of the assistant the HTTP layer needs.
type Answerer interface {
	AnswerStyled(ctx context.Context, question string, style llm.Style) (chat.Answer, error)
}

// ConnectionChecker probes the generation backend for the health
// endpoint.
type ConnectionChecker interface {
	CheckConnection(ctx context.Context) error
}

// Server wires the chat API handlers onto a mux.
type Server struct {
	assistant Answerer
	checker   ConnectionChecker
	sessions  *chat.Sessions
	corpus    int
	logger    *slog.Logger
}

func New(assistant Answerer, checker ConnectionChecker, corpusSize int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		assistant: assistant,
		checker:   checker,
		sessions:  chat.NewSessions(),
		corpus:    corpusSize,
		logger:    logger,
	}
}

// Handler returns the HTTP handler for all chat endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/", s.handleIndex)
	return mux
}

type healthResponse struct {
	Status    string `json:"status"`
	Model     string `json:"model"`
	Chunks    int    `json:"chunks"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	resp := healthResponse{
		Chunks:    s.corpus,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := s.checker.CheckConnection(ctx); err != nil {
		resp.Status = "degraded"
		resp.Model = "disconnected"
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(resp)
		return
	}
	resp.Status = "healthy"
	resp.Model = "connected"
	json.NewEncoder(w).Encode(resp)
}

type chatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
	Style     string `json:"style,omitempty"`
}

type chatResponse struct {
	SessionID  string  `json:"session_id"`
	Answer     string  `json:"answer"`
	AnswerHTML string  `json:"answer_html"`
	Chunk      string  `json:"chunk,omitempty"`
	Score      float32 `json:"score,omitempty"`
	Grounded   bool    `json:"grounded"`
	Generated  bool    `json:"generated"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	session := s.sessions.Get(req.SessionID)
	session.Append(chat.RoleUser, req.Message)

	answer, err := s.assistant.AnswerStyled(r.Context(), req.Message, parseStyle(req.Style))
	if err != nil {
		s.logger.Error("Answer failed", "session", session.ID, "error", err)
		http.Error(w, "the assistant is unavailable, try again later", http.StatusServiceUnavailable)
		return
	}
	session.Append(chat.RoleAssistant, answer.Text)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(chatResponse{
		SessionID:  session.ID,
		Answer:     answer.Text,
		AnswerHTML: renderMarkdown(answer.Text),
		Chunk:      answer.Chunk,
		Score:      answer.Score,
		Grounded:   answer.Grounded,
		Generated:  answer.Generated,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session_id")
	if id == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}
	session := s.sessions.Get(id)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"session_id": session.ID,
		"messages":   session.History(),
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

func parseStyle(s string) llm.Style {
	switch llm.Style(s) {
	case llm.StyleDetailed:
		return llm.StyleDetailed
	case llm.StyleQuick:
		return llm.StyleQuick
	default:
		return llm.StyleStandard
	}
}
