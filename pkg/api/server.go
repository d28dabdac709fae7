// Package api exposes the agent over HTTP. Handlers are thin adapters:
// decode, call into the agent or registry, map errors to status codes.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"boxbox/pkg/agent"
	"boxbox/pkg/logging"
	"boxbox/pkg/prompts"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type GeneratePostRequest struct {
	TemplateName string            `json:"template_name"`
	ContextData  map[string]string `json:"context_data"`
}

type ReplyCommentRequest struct {
	CommentText   string `json:"comment_text"`
	AgentResponse string `json:"agent_response"`
}

type SimulateLikeRequest struct {
	PostID string `json:"post_id"`
}

type SimulateActionRequest struct {
	ActionType string            `json:"action_type"`
	ActionData map[string]string `json:"action_data"`
}

type UpdateContextRequest struct {
	ContextData map[string]string `json:"context_data"`
}

type RegisterTemplateRequest struct {
	Name            string            `json:"name"`
	Body            string            `json:"body"`
	RequiredContext []string          `json:"required_context"`
	DefaultValues   map[string]string `json:"default_values"`
}

// TemplateDefinitionResponse mirrors prompts.Definition for clients.
type TemplateDefinitionResponse struct {
	Name            string            `json:"name"`
	Body            string            `json:"body"`
	RequiredContext []string          `json:"required_context"`
	DefaultValues   map[string]string `json:"default_values"`
	Placeholders    []string          `json:"placeholders"`
}

type Server struct {
	agent    *agent.Agent
	registry *prompts.Registry
	logger   zerolog.Logger
	httpSrv  *http.Server
}

func NewServer(addr string, ag *agent.Agent, registry *prompts.Registry) *Server {
	s := &Server{
		agent:    ag,
		registry: registry,
		logger:   logging.Component("api"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/generate_post", s.handleGeneratePost)
	mux.HandleFunc("/reply_comment", s.handleReplyComment)
	mux.HandleFunc("/simulate_like", s.handleSimulateLike)
	mux.HandleFunc("/simulate", s.handleSimulate)
	mux.HandleFunc("/update_context", s.handleUpdateContext)
	mux.HandleFunc("/get_context", s.handleGetContext)
	mux.HandleFunc("/register_template", s.handleRegisterTemplate)
	mux.HandleFunc("/template", s.handleGetTemplate)
	mux.HandleFunc("/health", s.handleHealth)

	s.httpSrv = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Handler exposes the route table for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

func (s *Server) ListenAndServe() error {
	s.logger.Info().Str("addr", s.httpSrv.Addr).Msg("http server starting")
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, Response{Status: "ok", Message: "healthy"})
}

func (s *Server) handleGeneratePost(w http.ResponseWriter, r *http.Request) {
	var req GeneratePostRequest
	if !s.decode(w, r, &req) {
		return
	}

	text, err := s.agent.Speak(r.Context(), prompts.TemplateName(req.TemplateName), req.ContextData)
	if err != nil {
		s.writeError(w, "failed to generate post", err)
		return
	}
	s.writeJSON(w, http.StatusOK, Response{
		Status:  "success",
		Message: "Post generated successfully.",
		Data:    map[string]string{"post_text": text},
	})
}

func (s *Server) handleReplyComment(w http.ResponseWriter, r *http.Request) {
	var req ReplyCommentRequest
	if !s.decode(w, r, &req) {
		return
	}

	result, err := s.agent.Act(agent.ActionReplyComment, map[string]string{
		"comment_text":   req.CommentText,
		"agent_response": req.AgentResponse,
	})
	if err != nil {
		s.writeError(w, "failed to simulate comment reply", err)
		return
	}
	s.writeJSON(w, http.StatusOK, Response{Status: "success", Message: "Comment reply simulated.", Data: result})
}

func (s *Server) handleSimulateLike(w http.ResponseWriter, r *http.Request) {
	var req SimulateLikeRequest
	if !s.decode(w, r, &req) {
		return
	}

	result, err := s.agent.Act(agent.ActionLike, map[string]string{"post_id": req.PostID})
	if err != nil {
		s.writeError(w, "failed to simulate like", err)
		return
	}
	s.writeJSON(w, http.StatusOK, Response{Status: "success", Message: "Post like simulated.", Data: result})
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateActionRequest
	if !s.decode(w, r, &req) {
		return
	}

	result, err := s.agent.Act(agent.ActionKind(req.ActionType), req.ActionData)
	if err != nil {
		s.writeError(w, "failed to simulate action", err)
		return
	}
	s.writeJSON(w, http.StatusOK, Response{Status: "success", Message: "Action simulated.", Data: result})
}

func (s *Server) handleUpdateContext(w http.ResponseWriter, r *http.Request) {
	var req UpdateContextRequest
	if !s.decode(w, r, &req) {
		return
	}

	situation, err := s.agent.Think(req.ContextData)
	if err != nil {
		s.writeError(w, "failed to update context", err)
		return
	}
	s.writeJSON(w, http.StatusOK, Response{Status: "success", Message: "Agent context updated.", Data: situation})
}

func (s *Server) handleGetContext(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, Response{Status: "success", Message: "Agent context retrieved.", Data: s.agent.Situation()})
}

func (s *Server) handleRegisterTemplate(w http.ResponseWriter, r *http.Request) {
	var req RegisterTemplateRequest
	if !s.decode(w, r, &req) {
		return
	}

	err := s.registry.Register(prompts.TemplateName(req.Name), req.Body, req.RequiredContext, req.DefaultValues)
	if err != nil {
		s.writeError(w, "failed to register template", err)
		return
	}
	s.writeJSON(w, http.StatusOK, Response{Status: "success", Message: "Template registered."})
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		s.writeJSON(w, http.StatusBadRequest, Response{Status: "error", Message: "name query parameter required"})
		return
	}

	def, err := s.registry.Get(prompts.TemplateName(name))
	if err != nil {
		s.writeError(w, "failed to retrieve template", err)
		return
	}
	s.writeJSON(w, http.StatusOK, Response{
		Status:  "success",
		Message: "Template retrieved.",
		Data: TemplateDefinitionResponse{
			Name:            name,
			Body:            def.Body,
			RequiredContext: def.RequiredContext,
			DefaultValues:   def.DefaultValues,
			Placeholders:    def.Placeholders,
		},
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeJSON(w, http.StatusBadRequest, Response{Status: "error", Message: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

// writeError maps validation-class failures (malformed request) to 400
// and everything else (infrastructure) to 500.
func (s *Server) writeError(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	if isClientError(err) {
		status = http.StatusBadRequest
	} else {
		s.logger.Error().Err(err).Msg(message)
	}
	s.writeJSON(w, status, Response{Status: "error", Message: message + ": " + err.Error()})
}

func isClientError(err error) bool {
	return prompts.IsValidationError(err) ||
		errors.Is(err, agent.ErrUnknownAction) ||
		errors.Is(err, agent.ErrMissingActionData) ||
		errors.Is(err, agent.ErrUnknownContextField)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}
