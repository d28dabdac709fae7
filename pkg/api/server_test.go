package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boxbox/pkg/agent"
	"boxbox/pkg/generator"
	"boxbox/pkg/prompts"
)

type stubModel struct {
	completeFunc func(ctx context.Context, prompt string, maxTokens, n int) ([]string, error)
}

func (s *stubModel) Complete(ctx context.Context, prompt string, maxTokens, n int) ([]string, error) {
	if s.completeFunc != nil {
		return s.completeFunc(ctx, prompt, maxTokens, n)
	}
	return []string{"model says hi"}, nil
}

func newTestServer(model *stubModel) *Server {
	registry := prompts.NewRegistry()
	engine := generator.New(prompts.NewRenderer(registry), model, generator.DefaultOptions())
	return NewServer(":0", agent.New(engine), registry)
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var resp Response
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestGeneratePost(t *testing.T) {
	srv := newTestServer(&stubModel{})

	rec, resp := doJSON(t, srv.Handler(), "POST", "/generate_post", GeneratePostRequest{
		TemplateName: "post_race",
		ContextData: map[string]string{
			"race_name":    "Monaco GP",
			"team":         "Mercedes",
			"result":       "P1",
			"car_feeling":  "solid",
			"weather":      "dry",
			"race_hashtag": "MonacoMagic",
			"team_hashtag": "TeamMercedes",
		},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", resp.Status)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "model says hi", data["post_text"])
}

func TestGeneratePost_MissingKeysIsClientError(t *testing.T) {
	srv := newTestServer(&stubModel{})

	rec, resp := doJSON(t, srv.Handler(), "POST", "/generate_post", GeneratePostRequest{
		TemplateName: "reply_fan",
		ContextData:  map[string]string{"fan_comment": "great drive!"},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Message, "topic")
}

func TestGeneratePost_UnknownTemplateIsClientError(t *testing.T) {
	srv := newTestServer(&stubModel{})

	rec, _ := doJSON(t, srv.Handler(), "POST", "/generate_post", GeneratePostRequest{
		TemplateName: "nonexistent",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGeneratePost_ModelFailureWithFallbackStillSucceeds(t *testing.T) {
	srv := newTestServer(&stubModel{
		completeFunc: func(ctx context.Context, prompt string, maxTokens, n int) ([]string, error) {
			return nil, errors.New("model down")
		},
	})

	rec, resp := doJSON(t, srv.Handler(), "POST", "/generate_post", GeneratePostRequest{
		TemplateName: "reply_fan",
		ContextData:  map[string]string{"fan_comment": "great drive!", "topic": "overtakes"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	data := resp.Data.(map[string]any)
	assert.Contains(t, data["post_text"], "great drive!")
}

func TestGeneratePost_InfrastructureFailureIsServerError(t *testing.T) {
	registry := prompts.NewRegistry()
	model := &stubModel{
		completeFunc: func(ctx context.Context, prompt string, maxTokens, n int) ([]string, error) {
			return nil, errors.New("model down")
		},
	}
	engine := generator.New(prompts.NewRenderer(registry), model, generator.Options{
		MaxLength:          128,
		NumReturnSequences: 1,
		EnableFallback:     false,
	})
	srv := NewServer(":0", agent.New(engine), registry)

	rec, _ := doJSON(t, srv.Handler(), "POST", "/generate_post", GeneratePostRequest{
		TemplateName: "reply_fan",
		ContextData:  map[string]string{"fan_comment": "great drive!", "topic": "overtakes"},
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestUpdateAndGetContext(t *testing.T) {
	srv := newTestServer(&stubModel{})

	rec, _ := doJSON(t, srv.Handler(), "POST", "/update_context", UpdateContextRequest{
		ContextData: map[string]string{"race_stage": "post_race", "recent_result": "P1"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp := doJSON(t, srv.Handler(), "GET", "/get_context", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "post_race", data["race_stage"])
	assert.Equal(t, "P1", data["recent_result"])
}

func TestUpdateContext_UnknownFieldIsClientError(t *testing.T) {
	srv := newTestServer(&stubModel{})

	rec, _ := doJSON(t, srv.Handler(), "POST", "/update_context", UpdateContextRequest{
		ContextData: map[string]string{"tire_pressure": "22psi"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSimulateEndpoints(t *testing.T) {
	srv := newTestServer(&stubModel{})

	rec, resp := doJSON(t, srv.Handler(), "POST", "/reply_comment", ReplyCommentRequest{
		CommentText:   "great drive!",
		AgentResponse: "thanks!",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", resp.Status)

	rec, _ = doJSON(t, srv.Handler(), "POST", "/simulate_like", SimulateLikeRequest{PostID: "99"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, srv.Handler(), "POST", "/simulate", SimulateActionRequest{
		ActionType: "post_status_update",
		ActionData: map[string]string{"status_text": "race week!"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSimulate_UnknownActionIsClientError(t *testing.T) {
	srv := newTestServer(&stubModel{})

	rec, _ := doJSON(t, srv.Handler(), "POST", "/simulate", SimulateActionRequest{
		ActionType: "teleport",
		ActionData: map[string]string{},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSimulateLike_MissingDataIsClientError(t *testing.T) {
	srv := newTestServer(&stubModel{})

	rec, _ := doJSON(t, srv.Handler(), "POST", "/simulate_like", SimulateLikeRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterAndGetTemplate(t *testing.T) {
	srv := newTestServer(&stubModel{})

	rec, _ := doJSON(t, srv.Handler(), "POST", "/register_template", RegisterTemplateRequest{
		Name:            "custom",
		Body:            "Hello {x}",
		RequiredContext: []string{"x"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp := doJSON(t, srv.Handler(), "GET", "/template?name=custom", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "Hello {x}", data["body"])
	assert.Equal(t, []any{"x"}, data["placeholders"])

	// The registered template is immediately usable for generation.
	rec, genResp := doJSON(t, srv.Handler(), "POST", "/generate_post", GeneratePostRequest{
		TemplateName: "custom",
		ContextData:  map[string]string{"x": "world"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	genData := genResp.Data.(map[string]any)
	assert.Equal(t, "model says hi", genData["post_text"])
}

func TestRegisterTemplate_EmptyBodyIsClientError(t *testing.T) {
	srv := newTestServer(&stubModel{})

	rec, _ := doJSON(t, srv.Handler(), "POST", "/register_template", RegisterTemplateRequest{
		Name: "broken",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTemplate_NotFound(t *testing.T) {
	srv := newTestServer(&stubModel{})

	rec, _ := doJSON(t, srv.Handler(), "GET", "/template?name=nope", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&stubModel{})

	rec, resp := doJSON(t, srv.Handler(), "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", resp.Status)
}

func TestInvalidJSONBody(t *testing.T) {
	srv := newTestServer(&stubModel{})

	req := httptest.NewRequest("POST", "/generate_post", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(&stubModel{})

	rec, _ := doJSON(t, srv.Handler(), "GET", "/generate_post", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec, _ = doJSON(t, srv.Handler(), "POST", "/get_context", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
