// internal/workers/assistant/marketplace-assistant/handler_test.go
package marketplaceassistant

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "lending-workers/internal/common/errors"
	commonhttp "lending-workers/internal/common/http"
	"lending-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig(baseURL string) *Config {
	return &Config{
		BaseURL:    baseURL,
		APIKey:     "test-key",
		Model:      "gemini-pro",
		Timeout:    5 * time.Second,
		MaxRetries: 0,
		MaxHistory: 2,
	}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewTestLogger(t)
}

type capturedRequest struct {
	Path   string
	APIKey string
	Body   generateRequest
}

func newAssistantServer(t *testing.T, status int, reply string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.Path = r.URL.Path
		captured.APIKey = r.Header.Get("x-goog-api-key")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured.Body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func textReply(text string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"candidates": []interface{}{
			map[string]interface{}{"content": map[string]interface{}{
				"role":  "model",
				"parts": []interface{}{map[string]interface{}{"text": text}},
			}},
		},
	})
	return string(b)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestPersonaFor(t *testing.T) {
	tests := []struct {
		referer string
		want    string
		name    string
	}{
		{"https://app.example.com/smedashboard/loans", PersonaSME, "Shark"},
		{"https://app.example.com/investor/bids", PersonaInvestor, "Dolphin"},
		{"https://app.example.com/smedashboard/investor-list", PersonaSME, "Shark"},
		{"https://app.example.com/", PersonaGeneral, ""},
		{"", PersonaGeneral, ""},
	}

	for _, tt := range tests {
		p := personaFor(tt.referer)
		assert.Equal(t, tt.want, p.key, tt.referer)
		assert.Equal(t, tt.name, p.name, tt.referer)
	}
}

func TestExecute_InvestorQuestion(t *testing.T) {
	srv, captured := newAssistantServer(t, http.StatusOK, textReply("  Filter by sector on the preferences page. "))
	h := NewHandler(createTestConfig(srv.URL), nil, createTestLogger(t), nil)

	out, err := h.Execute(context.Background(), &Input{
		Question: "How do I find tech loans?",
		Referer:  "https://app.example.com/investor/home",
		History: []Message{
			{Role: "user", Content: "hi"},
			{Role: "assistant", Content: "Hello!"},
			{Role: "user", Content: "what can you do?"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Filter by sector on the preferences page.", out.Answer)
	assert.Equal(t, PersonaInvestor, out.Persona)
	assert.Equal(t, "Dolphin", out.AssistantName)

	assert.Equal(t, "/v1beta/models/gemini-pro:generateContent", captured.Path)
	assert.Equal(t, "test-key", captured.APIKey)
	assert.True(t, strings.HasPrefix(captured.Body.SystemInstruction.Parts[0].Text, "You are Dolphin"))

	// two most recent history turns plus the question
	require.Len(t, captured.Body.Contents, 3)
	assert.Equal(t, "model", captured.Body.Contents[0].Role)
	assert.Equal(t, "How do I find tech loans?", captured.Body.Contents[2].Parts[0].Text)
}

func TestExecute_EmptyReplyFallsBack(t *testing.T) {
	srv, _ := newAssistantServer(t, http.StatusOK, `{"candidates":[]}`)
	h := NewHandler(createTestConfig(srv.URL), nil, createTestLogger(t), nil)

	out, err := h.Execute(context.Background(), &Input{Question: "hello"})
	require.NoError(t, err)

	assert.Equal(t, fallbackAnswer, out.Answer)
	assert.Equal(t, PersonaGeneral, out.Persona)
}

// ==========================
// Error Handling Tests
// ==========================

func TestExecute_EmptyQuestion(t *testing.T) {
	h := NewHandler(createTestConfig("http://unused"), nil, createTestLogger(t), nil)

	_, err := h.Execute(context.Background(), &Input{Question: "   "})
	require.Error(t, err)

	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInputValidationFailed, stdErr.Code)
	assert.Equal(t, "Message is required", stdErr.Details)
}

func TestExecute_UpstreamError(t *testing.T) {
	srv, _ := newAssistantServer(t, http.StatusBadRequest, `{"error":{"message":"API key not valid"}}`)
	h := NewHandler(createTestConfig(srv.URL), nil, createTestLogger(t), nil)

	_, err := h.Execute(context.Background(), &Input{Question: "hello"})
	require.Error(t, err)

	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeAssistantFailed, stdErr.Code)
	assert.Contains(t, stdErr.Details, "400")
}

func TestExecute_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	h := NewHandler(createTestConfig(srv.URL), commonhttp.NewClient(0), createTestLogger(t), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := h.Execute(ctx, &Input{Question: "hello"})
	require.Error(t, err)

	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeAssistantTimeout, stdErr.Code)
}

func TestExecute_Throttled(t *testing.T) {
	srv, _ := newAssistantServer(t, http.StatusOK, textReply("Hi"))
	cfg := createTestConfig(srv.URL)
	cfg.RequestsPerSecond = 0.01
	cfg.Burst = 1
	h := NewHandler(cfg, nil, createTestLogger(t), nil)

	_, err := h.Execute(context.Background(), &Input{Question: "hello"})
	require.NoError(t, err)

	// the next token is 100s away, past this deadline
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = h.Execute(ctx, &Input{Question: "hello again"})
	require.Error(t, err)

	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeAssistantTimeout, stdErr.Code)
}
