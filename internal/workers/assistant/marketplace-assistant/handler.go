// internal/workers/assistant/marketplace-assistant/handler.go
package marketplaceassistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"lending-workers/internal/common/camunda"
	apperrors "lending-workers/internal/common/errors"
	commonhttp "lending-workers/internal/common/http"
	"lending-workers/internal/common/logger"
	"lending-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"golang.org/x/time/rate"
)

const (
	TaskType = "marketplace-assistant"
)

type JSONPoster interface {
	PostJSON(ctx context.Context, url string, headers map[string]string, payload, out interface{}) error
}

type Handler struct {
	config  *Config
	client  JSONPoster
	limiter *rate.Limiter
	runner  *camunda.JobRunner
	logger  logger.Logger
}

// NewHandler builds a handler with a retrying HTTP client when client is nil.
// The request deadline comes from the job context.
func NewHandler(config *Config, client JSONPoster, log logger.Logger, obs *observability.Observability) *Handler {
	if client == nil {
		client = commonhttp.NewRetryingClient(0, config.MaxRetries, 0)
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if config.RequestsPerSecond > 0 {
		burst := config.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), burst)
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		client:  client,
		limiter: limiter,
		runner:  camunda.NewJobRunner(TaskType, config.Timeout, log, obs),
		logger:  log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.runner.Run(client, job, func(ctx context.Context, variables string) (interface{}, error) {
		var input Input
		if err := json.Unmarshal([]byte(variables), &input); err != nil {
			return nil, apperrors.NewParseError(err)
		}
		return h.execute(ctx, &input)
	})
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, apperrors.NewInputValidationFailedError("Message is required")
	}

	p := personaFor(input.Referer)
	req := h.buildRequest(p, question, input.History)

	// Wait fails early when the job deadline would pass before a token frees up.
	if err := h.limiter.Wait(ctx); err != nil {
		h.logger.Warn("assistant throttled", map[string]interface{}{"error": err})
		return nil, apperrors.NewAssistantTimeoutError()
	}

	var resp generateResponse
	err := h.client.PostJSON(ctx, h.endpoint(), map[string]string{"x-goog-api-key": h.config.APIKey}, req, &resp)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewAssistantTimeoutError()
		}
		return nil, apperrors.NewAssistantFailedError(err)
	}

	answer := strings.TrimSpace(resp.text())
	if answer == "" {
		h.logger.Warn("assistant returned no text", map[string]interface{}{"persona": p.key})
		answer = fallbackAnswer
	}

	h.logger.Info("assistant answered", map[string]interface{}{
		"persona":      p.key,
		"historyTurns": len(req.Contents) - 1,
	})

	return &Output{Answer: answer, Persona: p.key, AssistantName: p.name}, nil
}

func (h *Handler) endpoint() string {
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent", strings.TrimRight(h.config.BaseURL, "/"), h.config.Model)
}

func (h *Handler) buildRequest(p persona, question string, history []Message) *generateRequest {
	if h.config.MaxHistory >= 0 && len(history) > h.config.MaxHistory {
		history = history[len(history)-h.config.MaxHistory:]
	}

	contents := make([]content, 0, len(history)+1)
	for _, m := range history {
		text := strings.TrimSpace(m.Content)
		if text == "" {
			continue
		}
		role := "user"
		if m.Role == "model" || m.Role == "assistant" {
			role = "model"
		}
		contents = append(contents, content{Role: role, Parts: []part{{Text: text}}})
	}
	contents = append(contents, content{Role: "user", Parts: []part{{Text: question}}})

	return &generateRequest{
		SystemInstruction: content{Parts: []part{{Text: p.systemPrompt()}}},
		Contents:          contents,
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
