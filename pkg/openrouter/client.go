// Package openrouter implements the model capability against an
// OpenAI-compatible chat completions endpoint.
package openrouter

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/rs/zerolog"

	"boxbox/pkg/logging"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	requestTimeout = 120 * time.Second
)

// DefaultModels is the prioritized fallback list used when the config
// does not name any models.
var DefaultModels = []string{
	"meta-llama/llama-3.3-70b-instruct",
	"mistralai/mistral-small-3.1-24b-instruct",
}

// KeyState tracks the health of an API key
type KeyState struct {
	Key          string
	FailureCount int
	LastUsed     time.Time
	LastSuccess  time.Time
}

type Client struct {
	keys        []*KeyState
	keyMu       sync.RWMutex
	clients     map[string]openai.Client
	clientsMu   sync.RWMutex
	baseURL     string
	temperature float64
	topP        float64
	models      []string
	logger      zerolog.Logger
}

// NewClient creates a client with support for multiple API keys
// (comma-separated). Keys are rotated based on failure count (least
// failures first).
func NewClient(apiKeys string, temperature, topP float64, models []string) *Client {
	if len(models) == 0 {
		models = DefaultModels
	}

	keyStrings := strings.Split(apiKeys, ",")
	keys := make([]*KeyState, 0, len(keyStrings))
	for _, k := range keyStrings {
		k = strings.TrimSpace(k)
		if k != "" {
			keys = append(keys, &KeyState{Key: k})
		}
	}

	logger := logging.Component("openrouter")
	if len(keys) == 0 {
		logger.Warn().Msg("no API keys provided")
	} else {
		logger.Info().Int("keys", len(keys)).Msg("loaded OpenRouter API keys")
	}

	return &Client{
		keys:        keys,
		clients:     make(map[string]openai.Client),
		baseURL:     defaultBaseURL,
		temperature: temperature,
		topP:        topP,
		models:      models,
		logger:      logger,
	}
}

// SetBaseURL overrides the API endpoint (for testing).
func (c *Client) SetBaseURL(url string) {
	c.clientsMu.Lock()
	defer c.clientsMu.Unlock()
	c.baseURL = url
	c.clients = make(map[string]openai.Client)
}

func (c *Client) getClient(key string) openai.Client {
	c.clientsMu.RLock()
	if client, ok := c.clients[key]; ok {
		c.clientsMu.RUnlock()
		return client
	}
	c.clientsMu.RUnlock()

	c.clientsMu.Lock()
	defer c.clientsMu.Unlock()

	client := openai.NewClient(
		option.WithBaseURL(c.baseURL),
		option.WithAPIKey(key),
		// The model fallback loop handles retries; the SDK should not
		// add its own backoff on top.
		option.WithMaxRetries(0),
	)
	c.clients[key] = client
	return client
}

// getBestKey returns the API key with the least failures
func (c *Client) getBestKey() *KeyState {
	c.keyMu.RLock()
	defer c.keyMu.RUnlock()

	if len(c.keys) == 0 {
		return nil
	}

	best := c.keys[0]
	for _, k := range c.keys[1:] {
		if k.FailureCount < best.FailureCount {
			best = k
		}
	}
	return best
}

func (c *Client) recordSuccess(key *KeyState) {
	c.keyMu.Lock()
	defer c.keyMu.Unlock()
	key.LastSuccess = time.Now()
	key.LastUsed = time.Now()
	// Reduce failure count on success (gradual recovery)
	if key.FailureCount > 0 {
		key.FailureCount--
	}
}

func (c *Client) recordFailure(key *KeyState) {
	c.keyMu.Lock()
	defer c.keyMu.Unlock()
	key.FailureCount++
	key.LastUsed = time.Now()
}

// Complete sends prompt as a single user message and returns the ordered
// candidate texts. Models are tried in priority order until one answers.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens, n int) ([]string, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, requestTimeout)
		defer cancel()
	}

	keyState := c.getBestKey()
	if keyState == nil {
		return nil, fmt.Errorf("no API keys configured")
	}

	var lastErr error

	for _, model := range c.models {
		c.logger.Debug().
			Str("model", model).
			Int("key_failures", keyState.FailureCount).
			Msg("attempting model")

		client := c.getClient(keyState.Key)

		params := openai.ChatCompletionNewParams{
			Model: shared.ChatModel(model),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			Temperature: openai.Float(c.temperature),
			TopP:        openai.Float(c.topP),
			MaxTokens:   openai.Int(int64(maxTokens)),
			N:           openai.Int(int64(n)),
		}

		start := time.Now()
		resp, err := client.Chat.Completions.New(ctx, params)
		if err != nil {
			c.recordFailure(keyState)
			lastErr = fmt.Errorf("model %s: %w", model, err)
			if ctx.Err() != nil {
				// Deadline or cancellation: retrying other models
				// would fail the same way.
				return nil, lastErr
			}
			continue
		}
		if resp == nil || len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("model %s: empty response", model)
			continue
		}

		c.recordSuccess(keyState)
		c.logger.Debug().
			Str("model", model).
			Dur("took", time.Since(start)).
			Int("candidates", len(resp.Choices)).
			Msg("model succeeded")

		candidates := make([]string, 0, len(resp.Choices))
		for _, choice := range resp.Choices {
			candidates = append(candidates, strings.TrimSpace(choice.Message.Content))
		}
		return candidates, nil
	}

	return nil, fmt.Errorf("all models exhausted: %w", lastErr)
}
