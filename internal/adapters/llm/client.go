// Package llm provides a chat completions client for analysis prompts
// against any OpenAI-compatible endpoint: validated responses, prompt
// keyed caching, and retries for transient failures
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"retroscope/internal/platform/cache"
	perr "retroscope/internal/platform/errors"
	"retroscope/internal/platform/logger"
	ptime "retroscope/internal/platform/time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	defaultModel     = "default-model"
	defaultTimeout   = 60 * time.Second
	defaultMaxRetry  = 3
	defaultRetryBase = 2 * time.Second

	// DefaultTemperature keeps analysis output stable across runs
	DefaultTemperature = 0.3
)

// Message roles accepted by Complete
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn sent to the completions endpoint
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options configures the Client
type Options struct {
	// APIKey may stay empty for local endpoints that skip auth
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration

	// Retry config for transient and rate limited responses
	MaxRetries int
	RetryBase  time.Duration
}

// Client wraps the completions endpoint with validation, caching, and
// retries. The SDK's own retry loop is disabled so backoff policy lives
// in one place
type Client struct {
	api   openai.Client
	opts  Options
	cache *cache.Cache
	log   logger.Logger
	sleep func(context.Context, time.Duration) error
}

// New creates a Client with sane defaults
// cc may be nil to run without a response cache
func New(o Options, cc *cache.Cache) (*Client, error) {
	if o.Model == "" {
		o.Model = defaultModel
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}

	reqOpts := []option.RequestOption{
		option.WithMaxRetries(0),
		option.WithRequestTimeout(o.Timeout),
	}
	if o.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(o.APIKey))
	}
	if o.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(o.BaseURL))
	}

	return &Client{
		api:   openai.NewClient(reqOpts...),
		opts:  o,
		cache: cc,
		log:   *logger.Named("llm"),
		sleep: ptime.Sleep,
	}, nil
}

// Model returns the model name sent with every completion
func (c *Client) Model() string { return c.opts.Model }

// Complete runs one chat completion and returns the trimmed message content.
// Validated content is cached under the prompt key so identical prompts skip
// the endpoint entirely. Malformed responses fail without retry; the same
// prompt will not shape up on a second attempt
func (c *Client) Complete(ctx context.Context, messages []Message, temperature float64) (string, error) {
	key := promptKey(c.opts.Model, temperature, messages)
	if c.cache != nil {
		if data, ok := c.cache.Get(key); ok {
			return string(data), nil
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       c.opts.Model,
		Messages:    convertMessages(messages),
		Temperature: openai.Float(temperature),
	}

	for attempt := 0; ; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		resp, err := c.api.Chat.Completions.New(ctx, params)
		if err == nil {
			content, verr := extractContent(resp)
			if verr != nil {
				return "", verr
			}
			if c.cache != nil {
				if cerr := c.cache.Set(key, []byte(content)); cerr != nil {
					c.log.Debug().Err(cerr).Msg("llm cache write failed")
				}
			}
			if attempt > 0 {
				c.log.Info().Int("attempt", attempt).Msg("llm request succeeded after retries")
			}
			return content, nil
		}

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		cerr := classify(err)
		if !perr.Retryable(cerr) || attempt >= c.opts.MaxRetries {
			return "", cerr
		}
		back := c.backoff(attempt)
		c.log.Warn().Dur("retry_in", back).Int("attempt", attempt).Msg("llm request failed retrying")
		if serr := c.sleep(ctx, back); serr != nil {
			return "", serr
		}
	}
}

// promptKey derives the cache key from everything that shapes a response.
// json.Marshal keeps struct field order stable so equal prompts hash equal
func promptKey(model string, temperature float64, messages []Message) string {
	payload, err := json.Marshal(struct {
		Model       string    `json:"model"`
		Temperature float64   `json:"temperature"`
		Messages    []Message `json:"messages"`
	}{model, temperature, messages})
	if err != nil {
		return "llm " + model
	}
	return "llm " + string(payload)
}

func convertMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

// extractContent validates the completion shape and pulls the text out
func extractContent(resp *openai.ChatCompletion) (string, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return "", perr.ResponseValidationf("llm response has no choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", perr.ResponseValidationf("llm response content is empty")
	}
	return content, nil
}

// classify maps SDK errors onto project codes. 401 surfaces as a credential
// problem, permanent client statuses fail fast, and everything reachable
// again (429, 408, 5xx, network failures) stays retryable
func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusUnauthorized {
			return perr.Unauthorizedf("llm rejected credentials (status 401)")
		}
		return perr.FromStatusf(apiErr.StatusCode, "llm status %d: %s", apiErr.StatusCode, apiErr.Message)
	}
	return perr.Wrapf(err, perr.ErrorCodeTransientUpstream, "llm request failed")
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.RetryBase
	ms := int64(d / time.Millisecond)
	ms = ms << uint(attempt)
	max := int64(60 * time.Second / time.Millisecond)
	if ms > max {
		ms = max
	}
	return time.Duration(ms) * time.Millisecond
}
