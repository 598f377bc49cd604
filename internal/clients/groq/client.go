package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/yungbote/sonder-backend/internal/platform/envutil"
	"github.com/yungbote/sonder-backend/internal/platform/logger"
)

// Options tune a single completion call. Temperature 0 is sent as-is (the
// moderation gate wants near-deterministic output); JSONMode asks the API for
// a json_object response format.
type Options struct {
	Temperature float64
	MaxTokens   int
	JSONMode    bool
}

// Client is the chat-completion client used for moderation, classification,
// rewriting, translation and fallback generation. The API is OpenAI-compatible
// so the base URL can point at any conforming provider.
type Client interface {
	Complete(ctx context.Context, system string, user string, opts Options) (string, error)
	Model() string
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	maxRetries int
}

func NewClient(log *logger.Logger) (Client, error) {
	apiKey := strings.TrimSpace(os.Getenv("GROQ_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing GROQ_API_KEY")
	}

	baseURL := envutil.Str("GROQ_BASE_URL", "https://api.groq.com/openai")
	baseURL = strings.TrimRight(baseURL, "/")

	model := envutil.Str("GROQ_MODEL", "llama-3.3-70b-versatile")

	timeout := time.Duration(envutil.Int("GROQ_TIMEOUT_SECONDS", 60)) * time.Second

	return &client{
		log:        log.With("client", "GroqClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: envutil.Int("GROQ_MAX_RETRIES", 2),
	}, nil
}

func (c *client) Model() string { return c.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens,omitempty"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (c *client) Complete(ctx context.Context, system string, user string, opts Options) (string, error) {
	msgs := make([]chatMessage, 0, 2)
	if strings.TrimSpace(system) != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: system})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: user})

	req := chatRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
	if opts.JSONMode {
		req.ResponseFormat = map[string]any{"type": "json_object"}
	}

	var resp chatResponse
	if err := c.doJSON(ctx, "/v1/chat/completions", &req, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("groq: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("groq: empty choices")
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", errors.New("groq: empty completion")
	}
	return out, nil
}

func (c *client) doJSON(ctx context.Context, path string, in any, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

		httpResp, err := c.httpClient.Do(httpReq)
		if err != nil {
			lastErr = err
			continue
		}
		raw, err := io.ReadAll(httpResp.Body)
		_ = httpResp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if httpResp.StatusCode == http.StatusTooManyRequests || httpResp.StatusCode >= 500 {
			lastErr = fmt.Errorf("groq %s: status %d", path, httpResp.StatusCode)
			continue
		}
		if httpResp.StatusCode != http.StatusOK {
			return fmt.Errorf("groq %s: status %d: %s", path, httpResp.StatusCode, truncate(string(raw), 200))
		}
		return json.Unmarshal(raw, out)
	}
	return lastErr
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
