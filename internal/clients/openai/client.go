package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/yungbote/sonder-backend/internal/platform/envutil"
	"github.com/yungbote/sonder-backend/internal/platform/logger"
)

// Client wraps the Whisper-style speech-to-text API used by /api/transcribe.
type Client interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader, language string) (string, error)
	Model() string
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(log *logger.Logger) (Client, error) {
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}

	baseURL := envutil.Str("OPENAI_BASE_URL", "https://api.openai.com")
	baseURL = strings.TrimRight(baseURL, "/")

	return &client{
		log:        log.With("client", "OpenAIClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      envutil.Str("OPENAI_TRANSCRIBE_MODEL", "whisper-1"),
		httpClient: &http.Client{Timeout: time.Duration(envutil.Int("OPENAI_TIMEOUT_SECONDS", 120)) * time.Second},
	}, nil
}

func (c *client) Model() string { return c.model }

func (c *client) Transcribe(ctx context.Context, filename string, audio io.Reader, language string) (string, error) {
	if audio == nil {
		return "", fmt.Errorf("audio reader required")
	}
	if strings.TrimSpace(filename) == "" {
		filename = "audio.webm"
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", err
	}
	if err := w.WriteField("model", c.model); err != nil {
		return "", err
	}
	if lang := strings.TrimSpace(language); lang != "" {
		if err := w.WriteField("language", lang); err != nil {
			return "", err
		}
	}
	if err := w.WriteField("response_format", "json"); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/audio/transcriptions", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", err
	}
	if httpResp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription: status %d", httpResp.StatusCode)
	}

	var resp struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("transcription: decode: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}
