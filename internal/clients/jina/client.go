package jina

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/yungbote/sonder-backend/internal/platform/envutil"
	"github.com/yungbote/sonder-backend/internal/platform/logger"
)

// Client converts story text into fixed-length float vectors. The endpoint is
// OpenAI-compatible (/v1/embeddings); the default provider is Jina.
type Client interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
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
	apiKey := strings.TrimSpace(os.Getenv("JINA_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing JINA_API_KEY")
	}

	baseURL := envutil.Str("JINA_BASE_URL", "https://api.jina.ai")
	baseURL = strings.TrimRight(baseURL, "/")

	return &client{
		log:        log.With("client", "JinaClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      envutil.Str("JINA_EMBED_MODEL", "jina-embeddings-v3"),
		httpClient: &http.Client{Timeout: time.Duration(envutil.Int("JINA_TIMEOUT_SECONDS", 30)) * time.Second},
	}, nil
}

func (c *client) Model() string { return c.model }

type embedRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (c *client) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return [][]float32{}, nil
	}

	body, err := json.Marshal(embedRequest{Input: inputs, Model: c.model})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jina embeddings: status %d", httpResp.StatusCode)
	}

	var resp embedResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("jina embeddings: decode: %w", err)
	}
	if len(resp.Data) != len(inputs) {
		return nil, fmt.Errorf("jina embeddings: got %d vectors for %d inputs", len(resp.Data), len(inputs))
	}

	out := make([][]float32, len(inputs))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("jina embeddings: index %d out of range", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}
