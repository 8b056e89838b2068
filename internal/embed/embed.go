// Package embed turns chunk text into fixed-length vectors via a remote
// embedding service, batched and rate-limited per §4.6.
package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/argus-dev/argus/internal/config"
	argerrors "github.com/argus-dev/argus/internal/errors"
)

const (
	// batchSize is the sub-batch size embed_batch splits input into.
	batchSize = 64
	// interBatchDelay enforces the provider's rate limit between
	// sub-batches.
	interBatchDelay = 200 * time.Millisecond

	inputTypeQuery    = "query"
	inputTypeDocument = "document"

	defaultEndpoint = "https://api.voyageai.com/v1/embeddings"
)

// Embedder calls a remote embedding service over HTTP.
type Embedder struct {
	client   *http.Client
	endpoint string
	apiKey   string
	model    string

	// sleep is the delay applied between sub-batches; overridable in
	// tests so they don't pay the real 200ms per sub-batch.
	sleep func(time.Duration)
}

// New constructs an Embedder from cfg. It fails at construction if no
// API key can be resolved, per §4.6 ("Missing API key resolves from the
// embed config, then from an env var; absence fails at construction").
func New(cfg config.EmbeddingConfig) (*Embedder, error) {
	key, err := resolveAPIKey(cfg)
	if err != nil {
		return nil, err
	}
	model := cfg.Model
	if model == "" {
		model = "voyage-code-3"
	}
	return &Embedder{
		client:   &http.Client{Timeout: 60 * time.Second},
		endpoint: defaultEndpoint,
		apiKey:   key,
		model:    model,
		sleep:    time.Sleep,
	}, nil
}

func resolveAPIKey(cfg config.EmbeddingConfig) (string, error) {
	full := config.Config{Embedding: cfg}
	return full.ResolveAPIKey()
}

// WithEndpoint overrides the embedding service URL. Used by tests to
// point at an httptest.Server instead of the real provider.
func (e *Embedder) WithEndpoint(url string) *Embedder {
	e.endpoint = url
	return e
}

// WithHTTPClient overrides the HTTP client. Used by tests to inject a
// client with a short timeout or custom transport.
func (e *Embedder) WithHTTPClient(c *http.Client) *Embedder {
	e.client = c
	return e
}

type embedRequest struct {
	Input     []string `json:"input"`
	Model     string   `json:"model"`
	InputType string   `json:"input_type"`
}

type embedDatum struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

type embedResponse struct {
	Data []embedDatum `json:"data"`
}

// EmbedQuery embeds a single query text with input_type="query".
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.doRequest(ctx, []string{text}, inputTypeQuery)
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, argerrors.Embedding("embedding service returned no vectors", nil)
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in sub-batches of 64 with input_type="document",
// sleeping 200ms between sub-batches to respect the provider's rate
// limit. The returned vectors preserve the input order. An empty input
// returns an empty output without issuing a request.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := e.doRequest(ctx, texts[start:end], inputTypeDocument)
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)

		if end < len(texts) {
			e.sleep(interBatchDelay)
		}
	}
	return out, nil
}

func (e *Embedder) doRequest(ctx context.Context, texts []string, inputType string) ([][]float32, error) {
	body, err := json.Marshal(embedRequest{Input: texts, Model: e.model, InputType: inputType})
	if err != nil {
		return nil, argerrors.Embedding("failed to encode embedding request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, argerrors.Embedding("failed to build embedding request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, argerrors.Embedding("embedding request failed", err).WithSuggestion("check network connectivity")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, argerrors.Embedding("failed to read embedding response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, argerrors.Embedding(
			fmt.Sprintf("embedding service returned status %d: %s", resp.StatusCode, string(respBody)),
			nil,
		).WithSuggestion("check API key")
	}

	var decoded embedResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, argerrors.Embedding("failed to decode embedding response", err)
	}

	vecs := make([][]float32, len(decoded.Data))
	for _, d := range decoded.Data {
		if d.Index < 0 || d.Index >= len(vecs) {
			continue
		}
		vecs[d.Index] = d.Embedding
	}
	return vecs, nil
}
