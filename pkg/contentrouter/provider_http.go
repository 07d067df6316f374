package contentrouter

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HTTPProvider is the default concrete Provider: a thin HTTP+JSON client
// against an upstream text- or vision-generation endpoint. It replaces the
// teacher's gRPC transport (pkg/llm/client.go dials a sidecar Python
// process over generated protobuf stubs); those stubs were not retrievable
// for this pack and cannot be regenerated without invoking protoc/go
// generate, so HTTPProvider keeps the same channel-based streaming contract
// (pkg/llm.StreamChunk: content/complete/final/error) over a transport the
// module can express without code generation (see DESIGN.md).
type HTTPProvider struct {
	name       string
	endpoint   string
	httpClient *http.Client
}

// NewHTTPProvider builds a provider named name that posts requests to endpoint.
func NewHTTPProvider(name, endpoint string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPProvider{
		name:       name,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (p *HTTPProvider) Name() string { return p.name }

type wireMessage struct {
	Role  string `json:"role"`
	Parts []struct {
		Kind     string `json:"kind"`
		Text     string `json:"text,omitempty"`
		MimeType string `json:"mime_type,omitempty"`
	} `json:"parts"`
}

type wireRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
}

func toWireRequest(req Request, stream bool) wireRequest {
	wr := wireRequest{
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      stream,
	}
	for _, m := range req.Messages {
		wm := wireMessage{Role: m.Role}
		for _, part := range m.Parts {
			wp := struct {
				Kind     string `json:"kind"`
				Text     string `json:"text,omitempty"`
				MimeType string `json:"mime_type,omitempty"`
			}{Kind: string(part.Kind), Text: part.Text, MimeType: part.MimeType}
			wm.Parts = append(wm.Parts, wp)
		}
		wr.Messages = append(wr.Messages, wm)
	}
	return wr
}

type wireResponse struct {
	Content      string `json:"content"`
	Model        string `json:"model"`
	FinishReason string `json:"finish_reason"`
	Usage        struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Generate posts a single-shot request and decodes the JSON response.
func (p *HTTPProvider) Generate(ctx context.Context, req Request) (Response, error) {
	body, err := json.Marshal(toWireRequest(req, false))
	if err != nil {
		return Response{}, fmt.Errorf("contentrouter: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("contentrouter: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return Response{}, classifyStatusError(fmt.Errorf("contentrouter: %s returned %d: %w", p.name, resp.StatusCode, errServerError))
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return Response{}, classifyStatusError(fmt.Errorf("contentrouter: %s rate limited: %w", p.name, errRateLimit))
	}
	if resp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("contentrouter: %s returned status %d", p.name, resp.StatusCode)
	}

	var wr wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return Response{}, fmt.Errorf("contentrouter: decode response: %w", err)
	}
	return Response{
		Content:      wr.Content,
		Model:        wr.Model,
		FinishReason: wr.FinishReason,
		Usage: Usage{
			PromptTokens:     wr.Usage.PromptTokens,
			CompletionTokens: wr.Usage.CompletionTokens,
			TotalTokens:      wr.Usage.TotalTokens,
		},
	}, nil
}

// GenerateStream posts a streaming request and parses newline-delimited
// JSON chunks off the response body, mirroring the teacher's
// GenerateStream(ctx, session) -> (<-chan StreamChunk, <-chan error) shape
// collapsed into the single StreamChunk.Err field spec.md's narrower
// capability interface calls for.
func (p *HTTPProvider) GenerateStream(ctx context.Context, req Request) (<-chan StreamChunk, error) {
	body, err := json.Marshal(toWireRequest(req, true))
	if err != nil {
		return nil, fmt.Errorf("contentrouter: marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("contentrouter: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/x-ndjson")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("contentrouter: %s stream returned status %d", p.name, resp.StatusCode)
	}

	chunks := make(chan StreamChunk, 16)
	go func() {
		defer close(chunks)
		defer resp.Body.Close()
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			var chunk struct {
				Content    string `json:"content"`
				IsComplete bool   `json:"is_complete"`
				IsFinal    bool   `json:"is_final"`
				Error      string `json:"error"`
			}
			if err := json.Unmarshal([]byte(line), &chunk); err != nil {
				select {
				case chunks <- StreamChunk{Err: err}:
				case <-ctx.Done():
				}
				return
			}
			out := StreamChunk{Content: chunk.Content, IsComplete: chunk.IsComplete, IsFinal: chunk.IsFinal}
			if chunk.Error != "" {
				out.Err = fmt.Errorf("contentrouter: stream error: %s", chunk.Error)
			}
			select {
			case chunks <- out:
			case <-ctx.Done():
				return
			}
			if out.IsFinal {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			select {
			case chunks <- StreamChunk{Err: err}:
			case <-ctx.Done():
			}
		}
	}()
	return chunks, nil
}

// CountTokens asks the upstream endpoint's sibling /tokens route for a
// count. There is no local fallback estimate: a transport or decode
// failure is returned as an error — token counting is a provider-specific capability the
// spec treats as always available, per spec.md §4.8 operations.
func (p *HTTPProvider) CountTokens(ctx context.Context, req Request) (int, error) {
	body, err := json.Marshal(toWireRequest(req, false))
	if err != nil {
		return 0, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+"/tokens", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return 0, classifyTransportError(err)
	}
	defer resp.Body.Close()
	var out struct {
		Tokens int `json:"tokens"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, err
	}
	return out.Tokens, nil
}

// Embed posts to the sibling /embed route. Only text providers are expected
// to be registered against an endpoint that serves this route.
func (p *HTTPProvider) Embed(ctx context.Context, text string) (Embedding, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return Embedding{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+"/embed", bytes.NewReader(body))
	if err != nil {
		return Embedding{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return Embedding{}, classifyTransportError(err)
	}
	defer resp.Body.Close()
	var out struct {
		Vector []float64 `json:"vector"`
		Model  string    `json:"model"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Embedding{}, err
	}
	return Embedding{Vector: out.Vector, Model: out.Model}, nil
}
