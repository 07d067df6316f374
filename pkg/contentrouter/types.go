// Package contentrouter abstracts the choice between a text-generation
// model and a vision-generation model per request, with a configurable
// routing strategy and a one-shot fallback policy.
//
// The narrow capability interface below is grounded directly on the
// teacher's pkg/llm/client.go (Client.GenerateStream: a channel of response
// chunks plus a channel of errors, driven by a session's message history)
// and pkg/agent/llm_client.go's LLMClient abstraction — both already model
// "given a structured request, produce a response or a stream of
// responses" exactly as spec.md §9 Design Note 1 asks for. The teacher's
// concrete transport is gRPC against a sidecar process using generated
// protobuf stubs that were not retrievable for this pack (no `protoc`
// invocation is available here), so Provider is expressed as a plain Go
// interface a caller satisfies with HTTP+JSON or any other transport,
// keeping the same channel-based streaming shape as Client.GenerateStream.
package contentrouter

import (
	"context"
	"strings"
)

// PartKind distinguishes a request part's content.
type PartKind string

const (
	PartText  PartKind = "text"
	PartImage PartKind = "image"
)

// Part is one piece of a multi-modal request. MimeType is only meaningful
// for PartImage parts and is matched against the "image/" prefix (spec.md
// §4.8 auto-routing rule (a)).
type Part struct {
	Kind     PartKind
	Text     string
	MimeType string
	Data     []byte
}

// Request is a model-agnostic generation request. ContentRouter never
// mutates a Request it is handed (spec.md §4.8 invariant) — routing
// decisions are made by inspecting a copy of the fields that matter.
type Request struct {
	Messages    []Message
	Tools       []string // active tool identifiers, for tool-based routing
	Temperature float64
	MaxTokens   int
	Model       string // explicit override; empty means "let the router decide"
}

// Message is one turn of conversation handed to a Provider.
type Message struct {
	Role  string // "system", "user", "assistant"
	Parts []Part
}

// Text returns the concatenation of every text part across every message,
// the surface the routing-vocabulary matchers scan.
func (r Request) Text() string {
	var out []byte
	for _, m := range r.Messages {
		for _, p := range m.Parts {
			if p.Kind == PartText {
				if len(out) > 0 {
					out = append(out, ' ')
				}
				out = append(out, p.Text...)
			}
		}
	}
	return string(out)
}

// HasImage reports whether any part of the request carries image data.
func (r Request) HasImage() bool {
	for _, m := range r.Messages {
		for _, p := range m.Parts {
			if p.Kind == PartImage && strings.HasPrefix(p.MimeType, "image/") {
				return true
			}
		}
	}
	return false
}

// Response is a single-shot generation result.
type Response struct {
	Content      string
	Model        string
	FinishReason string
	Usage        Usage
}

// Usage reports token accounting for a single call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// StreamChunk is one increment of a streamed response, mirroring the
// teacher's llm.StreamChunk shape (content/complete/final/error fields).
type StreamChunk struct {
	Content    string
	IsComplete bool
	IsFinal    bool
	Err        error
}

// Embedding is the result of an embed call.
type Embedding struct {
	Vector []float64
	Model  string
}

// Provider is the narrow capability every concrete model backend
// implements: generate, stream, count tokens, and (for text providers)
// embed.
type Provider interface {
	// Name identifies the provider/model for logging and fallback-chain
	// bookkeeping.
	Name() string
	Generate(ctx context.Context, req Request) (Response, error)
	GenerateStream(ctx context.Context, req Request) (<-chan StreamChunk, error)
	CountTokens(ctx context.Context, req Request) (int, error)
}

// EmbeddingProvider is implemented by text providers that can also embed.
// Embedding requests never reach a vision model (spec.md §4.8 invariant);
// a provider that cannot embed simply does not implement this interface.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) (Embedding, error)
}

// Kind distinguishes the two model roles a request is routed between.
type Kind string

const (
	KindText   Kind = "text"
	KindVision Kind = "vision"
)

// Strategy selects how ContentRouter decides text vs. vision.
type Strategy string

const (
	StrategyExplicit  Strategy = "explicit"
	StrategyToolBased Strategy = "tool-based"
	StrategyAuto      Strategy = "auto"
)

// Info describes the router's current configuration, returned by Info().
type Info struct {
	Strategy       Strategy
	TextModel      string
	VisionModel    string
	FallbackChain  []string
	FallbackToText bool
}
