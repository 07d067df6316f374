package contentrouter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Router selects between a text and a vision Provider per request and
// applies the one-shot fallback policy from spec.md §4.8. It never mutates
// the Request handed to it.
type Router struct {
	mu sync.RWMutex

	strategy       Strategy
	fallbackToText bool

	text   Provider
	vision Provider

	// fallbackChain holds secondary text providers tried once each, in
	// order, on exhaustion of the primary — grounded on the teacher's
	// config_resolver.go precedence chain (agent override → chain default
	// → system default), generalized to a model fallback list (spec.md §9
	// Design Note "Fallback model chain").
	fallbackChain []Provider
}

// New builds a Router. text must not be nil; vision may be nil if the
// deployment has no vision capability configured (vision requests are then
// served by the text provider, whatever fallbackToText says).
func New(strategy Strategy, text, vision Provider, fallbackChain []Provider, fallbackToText bool) *Router {
	return &Router{
		strategy:       strategy,
		text:           text,
		vision:         vision,
		fallbackChain:  append([]Provider(nil), fallbackChain...),
		fallbackToText: fallbackToText,
	}
}

// GetTextModel returns the configured text provider's name.
func (r *Router) GetTextModel() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.text == nil {
		return ""
	}
	return r.text.Name()
}

// GetVisionModel returns the configured vision provider's name, or "" if none.
func (r *Router) GetVisionModel() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.vision == nil {
		return ""
	}
	return r.vision.Name()
}

// Info reports the router's current configuration.
func (r *Router) Info() Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	chain := make([]string, len(r.fallbackChain))
	for i, p := range r.fallbackChain {
		chain[i] = p.Name()
	}
	return Info{
		Strategy:       r.strategy,
		TextModel:      r.GetTextModel(),
		VisionModel:    r.GetVisionModel(),
		FallbackChain:  chain,
		FallbackToText: r.fallbackToText,
	}
}

// decide applies the configured strategy to req and returns which model
// kind should serve it (spec.md §4.8).
func (r *Router) decide(req Request) Kind {
	switch r.strategy {
	case StrategyExplicit:
		if containsExplicitPhrase(req.Text()) {
			return KindVision
		}
		return KindText
	case StrategyToolBased:
		if anyToolIsVision(req.Tools) {
			return KindVision
		}
		return KindText
	default: // StrategyAuto
		if req.HasImage() {
			return KindVision
		}
		if anyToolIsVision(req.Tools) {
			return KindVision
		}
		text := req.Text()
		if browserVocabulary.MatchString(text) || screenshotVocabulary.MatchString(text) {
			return KindVision
		}
		return KindText
	}
}

// providerFor resolves which Provider should serve a decided Kind. Vision
// requests with no configured vision provider fall through to text.
func (r *Router) providerFor(kind Kind) Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if kind == KindVision && r.vision != nil {
		return r.vision
	}
	return r.text
}

// Generate routes req to the text or vision provider per the configured
// strategy, with fallback-to-text on vision failure when enabled. Fallback
// is never attempted in the opposite direction (spec.md §4.8).
func (r *Router) Generate(ctx context.Context, req Request) (Response, error) {
	kind := r.decide(req)
	provider := r.providerFor(kind)
	if provider == nil {
		return Response{}, fmt.Errorf("contentrouter: no provider configured for %s", kind)
	}

	resp, err := provider.Generate(ctx, req)
	if err == nil {
		return resp, nil
	}

	if kind == KindVision && r.fallbackToText {
		slog.Warn("contentrouter: vision call failed, falling back to text", "error", err)
		textProvider := r.providerFor(KindText)
		if textProvider != nil {
			return textProvider.Generate(ctx, req)
		}
	}
	return r.tryFallbackChain(ctx, req, err)
}

// tryFallbackChain attempts each secondary provider once, in order, after
// the primary call (and any vision→text fallback) has failed, returning the
// first successful Response.
func (r *Router) tryFallbackChain(ctx context.Context, req Request, cause error) (Response, error) {
	r.mu.RLock()
	chain := append([]Provider(nil), r.fallbackChain...)
	r.mu.RUnlock()

	for _, p := range chain {
		resp, err := p.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		cause = err
	}
	return Response{}, fmt.Errorf("contentrouter: primary and all fallback providers failed: %w", cause)
}

// GenerateWithVision forces vision routing regardless of strategy, per
// spec.md §4.8's explicit-vision entry point.
func (r *Router) GenerateWithVision(ctx context.Context, req Request) (Response, error) {
	provider := r.providerFor(KindVision)
	if provider == nil {
		return Response{}, fmt.Errorf("contentrouter: no vision provider configured")
	}
	resp, err := provider.Generate(ctx, req)
	if err != nil && r.fallbackToText {
		slog.Warn("contentrouter: forced vision call failed, falling back to text", "error", err)
		if text := r.providerFor(KindText); text != nil {
			return text.Generate(ctx, req)
		}
	}
	return resp, err
}

// GenerateStream routes req exactly like Generate but returns a stream.
func (r *Router) GenerateStream(ctx context.Context, req Request) (<-chan StreamChunk, error) {
	kind := r.decide(req)
	provider := r.providerFor(kind)
	if provider == nil {
		return nil, fmt.Errorf("contentrouter: no provider configured for %s", kind)
	}
	ch, err := provider.GenerateStream(ctx, req)
	if err == nil {
		return ch, nil
	}
	if kind == KindVision && r.fallbackToText {
		slog.Warn("contentrouter: vision stream failed, falling back to text", "error", err)
		if text := r.providerFor(KindText); text != nil {
			return text.GenerateStream(ctx, req)
		}
	}
	return nil, err
}

// CountTokens counts tokens using the provider the request would route to.
func (r *Router) CountTokens(ctx context.Context, req Request) (int, error) {
	provider := r.providerFor(r.decide(req))
	if provider == nil {
		return 0, fmt.Errorf("contentrouter: no provider configured")
	}
	return provider.CountTokens(ctx, req)
}

// Embed always uses the text model (spec.md §4.8 invariant: embedding
// requests never touch the vision model).
func (r *Router) Embed(ctx context.Context, text string) (Embedding, error) {
	r.mu.RLock()
	provider := r.text
	r.mu.RUnlock()
	if provider == nil {
		return Embedding{}, fmt.Errorf("contentrouter: no text provider configured")
	}
	embedder, ok := provider.(EmbeddingProvider)
	if !ok {
		return Embedding{}, fmt.Errorf("contentrouter: text provider %s does not support embeddings", provider.Name())
	}
	return embedder.Embed(ctx, text)
}
