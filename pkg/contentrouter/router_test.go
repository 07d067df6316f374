package contentrouter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name  string
	calls int
	fn    func(ctx context.Context, req Request) (Response, error)
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Generate(ctx context.Context, req Request) (Response, error) {
	f.calls++
	if f.fn != nil {
		return f.fn(ctx, req)
	}
	return Response{Content: f.name + "-response"}, nil
}

func (f *fakeProvider) GenerateStream(ctx context.Context, req Request) (<-chan StreamChunk, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeProvider) CountTokens(ctx context.Context, req Request) (int, error) {
	return 0, nil
}

func textRequest(text string) Request {
	return Request{Messages: []Message{{Role: "user", Parts: []Part{{Kind: PartText, Text: text}}}}}
}

func TestDecideAutoRoutesTextByDefault(t *testing.T) {
	r := New(StrategyAuto, &fakeProvider{name: "text"}, &fakeProvider{name: "vision"}, nil, false)
	assert.Equal(t, KindText, r.decide(textRequest("write a function that sorts a list")))
}

func TestDecideAutoRoutesVisionOnImagePart(t *testing.T) {
	r := New(StrategyAuto, &fakeProvider{name: "text"}, &fakeProvider{name: "vision"}, nil, false)
	req := Request{Messages: []Message{{Role: "user", Parts: []Part{{Kind: PartImage, MimeType: "image/png", Data: []byte("x")}}}}}
	assert.Equal(t, KindVision, r.decide(req))
}

func TestDecideAutoRoutesVisionOnScreenshotTool(t *testing.T) {
	r := New(StrategyAuto, &fakeProvider{name: "text"}, &fakeProvider{name: "vision"}, nil, false)
	req := textRequest("check the status")
	req.Tools = []string{"browser_screenshot"}
	assert.Equal(t, KindVision, r.decide(req))
}

func TestDecideAutoRoutesVisionOnBrowserVocabulary(t *testing.T) {
	r := New(StrategyAuto, &fakeProvider{name: "text"}, &fakeProvider{name: "vision"}, nil, false)
	assert.Equal(t, KindVision, r.decide(textRequest("inspect the webpage layout")))
}

func TestDecideExplicitRequiresPhrase(t *testing.T) {
	r := New(StrategyExplicit, &fakeProvider{name: "text"}, &fakeProvider{name: "vision"}, nil, false)
	assert.Equal(t, KindVision, r.decide(textRequest("please analyze this image")))
	assert.Equal(t, KindText, r.decide(textRequest("what's the capital of France")))
}

func TestDecideToolBasedRequiresVisionTool(t *testing.T) {
	r := New(StrategyToolBased, &fakeProvider{name: "text"}, &fakeProvider{name: "vision"}, nil, false)
	req := textRequest("look at this")
	req.Tools = []string{"capture"}
	assert.Equal(t, KindVision, r.decide(req))

	req2 := textRequest("look at this")
	req2.Tools = []string{"grep"}
	assert.Equal(t, KindText, r.decide(req2))
}

func TestGenerateFallsBackToTextOnVisionFailure(t *testing.T) {
	vision := &fakeProvider{name: "vision", fn: func(ctx context.Context, req Request) (Response, error) {
		return Response{}, errors.New("vision provider unavailable")
	}}
	text := &fakeProvider{name: "text"}
	r := New(StrategyExplicit, text, vision, nil, true)

	resp, err := r.Generate(context.Background(), textRequest("please analyze this image"))
	require.NoError(t, err)
	assert.Equal(t, "text-response", resp.Content)
	assert.Equal(t, 1, vision.calls)
	assert.Equal(t, 1, text.calls)
}

func TestGenerateReturnsFallbackChainResponseOnSuccess(t *testing.T) {
	primary := &fakeProvider{name: "primary", fn: func(ctx context.Context, req Request) (Response, error) {
		return Response{}, errors.New("primary down")
	}}
	secondary := &fakeProvider{name: "secondary"}
	r := New(StrategyAuto, primary, nil, []Provider{secondary}, false)

	resp, err := r.Generate(context.Background(), textRequest("write some code"))
	require.NoError(t, err)
	assert.Equal(t, "secondary-response", resp.Content, "a successful fallback response must be surfaced, not discarded")
}

func TestGenerateFailsWhenPrimaryAndFallbackChainBothFail(t *testing.T) {
	primary := &fakeProvider{name: "primary", fn: func(ctx context.Context, req Request) (Response, error) {
		return Response{}, errors.New("primary down")
	}}
	secondary := &fakeProvider{name: "secondary", fn: func(ctx context.Context, req Request) (Response, error) {
		return Response{}, errors.New("secondary down too")
	}}
	r := New(StrategyAuto, primary, nil, []Provider{secondary}, false)

	_, err := r.Generate(context.Background(), textRequest("write some code"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "secondary down too")
}
