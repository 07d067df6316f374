package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/codeready-toolchain/swarmweave/pkg/contentrouter"
	"github.com/codeready-toolchain/swarmweave/pkg/guardrails"
)

// modelPhaseCaller makes the Pareto and Strategic phases' single model
// calls through a shared ContentRouter, asking the model to reply with a
// small JSON payload and parsing that payload into the guardrail package's
// validation types. Both phases reuse the same type since each only needs
// one Generate call against the same router with a different system
// prompt; splitting them into separate types would add indirection without
// a second implementation ever existing.
type modelPhaseCaller struct {
	router *contentrouter.Router
}

const paretoSystemPrompt = `You are the Pareto phase of a software task. Identify at most 5 files or ` +
	`areas most relevant to the request. Reply with only a JSON array of objects, each having a ` +
	`"path" and a "reason" of no more than 200 characters.`

func (c *modelPhaseCaller) CallPareto(ctx context.Context, taskID, query string) ([]guardrails.ParetoItem, error) {
	resp, err := c.router.Generate(ctx, contentrouter.Request{
		Messages: []contentrouter.Message{
			{Role: "system", Parts: []contentrouter.Part{{Kind: contentrouter.PartText, Text: paretoSystemPrompt}}},
			{Role: "user", Parts: []contentrouter.Part{{Kind: contentrouter.PartText, Text: query}}},
		},
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("phasecaller: pareto call for %s: %w", taskID, err)
	}

	var raw []struct {
		Path   string `json:"path"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(extractJSON(resp.Content)), &raw); err != nil {
		return nil, fmt.Errorf("phasecaller: pareto output for %s is not valid JSON: %w", taskID, err)
	}

	items := make([]guardrails.ParetoItem, 0, len(raw))
	for _, r := range raw {
		items = append(items, guardrails.ParetoItem{Path: r.Path, Reason: r.Reason})
	}
	return items, nil
}

var strategicSystemPrompt = "You are the Strategic phase of a software task. Produce a short plan " +
	"covering the approach, the order of work, and open questions. End the plan with the sentinel: " +
	guardrails.StrategicSentinel

func (c *modelPhaseCaller) CallStrategic(ctx context.Context, taskID, query string) (guardrails.StrategicOutput, string, error) {
	resp, err := c.router.Generate(ctx, contentrouter.Request{
		Messages: []contentrouter.Message{
			{Role: "system", Parts: []contentrouter.Part{{Kind: contentrouter.PartText, Text: strategicSystemPrompt}}},
			{Role: "user", Parts: []contentrouter.Part{{Kind: contentrouter.PartText, Text: query}}},
		},
		Temperature: 0,
	})
	if err != nil {
		return guardrails.StrategicOutput{}, "", fmt.Errorf("phasecaller: strategic call for %s: %w", taskID, err)
	}

	out := guardrails.StrategicOutput{
		TokenCount: resp.Usage.CompletionTokens,
	}
	if strings.Contains(resp.Content, guardrails.StrategicSentinel) {
		out.Proceed = guardrails.StrategicSentinel
	}
	return out, resp.Content, nil
}

// extractJSON trims any prose a model wraps around a JSON array, returning
// the substring from the first '[' to the last ']'. Models asked for "only
// JSON" still occasionally wrap it in prose or a code fence.
func extractJSON(s string) string {
	start := strings.IndexByte(s, '[')
	end := strings.LastIndexByte(s, ']')
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}
