package main

import (
	"context"
	"fmt"

	"github.com/codeready-toolchain/swarmweave/pkg/agentregistry"
	"github.com/codeready-toolchain/swarmweave/pkg/blackboard"
	"github.com/codeready-toolchain/swarmweave/pkg/contentrouter"
	"github.com/codeready-toolchain/swarmweave/pkg/planner"
	"github.com/codeready-toolchain/swarmweave/pkg/scheduler"
)

// contentRouterExecutor adapts a contentrouter.Router into the
// scheduler.Executor interface: it builds a single-turn request from the
// task and the agent's system prompt, makes one Generate call, and stores
// the whole response as a report artifact. Parsing a model's output into
// typed artifacts and blocking issues is a host concern the spec leaves
// unspecified beyond the content/artifact shapes, so this keeps the
// simplest contract that exercises the full routing + retry + Blackboard
// write path end to end.
type contentRouterExecutor struct {
	router *contentrouter.Router
}

func newContentRouterExecutor(router *contentrouter.Router) *contentRouterExecutor {
	return &contentRouterExecutor{router: router}
}

func (e *contentRouterExecutor) Execute(ctx context.Context, task *planner.Task, agent *agentregistry.Descriptor, query string) (scheduler.Outcome, error) {
	req := contentrouter.Request{
		Messages: []contentrouter.Message{
			{Role: "system", Parts: []contentrouter.Part{{Kind: contentrouter.PartText, Text: agent.SystemPrompt}}},
			{Role: "user", Parts: []contentrouter.Part{{Kind: contentrouter.PartText, Text: query}}},
		},
		Tools: agent.Tools,
	}
	if agent.Model != "" {
		req.Model = agent.Model
	}

	resp, err := e.router.Generate(ctx, req)
	if err != nil {
		return scheduler.Outcome{}, fmt.Errorf("executor: task %s: %w", task.ID, err)
	}

	return scheduler.Outcome{
		Artifacts: []blackboard.Artifact{{
			Name:    task.Title,
			Type:    blackboard.ArtifactReport,
			Content: resp.Content,
			Summary: fmt.Sprintf("output of %s for task %s", agent.Name, task.ID),
		}},
	}, nil
}
