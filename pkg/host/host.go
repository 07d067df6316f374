// Package host defines the narrow interfaces for the collaborators
// spec.md §1 names as explicitly out of scope for the orchestration core:
// the terminal UI, settings-file parsing, telemetry exporters, credential
// storage, the embedded background MCP client, and individual tool
// implementations. No package in this module implements these interfaces,
// cmd/swarmd included; none of pkg/blackboard, pkg/planner, pkg/scheduler,
// pkg/guardrails, pkg/phase, pkg/router, or pkg/contentrouter import this
// package, matching the teacher's layering where pkg/session and pkg/queue
// never import pkg/slack or pkg/api directly.
package host

import "context"

// SettingsSource resolves host-level configuration not owned by
// pkg/session's YAML file — e.g. a user's terminal-UI preferences or a
// per-workspace override file, grounded on the teacher's
// pkg/config.AgentRegistry/ChainRegistry read surface generalized to an
// opaque key/value source rather than a typed YAML struct.
type SettingsSource interface {
	// Setting returns the raw value for key, or ok=false if unset.
	Setting(ctx context.Context, key string) (value string, ok bool)
}

// TelemetrySink receives point events the core never interprets — timing,
// counts, and outcomes it reports but does not act on. Grounded on the
// teacher's pkg/services usage-reporting calls, which are similarly
// fire-and-forget from the orchestrator's perspective.
type TelemetrySink interface {
	RecordEvent(ctx context.Context, name string, attributes map[string]any)
}

// CredentialStore resolves a named secret (an LLM provider API key, a
// webhook token) without the core ever seeing how it is persisted. Grounded
// on the teacher's GitHubYAMLConfig/SlackYAMLConfig's `*_token_env`
// indirection — the core knows an environment variable name, never a raw
// secret value, until host resolves it.
type CredentialStore interface {
	Credential(ctx context.Context, name string) (string, error)
}

// MCPClient is the embedded background Model Context Protocol client the
// spec places out of scope; the core only ever needs to know whether a
// named MCP server is currently reachable, grounded on the teacher's
// MCPServerConfig/MCPServerRegistry split between config and live client.
type MCPClient interface {
	IsConnected(serverName string) bool
}

// ToolInvoker executes one of the fixed tool identifiers from
// agentregistry.ToolCatalogue (read_file, write_file, edit_file, shell,
// search, grep, browser_screenshot, debugger, dispatch_agent) and returns
// its raw output for the GuardrailManager to react to. The core never
// implements a tool itself — it only synthesizes the guardrail message that
// follows a ToolInvoker call (pkg/guardrails.EmitToolGuardrail).
type ToolInvoker interface {
	InvokeTool(ctx context.Context, name string, args map[string]any) (output string, err error)
}
