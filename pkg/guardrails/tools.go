package guardrails

import (
	"fmt"
	"strings"
	"time"
)

// EmitToolGuardrail synthesizes the post-call guardrail for a tool
// invocation (spec.md §4.4 "Tool-specific post-call guardrails"). toolName
// is matched case-insensitively; outcome's StackFrames, TestCommand,
// SearchResults, and ExitCode are used only by the templates that need
// them. An unknown
// tool name is a no-op: it appends nothing and returns false.
func (m *Manager) EmitToolGuardrail(phase Phase, toolName string, outcome ToolOutcome) bool {
	body, ok := toolGuardrailBody(toolName, outcome)
	if !ok {
		return false
	}
	m.appendMessage(Message{
		Type:      MessageTypeToolCall,
		Phase:     phase,
		Body:      body,
		Timestamp: time.Now(),
		Metadata:  map[string]any{"tool": toolName},
	})
	return true
}

// ToolOutcome carries the fields a tool-specific guardrail template may
// reference.
type ToolOutcome struct {
	StackFrames   []string // debugger
	TestCommand   string   // file-edit
	SearchResults []string // search
	ExitCode      int      // shell
}

func toolGuardrailBody(toolName string, o ToolOutcome) (string, bool) {
	switch strings.ToLower(toolName) {
	case "debugger":
		if len(o.StackFrames) == 0 {
			return "Open the files referenced by the stack trace.", true
		}
		return fmt.Sprintf("Open the files named in the stack trace: %s.", strings.Join(o.StackFrames, ", ")), true
	case "edit_file", "write_file", "file-edit", "file_edit":
		cmd := o.TestCommand
		if cmd == "" {
			cmd = "the project's test command"
		}
		return fmt.Sprintf("Run %s to verify the edit.", cmd), true
	case "search", "grep":
		if len(o.SearchResults) == 0 {
			return "Open the top search results.", true
		}
		n := len(o.SearchResults)
		if n > 5 {
			n = 5
		}
		return fmt.Sprintf("Open the top search results: %s.", strings.Join(o.SearchResults[:n], ", ")), true
	case "shell":
		if o.ExitCode == 0 {
			return "Exit code 0: proceed to the next step.", true
		}
		return fmt.Sprintf("Exit code %d: analyze the failure and adapt the plan.", o.ExitCode), true
	default:
		return "", false
	}
}

// EmitSubAgentGuardrail synthesizes the post-call guardrail for a
// dispatched sub-agent (spec.md §4.4 "Sub-agent post-call guardrails"),
// grounded on the teacher's orchestrator.SubAgentResult/ToolDispatchAgent
// handling in pkg/agent/orchestrator.
func (m *Manager) EmitSubAgentGuardrail(phase Phase, subAgentName string, sourceFiles []string) bool {
	var body string
	switch strings.ToLower(subAgentName) {
	case "debugger":
		body = "Read the source files referenced by the debugger sub-agent's result."
		if len(sourceFiles) > 0 {
			body = "Read the referenced source files: " + strings.Join(sourceFiles, ", ") + "."
		}
	case "planner":
		body = "Gather architectural context matching the planner sub-agent's revised plan."
	default:
		return false
	}
	m.appendMessage(Message{
		Type:      MessageTypeToolCall,
		Phase:     phase,
		Body:      body,
		Timestamp: time.Now(),
		Metadata:  map[string]any{"sub_agent": subAgentName},
	})
	return true
}
