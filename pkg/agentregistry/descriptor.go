// Package agentregistry loads typed agent descriptors from disk and
// routes lookups against the currently valid set. Descriptors live as
// plain Markdown files with a YAML frontmatter header, the same shape this
// repository's own subagent definitions use — matching spec.md §6's "plain
// text with a delimited structured header and a free-form body".
package agentregistry

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/codeready-toolchain/swarmweave/pkg/swarmerrors"
)

// Example is one usage example attached to a descriptor.
type Example struct {
	Input       string `yaml:"input"`
	Output      string `yaml:"output"`
	Description string `yaml:"description"`
}

// Descriptor is an immutable agent record parsed from a descriptor file.
// Never mutated in place — a reload replaces the whole value.
type Descriptor struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Color       string    `yaml:"color,omitempty"`
	Keywords    []string  `yaml:"keywords,omitempty"`
	Tools       []string  `yaml:"tools,omitempty"`
	Model       string    `yaml:"model,omitempty"`
	Provider    string    `yaml:"provider,omitempty"`
	Temperature *float64  `yaml:"temperature,omitempty"`
	MaxTokens   *int      `yaml:"maxTokens,omitempty"`
	Examples    []Example `yaml:"examples,omitempty"`

	// SystemPrompt is the free-form body following the header.
	SystemPrompt string `yaml:"-"`

	// Scope is "project" or "user", set by the loader rather than parsed
	// from the file — it depends on which root the file was found under.
	Scope string `yaml:"-"`

	// SourcePath is the file the descriptor was parsed from, for error
	// reporting and hot-reload diffing.
	SourcePath string `yaml:"-"`
}

// ToolCatalogue is the fixed set of capability identifiers a descriptor's
// `tools` list may draw from (spec.md §3). Unknown entries fail validation
// rather than being silently accepted, since a typo'd tool name would
// otherwise silently disable a capability the agent's prompt assumes it has.
var ToolCatalogue = map[string]bool{
	"read_file": true, "write_file": true, "edit_file": true,
	"shell": true, "search": true, "grep": true,
	"browser_screenshot": true, "debugger": true, "dispatch_agent": true,
}

const frontmatterDelim = "---"

// Parse splits raw file content into a YAML header and a Markdown body and
// validates the result against the schema in spec.md §3. Parsing is
// tolerant of trailing whitespace and blank lines around the delimiters.
func Parse(raw, sourcePath string) (*Descriptor, error) {
	header, body, err := splitFrontmatter(raw)
	if err != nil {
		return nil, swarmerrors.NewValidationError("agent", sourcePath, "frontmatter", err)
	}

	var d Descriptor
	if err := yaml.Unmarshal([]byte(header), &d); err != nil {
		return nil, swarmerrors.NewValidationError("agent", sourcePath, "header", err)
	}
	d.SystemPrompt = strings.TrimSpace(body)
	d.SourcePath = sourcePath

	if err := validate(&d); err != nil {
		return nil, swarmerrors.NewValidationError("agent", d.Name, "", err)
	}
	return &d, nil
}

// splitFrontmatter extracts the YAML block delimited by `---` lines. Blank
// lines and trailing whitespace before the opening delimiter are tolerated.
func splitFrontmatter(raw string) (header, body string, err error) {
	trimmed := strings.TrimLeft(raw, "\n\r\t ")
	if !strings.HasPrefix(trimmed, frontmatterDelim) {
		return "", "", fmt.Errorf("missing frontmatter delimiter")
	}
	rest := trimmed[len(frontmatterDelim):]
	rest = strings.TrimLeft(rest, "\r\n")
	idx := strings.Index(rest, "\n"+frontmatterDelim)
	if idx < 0 {
		return "", "", fmt.Errorf("unterminated frontmatter block")
	}
	header = rest[:idx]
	body = rest[idx+len("\n"+frontmatterDelim):]
	return header, body, nil
}

func validate(d *Descriptor) error {
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.ToLower(d.Name) != d.Name || strings.Contains(d.Name, " ") {
		return fmt.Errorf("name must be lowercase-hyphenated, got %q", d.Name)
	}
	if d.Description == "" {
		return fmt.Errorf("description is required")
	}
	for _, tool := range d.Tools {
		if !ToolCatalogue[tool] {
			return fmt.Errorf("unknown tool %q", tool)
		}
	}
	if d.Temperature != nil && (*d.Temperature < 0 || *d.Temperature > 1) {
		return fmt.Errorf("temperature %v out of range [0,1]", *d.Temperature)
	}
	if d.MaxTokens != nil && (*d.MaxTokens < 100 || *d.MaxTokens > 10000) {
		return fmt.Errorf("maxTokens %v out of range [100,10000]", *d.MaxTokens)
	}
	return nil
}
