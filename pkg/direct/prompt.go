package direct

import (
	"fmt"
	"strings"

	"github.com/minhyannv/superagent-chat-go/pkg/remote"
)

// BuildSystemPrompt combines the agent prompt with a listing of its tools.
func BuildSystemPrompt(agent remote.AgentSpec, tools []remote.ToolSpec) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(agent.Prompt))

	if md := toolsMarkdown(tools); md != "" {
		sb.WriteString("\n\n")
		sb.WriteString(md)
	}
	return strings.TrimSpace(sb.String())
}

// toolsMarkdown renders a markdown listing of the agent's tools.
func toolsMarkdown(tools []remote.ToolSpec) string {
	if len(tools) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("## Available Tools\n")
	sb.WriteString("These tools are configured for you; answer from what you know when they cannot be called.\n\n")
	for _, tool := range tools {
		name := sanitizeMarkdown(tool.Name)
		desc := sanitizeMarkdown(tool.Description)
		if desc == "" {
			desc = "No description provided."
		}
		sb.WriteString(fmt.Sprintf("- **%s** (%s): %s\n", name, sanitizeMarkdown(tool.Type), desc))
	}
	return strings.TrimSpace(sb.String())
}

// sanitizeMarkdown keeps markdown fields single-line and trimmed.
func sanitizeMarkdown(value string) string {
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	return strings.TrimSpace(value)
}
