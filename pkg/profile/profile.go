// Package profile holds the fixed construction parameters of the provisioned agent.
package profile

import (
	"fmt"
	"os"
	"strings"

	"github.com/minhyannv/superagent-chat-go/pkg/remote"
	"gopkg.in/yaml.v3"
)

const defaultPrompt = `You are an expert at researching about Github repositories.
Start with asking the user which Github Repository URL they want to research.

Always use the Browser function to answer all questions for the repo.`

// Profile describes the LLM binding, agent and tool created at startup.
type Profile struct {
	Provider    string
	Name        string
	Description string
	Prompt      string
	Model       string
	Tool        Tool
}

// Tool describes the single tool attached to the agent.
type Tool struct {
	Name         string
	Description  string
	Type         string
	ReturnDirect bool
}

// Default returns the Github researcher profile.
func Default() Profile {
	return Profile{
		Provider:    "OPENAI",
		Name:        "Github Researcher",
		Description: "An assistant that research Github Repositories",
		Prompt:      defaultPrompt,
		Model:       "GPT_3_5_TURBO_16K_0613",
		Tool: Tool{
			Name:         "Browser",
			Description:  "A portal to the internet. Use this when you need to get specific content from a website.",
			Type:         "BROWSER",
			ReturnDirect: false,
		},
	}
}

// LLMSpec returns the create request for the LLM binding.
func (p Profile) LLMSpec(apiKey string) remote.LLMSpec {
	return remote.LLMSpec{Provider: p.Provider, APIKey: apiKey}
}

// AgentSpec returns the create request for the agent. Agents are always active.
func (p Profile) AgentSpec() remote.AgentSpec {
	return remote.AgentSpec{
		Name:        p.Name,
		Description: p.Description,
		IsActive:    true,
		Prompt:      p.Prompt,
		LLMModel:    p.Model,
	}
}

// ToolSpec returns the create request for the tool.
func (p Profile) ToolSpec() remote.ToolSpec {
	return remote.ToolSpec{
		Name:         p.Tool.Name,
		Description:  p.Tool.Description,
		Type:         p.Tool.Type,
		ReturnDirect: p.Tool.ReturnDirect,
	}
}

// frontMatter mirrors the YAML front matter of a profile file.
type frontMatter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	Tool        struct {
		Name         string `yaml:"name"`
		Description  string `yaml:"description"`
		Type         string `yaml:"type"`
		ReturnDirect *bool  `yaml:"return_direct"`
	} `yaml:"tool"`
}

// Load reads a markdown profile file. Its front matter overrides the default
// fields and a non-empty body replaces the default prompt.
func Load(path string) (Profile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, err
	}
	p, err := Parse(content)
	if err != nil {
		return Profile{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return p, nil
}

// Parse is Load without the file read.
func Parse(content []byte) (Profile, error) {
	fm, body, err := splitFrontMatter(content)
	if err != nil {
		return Profile{}, err
	}

	p := Default()
	override(&p.Name, fm.Name)
	override(&p.Description, fm.Description)
	override(&p.Provider, strings.ToUpper(fm.Provider))
	override(&p.Model, fm.Model)
	override(&p.Tool.Name, fm.Tool.Name)
	override(&p.Tool.Description, fm.Tool.Description)
	override(&p.Tool.Type, strings.ToUpper(fm.Tool.Type))
	if fm.Tool.ReturnDirect != nil {
		p.Tool.ReturnDirect = *fm.Tool.ReturnDirect
	}
	override(&p.Prompt, body)
	return p, nil
}

func override(dst *string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		*dst = value
	}
}

func splitFrontMatter(content []byte) (frontMatter, string, error) {
	lines := strings.Split(strings.ReplaceAll(string(content), "\r\n", "\n"), "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[0]) != "---" {
		return frontMatter{}, "", fmt.Errorf("missing YAML front matter")
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end == -1 {
		return frontMatter{}, "", fmt.Errorf("unterminated YAML front matter")
	}

	var fm frontMatter
	if err := yaml.Unmarshal([]byte(strings.Join(lines[1:end], "\n")), &fm); err != nil {
		return frontMatter{}, "", err
	}
	return fm, strings.Join(lines[end+1:], "\n"), nil
}
