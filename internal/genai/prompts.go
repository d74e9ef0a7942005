package genai

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Prompt kinds.
const (
	KindChat      = "chat"
	KindNutrition = "nutrition"
	KindStress    = "stress"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// Prompts holds the system instruction for each prompt kind.
type Prompts struct {
	Chat      string `yaml:"chat"`
	Nutrition string `yaml:"nutrition"`
	Stress    string `yaml:"stress"`
}

// System returns the system instruction for a prompt kind.
func (p *Prompts) System(kind string) string {
	switch kind {
	case KindChat:
		return p.Chat
	case KindNutrition:
		return p.Nutrition
	case KindStress:
		return p.Stress
	}
	return ""
}

// LoadPrompts returns the built-in prompts, with any non-empty entries from
// the YAML file at path layered on top. An empty path returns the defaults.
func LoadPrompts(path string) (*Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(defaultPrompts, &p); err != nil {
		return nil, fmt.Errorf("decode built-in prompts: %w", err)
	}

	if path == "" {
		return &p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts: %w", err)
	}

	var override Prompts
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("decode prompts %s: %w", path, err)
	}

	if override.Chat != "" {
		p.Chat = override.Chat
	}
	if override.Nutrition != "" {
		p.Nutrition = override.Nutrition
	}
	if override.Stress != "" {
		p.Stress = override.Stress
	}

	if p.Chat == "" || p.Nutrition == "" || p.Stress == "" {
		return nil, errors.New("prompts: every kind needs a system instruction")
	}
	return &p, nil
}
