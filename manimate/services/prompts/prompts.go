// Package prompts holds the system instructions and generation settings
// sent with each kind of chat request.
package prompts

import (
	_ "embed"
	"fmt"
	"strings"

	"manimate/manimate/services/llm"

	"gopkg.in/yaml.v3"
)

const (
	Initial  = "initial"
	FollowUp = "followup"
)

//go:embed prompts.yaml
var defaultCatalogue []byte

type Prompt struct {
	System     string               `yaml:"system"`
	Generation llm.GenerationConfig `yaml:"generation"`
}

type Catalogue map[string]Prompt

// Load parses the embedded catalogue.
func Load() (Catalogue, error) {
	return Parse(defaultCatalogue)
}

// Parse decodes a catalogue and checks that every prompt the service uses is present.
func Parse(data []byte) (Catalogue, error) {
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse prompt catalogue: %w", err)
	}
	for _, name := range []string{Initial, FollowUp} {
		p, ok := c[name]
		if !ok || strings.TrimSpace(p.System) == "" {
			return nil, fmt.Errorf("prompt catalogue is missing %q", name)
		}
	}
	return c, nil
}

// Request builds a generation request for the named prompt.
func (c Catalogue) Request(name, model string, contents ...string) llm.Request {
	p := c[name]
	return llm.Request{
		Model:             model,
		SystemInstruction: p.System,
		Contents:          contents,
		Config:            p.Generation,
	}
}
