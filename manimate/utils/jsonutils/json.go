package jsonutils

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"manimate/manimate/utils/types"
)

var (
	reOpenFence  = regexp.MustCompile("^```[^\n]*\n")
	reCloseFence = regexp.MustCompile("\r?\n?```$")
)

// StripCodeFence removes one surrounding markdown fence (optionally tagged, e.g. ```json or ```python3)
// from model output. Unfenced input is only trimmed.
func StripCodeFence(input string) string {
	input = strings.TrimSpace(strings.Map(func(r rune) rune {
		if r == '\uFEFF' || r == '\u200B' || r == '\u200C' || r == '\u200D' {
			return -1
		}
		return r
	}, input))

	if !strings.HasPrefix(input, "```") {
		return input
	}
	input = reOpenFence.ReplaceAllString(input, "")
	input = reCloseFence.ReplaceAllString(input, "")
	return strings.TrimSpace(input)
}

// DecodeManimScript decodes the {chatname, description, manim_code} reply as sent by the model.
func DecodeManimScript(raw string) (types.ManimScript, error) {
	var script types.ManimScript
	if err := json.Unmarshal([]byte(StripCodeFence(raw)), &script); err != nil {
		return types.ManimScript{}, fmt.Errorf("decode manim script: %w", err)
	}
	if strings.TrimSpace(script.ChatName) == "" {
		return types.ManimScript{}, errors.New("manim script has no chatname")
	}
	return script, nil
}

// NormalizeManimScript lower-cases chatname with spaces as underscores and
// escapes double quotes in description and manim_code as \".
func NormalizeManimScript(script types.ManimScript) types.ManimScript {
	script.ChatName = strings.ToLower(strings.ReplaceAll(script.ChatName, " ", "_"))
	script.Description = strings.ReplaceAll(script.Description, `"`, `\"`)
	script.ManimCode = strings.ReplaceAll(script.ManimCode, `"`, `\"`)
	return script
}
