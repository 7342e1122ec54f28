package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmbeddedCatalogue(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	initial := c[Initial]
	assert.Contains(t, initial.System, "MyScene")
	assert.Equal(t, 0.7, initial.Generation.Temperature)
	assert.Equal(t, 0.8, initial.Generation.TopP)
	assert.Equal(t, 40, initial.Generation.TopK)
	assert.Equal(t, 20000, initial.Generation.MaxOutputTokens)

	assert.Equal(t, 8192, c[FollowUp].Generation.MaxOutputTokens)
	assert.Contains(t, c[FollowUp].System, "follow-up")
}

func TestParse_MissingPrompt(t *testing.T) {
	_, err := Parse([]byte("initial:\n  system: hi\n"))
	assert.ErrorContains(t, err, `"followup"`)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("initial: [unclosed"))
	assert.Error(t, err)
}

func TestCatalogue_Request(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	req := c.Request(FollowUp, "gemini-2.5-pro", "User: hi", "make it blue")
	assert.Equal(t, "gemini-2.5-pro", req.Model)
	assert.Equal(t, []string{"User: hi", "make it blue"}, req.Contents)
	assert.Equal(t, c[FollowUp].System, req.SystemInstruction)
	assert.Equal(t, 8192, req.Config.MaxOutputTokens)
}
