package jsonutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reply = `{"chatname":"Pythagorean Theorem","description":"Shows a²+b²=c² with \"squares\"","manim_code":"class MyScene(Scene):\n    def construct(self):\n        self.add(Text(\"hi\"))\nMyScene().render()"}`

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `  {"a":1}  `, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"python fence", "```python\nprint(1)\n```", "print(1)"},
		{"python3 fence", "```python3\nprint(1)\n```", "print(1)"},
		{"json5 fence", "```json5\n{\"a\":1}\n```", `{"a":1}`},
		{"crlf", "```json\r\n{\"a\":1}\r\n```", `{"a":1}`},
		{"bom", "\uFEFF{\"a\":1}", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFence(tt.in))
		})
	}
}

func TestDecodeManimScript_FencedAndPlainAgree(t *testing.T) {
	plain, err := DecodeManimScript(reply)
	require.NoError(t, err)
	fenced, err := DecodeManimScript("```json\n" + reply + "\n```")
	require.NoError(t, err)
	tagged, err := DecodeManimScript("```json5\n" + reply + "\n```")
	require.NoError(t, err)

	assert.Equal(t, plain, fenced)
	assert.Equal(t, plain, tagged)
	assert.Equal(t, "Pythagorean Theorem", plain.ChatName)
	assert.Contains(t, plain.ManimCode, `Text("hi")`)
}

func TestNormalizeManimScript(t *testing.T) {
	decoded, err := DecodeManimScript(reply)
	require.NoError(t, err)
	script := NormalizeManimScript(decoded)

	assert.Equal(t, "pythagorean_theorem", script.ChatName)
	assert.Contains(t, script.Description, `\"squares\"`)
	assert.Contains(t, script.ManimCode, `Text(\"hi\")`)
	assert.Contains(t, script.ManimCode, "class MyScene(Scene):\n")
}

func TestDecodeManimScript_Rejects(t *testing.T) {
	_, err := DecodeManimScript("Sure! Here is your animation.")
	assert.Error(t, err)

	_, err = DecodeManimScript(`{"description":"x","manim_code":"y"}`)
	assert.ErrorContains(t, err, "chatname")
}
