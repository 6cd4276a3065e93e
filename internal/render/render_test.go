package render_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tszkin/gabbot/internal/render"
)

func TestSystemPromptStructure(t *testing.T) {
	s := render.Style{
		Tone:           []string{"tone line"},
		Rules:          []string{"rule one", "rule two"},
		LengthLimit:    50,
		ForbiddenTerms: []string{"alpha", "beta"},
	}

	prompt := s.SystemPrompt()
	lines := strings.Split(prompt, "\n")
	assert.Equal(t, "tone line", lines[0])
	assert.Equal(t, "rule one", lines[1])
	assert.Equal(t, "rule two", lines[2])
	assert.Contains(t, prompt, "字數50以內")
	assert.Contains(t, prompt, "嚴禁提及: alpha、beta")
	assert.False(t, strings.HasSuffix(prompt, "\n"))
}

func TestSystemPromptOmitsEmptySections(t *testing.T) {
	s := render.Style{Rules: []string{"only rule"}}
	prompt := s.SystemPrompt()
	assert.Equal(t, "only rule", prompt)
	assert.NotContains(t, prompt, "字數")
	assert.NotContains(t, prompt, "嚴禁提及")
}

func TestMerge(t *testing.T) {
	base := render.Style{Tone: []string{"base tone"}, LengthLimit: 100}
	cmd := render.Style{Rules: []string{"cmd rule"}, LengthLimit: 30, ForbiddenTerms: []string{"x"}}

	merged := base.Merge(cmd)
	assert.Equal(t, []string{"base tone"}, merged.Tone)
	assert.Equal(t, []string{"cmd rule"}, merged.Rules)
	assert.Equal(t, 30, merged.LengthLimit, "the merged-in limit wins when set")
	assert.Equal(t, []string{"x"}, merged.ForbiddenTerms)

	// Merging a style without a limit keeps the base limit.
	kept := base.Merge(render.Style{})
	assert.Equal(t, 100, kept.LengthLimit)

	// Merge must not mutate its receiver.
	assert.Empty(t, base.Rules)
}

func TestUsernamesPassThroughVerbatim(t *testing.T) {
	name := "陳大文 Chan_123"
	s := render.Style{Rules: []string{"轉述 " + name + " 講嘅嘢"}}
	assert.Contains(t, s.SystemPrompt(), name)
}

func TestWithQuota(t *testing.T) {
	out := render.WithQuota("reply text", 3, 20)
	assert.True(t, strings.HasPrefix(out, "reply text"))
	assert.Contains(t, out, "3/20")
}

func TestWithDisclaimer(t *testing.T) {
	out := render.WithDisclaimer("quote", render.LoveDisclaimer)
	assert.True(t, strings.HasPrefix(out, "quote"))
	assert.True(t, strings.HasSuffix(out, render.LoveDisclaimer))

	assert.Equal(t, "quote", render.WithDisclaimer("quote", ""))
}

func TestPlainTextStripsMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bold", "**好勁**呀", "好勁呀"},
		{"heading", "# 標題\ncontent", "標題\n\ncontent"},
		{"code", "run `go build` now", "run go build now"},
		{"plain passthrough", "冇嘢要執", "冇嘢要執"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render.PlainText(tt.in))
		})
	}
}
