// Package render formats outbound replies and renders system prompts from
// structured style definitions.
package render

import (
	"fmt"
	"strings"
)

// Style is the structured definition of a system prompt. Prompts are built
// exclusively through SystemPrompt so tests can assert on structure instead
// of exact prose.
type Style struct {
	Tone           []string
	Rules          []string
	LengthLimit    int // maximum reply length in characters, 0 = unlimited
	ForbiddenTerms []string
}

// SystemPrompt renders the style into the single system prompt text sent to
// the model.
func (s Style) SystemPrompt() string {
	var sb strings.Builder
	for _, line := range s.Tone {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	for _, line := range s.Rules {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	if s.LengthLimit > 0 {
		fmt.Fprintf(&sb, "字數%d以內\n", s.LengthLimit)
	}
	if len(s.ForbiddenTerms) > 0 {
		fmt.Fprintf(&sb, "嚴禁提及: %s\n", strings.Join(s.ForbiddenTerms, "、"))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Merge returns a copy of s with the other style's lines appended. Handlers
// compose the base voice with a command-specific style this way.
func (s Style) Merge(other Style) Style {
	merged := Style{
		Tone:           append(append([]string{}, s.Tone...), other.Tone...),
		Rules:          append(append([]string{}, s.Rules...), other.Rules...),
		LengthLimit:    s.LengthLimit,
		ForbiddenTerms: append(append([]string{}, s.ForbiddenTerms...), other.ForbiddenTerms...),
	}
	if other.LengthLimit > 0 {
		merged.LengthLimit = other.LengthLimit
	}
	return merged
}

// WithQuota appends the remaining-usage suffix after a successful quota-gated
// reply.
func WithQuota(text string, used, limit int) string {
	return fmt.Sprintf("%s\n\n📊 今日額度: %d/%d", text, used, limit)
}

// WithDisclaimer appends a fixed disclaimer suffix to a reply.
func WithDisclaimer(text, disclaimer string) string {
	if disclaimer == "" {
		return text
	}
	return text + "\n\n" + disclaimer
}

// Fixed disclaimer suffixes for response kinds that must never be mistaken
// for sincerity.
const (
	LoveDisclaimer    = "免責聲明: 土味情話純屬娛樂😘請勿當真💖"
	ApologyDisclaimer = "免責聲明: 唔關五仁月餅事🥮求下大家俾下面🙏"
)
