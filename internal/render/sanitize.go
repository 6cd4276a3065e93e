package render

import (
	"bytes"
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// Model output arrives with markdown the bot sends as plain text, so asterisks
// and backticks would show up literally in chat. PlainText renders the
// markdown to HTML, strips every tag, and unescapes what is left.

var (
	sanitizerOnce sync.Once
	sanitizer     *textSanitizer
)

type textSanitizer struct {
	policy   *bluemonday.Policy
	markdown goldmark.Markdown
	breaks   *regexp.Regexp
	newlines *regexp.Regexp
}

func newTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy:   bluemonday.StrictPolicy(),
		markdown: goldmark.New(),
		breaks:   regexp.MustCompile(`<br\s*/?>|</?p>|</?div>|</?pre>|</?h[1-6]>`),
		newlines: regexp.MustCompile(`\n\s*\n+`),
	}
}

// PlainText strips HTML and markdown from the input text.
func PlainText(text string) string {
	if text == "" {
		return ""
	}
	sanitizerOnce.Do(func() { sanitizer = newTextSanitizer() })

	var buf bytes.Buffer
	if err := sanitizer.markdown.Convert([]byte(text), &buf); err != nil {
		return text
	}

	htmlText := sanitizer.breaks.ReplaceAllString(buf.String(), "\n")
	stripped := sanitizer.policy.Sanitize(htmlText)
	stripped = sanitizer.newlines.ReplaceAllString(stripped, "\n\n")

	return strings.TrimSpace(html.UnescapeString(stripped))
}
