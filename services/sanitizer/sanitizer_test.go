package sanitizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const completeDoc = "<!DOCTYPE html><html><body><button>Hi</button></body></html>"

func TestRenderFallbackOnEmptyInput(t *testing.T) {
	s := New()

	for _, raw := range []string{"", "   ", "\n\t"} {
		html := s.Render(raw)
		require.Contains(t, html, "Ошибка генерации")
		require.Contains(t, html, "Не удалось сгенерировать код")
		require.True(t, s.Validate(html))
	}
}

func TestRenderCompleteDocumentPassesThrough(t *testing.T) {
	s := New()

	require.Equal(t, completeDoc, s.Render(completeDoc))
}

func TestRenderIdempotent(t *testing.T) {
	s := New()

	once := s.Render(completeDoc)
	require.Equal(t, once, s.Render(once))

	wrapped := s.Render("<div>hi</div>")
	require.Equal(t, wrapped, s.Render(wrapped))
}

func TestRenderWrapsFragment(t *testing.T) {
	s := New()

	html := s.Render("<div>hi</div>")
	require.Contains(t, html, "<!DOCTYPE html>")
	require.Contains(t, html, "<html")
	require.Contains(t, html, "<body")
	require.Contains(t, html, "<div>hi</div>")
	require.Contains(t, html, `<meta charset="UTF-8">`)
	require.Contains(t, html, "viewport")
	require.Contains(t, html, "linear-gradient")
}

func TestRenderStripsHTMLFence(t *testing.T) {
	s := New()

	raw := "```html\n" + completeDoc + "\n```"
	html := s.Render(raw)

	require.Equal(t, completeDoc, html)
	require.NotContains(t, html, "```")
}

func TestRenderStripsFenceBeforeTrailingNewline(t *testing.T) {
	s := New()

	// Model output typically ends with a newline after the closing
	// fence; it must not shield the fence from removal.
	raw := "```html\n" + completeDoc + "\n```\n"
	html := s.Render(raw)

	require.Equal(t, completeDoc, html)
	require.NotContains(t, html, "```")

	html = s.Render("```\n<div>hi</div>\n```\n\n")
	require.NotContains(t, html, "```")
	require.Contains(t, html, "<div>hi</div>")
}

func TestRenderStripsPlainFence(t *testing.T) {
	s := New()

	html := s.Render("```\n<div>hi</div>\n```")
	require.NotContains(t, html, "```")
	require.Contains(t, html, "<div>hi</div>")
}

func TestRenderStripsMarkdownHeadings(t *testing.T) {
	s := New()

	html := s.Render("# Вот ваш код\n<div>hi</div>\n## Пояснение")
	require.NotContains(t, html, "Вот ваш код")
	require.NotContains(t, html, "Пояснение")
	require.Contains(t, html, "<div>hi</div>")
}

func TestRenderCaseInsensitiveStructureDetection(t *testing.T) {
	s := New()

	doc := "<!doctype html><HTML><BODY>ok</BODY></HTML>"
	require.Equal(t, doc, s.Render(doc))
}

func TestValidate(t *testing.T) {
	s := New()

	require.False(t, s.Validate(""))
	require.False(t, s.Validate(strings.Repeat("x", 50)))
	require.True(t, s.Validate(strings.Repeat("x", 51)))
}
