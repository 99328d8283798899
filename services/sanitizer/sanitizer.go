// Package sanitizer cleans raw generation-model text into valid,
// renderable HTML. Render is total: it never fails, malformed fragments
// are wrapped rather than repaired.
package sanitizer

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	htmlFence  = regexp.MustCompile("(?i)^```html\\s*|\\s*```$")
	plainFence = regexp.MustCompile("^```\\s*|\\s*```$")
	mdHeading  = regexp.MustCompile(`(?m)^#+\s*.+$`)
)

type Sanitizer struct{}

func New() *Sanitizer {
	return &Sanitizer{}
}

// Render normalizes raw model output into a standalone HTML document.
// Empty input yields the fixed fallback document. Text that already
// forms a complete document (doctype + <html> + <body>) passes through
// unchanged, so Render is idempotent.
func (s *Sanitizer) Render(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return fallbackHTML
	}

	cleaned := s.clean(raw)

	upper := strings.ToUpper(cleaned)
	lower := strings.ToLower(cleaned)
	hasDoctype := strings.Contains(upper, "<!DOCTYPE")
	hasHTML := strings.Contains(lower, "<html")
	hasBody := strings.Contains(lower, "<body")

	if hasDoctype && hasHTML && hasBody {
		return cleaned
	}

	return fmt.Sprintf(wrapTemplate, cleaned)
}

// Validate is a length-based smoke test, not a structural check.
func (s *Sanitizer) Validate(html string) bool {
	return html != "" && len(html) > 50
}

func (s *Sanitizer) clean(code string) string {
	// The fence anchors match the ends of the text, so trailing
	// whitespace has to go before they apply.
	code = strings.TrimSpace(code)
	code = htmlFence.ReplaceAllString(code, "")
	code = plainFence.ReplaceAllString(code, "")
	code = mdHeading.ReplaceAllString(code, "")
	return strings.TrimSpace(code)
}

const wrapTemplate = `<!DOCTYPE html>
<html lang="ru">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>AI Generated Code</title>
    <style>
        body {
            margin: 0;
            padding: 20px;
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%);
            min-height: 100vh;
            box-sizing: border-box;
        }
        * {
            box-sizing: border-box;
        }
    </style>
</head>
<body>
    %s
</body>
</html>`

const fallbackHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Ошибка генерации</title>
    <style>
        body {
            display: flex;
            justify-content: center;
            align-items: center;
            height: 100vh;
            background: #f0f0f0;
            font-family: Arial, sans-serif;
        }
        .error {
            background: white;
            padding: 2rem;
            border-radius: 10px;
            text-align: center;
        }
    </style>
</head>
<body>
    <div class="error">
        <h2>❌ Не удалось сгенерировать код</h2>
        <p>Попробуйте перегенерировать или изменить описание задачи</p>
    </div>
</body>
</html>`
