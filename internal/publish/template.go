package publish

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/silverbulletmd/publish/internal/config"
	pkgerrors "github.com/silverbulletmd/publish/internal/errors"
	"github.com/silverbulletmd/publish/internal/space"
)

// defaultTemplate is the built-in page shell used when no template page is
// configured.
const defaultTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.PageName}}{{with .Config.Title}} &middot; {{.}}{{end}}</title>
</head>
<body>
<main>
{{.Body}}
</main>
</body>
</html>
`

// TemplateData is what the page shell template is invoked with.
type TemplateData struct {
	PageName string
	Config   config.PublishConfig
	Body     template.HTML
}

// LoadTemplate compiles the page shell. With config.Template set it loads the
// named page and compiles its first fenced code block instead of the built-in
// shell; failures there are fatal since the override was explicitly asked for.
func LoadTemplate(ctx context.Context, sp space.Space, cfg config.PublishConfig) (*template.Template, error) {
	source := defaultTemplate
	origin := "builtin"
	if cfg.Template != "" {
		page, err := sp.ReadPage(ctx, cfg.Template)
		if err != nil {
			return nil, pkgerrors.TemplateCompileError(cfg.Template, err)
		}
		block, ok := fencedCodeBlock(string(page))
		if !ok {
			return nil, pkgerrors.TemplateCompileError(cfg.Template,
				fmt.Errorf("page has no fenced code block"))
		}
		source = block
		origin = cfg.Template
	}
	tpl, err := template.New("page").Option("missingkey=error").Parse(source)
	if err != nil {
		return nil, pkgerrors.TemplateCompileError(origin, err)
	}
	return tpl, nil
}

// renderShell executes the page shell template.
func renderShell(tpl *template.Template, data TemplateData) ([]byte, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute page template: %w", err)
	}
	return buf.Bytes(), nil
}

// fencedCodeBlock extracts the body of the first fenced code block in a page,
// regardless of its info string.
func fencedCodeBlock(source string) (string, bool) {
	lines := strings.Split(source, "\n")
	var body []string
	inBlock := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !inBlock {
			if strings.HasPrefix(trimmed, "```") {
				inBlock = true
			}
			continue
		}
		if trimmed == "```" {
			return strings.Join(body, "\n"), true
		}
		body = append(body, line)
	}
	return "", false
}
