package publish

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/silverbulletmd/publish/internal/config"
	"github.com/silverbulletmd/publish/internal/space"
)

func TestLoadTemplate_Builtin(t *testing.T) {
	tpl, err := LoadTemplate(context.Background(), space.NewMockSpace(), config.Default())
	require.NoError(t, err)

	out, err := renderShell(tpl, TemplateData{
		PageName: "MyPage",
		Config:   config.PublishConfig{Title: "My Site"},
		Body:     "<p>hello</p>",
	})
	require.NoError(t, err)
	require.Contains(t, string(out), "<title>MyPage &middot; My Site</title>")
	require.Contains(t, string(out), "<p>hello</p>")
}

func TestLoadTemplate_BuiltinWithoutTitle(t *testing.T) {
	tpl, err := LoadTemplate(context.Background(), space.NewMockSpace(), config.Default())
	require.NoError(t, err)

	out, err := renderShell(tpl, TemplateData{PageName: "MyPage", Body: ""})
	require.NoError(t, err)
	require.Contains(t, string(out), "<title>MyPage</title>")
}

func TestLoadTemplate_PageOverride(t *testing.T) {
	sp := space.NewMockSpace()
	sp.AddMarkdown("templates/site", "My shell:\n\n```html\n<html><body>{{.Body}}</body></html>\n```\n")

	cfg := config.Default()
	cfg.Template = "templates/site"
	tpl, err := LoadTemplate(context.Background(), sp, cfg)
	require.NoError(t, err)

	out, err := renderShell(tpl, TemplateData{PageName: "P", Body: "<p>x</p>"})
	require.NoError(t, err)
	require.Equal(t, "<html><body><p>x</p></body></html>", string(out))
}

func TestLoadTemplate_MissingOverridePageIsFatal(t *testing.T) {
	cfg := config.Default()
	cfg.Template = "no/such/page"
	_, err := LoadTemplate(context.Background(), space.NewMockSpace(), cfg)
	require.Error(t, err)
}

func TestLoadTemplate_OverrideWithoutCodeBlockIsFatal(t *testing.T) {
	sp := space.NewMockSpace()
	sp.AddMarkdown("templates/site", "Just prose, no fenced block.")

	cfg := config.Default()
	cfg.Template = "templates/site"
	_, err := LoadTemplate(context.Background(), sp, cfg)
	require.Error(t, err)
}

func TestFencedCodeBlock(t *testing.T) {
	body, ok := fencedCodeBlock("intro\n```html\n<b>a</b>\n<i>b</i>\n```\ntrailer")
	require.True(t, ok)
	require.Equal(t, "<b>a</b>\n<i>b</i>", body)

	_, ok = fencedCodeBlock("no block here")
	require.False(t, ok)
}
