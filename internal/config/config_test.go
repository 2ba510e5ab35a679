package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/silverbulletmd/publish/internal/space"
)

func TestResolve_MissingPageYieldsDefaults(t *testing.T) {
	cfg := Resolve(context.Background(), space.NewMockSpace())
	require.Equal(t, Default(), cfg)
	require.True(t, cfg.RemoveHashtags)
	require.True(t, cfg.GenerateIndexJSON)
}

func TestResolve_FencedYAMLBlock(t *testing.T) {
	sp := space.NewMockSpace()
	sp.AddMarkdown(ConfigPage, "Site config lives here.\n\n```yaml\ntitle: My Site\ntags: [blog, docs]\nindexPage: home\n```\n")

	cfg := Resolve(context.Background(), sp)
	require.Equal(t, "My Site", cfg.Title)
	require.Equal(t, []string{"blog", "docs"}, cfg.Tags)
	require.Equal(t, "home", cfg.IndexPage)
	require.True(t, cfg.RemoveHashtags)
}

func TestResolve_Frontmatter(t *testing.T) {
	sp := space.NewMockSpace()
	sp.AddMarkdown(ConfigPage, "---\ntitle: FM Site\npublishAll: true\n---\nPage body.\n")

	cfg := Resolve(context.Background(), sp)
	require.Equal(t, "FM Site", cfg.Title)
	require.True(t, cfg.PublishAll)
}

func TestResolve_ExplicitFalseOverridesDefault(t *testing.T) {
	sp := space.NewMockSpace()
	sp.AddMarkdown(ConfigPage, "```yaml\nremoveHashtags: false\ngenerateIndexJson: false\n```\n")

	cfg := Resolve(context.Background(), sp)
	require.False(t, cfg.RemoveHashtags)
	require.False(t, cfg.GenerateIndexJSON)
}

func TestResolve_PageWithoutYAMLYieldsDefaults(t *testing.T) {
	sp := space.NewMockSpace()
	sp.AddMarkdown(ConfigPage, "Just some prose, nothing to configure.")

	require.Equal(t, Default(), Resolve(context.Background(), sp))
}

func TestResolve_MalformedYAMLYieldsDefaults(t *testing.T) {
	sp := space.NewMockSpace()
	sp.AddMarkdown(ConfigPage, "```yaml\ntitle: [unclosed\n```\n")

	require.Equal(t, Default(), Resolve(context.Background(), sp))
}

func TestFencedYAMLBlock(t *testing.T) {
	body, ok := fencedYAMLBlock("intro\n```yaml\na: 1\nb: 2\n```\nrest")
	require.True(t, ok)
	require.Equal(t, "a: 1\nb: 2", body)

	_, ok = fencedYAMLBlock("```json\n{}\n```")
	require.False(t, ok)
}
