// Package config resolves the publish configuration for a run.
package config

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/silverbulletmd/publish/internal/space"
)

// ConfigPage is the well-known page the configuration is loaded from.
const ConfigPage = "PUBLISH"

// PublishConfig controls page selection and output generation for one run.
// Immutable for the run's duration.
type PublishConfig struct {
	Title             string   `yaml:"title"`
	IndexPage         string   `yaml:"indexPage"`
	RemoveHashtags    bool     `yaml:"removeHashtags"`
	PublishAll        bool     `yaml:"publishAll"`
	Tags              []string `yaml:"tags"`
	Prefixes          []string `yaml:"prefixes"`
	Template          string   `yaml:"template"`
	GenerateIndexJSON bool     `yaml:"generateIndexJson"`
}

// Default returns the hard-coded configuration defaults.
func Default() PublishConfig {
	return PublishConfig{
		RemoveHashtags:    true,
		GenerateIndexJSON: true,
	}
}

// Resolve loads the configuration from the well-known page and merges it over
// the defaults. Any failure (missing page, no YAML, parse error) logs a
// warning and yields the defaults; a missing configuration never fails a run.
func Resolve(ctx context.Context, sp space.Space) PublishConfig {
	cfg := Default()

	source, err := sp.ReadPage(ctx, ConfigPage)
	if err != nil {
		if space.IsNotFound(err) {
			slog.Warn("Publish configuration page not found, using defaults", "page", ConfigPage)
		} else {
			slog.Warn("Publish configuration page unreadable, using defaults", "page", ConfigPage, "error", err)
		}
		return cfg
	}

	doc, ok := extractYAML(source)
	if !ok {
		slog.Warn("Publish configuration page has no YAML, using defaults", "page", ConfigPage)
		return cfg
	}

	// Unmarshal over the pre-populated defaults: absent fields keep their
	// default, present fields (including explicit false) override it.
	if err := yaml.Unmarshal(doc, &cfg); err != nil {
		slog.Warn("Publish configuration malformed, using defaults", "page", ConfigPage, "error", err)
		return Default()
	}
	return cfg
}

// extractYAML returns the configuration YAML embedded in a page: the
// frontmatter block if present, otherwise the first fenced yaml code block.
func extractYAML(source []byte) ([]byte, bool) {
	var raw map[string]any
	if _, err := frontmatter.Parse(bytes.NewReader(source), &raw); err == nil && len(raw) > 0 {
		doc, err := yaml.Marshal(raw)
		if err == nil {
			return doc, true
		}
	}
	if block, ok := fencedYAMLBlock(string(source)); ok {
		return []byte(block), true
	}
	return nil, false
}

// fencedYAMLBlock extracts the body of the first ```yaml fenced block.
func fencedYAMLBlock(source string) (string, bool) {
	lines := strings.Split(source, "\n")
	var body []string
	inBlock := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !inBlock {
			if trimmed == "```yaml" || trimmed == "```yml" {
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
