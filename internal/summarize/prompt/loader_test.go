package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePrompt = `---
slug: test-prompt
name: Test Prompt
version: v1
input:
  required_variables:
    - text
system_template: "Summarize the fragment."
user_template: "{{text}}"
---
`

func TestLoadFrontmatter(t *testing.T) {
	p, err := Load("test.md", []byte(samplePrompt))
	require.NoError(t, err)

	assert.Equal(t, "test-prompt", p.Config.Slug)
	assert.Equal(t, "Summarize the fragment.", p.Config.SystemTemplate)
	assert.Equal(t, "{{text}}", p.Config.UserTemplate)
	assert.Equal(t, []string{"text"}, p.Config.Input.RequiredVariables)
	assert.Equal(t, "test.md", p.Source)
}

func TestLoadBodyAsSystemTemplate(t *testing.T) {
	data := []byte("---\nslug: body-prompt\n---\nYou are a helpful summarizer.")
	p, err := Load("body.md", data)
	require.NoError(t, err)
	assert.Equal(t, "You are a helpful summarizer.", p.Config.SystemTemplate)
}

func TestLoadRejectsMissingSlug(t *testing.T) {
	_, err := Load("bad.md", []byte("---\nsystem_template: hi\n---\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing slug")
}

func TestLoadRejectsMissingSystemTemplate(t *testing.T) {
	_, err := Load("bad.md", []byte("---\nslug: empty\n---\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing system_template")
}

func TestLoadRejectsEmpty(t *testing.T) {
	_, err := Load("empty.md", []byte("  \n"))
	require.Error(t, err)
}

func TestRender(t *testing.T) {
	p, err := Load("test.md", []byte(samplePrompt))
	require.NoError(t, err)

	system, user := p.Render(map[string]string{"text": "transcript body"})
	assert.Equal(t, "Summarize the fragment.", system)
	assert.Equal(t, "transcript body", user)
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.md"), []byte(samplePrompt), 0o644))

	prompts, err := LoadFromDir(dir)
	require.NoError(t, err)
	require.Len(t, prompts, 1)
	assert.Equal(t, "test-prompt", prompts[0].Config.Slug)
}

func TestDefaultRegistry(t *testing.T) {
	registry, err := DefaultRegistry()
	require.NoError(t, err)

	for _, slug := range []string{"chunk-summary", "short-summary", "merge-summary", "translate-ru", "translate-ru-from-en", "mindmap-ideas"} {
		p, err := registry.Get(slug)
		require.NoError(t, err, "slug %s", slug)
		assert.NotEmpty(t, p.Config.SystemTemplate)
		assert.Contains(t, p.Config.UserTemplate, "{{text}}")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	p, err := Load("a.md", []byte(samplePrompt))
	require.NoError(t, err)

	_, err = NewRegistry([]*Prompt{p, p})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate prompt slug")
}

func TestRegistryGetUnknown(t *testing.T) {
	registry, err := NewRegistry(nil)
	require.NoError(t, err)

	_, err = registry.Get("nope")
	require.Error(t, err)
}
