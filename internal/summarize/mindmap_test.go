package summarize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sublens/sublens/internal/summarize/driver"
)

func TestParseIdeas(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"plain array", `["идея 1", "идея 2"]`, []string{"идея 1", "идея 2"}},
		{"code fence", "```json\n[\"идея 1\"]\n```", []string{"идея 1"}},
		{"surrounding prose", `Вот список идей: ["a", "b"] надеюсь, помогло`, []string{"a", "b"}},
		{"blank entries dropped", `["a", "  ", ""]`, []string{"a"}},
		{"no array", "просто текст без списка", nil},
		{"invalid json", `["unterminated`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseIdeas(tt.raw))
		})
	}
}

func TestBuildHierarchyGroupsByKeyword(t *testing.T) {
	m := buildHierarchy([]string{
		"Машинное обучение меняет индустрию",
		"AI ассистенты пишут код",
		"Субтитры генерируются автоматически",
		"Экономика внимания",
	})

	assert.ElementsMatch(t, []string{
		"Машинное обучение меняет индустрию",
		"AI ассистенты пишут код",
	}, m.Subtopics["ИИ и ML"])
	assert.ElementsMatch(t, []string{"Субтитры генерируются автоматически"}, m.Subtopics["Видео контент"])
	assert.ElementsMatch(t, []string{"Экономика внимания"}, m.Subtopics["Общие темы"])

	// Largest group becomes the main topic.
	assert.Equal(t, "ИИ и ML", m.MainTopic)
}

func TestBuildHierarchyEmpty(t *testing.T) {
	m := buildHierarchy(nil)
	assert.Equal(t, "Анализ текста", m.MainTopic)
	assert.Empty(t, m.Subtopics)
}

func TestMindMapMarkdown(t *testing.T) {
	m := &MindMap{
		MainTopic: "Видео контент",
		Subtopics: map[string][]string{
			"Видео контент": {"Субтитры доступны на YouTube"},
			"Общие темы":    {"Прочая идея"},
		},
	}

	md := m.Markdown()
	assert.Contains(t, md, "# Видео контент")
	assert.Contains(t, md, "## Видео контент")
	assert.Contains(t, md, "🎥 Субтитры доступны на YouTube")
	assert.Contains(t, md, "💡 Прочая идея")
	assert.Contains(t, md, "**Всего идей**: 2")
}

func TestMindMapMermaid(t *testing.T) {
	m := &MindMap{
		MainTopic: "Тема (главная)",
		Subtopics: map[string][]string{
			"Общие темы": {`Идея с "кавычками"`},
		},
	}

	mermaid := m.Mermaid()
	assert.Contains(t, mermaid, "mindmap\n")
	assert.Contains(t, mermaid, `root(("Тема (главная)"))`)
	assert.Contains(t, mermaid, `"Общие темы"`)
	assert.Contains(t, mermaid, `💡 Идея с \"кавычками\"`)
}

func TestBuildMindMap(t *testing.T) {
	fake := &fakeDriver{respond: func(req *driver.Request) (*driver.Response, error) {
		return &driver.Response{Text: `["видео о субтитрах", "машинное обучение"]`}, nil
	}}
	s := newTestSummarizer(t, fake)

	m, err := s.BuildMindMap(context.Background(), "текст для анализа")
	require.NoError(t, err)

	require.Len(t, fake.calls, 1)
	assert.Contains(t, fake.calls[0].System, "основные идеи, концепции и темы")
	assert.Contains(t, fake.calls[0].User, "текст для анализа")

	assert.ElementsMatch(t, []string{"видео о субтитрах"}, m.Subtopics["Видео контент"])
	assert.ElementsMatch(t, []string{"машинное обучение"}, m.Subtopics["ИИ и ML"])
}

func TestBuildMindMapEmptyText(t *testing.T) {
	s := newTestSummarizer(t, &fakeDriver{})
	_, err := s.BuildMindMap(context.Background(), "")
	require.Error(t, err)
}
