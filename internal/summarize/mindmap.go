package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const (
	slugMindmapIdeas = "mindmap-ideas"

	// mindmapChunkSize bounds the text sent per idea-extraction request.
	mindmapChunkSize = 2000
)

// MindMap is a hierarchical view of the key ideas in a text.
type MindMap struct {
	MainTopic string
	Subtopics map[string][]string
}

// ideaGroups maps subtopic labels to the lowercase keywords that pull
// an idea into that group. Ideas matching nothing land in the catch-all.
var ideaGroups = []struct {
	label    string
	keywords []string
}{
	{"ИИ и ML", []string{"искусственный интеллект", "ai", "машинное обучение"}},
	{"Видео контент", []string{"видео", "youtube", "субтитры"}},
	{"Аудио обработка", []string{"голос", "аудио", "транскрипция"}},
}

const fallbackGroup = "Общие темы"

// BuildMindMap extracts key ideas from text via the completion driver
// and arranges them into a topic hierarchy.
func (s *Summarizer) BuildMindMap(ctx context.Context, text string) (*MindMap, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty text")
	}

	chunks := SplitText(text, mindmapChunkSize)
	var ideas []string
	for i, chunk := range chunks {
		raw, _, err := s.complete(ctx, slugMindmapIdeas, chunk)
		if err != nil {
			return nil, fmt.Errorf("extract ideas from chunk %d/%d: %w", i+1, len(chunks), err)
		}
		ideas = append(ideas, parseIdeas(raw)...)
		if i < len(chunks)-1 {
			if err := s.pause(ctx); err != nil {
				return nil, err
			}
		}
	}

	return buildHierarchy(ideas), nil
}

// parseIdeas decodes a JSON array of strings, tolerating markdown code
// fences and surrounding prose around the array.
func parseIdeas(raw string) []string {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return nil
	}

	var ideas []string
	if err := json.Unmarshal([]byte(raw[start:end+1]), &ideas); err != nil {
		return nil
	}

	result := make([]string, 0, len(ideas))
	for _, idea := range ideas {
		if idea = strings.TrimSpace(idea); idea != "" {
			result = append(result, idea)
		}
	}
	return result
}

func buildHierarchy(ideas []string) *MindMap {
	m := &MindMap{MainTopic: "Анализ текста", Subtopics: make(map[string][]string)}
	if len(ideas) == 0 {
		return m
	}

	for _, idea := range ideas {
		m.Subtopics[groupFor(idea)] = append(m.Subtopics[groupFor(idea)], idea)
	}

	if labels := m.sortedSubtopics(); len(labels) > 0 {
		m.MainTopic = labels[0]
	}
	return m
}

func groupFor(idea string) string {
	lower := strings.ToLower(idea)
	for _, group := range ideaGroups {
		for _, keyword := range group.keywords {
			if strings.Contains(lower, keyword) {
				return group.label
			}
		}
	}
	return fallbackGroup
}

// sortedSubtopics returns subtopic labels ordered by idea count, largest
// first, with ties broken alphabetically for stable output.
func (m *MindMap) sortedSubtopics() []string {
	labels := make([]string, 0, len(m.Subtopics))
	for label := range m.Subtopics {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		a, b := len(m.Subtopics[labels[i]]), len(m.Subtopics[labels[j]])
		if a != b {
			return a > b
		}
		return labels[i] < labels[j]
	})
	return labels
}

// Markdown renders the mind map as Markmap-compatible markdown.
func (m *MindMap) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", m.MainTopic)
	b.WriteString("*Автоматически сгенерированная карта памяти*\n\n")

	total := 0
	for _, label := range m.sortedSubtopics() {
		items := m.Subtopics[label]
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", label)
		for _, item := range items {
			fmt.Fprintf(&b, "%s %s\n", ideaEmoji(item), item)
		}
		b.WriteString("\n")
		total += len(items)
	}

	b.WriteString("---\n")
	fmt.Fprintf(&b, "**Сгенерировано**: %d основных тем\n", len(m.Subtopics))
	fmt.Fprintf(&b, "**Всего идей**: %d\n", total)
	fmt.Fprintf(&b, "**Главная тема**: %s\n", m.MainTopic)
	return b.String()
}

// Mermaid renders the mind map as a Mermaid mindmap diagram.
func (m *MindMap) Mermaid() string {
	var b strings.Builder
	fmt.Fprintf(&b, "mindmap\n  root((\"%s\"))\n", strings.ReplaceAll(m.MainTopic, `"`, `\"`))

	for _, label := range m.sortedSubtopics() {
		items := m.Subtopics[label]
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "    \"%s\"\n", escapeMermaid(label))
		for _, item := range items {
			fmt.Fprintf(&b, "      \"%s %s\"\n", ideaEmoji(item), escapeMermaid(item))
		}
	}
	return b.String()
}

func escapeMermaid(s string) string {
	replacer := strings.NewReplacer(`"`, `\"`, "(", `\(`, ")", `\)`)
	return replacer.Replace(s)
}

func ideaEmoji(idea string) string {
	lower := strings.ToLower(idea)
	switch groupFor(lower) {
	case "ИИ и ML":
		return "🤖"
	case "Видео контент":
		return "🎥"
	case "Аудио обработка":
		return "🎵"
	default:
		return "💡"
	}
}
