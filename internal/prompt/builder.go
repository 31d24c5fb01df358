package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed templates/*.yaml
var templateFS embed.FS

type TemplateName string

const (
	TemplateRecommendation   TemplateName = "recommendation.yaml"
	TemplateFallbackResponse TemplateName = "fallback_response.yaml"
)

type PromptBuilder struct {
	mu        sync.RWMutex
	fsys      fs.FS
	templates map[TemplateName]*template.Template
}

var (
	defaultBuilderOnce sync.Once
	defaultBuilder     *PromptBuilder
)

func NewPromptBuilder() *PromptBuilder {
	return NewPromptBuilderFS(templateFS)
}

// NewPromptBuilderFS reads templates from fsys instead of the embedded set.
// Template files are looked up under templates/.
func NewPromptBuilderFS(fsys fs.FS) *PromptBuilder {
	return &PromptBuilder{
		fsys:      fsys,
		templates: make(map[TemplateName]*template.Template),
	}
}

func DefaultPromptBuilder() *PromptBuilder {
	defaultBuilderOnce.Do(func() {
		defaultBuilder = NewPromptBuilder()
	})
	return defaultBuilder
}

func (pb *PromptBuilder) Render(name TemplateName, data any) (string, error) {
	tmpl, err := pb.getTemplate(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}

	return buf.String(), nil
}

// RecommendationPrompt renders the recommendation template, falling back to
// the compiled-in prompt when the template cannot be used.
func (pb *PromptBuilder) RecommendationPrompt(data RecommendationData) string {
	text, err := pb.Render(TemplateRecommendation, data)
	if err != nil || strings.TrimSpace(text) == "" {
		return FallbackRecommendationPrompt(data)
	}
	return text
}

func (pb *PromptBuilder) FallbackResponse(data FallbackResponseData) string {
	text, err := pb.Render(TemplateFallbackResponse, data)
	if err != nil || strings.TrimSpace(text) == "" {
		return FallbackResponseText(data)
	}
	return text
}

func (pb *PromptBuilder) getTemplate(name TemplateName) (*template.Template, error) {
	pb.mu.RLock()
	if tmpl, ok := pb.templates[name]; ok {
		pb.mu.RUnlock()
		return tmpl, nil
	}
	pb.mu.RUnlock()

	filename := path.Join("templates", string(name))
	content, err := fs.ReadFile(pb.fsys, filename)
	if err != nil {
		return nil, fmt.Errorf("load prompt template %s: %w", name, err)
	}

	var doc templateDocument
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("decode prompt template %s: %w", name, err)
	}
	if strings.TrimSpace(doc.Prompt) == "" {
		return nil, fmt.Errorf("prompt template %s has no prompt body", name)
	}

	tmpl, err := template.New(string(name)).Option("missingkey=error").Parse(doc.Prompt)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template %s: %w", name, err)
	}

	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.templates[name] = tmpl

	return tmpl, nil
}
