/*
Package prompt loads the summary prompt definitions: the AI prompt template, the fallback
keyword list and the metadata appended to AI summaries.
*/
package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	TitleSlot   = "{title}"
	ContentSlot = "{content}"
)

var (
	ErrMissingTitleSlot   = errors.New("ai_summary.user_prompt_template must contain {title}")
	ErrMissingContentSlot = errors.New("ai_summary.user_prompt_template must contain {content}")
)

// DefaultKeywords drive the heuristic summarizer whenever the definitions file supplies none.
var DefaultKeywords = []string{"概要", "要約", "目的", "結果", "影響", "売上", "利益", "業績"}

const (
	defaultTemplate   = "Analyze this document: {title}\n\nContent:\n{content}\n\nProvide a summary in Japanese."
	defaultEngine     = "Google Gemini 2.0 Flash"
	defaultDisclaimer = "※ この要約はAIによって生成されています。"
)

// Template is a user prompt with validated {title} and {content} slots.
type Template struct {
	raw string
}

func ParseTemplate(raw string) (Template, error) {
	var errs []error
	if !strings.Contains(raw, TitleSlot) {
		errs = append(errs, ErrMissingTitleSlot)
	}
	if !strings.Contains(raw, ContentSlot) {
		errs = append(errs, ErrMissingContentSlot)
	}
	if err := errors.Join(errs...); err != nil {
		return Template{}, err
	}
	return Template{raw: raw}, nil
}

// Render fills every slot in a single pass, so slot markers inside title or content are
// left untouched.
func (t Template) Render(title, content string) string {
	return strings.NewReplacer(TitleSlot, title, ContentSlot, content).Replace(t.raw)
}

func (t Template) String() string { return t.raw }

type Metadata struct {
	AnalysisEngine string
	Disclaimer     string
}

// Definitions is the validated, read-only prompt configuration.
type Definitions struct {
	Template Template
	Keywords []string
	Metadata Metadata
}

type fileDefinitions struct {
	AISummary struct {
		UserPromptTemplate string `json:"user_prompt_template" yaml:"user_prompt_template"`
	} `json:"ai_summary" yaml:"ai_summary"`
	FallbackSummary struct {
		Keywords []string `json:"keywords" yaml:"keywords"`
	} `json:"fallback_summary" yaml:"fallback_summary"`
	Metadata struct {
		AnalysisEngine string `json:"analysis_engine" yaml:"analysis_engine"`
		Disclaimer     string `json:"disclaimer" yaml:"disclaimer"`
	} `json:"metadata" yaml:"metadata"`
}

// Default returns the built-in definitions. Its keyword list is never empty.
func Default() Definitions {
	return Definitions{
		Template: Template{raw: defaultTemplate},
		Keywords: append([]string(nil), DefaultKeywords...),
		Metadata: Metadata{AnalysisEngine: defaultEngine, Disclaimer: defaultDisclaimer},
	}
}

// Load reads a definitions file. Files ending in .yaml or .yml are YAML; anything else is
// JSON.
func Load(path string) (Definitions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definitions{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	}
	return ParseJSON(data)
}

func ParseJSON(data []byte) (Definitions, error) {
	var fd fileDefinitions
	if err := json.Unmarshal(data, &fd); err != nil {
		return Definitions{}, fmt.Errorf("failed to parse prompt definitions: %w", err)
	}
	return fd.validate()
}

func ParseYAML(data []byte) (Definitions, error) {
	var fd fileDefinitions
	if err := yaml.Unmarshal(data, &fd); err != nil {
		return Definitions{}, fmt.Errorf("failed to parse prompt definitions: %w", err)
	}
	return fd.validate()
}

// validate checks the decoded file. Missing metadata falls back to the built-in values and
// an empty keyword list to DefaultKeywords.
func (fd fileDefinitions) validate() (Definitions, error) {
	tmpl, err := ParseTemplate(fd.AISummary.UserPromptTemplate)
	if err != nil {
		return Definitions{}, err
	}

	def := Default()
	def.Template = tmpl

	var keywords []string
	for _, kw := range fd.FallbackSummary.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	if len(keywords) > 0 {
		def.Keywords = keywords
	}

	if fd.Metadata.AnalysisEngine != "" {
		def.Metadata.AnalysisEngine = fd.Metadata.AnalysisEngine
	}
	if fd.Metadata.Disclaimer != "" {
		def.Metadata.Disclaimer = fd.Metadata.Disclaimer
	}

	return def, nil
}

// LoadOrDefault never fails: an unreadable or invalid file is logged and replaced by Default.
func LoadOrDefault(path string, logger *slog.Logger) Definitions {
	if path == "" {
		logger.Info("no prompt definitions configured, using built-in defaults")
		return Default()
	}

	def, err := Load(path)
	if err != nil {
		logger.Error("failed to load prompt definitions, using built-in defaults", "path", path, "error", err)
		return Default()
	}

	logger.Info("loaded prompt definitions", "path", path, "keywords", len(def.Keywords))
	return def
}
