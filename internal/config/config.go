// Package config loads the service configuration.
//
// Values come from, in increasing precedence: the defaults of Default, a YAML
// (or JSON) file, and SCANTRAD_* environment variables. Environment names are
// derived from the yaml tags: Regions.Padding is SCANTRAD_REGIONS_PADDING,
// LogLevel is SCANTRAD_LOG_LEVEL.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ironsheep/scan-trad-mcp/internal/grammar"
	"github.com/ironsheep/scan-trad-mcp/internal/imaging"
	"github.com/ironsheep/scan-trad-mcp/internal/ocr"
	"github.com/ironsheep/scan-trad-mcp/internal/translate"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SCANTRAD"

// Translation and detection provider names.
const (
	ProviderTable = "table"
	ProviderChat  = "chat"

	DetectionDemo = "demo"
	DetectionNone = "none"
)

// Config is the complete service configuration.
type Config struct {
	LogLevel string `yaml:"log_level" json:"log_level"`
	// FontPath names a TrueType font preferred over the built-in one.
	FontPath string `yaml:"font_path" json:"font_path"`

	Regions     RegionsConfig     `yaml:"regions" json:"regions"`
	OCR         OCRConfig         `yaml:"ocr" json:"ocr"`
	Grammar     GrammarConfig     `yaml:"grammar" json:"grammar"`
	Translation TranslationConfig `yaml:"translation" json:"translation"`
	Detection   DetectionConfig   `yaml:"detection" json:"detection"`
	LLM         LLMConfig         `yaml:"llm" json:"llm"`
}

// RegionsConfig controls region mapping and rendering.
type RegionsConfig struct {
	Padding   float64 `yaml:"padding" json:"padding"`
	RingWidth int     `yaml:"ring_width" json:"ring_width"`
	SortByTop bool    `yaml:"sort_by_top" json:"sort_by_top"`
	Parallel  bool    `yaml:"parallel" json:"parallel"`
}

// OCRConfig holds the recognizer hints.
type OCRConfig struct {
	Language    string `yaml:"language" json:"language"`
	PageSegMode int    `yaml:"page_seg_mode" json:"page_seg_mode"`
	Preprocess  bool   `yaml:"preprocess" json:"preprocess"`
}

// GrammarConfig enables LLM correction of recognized text.
type GrammarConfig struct {
	Enabled      bool `yaml:"enabled" json:"enabled"`
	MaxNewTokens int  `yaml:"max_new_tokens" json:"max_new_tokens"`
}

// TranslationConfig selects the translation provider.
type TranslationConfig struct {
	Provider      string `yaml:"provider" json:"provider"`
	DefaultLocale string `yaml:"default_locale" json:"default_locale"`
}

// DetectionConfig selects where boxes come from when a request has none.
type DetectionConfig struct {
	Provider string `yaml:"provider" json:"provider"`
}

// LLMConfig describes the OpenAI-compatible endpoint used by chat providers.
type LLMConfig struct {
	Model   string `yaml:"model" json:"model"`
	APIKey  string `yaml:"api_key" json:"api_key"`
	BaseURL string `yaml:"base_url" json:"base_url"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Regions: RegionsConfig{
			Padding:   0,
			RingWidth: imaging.DefaultRingWidth,
			SortByTop: true,
			Parallel:  false,
		},
		OCR: OCRConfig{
			Language:    ocr.DefaultLanguage,
			PageSegMode: ocr.DefaultPageSegMode,
			Preprocess:  false,
		},
		Grammar: GrammarConfig{
			Enabled:      false,
			MaxNewTokens: grammar.DefaultMaxNewTokens,
		},
		Translation: TranslationConfig{
			Provider:      ProviderTable,
			DefaultLocale: "fr",
		},
		Detection: DetectionConfig{
			Provider: DetectionDemo,
		},
		LLM: LLMConfig{
			Model: "gpt-4o-mini",
		},
	}
}

// Load builds the configuration from the defaults, the file at path (if any)
// and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()
	loader := NewLoader(EnvPrefix)

	if err := loader.LoadFromFile(path, cfg); err != nil {
		return nil, err
	}
	if err := loader.LoadFromEnv(cfg); err != nil {
		return nil, err
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error

	if c.Regions.Padding < 0 || c.Regions.Padding > 1 {
		errs = append(errs, fmt.Errorf("regions.padding %v outside [0,1]", c.Regions.Padding))
	}
	if c.Regions.RingWidth < 1 {
		errs = append(errs, fmt.Errorf("regions.ring_width must be at least 1, got %d", c.Regions.RingWidth))
	}
	if c.OCR.Language == "" {
		errs = append(errs, errors.New("ocr.language is required"))
	}
	if c.OCR.PageSegMode < 0 || c.OCR.PageSegMode > 13 {
		errs = append(errs, fmt.Errorf("ocr.page_seg_mode %d outside [0,13]", c.OCR.PageSegMode))
	}
	if c.Grammar.MaxNewTokens < 1 {
		errs = append(errs, fmt.Errorf("grammar.max_new_tokens must be positive, got %d", c.Grammar.MaxNewTokens))
	}

	switch strings.ToLower(c.Translation.Provider) {
	case ProviderTable:
	case ProviderChat:
		if c.LLM.Model == "" {
			errs = append(errs, errors.New("llm.model is required by the chat translation provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown translation.provider %q", c.Translation.Provider))
	}
	if c.Grammar.Enabled && c.LLM.Model == "" {
		errs = append(errs, errors.New("llm.model is required when grammar correction is enabled"))
	}
	if _, err := translate.ValidateLocale(c.Translation.DefaultLocale); err != nil {
		errs = append(errs, fmt.Errorf("translation.default_locale: %w", err))
	}

	switch strings.ToLower(c.Detection.Provider) {
	case DetectionDemo, DetectionNone:
	default:
		errs = append(errs, fmt.Errorf("unknown detection.provider %q", c.Detection.Provider))
	}

	return errors.Join(errs...)
}

// NeedsChatModel reports whether any component talks to the LLM endpoint.
func (c *Config) NeedsChatModel() bool {
	return strings.EqualFold(c.Translation.Provider, ProviderChat) || c.Grammar.Enabled
}
