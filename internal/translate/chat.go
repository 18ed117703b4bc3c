package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ChatConfig configures an OpenAI-compatible chat model.
type ChatConfig struct {
	Model   string
	APIKey  string
	BaseURL string
}

// NewChatModel creates the chat model described by cfg.
func NewChatModel(ctx context.Context, cfg ChatConfig) (model.BaseChatModel, error) {
	chatModelConfig := &openai.ChatModelConfig{
		Model:  cfg.Model,
		APIKey: cfg.APIKey,
	}
	if cfg.BaseURL != "" {
		chatModelConfig.BaseURL = cfg.BaseURL
	}

	chatModel, err := openai.NewChatModel(ctx, chatModelConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return chatModel, nil
}

// Chat translates with a chat model. Empty model output falls back to the
// tagged passthrough.
type Chat struct {
	model model.BaseChatModel
}

// NewChat returns a Chat provider using m.
func NewChat(m model.BaseChatModel) *Chat {
	return &Chat{model: m}
}

// Translate asks the model for a translation of text into locale.
func (c *Chat) Translate(ctx context.Context, text, locale string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	resp, err := c.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(systemPrompt(locale)),
		schema.UserMessage(text),
	}, model.WithTemperature(0))
	if err != nil {
		return "", fmt.Errorf("translation request failed: %w", err)
	}

	translation := strings.TrimSpace(resp.Content)
	if translation == "" {
		return Tagged(text, locale), nil
	}
	return translation, nil
}

func systemPrompt(locale string) string {
	name := locale
	if tag, err := language.Parse(locale); err == nil {
		if n := display.English.Tags().Name(tag); n != "" {
			name = n
		}
	}
	return "You translate the speech bubbles of a comic page from English into " + name + ". " +
		"Keep the tone and punctuation of the original. " +
		"Reply with the translated text only, without quotes or notes."
}
