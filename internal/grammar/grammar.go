// Package grammar cleans up recognized text before it is stored or translated.
//
// OCR output of comic lettering is often mis-cased or missing punctuation. A
// Corrector rewrites it, generating at most maxNewTokens tokens.
package grammar

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// DefaultMaxNewTokens bounds the length of a correction.
const DefaultMaxNewTokens = 100

// Corrector returns a corrected version of text.
type Corrector interface {
	Correct(ctx context.Context, text string, maxNewTokens int) (string, error)
}

// Passthrough returns text unchanged.
type Passthrough struct{}

// Correct returns text.
func (Passthrough) Correct(_ context.Context, text string, _ int) (string, error) {
	return text, nil
}

const systemPrompt = "Correct the grammar, spelling, casing and punctuation of the text written " +
	"in a comic speech bubble. Keep its meaning and language. " +
	"Reply with the corrected text only."

// Chat corrects text with a chat model.
type Chat struct {
	model model.BaseChatModel
}

// NewChat returns a Chat corrector using m.
func NewChat(m model.BaseChatModel) *Chat {
	return &Chat{model: m}
}

// Correct asks the model for a corrected text. Blank input is returned without
// a model call and a blank reply keeps the input.
func (c *Chat) Correct(ctx context.Context, text string, maxNewTokens int) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	if maxNewTokens <= 0 {
		maxNewTokens = DefaultMaxNewTokens
	}

	resp, err := c.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(text),
	}, model.WithMaxTokens(maxNewTokens), model.WithTemperature(0))
	if err != nil {
		return "", fmt.Errorf("grammar correction failed: %w", err)
	}

	corrected := strings.TrimSpace(resp.Content)
	if corrected == "" {
		return text, nil
	}
	return corrected, nil
}
