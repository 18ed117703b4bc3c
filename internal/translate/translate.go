// Package translate turns recognized bubble text into a target locale.
//
// Providers implement a single method so that the fixed demo table, an LLM
// backed translator and test doubles are interchangeable in the pipeline.
package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// ErrUnsupportedLocale is returned for locales that are not valid BCP 47 tags.
var ErrUnsupportedLocale = errors.New("unsupported locale")

// Provider translates text into locale.
type Provider interface {
	Translate(ctx context.Context, text, locale string) (string, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, text, locale string) (string, error)

// Translate calls f.
func (f ProviderFunc) Translate(ctx context.Context, text, locale string) (string, error) {
	return f(ctx, text, locale)
}

// Language is a target locale offered to clients.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Languages lists the locales offered by the service.
func Languages() []Language {
	return []Language{
		{Code: "fr", Name: "Français"},
		{Code: "es", Name: "Espagnol"},
		{Code: "de", Name: "Allemand"},
		{Code: "it", Name: "Italien"},
	}
}

// ValidateLocale checks that locale is a well-formed language tag and returns
// its canonical form ("FR" becomes "fr", "pt_br" becomes "pt-BR").
func ValidateLocale(locale string) (string, error) {
	if strings.TrimSpace(locale) == "" {
		return "", fmt.Errorf("empty locale: %w", ErrUnsupportedLocale)
	}
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return "", fmt.Errorf("locale %q: %w", locale, ErrUnsupportedLocale)
	}
	return tag.String(), nil
}

// Tagged is the passthrough used when no translation is known: "[fr] text".
func Tagged(text, locale string) string {
	return fmt.Sprintf("[%s] %s", locale, text)
}
