package translate

import (
	"context"
	"sync"
)

// Table translates from a fixed phrase table. Text without an entry for the
// requested locale comes back tagged with the locale.
type Table struct {
	mu      sync.RWMutex
	entries map[string]map[string]string
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[string]map[string]string)}
}

// NewDemoTable returns a table holding the demo phrases in every offered locale.
func NewDemoTable() *Table {
	t := NewTable()
	for text, byLocale := range demoPhrases {
		for locale, translation := range byLocale {
			t.Add(text, locale, translation)
		}
	}
	return t
}

// Add registers the translation of text into locale.
func (t *Table) Add(text, locale, translation string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	byLocale, ok := t.entries[text]
	if !ok {
		byLocale = make(map[string]string)
		t.entries[text] = byLocale
	}
	byLocale[locale] = translation
}

// Translate looks text up. Empty text stays empty.
func (t *Table) Translate(ctx context.Context, text, locale string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if text == "" {
		return "", nil
	}

	t.mu.RLock()
	translation, ok := t.entries[text][locale]
	t.mu.RUnlock()

	if !ok {
		return Tagged(text, locale), nil
	}
	return translation, nil
}

var demoPhrases = map[string]map[string]string{
	"What are you doing?": {
		"fr": "Que fais-tu ?",
		"es": "¿Qué estás haciendo?",
		"de": "Was machst du?",
		"it": "Cosa stai facendo?",
	},
	"I won't give up!": {
		"fr": "Je n'abandonnerai pas !",
		"es": "¡No me rendiré!",
		"de": "Ich gebe nicht auf!",
		"it": "Non mi arrenderò!",
	},
	"This is impossible...": {
		"fr": "C'est impossible...",
		"es": "Esto es imposible...",
		"de": "Das ist unmöglich...",
		"it": "È impossibile...",
	},
	"Let's fight together!": {
		"fr": "Combattons ensemble !",
		"es": "¡Luchemos juntos!",
		"de": "Lass uns zusammen kämpfen!",
		"it": "Combattiamo insieme!",
	},
	"Amazing power!": {
		"fr": "Pouvoir incroyable !",
		"es": "¡Poder increíble!",
		"de": "Erstaunliche Kraft!",
		"it": "Potere incredibile!",
	},
	"No way!": {
		"fr": "Impossible !",
		"es": "¡De ninguna manera!",
		"de": "Niemals!",
		"it": "Non è possibile!",
	},
}

