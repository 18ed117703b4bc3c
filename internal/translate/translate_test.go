package translate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// fakeChatModel answers every request with a canned reply and records the prompt.
type fakeChatModel struct {
	reply    string
	err      error
	calls    int
	messages []*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.calls++
	f.messages = input
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func TestDemoTable(t *testing.T) {
	table := NewDemoTable()
	ctx := context.Background()

	tests := []struct {
		text   string
		locale string
		want   string
	}{
		{"What are you doing?", "fr", "Que fais-tu ?"},
		{"No way!", "es", "¡De ninguna manera!"},
		{"This is impossible...", "de", "Das ist unmöglich..."},
		{"Amazing power!", "it", "Potere incredibile!"},
		{"Unknown line", "fr", "[fr] Unknown line"},
		{"No way!", "ja", "[ja] No way!"},
		{"", "fr", ""},
	}

	for _, tt := range tests {
		t.Run(tt.locale+"/"+tt.text, func(t *testing.T) {
			got, err := table.Translate(ctx, tt.text, tt.locale)
			if err != nil {
				t.Fatalf("Translate failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDemoTable_CoversEveryLanguage(t *testing.T) {
	table := NewDemoTable()
	for text := range demoPhrases {
		for _, lang := range Languages() {
			got, err := table.Translate(context.Background(), text, lang.Code)
			if err != nil {
				t.Fatalf("Translate failed: %v", err)
			}
			if strings.HasPrefix(got, "[") {
				t.Errorf("%s/%q fell through to the tagged passthrough", lang.Code, text)
			}
		}
	}
}

func TestTable_Add(t *testing.T) {
	table := NewTable()
	table.Add("Hello", "fr", "Bonjour")

	got, _ := table.Translate(context.Background(), "Hello", "fr")
	if got != "Bonjour" {
		t.Errorf("got %q, want Bonjour", got)
	}
	got, _ = table.Translate(context.Background(), "Hello", "de")
	if got != "[de] Hello" {
		t.Errorf("got %q, want tagged passthrough", got)
	}
}

func TestTable_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewDemoTable().Translate(ctx, "No way!", "fr"); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestValidateLocale(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"fr", "fr", false},
		{"FR", "fr", false},
		{"pt_br", "pt-BR", false},
		{"de-CH", "de-CH", false},
		{"", "", true},
		{"   ", "", true},
		{"not a locale", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ValidateLocale(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedLocale) {
					t.Errorf("got %v, want ErrUnsupportedLocale", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLanguages(t *testing.T) {
	langs := Languages()
	want := []string{"fr", "es", "de", "it"}
	if len(langs) != len(want) {
		t.Fatalf("got %d languages, want %d", len(langs), len(want))
	}
	for i, code := range want {
		if langs[i].Code != code || langs[i].Name == "" {
			t.Errorf("language %d: got %+v, want code %s", i, langs[i], code)
		}
	}
}

func TestChat_Translate(t *testing.T) {
	fake := &fakeChatModel{reply: "  Impossible !\n"}
	chat := NewChat(fake)

	got, err := chat.Translate(context.Background(), "No way!", "fr")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "Impossible !" {
		t.Errorf("got %q, want trimmed reply", got)
	}

	if len(fake.messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(fake.messages))
	}
	if fake.messages[0].Role != schema.System || !strings.Contains(fake.messages[0].Content, "French") {
		t.Errorf("system prompt: %q", fake.messages[0].Content)
	}
	if fake.messages[1].Role != schema.User || fake.messages[1].Content != "No way!" {
		t.Errorf("user message: %q", fake.messages[1].Content)
	}
}

func TestChat_EmptyInputSkipsModel(t *testing.T) {
	fake := &fakeChatModel{reply: "unused"}
	got, err := NewChat(fake).Translate(context.Background(), "  ", "fr")
	if err != nil || got != "" {
		t.Errorf("got %q, %v; want empty", got, err)
	}
	if fake.calls != 0 {
		t.Errorf("model called %d times, want 0", fake.calls)
	}
}

func TestChat_EmptyReplyIsTagged(t *testing.T) {
	got, err := NewChat(&fakeChatModel{reply: ""}).Translate(context.Background(), "Hello", "it")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "[it] Hello" {
		t.Errorf("got %q, want tagged passthrough", got)
	}
}

func TestChat_ModelError(t *testing.T) {
	boom := errors.New("rate limited")
	_, err := NewChat(&fakeChatModel{err: boom}).Translate(context.Background(), "Hello", "fr")
	if !errors.Is(err, boom) {
		t.Errorf("got %v, want wrapped model error", err)
	}
}

func TestProviderFunc(t *testing.T) {
	var p Provider = ProviderFunc(func(_ context.Context, text, locale string) (string, error) {
		return locale + ":" + text, nil
	})
	got, _ := p.Translate(context.Background(), "x", "de")
	if got != "de:x" {
		t.Errorf("got %q", got)
	}
}
