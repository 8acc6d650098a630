package generation

import (
	"context"
	"strings"
	"time"

	"quickgpt/internal/ai"
	"quickgpt/internal/model"
)

const emptyCompletionReply = "The model returned an empty response."

// Completer is a chat-completion backend; both the OpenAI-compatible client
// and the Gemini client satisfy it.
type Completer interface {
	Complete(ctx context.Context, messages []ai.ChatMessage) (string, error)
}

type TextGenerator struct {
	completer Completer
	now       clock
}

func NewTextGenerator(completer Completer) *TextGenerator {
	return &TextGenerator{completer: completer, now: time.Now}
}

func (g *TextGenerator) Mode() Mode { return ModeText }

func (g *TextGenerator) Cost() int { return TextCost }

func (g *TextGenerator) Generate(ctx context.Context, req Request) (model.Message, error) {
	content, err := g.completer.Complete(ctx, []ai.ChatMessage{
		{Role: model.RoleUser, Content: req.Prompt},
	})
	if err != nil {
		return model.Message{}, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		content = emptyCompletionReply
	}
	return model.NewAssistantText(content, g.now()), nil
}
