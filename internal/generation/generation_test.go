package generation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickgpt/internal/ai"
	"quickgpt/internal/model"
)

type stubCompleter struct {
	reply    string
	err      error
	received []ai.ChatMessage
}

func (s *stubCompleter) Complete(_ context.Context, messages []ai.ChatMessage) (string, error) {
	s.received = messages
	return s.reply, s.err
}

type stubImageBackend struct {
	data      []byte
	url       string
	genErr    error
	uploadErr error
	prompt    string
	fileName  string
}

func (s *stubImageBackend) Generate(_ context.Context, prompt string) ([]byte, error) {
	s.prompt = prompt
	return s.data, s.genErr
}

func (s *stubImageBackend) Upload(_ context.Context, _ []byte, fileName string) (string, error) {
	s.fileName = fileName
	return s.url, s.uploadErr
}

var fixedNow = time.UnixMilli(1700000000000)

func TestTextGenerator(t *testing.T) {
	completer := &stubCompleter{reply: "  Hi there!  "}
	g := NewTextGenerator(completer)
	g.now = func() time.Time { return fixedNow }

	msg, err := g.Generate(context.Background(), Request{Prompt: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAssistant, msg.Role)
	assert.Equal(t, "Hi there!", msg.Content)
	assert.False(t, msg.IsImage)
	assert.Equal(t, fixedNow.UnixMilli(), msg.Timestamp)
	require.Len(t, completer.received, 1)
	assert.Equal(t, ai.ChatMessage{Role: "user", Content: "Hello"}, completer.received[0])
	assert.Equal(t, 1, g.Cost())
}

func TestTextGenerator_EmptyAndError(t *testing.T) {
	g := NewTextGenerator(&stubCompleter{reply: "   "})
	msg, err := g.Generate(context.Background(), Request{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, emptyCompletionReply, msg.Content)

	boom := errors.New("upstream down")
	_, err = NewTextGenerator(&stubCompleter{err: boom}).Generate(context.Background(), Request{Prompt: "x"})
	assert.ErrorIs(t, err, boom)
}

func TestImageGenerator(t *testing.T) {
	for _, publish := range []bool{true, false} {
		backend := &stubImageBackend{data: []byte("png"), url: "https://ik.example/fox.png"}
		g := NewImageGenerator(backend)

		msg, err := g.Generate(context.Background(), Request{Prompt: "a red fox", Publish: publish})
		require.NoError(t, err)
		assert.Equal(t, model.RoleAssistant, msg.Role)
		assert.True(t, msg.IsImage)
		assert.Equal(t, publish, msg.IsPublished)
		assert.Equal(t, "https://ik.example/fox.png", msg.Content)
		assert.Equal(t, "a red fox", backend.prompt)
		assert.True(t, strings.HasSuffix(backend.fileName, ".png"))
	}
}

func TestImageGenerator_Failures(t *testing.T) {
	boom := errors.New("boom")

	_, err := NewImageGenerator(&stubImageBackend{genErr: boom}).Generate(context.Background(), Request{Prompt: "x"})
	assert.ErrorIs(t, err, boom)

	_, err = NewImageGenerator(&stubImageBackend{data: []byte("x"), uploadErr: boom}).Generate(context.Background(), Request{Prompt: "x"})
	assert.ErrorIs(t, err, boom)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(NewTextGenerator(&stubCompleter{}), NewImageGenerator(&stubImageBackend{}))

	g, err := r.Get(ModeImage)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Cost())

	_, err = r.Get(Mode("audio"))
	assert.Error(t, err)
	assert.Equal(t, []Mode{ModeImage, ModeText}, r.Modes())
}
