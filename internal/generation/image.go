package generation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"quickgpt/internal/model"
)

// ImageBackend renders a prompt and rehosts the bytes in a media store.
type ImageBackend interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
	Upload(ctx context.Context, image []byte, fileName string) (string, error)
}

type ImageGenerator struct {
	backend ImageBackend
	now     clock
}

func NewImageGenerator(backend ImageBackend) *ImageGenerator {
	return &ImageGenerator{backend: backend, now: time.Now}
}

func (g *ImageGenerator) Mode() Mode { return ModeImage }

func (g *ImageGenerator) Cost() int { return ImageCost }

func (g *ImageGenerator) Generate(ctx context.Context, req Request) (model.Message, error) {
	data, err := g.backend.Generate(ctx, req.Prompt)
	if err != nil {
		return model.Message{}, err
	}

	url, err := g.backend.Upload(ctx, data, fmt.Sprintf("%s.png", uuid.NewString()))
	if err != nil {
		return model.Message{}, err
	}
	return model.NewAssistantImage(url, req.Publish, g.now()), nil
}
