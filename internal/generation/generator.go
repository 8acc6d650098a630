// Package generation turns a prompt into an assistant reply. Each mode (text,
// image) is a Generator with a fixed credit cost; the message pipeline picks
// one from a Registry by mode and never branches on the mode itself.
package generation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"quickgpt/internal/model"
)

type Mode string

const (
	ModeText  Mode = "text"
	ModeImage Mode = "image"
)

const (
	TextCost  = 1
	ImageCost = 2
)

type Request struct {
	Prompt  string
	Publish bool
}

type Generator interface {
	Mode() Mode
	Cost() int
	Generate(ctx context.Context, req Request) (model.Message, error)
}

type Registry struct {
	generators map[Mode]Generator
}

func NewRegistry(generators ...Generator) *Registry {
	r := &Registry{generators: make(map[Mode]Generator, len(generators))}
	for _, g := range generators {
		r.generators[g.Mode()] = g
	}
	return r
}

func (r *Registry) Get(mode Mode) (Generator, error) {
	g, ok := r.generators[mode]
	if !ok {
		return nil, fmt.Errorf("unknown generation mode %q", mode)
	}
	return g, nil
}

func (r *Registry) Modes() []Mode {
	modes := make([]Mode, 0, len(r.generators))
	for mode := range r.generators {
		modes = append(modes, mode)
	}
	sort.Slice(modes, func(i, j int) bool { return modes[i] < modes[j] })
	return modes
}

type clock func() time.Time
