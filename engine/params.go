package engine

import (
	"errors"
	"strings"
)

// DefaultModel is the model passed to the inference binary when none is given.
const DefaultModel = "models/bitnet_b1_58-3B/ggml-model-i2_s.gguf"

// ErrEmptyPrompt is returned by Validate when no prompt was supplied.
var ErrEmptyPrompt = errors.New("prompt is required")

// Params holds the invocation parameters for a single run. Numeric values
// are passed through to the inference binary untouched; it owns the valid
// ranges.
type Params struct {
	Model        string
	Prompt       string
	Threads      int
	NPredict     int
	CtxSize      int
	Temperature  float64
	Conversation bool
}

// DefaultParams returns the launcher defaults. Prompt is left empty.
func DefaultParams() Params {
	return Params{
		Model:       DefaultModel,
		Threads:     2,
		NPredict:    128,
		CtxSize:     2048,
		Temperature: 0.8,
	}
}

// Validate checks the only hard requirement: a non-empty prompt.
func (p Params) Validate() error {
	if strings.TrimSpace(p.Prompt) == "" {
		return ErrEmptyPrompt
	}
	return nil
}
