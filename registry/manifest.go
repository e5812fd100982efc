package registry

import (
	"path/filepath"
	"strings"
	"time"
)

// Model describes a GGUF file found under the models directory.
type Model struct {
	Name         string
	Path         string
	Size         int64
	Quantization string
	ModifiedAt   time.Time
}

// quantization derives the quantization type from the converter's file
// naming, e.g. ggml-model-i2_s.gguf -> i2_s. Other names yield "".
func quantization(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	q, ok := strings.CutPrefix(stem, "ggml-model-")
	if !ok {
		return ""
	}
	return q
}
