package ai

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"resume-matcher/internal/vector"
)

const DefaultHashingDims = 512

// HashingEmbedder maps text to a fixed-size vector by hashing character
// trigrams of every word (with boundary markers) into signed buckets.
// Texts sharing words or word stems land close together, which is enough
// for keyword overlap scoring without a network model.
type HashingEmbedder struct {
	dims int
}

func NewHashingEmbedder(dims int) *HashingEmbedder {
	if dims <= 0 {
		dims = DefaultHashingDims
	}
	return &HashingEmbedder{dims: dims}
}

func (h *HashingEmbedder) Name() string {
	return fmt.Sprintf("hashing/%d", h.dims)
}

func (h *HashingEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = h.vector(t)
	}
	return out, nil
}

func (h *HashingEmbedder) vector(text string) []float32 {
	v := make([]float32, h.dims)
	for _, word := range strings.Fields(strings.ToLower(norm.NFKC.String(text))) {
		h.add(v, "w:"+word, 2)
		runes := []rune("<" + word + ">")
		for i := 0; i+3 <= len(runes); i++ {
			h.add(v, string(runes[i:i+3]), 1)
		}
	}
	vector.Normalize(v)
	return v
}

func (h *HashingEmbedder) add(v []float32, feature string, weight float32) {
	f := fnv.New64a()
	_, _ = f.Write([]byte(feature))
	sum := f.Sum64()
	idx := int(sum % uint64(h.dims))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	v[idx] += weight
}
