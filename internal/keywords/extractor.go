// Package keywords extracts diversified key phrases from free text by
// ranking n-gram candidates against the document embedding with Maximal
// Marginal Relevance.
package keywords

import (
	"context"
	"fmt"
	"strings"

	"resume-matcher/internal/vector"

	"go.uber.org/zap"
)

const (
	DefaultDiversity     = 0.7
	DefaultMaxCandidates = 300

	// ResumeTopN and JobTopN are the phrase budgets used by the matcher.
	ResumeTopN = 50
	JobTopN    = 30
)

// Embedder turns texts into vectors, one per input and in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type Extractor struct {
	embedder      Embedder
	diversity     float64
	maxCandidates int
	logger        *zap.Logger
}

func NewExtractor(embedder Embedder, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		embedder:      embedder,
		diversity:     DefaultDiversity,
		maxCandidates: DefaultMaxCandidates,
		logger:        logger,
	}
}

// Extract returns up to topN key phrases (one or two words) from text.
// Blank text yields an empty list and no error.
func (e *Extractor) Extract(ctx context.Context, text string, topN int) ([]string, error) {
	if strings.TrimSpace(text) == "" || topN <= 0 {
		return []string{}, nil
	}

	words := candidates(text, e.maxCandidates)
	if len(words) == 0 {
		return []string{}, nil
	}

	vecs, err := e.embedder.Embed(ctx, append([]string{text}, words...))
	if err != nil {
		return nil, fmt.Errorf("embed keyword candidates: %w", err)
	}
	if len(vecs) != len(words)+1 {
		return nil, fmt.Errorf("embed keyword candidates: got %d vectors for %d inputs", len(vecs), len(words)+1)
	}

	idx := mmr(vecs[0], vecs[1:], topN, e.diversity)
	out := make([]string, len(idx))
	for i, k := range idx {
		out[i] = words[k]
	}

	e.logger.Debug("keywords extracted",
		zap.Int("candidates", len(words)),
		zap.Int("selected", len(out)),
	)
	return out, nil
}

// mmr selects up to topN candidate indices balancing relevance to doc
// against redundancy with already selected candidates.
func mmr(doc []float32, cands [][]float32, topN int, diversity float64) []int {
	if len(cands) == 0 {
		return nil
	}

	docSim := make([]float64, len(cands))
	best := 0
	for i, c := range cands {
		docSim[i] = vector.Cosine(c, doc)
		if docSim[i] > docSim[best] {
			best = i
		}
	}
	pairSim := vector.Matrix(cands, cands)

	selected := []int{best}
	remaining := make([]int, 0, len(cands)-1)
	for i := range cands {
		if i != best {
			remaining = append(remaining, i)
		}
	}

	n := topN - 1
	if len(cands)-1 < n {
		n = len(cands) - 1
	}
	for step := 0; step < n; step++ {
		pick, pickScore := -1, 0.0
		for pos, c := range remaining {
			redundancy := pairSim[c][selected[0]]
			for _, s := range selected[1:] {
				if pairSim[c][s] > redundancy {
					redundancy = pairSim[c][s]
				}
			}
			score := (1-diversity)*docSim[c] - diversity*redundancy
			if pick == -1 || score > pickScore {
				pick, pickScore = pos, score
			}
		}
		selected = append(selected, remaining[pick])
		remaining = append(remaining[:pick], remaining[pick+1:]...)
	}
	return selected
}
