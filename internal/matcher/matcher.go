// Package matcher scores how well a resume's key phrases cover the key
// phrases of a job description.
package matcher

import (
	"context"
	"fmt"
	"math"
	"strings"

	"resume-matcher/internal/keywords"
	"resume-matcher/internal/vector"

	"go.uber.org/zap"
)

// MatchThreshold is the minimum best similarity for a job phrase to count
// as matched. The comparison is inclusive.
const MatchThreshold = 0.5

// Extractor pulls key phrases out of free text.
type Extractor interface {
	Extract(ctx context.Context, text string, topN int) ([]string, error)
}

type Result struct {
	Score       int
	Matched     []string
	Missing     []string
	JobKeywords []string

	// Embeddings are kept for the explanation step.
	ResumeEmbeddings [][]float32
	JobEmbeddings    [][]float32
}

func emptyResult() *Result {
	return &Result{Matched: []string{}, Missing: []string{}, JobKeywords: []string{}}
}

type Matcher struct {
	extractor Extractor
	embedder  keywords.Embedder
	jobTopN   int
	logger    *zap.Logger
}

func New(extractor Extractor, embedder keywords.Embedder, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{
		extractor: extractor,
		embedder:  embedder,
		jobTopN:   keywords.JobTopN,
		logger:    logger,
	}
}

// Match extracts the job phrases from jobText and compares them with the
// resume phrases. Degenerate input yields a zero result, not an error.
func (m *Matcher) Match(ctx context.Context, resumeKeywords []string, jobText string) (*Result, error) {
	if len(resumeKeywords) == 0 || strings.TrimSpace(jobText) == "" {
		return emptyResult(), nil
	}

	jobKeywords, err := m.extractor.Extract(ctx, jobText, m.jobTopN)
	if err != nil {
		return nil, fmt.Errorf("extract job keywords: %w", err)
	}
	if len(jobKeywords) == 0 {
		return emptyResult(), nil
	}

	resumeEmb, err := m.embed(ctx, resumeKeywords)
	if err != nil {
		return nil, fmt.Errorf("embed resume keywords: %w", err)
	}
	jobEmb, err := m.embed(ctx, jobKeywords)
	if err != nil {
		return nil, fmt.Errorf("embed job keywords: %w", err)
	}

	best := vector.ColumnMax(vector.Matrix(resumeEmb, jobEmb))
	res := &Result{
		Score:            Score(best),
		Matched:          []string{},
		Missing:          []string{},
		JobKeywords:      jobKeywords,
		ResumeEmbeddings: resumeEmb,
		JobEmbeddings:    jobEmb,
	}
	for i, kw := range jobKeywords {
		if best[i] >= MatchThreshold {
			res.Matched = append(res.Matched, kw)
		} else {
			res.Missing = append(res.Missing, kw)
		}
	}

	m.logger.Debug("resume matched",
		zap.Int("score", res.Score),
		zap.Int("matched", len(res.Matched)),
		zap.Int("missing", len(res.Missing)),
	)
	return res, nil
}

func (m *Matcher) embed(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := m.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("got %d vectors for %d inputs", len(vecs), len(texts))
	}
	return vecs, nil
}

// Score turns per-phrase best similarities into an integer percentage in
// [0, 100]. Halves round to even. No similarities scores 0.
func Score(best []float64) int {
	if len(best) == 0 {
		return 0
	}
	s := int(math.RoundToEven(vector.Mean(best) * 100))
	switch {
	case s < 0:
		return 0
	case s > 100:
		return 100
	}
	return s
}
