// Package explain attributes a match score to the individual job keywords
// with Shapley values and renders the result as a waterfall chart.
package explain

import (
	"context"
	"encoding/base64"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

const (
	// ExactLimit is the largest keyword count explained by full coalition
	// enumeration. Larger sets are sampled.
	ExactLimit = 10

	DefaultSamples = 512
)

// Rasterizer renders an HTML page to a PNG of the given viewport size.
type Rasterizer interface {
	RenderPNG(ctx context.Context, html string, width, height int) ([]byte, error)
}

type Options struct {
	Samples int
	// Seed fixes the sampling order. Zero seeds from the clock.
	Seed int64
}

type Explainer struct {
	rasterizer Rasterizer
	samples    int
	seed       int64
	logger     *zap.Logger
}

func New(r Rasterizer, opts Options, logger *zap.Logger) *Explainer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Samples <= 0 {
		opts.Samples = DefaultSamples
	}
	return &Explainer{rasterizer: r, samples: opts.Samples, seed: opts.Seed, logger: logger}
}

// Attribute computes each job keyword's contribution to the match score,
// starting from the empty coalition. It returns nil when there is nothing
// meaningful to explain.
func (e *Explainer) Attribute(resumeEmb [][]float32, jobKeywords []string, jobEmb [][]float32) *Attribution {
	n := len(jobKeywords)
	if n < 2 || len(resumeEmb) == 0 || len(jobEmb) != n {
		return nil
	}

	v := coverageValue(resumeEmb, jobEmb)
	var phi []float64
	if n <= ExactLimit {
		phi = exactShapley(n, v)
	} else {
		seed := e.seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		phi = sampledShapley(n, v, e.samples, rand.New(rand.NewSource(seed)))
	}

	all := make([]bool, n)
	for i := range all {
		all[i] = true
	}
	att := &Attribution{
		Base:          v(make([]bool, n)),
		Final:         v(all),
		Contributions: make([]Contribution, n),
	}
	for i, kw := range jobKeywords {
		att.Contributions[i] = Contribution{Feature: kw, Value: phi[i]}
	}
	return att
}

// Explain renders the attribution chart as a base64 PNG. An empty string
// with a nil error means no chart applies to the input.
func (e *Explainer) Explain(ctx context.Context, resumeEmb [][]float32, jobKeywords []string, jobEmb [][]float32) (string, error) {
	att := e.Attribute(resumeEmb, jobKeywords, jobEmb)
	if att == nil {
		e.logger.Debug("explanation skipped", zap.Int("job_keywords", len(jobKeywords)), zap.Int("resume_phrases", len(resumeEmb)))
		return "", nil
	}
	if e.rasterizer == nil {
		return "", fmt.Errorf("render explanation: no rasterizer configured")
	}

	png, err := e.rasterizer.RenderPNG(ctx, att.HTML(), att.ChartWidth(), att.ChartHeight())
	if err != nil {
		return "", fmt.Errorf("render explanation: %w", err)
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
