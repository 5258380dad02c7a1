package usecase

import (
	"context"
	"fmt"
	"time"

	"resume-matcher/internal/domain"
	"resume-matcher/internal/keywords"
	"resume-matcher/internal/logger"
	"resume-matcher/internal/matcher"
	"resume-matcher/internal/metrics"

	"go.uber.org/zap"
)

// DegradedFeedback replaces the LLM narrative when analysis fails.
const DegradedFeedback = "Error during analysis. Please check server logs for details."

// logPreview caps free text copied into log fields.
const logPreview = 200

type TextExtractor func(filename string, content []byte) (string, error)

type KeywordExtractor interface {
	Extract(ctx context.Context, text string, topN int) ([]string, error)
}

type Matcher interface {
	Match(ctx context.Context, resumeKeywords []string, jobText string) (*matcher.Result, error)
}

type FeedbackGenerator interface {
	Generate(ctx context.Context, resumeText, jobText string) string
}

type Explainer interface {
	Explain(ctx context.Context, resumeEmb [][]float32, jobKeywords []string, jobEmb [][]float32) (string, error)
}

// Analyzer runs the resume analysis stages in order: text, resume keywords,
// match, feedback, explanation.
type Analyzer struct {
	extract   TextExtractor
	keywords  KeywordExtractor
	matcher   Matcher
	feedback  FeedbackGenerator
	explainer Explainer
	logger    *zap.Logger
}

// NewAnalyzer accepts a nil explainer, in which case no chart is produced.
func NewAnalyzer(extract TextExtractor, kw KeywordExtractor, m Matcher, fb FeedbackGenerator, ex Explainer, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{extract: extract, keywords: kw, matcher: m, feedback: fb, explainer: ex, logger: logger}
}

// Analyze scores a resume against job. It never fails: any stage error
// yields a degraded analysis and is logged.
func (a *Analyzer) Analyze(ctx context.Context, filename string, content []byte, job *domain.Job) *domain.Analysis {
	start := time.Now()
	log := a.logger.With(zap.Int64("job_id", job.ID), zap.String("resume", filename))

	res, err := a.run(ctx, filename, content, job, log)
	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		log.Error("resume analysis failed", zap.String("error", logger.Preview(err.Error(), logPreview)))
		metrics.AnalysisOutcomes.WithLabelValues("degraded").Inc()
		return Degraded()
	}

	metrics.AnalysisOutcomes.WithLabelValues("ok").Inc()
	metrics.MatchScore.Observe(float64(res.Score))
	log.Info("resume analysed",
		zap.Int("score", res.Score),
		zap.Int("matched", len(res.Matched)),
		zap.Int("missing", len(res.Missing)),
		zap.Bool("chart", res.ChartBase64 != ""),
		zap.String("feedback", logger.Preview(res.Feedback, logPreview)),
		zap.Duration("took", time.Since(start)),
	)
	return res
}

func (a *Analyzer) run(ctx context.Context, filename string, content []byte, job *domain.Job, log *zap.Logger) (*domain.Analysis, error) {
	text, err := a.extract(filename, content)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	log.Debug("stage done", zap.String("stage", "extract"), zap.Int("chars", len(text)))

	resumeKeywords, err := a.keywords.Extract(ctx, text, keywords.ResumeTopN)
	if err != nil {
		return nil, fmt.Errorf("resume keywords: %w", err)
	}
	log.Debug("stage done", zap.String("stage", "keywords"), zap.Int("count", len(resumeKeywords)))

	jobText := job.MatchText()
	match, err := a.matcher.Match(ctx, resumeKeywords, jobText)
	if err != nil {
		return nil, fmt.Errorf("match: %w", err)
	}
	log.Debug("stage done", zap.String("stage", "match"), zap.Int("score", match.Score))

	out := &domain.Analysis{
		Score:    match.Score,
		Matched:  match.Matched,
		Missing:  match.Missing,
		Feedback: a.feedback.Generate(ctx, text, jobText),
	}

	if a.explainer != nil {
		chart, err := a.explainer.Explain(ctx, match.ResumeEmbeddings, match.JobKeywords, match.JobEmbeddings)
		if err != nil {
			return nil, fmt.Errorf("explain: %w", err)
		}
		out.ChartBase64 = chart
	}
	return out, nil
}

// Degraded is the analysis stored when the pipeline fails.
func Degraded() *domain.Analysis {
	return &domain.Analysis{
		Score:    0,
		Matched:  []string{},
		Missing:  []string{},
		Feedback: DegradedFeedback,
		Degraded: true,
	}
}
