package ai

import (
	"context"
	_ "embed"
	"strings"

	"go.uber.org/zap"
)

const (
	FeedbackNotConfigured = "LLM not configured. Please check your API key."
	FeedbackEmptyInput    = "Resume or Job Description was empty, could not generate feedback."
	feedbackErrorPrefix   = "Could not generate AI feedback. Error: "
)

//go:embed prompt.md
var promptTemplate string

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Feedback asks the LLM for an ATS-style review of a resume. It never
// fails: problems are reported in the returned text.
type Feedback struct {
	generator contentGenerator
	logger    *zap.Logger
	observe   func(outcome string)
}

// NewFeedback accepts a nil generator, which yields the not-configured
// message for every request.
func NewFeedback(generator contentGenerator, logger *zap.Logger) *Feedback {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feedback{generator: generator, logger: logger, observe: func(string) {}}
}

// WithObserver registers a callback receiving the outcome of every call:
// "ok", "error", "skipped" or "unconfigured".
func (f *Feedback) WithObserver(fn func(outcome string)) *Feedback {
	if fn != nil {
		f.observe = fn
	}
	return f
}

func buildPrompt(resumeText, jobText string) string {
	r := strings.NewReplacer("{{job}}", jobText, "{{resume}}", resumeText)
	return r.Replace(promptTemplate)
}

func (f *Feedback) Generate(ctx context.Context, resumeText, jobText string) string {
	if f.generator == nil {
		f.observe("unconfigured")
		return FeedbackNotConfigured
	}
	if strings.TrimSpace(resumeText) == "" || strings.TrimSpace(jobText) == "" {
		f.observe("skipped")
		return FeedbackEmptyInput
	}

	text, err := f.generator.GenerateContent(ctx, buildPrompt(resumeText, jobText))
	if err != nil {
		f.logger.Warn("feedback generation failed", zap.Error(err))
		f.observe("error")
		return feedbackErrorPrefix + err.Error()
	}
	f.observe("ok")
	return text
}
