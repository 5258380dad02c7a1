package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"resume-matcher/internal/domain"
	"resume-matcher/internal/matcher"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubKeywords struct {
	out  []string
	err  error
	topN int
}

func (s *stubKeywords) Extract(_ context.Context, _ string, topN int) ([]string, error) {
	s.topN = topN
	return s.out, s.err
}

type stubMatcher struct {
	res     *matcher.Result
	err     error
	jobText string
}

func (s *stubMatcher) Match(_ context.Context, _ []string, jobText string) (*matcher.Result, error) {
	s.jobText = jobText
	return s.res, s.err
}

type stubFeedback struct{ resume, job string }

func (s *stubFeedback) Generate(_ context.Context, resume, job string) string {
	s.resume, s.job = resume, job
	return "looks good"
}

type stubExplainer struct {
	chart string
	err   error
}

func (s *stubExplainer) Explain(context.Context, [][]float32, []string, [][]float32) (string, error) {
	return s.chart, s.err
}

func textOf(s string) TextExtractor {
	return func(string, []byte) (string, error) { return s, nil }
}

func testJob() *domain.Job {
	return &domain.Job{ID: 7, Description: "Go backend role", RequiredSkills: "go, sql"}
}

func TestAnalyzeHappyPath(t *testing.T) {
	kw := &stubKeywords{out: []string{"go"}}
	m := &stubMatcher{res: &matcher.Result{Score: 64, Matched: []string{"go"}, Missing: []string{"sql"}, JobKeywords: []string{"go", "sql"}}}
	fb := &stubFeedback{}
	a := NewAnalyzer(textOf("resume text"), kw, m, fb, &stubExplainer{chart: "iVBOR"}, nil)

	res := a.Analyze(context.Background(), "cv.pdf", []byte("%PDF"), testJob())

	assert.False(t, res.Degraded)
	assert.Equal(t, 64, res.Score)
	assert.Equal(t, []string{"go"}, res.Matched)
	assert.Equal(t, []string{"sql"}, res.Missing)
	assert.Equal(t, "looks good", res.Feedback)
	assert.Equal(t, "iVBOR", res.ChartBase64)

	assert.Equal(t, 50, kw.topN)
	assert.Equal(t, "Go backend role go, sql", m.jobText)
	assert.Equal(t, "resume text", fb.resume)
	assert.Equal(t, "Go backend role go, sql", fb.job)
}

func TestAnalyzeWithoutExplainer(t *testing.T) {
	m := &stubMatcher{res: &matcher.Result{Score: 10, Matched: []string{}, Missing: []string{"x"}}}
	a := NewAnalyzer(textOf("t"), &stubKeywords{}, m, &stubFeedback{}, nil, nil)

	res := a.Analyze(context.Background(), "cv.pdf", nil, testJob())
	assert.Equal(t, 10, res.Score)
	assert.Empty(t, res.ChartBase64)
}

func TestAnalyzeDegrades(t *testing.T) {
	okMatch := &matcher.Result{Score: 90, Matched: []string{"go"}, Missing: []string{}}
	boom := errors.New("boom")

	tests := []struct {
		name    string
		extract TextExtractor
		kw      *stubKeywords
		m       *stubMatcher
		ex      Explainer
	}{
		{
			name:    "extraction",
			extract: func(string, []byte) (string, error) { return "", boom },
			kw:      &stubKeywords{}, m: &stubMatcher{res: okMatch},
		},
		{name: "keywords", extract: textOf("t"), kw: &stubKeywords{err: boom}, m: &stubMatcher{res: okMatch}},
		{name: "embedding", extract: textOf("t"), kw: &stubKeywords{}, m: &stubMatcher{err: boom}},
		{name: "chart", extract: textOf("t"), kw: &stubKeywords{}, m: &stubMatcher{res: okMatch}, ex: &stubExplainer{err: boom}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAnalyzer(tt.extract, tt.kw, tt.m, &stubFeedback{}, tt.ex, nil)
			res := a.Analyze(context.Background(), "cv.pdf", nil, testJob())

			require.True(t, res.Degraded)
			assert.Zero(t, res.Score)
			assert.Equal(t, []string{}, res.Matched)
			assert.Equal(t, []string{}, res.Missing)
			assert.Equal(t, DegradedFeedback, res.Feedback)
			assert.Empty(t, res.ChartBase64)
		})
	}
}

func TestAnalyzeLogsPreviews(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	long := strings.Repeat("stream  corrupt\n", 100)
	failing := func(string, []byte) (string, error) { return "", errors.New(long) }

	a := NewAnalyzer(failing, &stubKeywords{}, &stubMatcher{}, &stubFeedback{}, nil, zap.New(core))
	a.Analyze(context.Background(), "cv.pdf", nil, testJob())

	entries := logs.FilterMessage("resume analysis failed").All()
	require.Len(t, entries, 1)
	msg := entries[0].ContextMap()["error"].(string)
	assert.NotContains(t, msg, "\n")
	assert.True(t, strings.HasPrefix(msg, "extract text: stream corrupt"))
	assert.True(t, strings.HasSuffix(msg, "..."))
	assert.LessOrEqual(t, len([]rune(msg)), logPreview+3)

	m := &stubMatcher{res: &matcher.Result{Score: 50, Matched: []string{}, Missing: []string{}}}
	a = NewAnalyzer(textOf("t"), &stubKeywords{}, m, &stubFeedback{}, nil, zap.New(core))
	a.Analyze(context.Background(), "cv.pdf", nil, testJob())

	entries = logs.FilterMessage("resume analysed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "looks good", entries[0].ContextMap()["feedback"])
}
