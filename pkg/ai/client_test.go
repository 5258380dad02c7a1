package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

type fakeModels struct {
	genErrs  []error
	genText  string
	genCalls int

	embedCalls [][]string
	embedErr   error
	dims       int
}

func (f *fakeModels) GenerateContent(_ context.Context, _ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.genCalls++
	if len(f.genErrs) > 0 {
		err := f.genErrs[0]
		f.genErrs = f.genErrs[1:]
		return nil, err
	}
	if f.genText == "" {
		return &genai.GenerateContentResponse{}, nil
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: f.genText}, {Text: " tail"}}},
		}},
	}, nil
}

func (f *fakeModels) EmbedContent(_ context.Context, _ string, contents []*genai.Content, _ *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	texts := make([]string, len(contents))
	for i, c := range contents {
		texts[i] = c.Parts[0].Text
	}
	f.embedCalls = append(f.embedCalls, texts)
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	resp := &genai.EmbedContentResponse{}
	for range contents {
		resp.Embeddings = append(resp.Embeddings, &genai.ContentEmbedding{Values: make([]float32, f.dims)})
	}
	return resp, nil
}

func testClient(models modelsAPI, retries int) *Client {
	c := newClient(models, Options{MaxRetries: retries}, zap.NewNop())
	c.sleep = func(context.Context, time.Duration) error { return nil }
	return c
}

func TestGenerateContentJoinsParts(t *testing.T) {
	c := testClient(&fakeModels{genText: "summary"}, 0)

	out, err := c.GenerateContent(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "summary tail", out)
	assert.Equal(t, DefaultModel, c.Model())
}

func TestGenerateContentRetriesTransientErrors(t *testing.T) {
	m := &fakeModels{
		genText: "ok",
		genErrs: []error{genai.APIError{Code: http.StatusServiceUnavailable, Status: "UNAVAILABLE"}},
	}
	c := testClient(m, 2)

	_, err := c.GenerateContent(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, 2, m.genCalls)
}

func TestGenerateContentDoesNotRetryClientErrors(t *testing.T) {
	m := &fakeModels{genErrs: []error{genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT"}}}
	c := testClient(m, 3)

	_, err := c.GenerateContent(context.Background(), "prompt")
	require.Error(t, err)
	assert.Equal(t, 1, m.genCalls)
}

func TestGenerateContentStopsAfterRetries(t *testing.T) {
	tmp := genai.APIError{Code: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED"}
	m := &fakeModels{genErrs: []error{tmp, tmp, tmp, tmp}}
	c := testClient(m, 2)

	_, err := c.GenerateContent(context.Background(), "prompt")
	require.Error(t, err)
	assert.Equal(t, 3, m.genCalls)
}

func TestGenerateContentRejectsEmptyPrompt(t *testing.T) {
	m := &fakeModels{}
	_, err := testClient(m, 0).GenerateContent(context.Background(), "  ")
	require.Error(t, err)
	assert.Zero(t, m.genCalls)
}

func TestGenerateContentEmptyResponse(t *testing.T) {
	_, err := testClient(&fakeModels{}, 0).GenerateContent(context.Background(), "prompt")
	require.ErrorContains(t, err, "empty response")
}

func TestRetryable(t *testing.T) {
	assert.True(t, retryable(genai.APIError{Code: 500}))
	assert.True(t, retryable(&genai.APIError{Code: 429}))
	assert.True(t, retryable(fmt.Errorf("wrapped: %w", genai.APIError{Code: 503})))
	assert.False(t, retryable(genai.APIError{Code: 403}))
	assert.False(t, retryable(errors.New("plain")))
	assert.True(t, retryable(context.DeadlineExceeded))
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), Options{APIKey: " "}, nil)
	require.Error(t, err)
}

func TestGeminiEmbedderBatches(t *testing.T) {
	m := &fakeModels{dims: 4}
	e := NewGeminiEmbedder(testClient(m, 0))

	texts := make([]string, embedBatchSize+5)
	for i := range texts {
		texts[i] = fmt.Sprintf("t%d", i)
	}
	vecs, err := e.Embed(context.Background(), texts)
	require.NoError(t, err)

	assert.Len(t, vecs, len(texts))
	require.Len(t, m.embedCalls, 2)
	assert.Len(t, m.embedCalls[0], embedBatchSize)
	assert.Equal(t, []string{"t100", "t101", "t102", "t103", "t104"}, m.embedCalls[1])
	assert.Equal(t, "gemini/"+DefaultEmbeddingModel, e.Name())
}

func TestGeminiEmbedderError(t *testing.T) {
	m := &fakeModels{embedErr: errors.New("denied")}
	_, err := NewGeminiEmbedder(testClient(m, 0)).Embed(context.Background(), []string{"go"})
	require.ErrorContains(t, err, "denied")
}

func TestGeminiEmbedderRejectsEmptyVectors(t *testing.T) {
	m := &fakeModels{dims: 0}
	_, err := NewGeminiEmbedder(testClient(m, 0)).Embed(context.Background(), []string{"go", "sql"})
	require.ErrorContains(t, err, "empty embedding at 0")
}
