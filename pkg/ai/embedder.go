package ai

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// embedBatchSize is the Gemini limit on contents per embedding request.
const embedBatchSize = 100

// GeminiEmbedder embeds texts with the client's embedding model.
type GeminiEmbedder struct {
	client *Client
}

func NewGeminiEmbedder(client *Client) *GeminiEmbedder {
	return &GeminiEmbedder{client: client}
}

// Name identifies the embedding space, used to key cached vectors.
func (e *GeminiEmbedder) Name() string {
	return "gemini/" + e.client.embeddingModel
}

func (e *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := e.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (e *GeminiEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	var resp *genai.EmbedContentResponse
	err := e.client.withRetry(ctx, "embed", func(ctx context.Context) error {
		var err error
		resp, err = e.client.models.EmbedContent(ctx, e.client.embeddingModel, contents,
			&genai.EmbedContentConfig{TaskType: "SEMANTIC_SIMILARITY"})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if resp == nil || len(resp.Embeddings) != len(texts) {
		got := 0
		if resp != nil {
			got = len(resp.Embeddings)
		}
		return nil, fmt.Errorf("embed content: got %d embeddings for %d texts", got, len(texts))
	}

	vecs := make([][]float32, len(texts))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("embed content: empty embedding at %d", i)
		}
		vecs[i] = emb.Values
	}
	e.client.logger.Debug("texts embedded", zap.Int("count", len(texts)))
	return vecs, nil
}
