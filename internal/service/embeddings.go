package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"egile/internal/model"
)

// EmbeddingStore is the slice of the catalog backend the embedding pipeline
// needs. Only the Postgres repository implements it; the memory backend has
// no vector column and the pipeline simply stays unwired there.
type EmbeddingStore interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	BatchUpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string)
	VectorSearchProducts(ctx context.Context, queryEmbedding []float32, limit int) ([]model.Product, error)
}

// EmbeddingService maintains product embeddings and serves semantic catalog
// search over them.
type EmbeddingService struct {
	ai         AIClient
	store      EmbeddingStore
	batchSize  int
	dimensions int
}

// NewEmbeddingService creates the embedding pipeline.
func NewEmbeddingService(ai AIClient, store EmbeddingStore, batchSize, dimensions int) *EmbeddingService {
	if batchSize <= 0 {
		batchSize = 100
	}
	if dimensions <= 0 {
		dimensions = 1536
	}
	return &EmbeddingService{
		ai:         ai,
		store:      store,
		batchSize:  batchSize,
		dimensions: dimensions,
	}
}

// Dimensions returns the expected embedding vector size.
func (s *EmbeddingService) Dimensions() int { return s.dimensions }

// embeddingText is the canonical text a product is embedded from.
func embeddingText(p model.Product) string {
	parts := []string{p.Name}
	if p.Description != "" {
		parts = append(parts, p.Description)
	}
	if p.Category != "" {
		parts = append(parts, p.Category)
	}
	return strings.Join(parts, ". ")
}

// ReindexProducts recomputes embeddings for the whole catalog in batches.
func (s *EmbeddingService) ReindexProducts(ctx context.Context) (*model.EmbeddingBatchResponse, error) {
	if s.ai == nil || !s.ai.IsEnabled() {
		return nil, fmt.Errorf("embedding provider is not configured")
	}

	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	resp := &model.EmbeddingBatchResponse{}
	for start := 0; start < len(products); start += s.batchSize {
		end := start + s.batchSize
		if end > len(products) {
			end = len(products)
		}
		batch := products[start:end]

		texts := make([]string, len(batch))
		for i, p := range batch {
			texts[i] = embeddingText(p)
		}

		vectors, err := s.ai.CreateEmbeddings(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embedding batch starting at %d failed: %w", start, err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("embedding batch starting at %d: got %d vectors for %d texts", start, len(vectors), len(batch))
		}

		items := make([]model.EmbeddingItem, len(batch))
		for i, p := range batch {
			items[i] = model.EmbeddingItem{
				ProductID: p.ID,
				Embedding: vectors[i],
				Text:      texts[i],
			}
		}

		ok, errs := s.store.BatchUpdateEmbeddings(ctx, items)
		resp.Success += ok
		resp.Failed += len(items) - ok
		resp.Errors = append(resp.Errors, errs...)
	}

	log.Printf("✅ Reindexed %d product embedding(s), %d failed", resp.Success, resp.Failed)
	return resp, nil
}

// UpdateEmbeddings stores caller-supplied vectors after checking their
// dimensions.
func (s *EmbeddingService) UpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (*model.EmbeddingBatchResponse, error) {
	for i, item := range items {
		if len(item.Embedding) != s.dimensions {
			return nil, fmt.Errorf("invalid embedding dimension at index %d: got %d, expected %d",
				i, len(item.Embedding), s.dimensions)
		}
	}
	ok, errs := s.store.BatchUpdateEmbeddings(ctx, items)
	return &model.EmbeddingBatchResponse{
		Success: ok,
		Failed:  len(items) - ok,
		Errors:  errs,
	}, nil
}

// SemanticSearch embeds the query and ranks products by vector similarity.
func (s *EmbeddingService) SemanticSearch(ctx context.Context, query string, limit int) ([]model.Product, error) {
	if s.ai == nil || !s.ai.IsEnabled() {
		return nil, fmt.Errorf("embedding provider is not configured")
	}
	if limit <= 0 {
		limit = 10
	}
	vectors, err := s.ai.CreateEmbeddings(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("got %d vectors for one query", len(vectors))
	}
	return s.store.VectorSearchProducts(ctx, vectors[0], limit)
}
