package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"egile/internal/model"
)

// embeddingAI returns deterministic vectors of the requested dimension.
type embeddingAI struct {
	dims  int
	calls int
}

func (e *embeddingAI) AnalyzeIntent(ctx context.Context, message string) (*AIIntentResponse, error) {
	return nil, fmt.Errorf("not an intent client")
}

func (e *embeddingAI) AnalyzeIntentStream(ctx context.Context, message string, callback func(thinking, content string) error) (*AIIntentResponse, error) {
	return nil, fmt.Errorf("not an intent client")
}

func (e *embeddingAI) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, e.dims)
	}
	return out, nil
}

func (e *embeddingAI) IsEnabled() bool { return true }

// vectorStore records batch updates and serves a fixed vector search result.
type vectorStore struct {
	products []model.Product
	updated  []model.EmbeddingItem
}

func (v *vectorStore) ListProducts(ctx context.Context) ([]model.Product, error) {
	return v.products, nil
}

func (v *vectorStore) BatchUpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string) {
	v.updated = append(v.updated, items...)
	return len(items), nil
}

func (v *vectorStore) VectorSearchProducts(ctx context.Context, queryEmbedding []float32, limit int) ([]model.Product, error) {
	if limit < len(v.products) {
		return v.products[:limit], nil
	}
	return v.products, nil
}

func TestEmbeddingText(t *testing.T) {
	full := model.Product{Name: "Microphone Egile", Description: "Studio condenser", Category: "electronics"}
	if got := embeddingText(full); got != "Microphone Egile. Studio condenser. electronics" {
		t.Errorf("embeddingText = %q", got)
	}
	bare := model.Product{Name: "Coffee Mug"}
	if got := embeddingText(bare); got != "Coffee Mug" {
		t.Errorf("embeddingText = %q", got)
	}
}

func TestReindexProductsBatches(t *testing.T) {
	store := &vectorStore{}
	for i := 0; i < 5; i++ {
		store.products = append(store.products, model.Product{
			ID:   fmt.Sprintf("prod_%06d", i+1),
			Name: fmt.Sprintf("Product %d", i+1),
		})
	}
	ai := &embeddingAI{dims: 8}
	svc := NewEmbeddingService(ai, store, 2, 8)

	resp, err := svc.ReindexProducts(context.Background())
	if err != nil {
		t.Fatalf("ReindexProducts: %v", err)
	}
	if resp.Success != 5 || resp.Failed != 0 {
		t.Errorf("response = %+v", resp)
	}
	// 5 products at batch size 2 is 3 provider calls.
	if ai.calls != 3 {
		t.Errorf("provider called %d times, want 3", ai.calls)
	}
	if len(store.updated) != 5 || store.updated[0].ProductID != "prod_000001" {
		t.Errorf("updated = %+v", store.updated)
	}
}

func TestUpdateEmbeddingsValidatesDimensions(t *testing.T) {
	svc := NewEmbeddingService(&embeddingAI{dims: 4}, &vectorStore{}, 10, 4)

	_, err := svc.UpdateEmbeddings(context.Background(), []model.EmbeddingItem{
		{ProductID: "prod_000001", Embedding: make([]float32, 4)},
		{ProductID: "prod_000002", Embedding: make([]float32, 3)},
	})
	if err == nil {
		t.Fatal("short vector accepted")
	}
	if !strings.Contains(err.Error(), "index 1") {
		t.Errorf("error = %v, want the offending index", err)
	}
}

func TestSemanticSearch(t *testing.T) {
	store := &vectorStore{products: []model.Product{
		{ID: "prod_000001", Name: "Microphone Egile"},
		{ID: "prod_000002", Name: "Test Laptop"},
	}}
	svc := NewEmbeddingService(&embeddingAI{dims: 8}, store, 10, 8)

	products, err := svc.SemanticSearch(context.Background(), "studio recording gear", 1)
	if err != nil {
		t.Fatalf("SemanticSearch: %v", err)
	}
	if len(products) != 1 || products[0].ID != "prod_000001" {
		t.Errorf("products = %+v", products)
	}
}

func TestEmbeddingsRequireProvider(t *testing.T) {
	svc := NewEmbeddingService(nil, &vectorStore{}, 10, 8)

	if _, err := svc.ReindexProducts(context.Background()); err == nil {
		t.Error("reindex without a provider succeeded")
	}
	if _, err := svc.SemanticSearch(context.Background(), "anything", 5); err == nil {
		t.Error("semantic search without a provider succeeded")
	}
}
