package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/whereismy/whereismy/internal/model"
	"github.com/whereismy/whereismy/internal/vector"
)

// fakeEmbeddingServer mimics the /embeddings route of an OpenAI-compatible
// endpoint, returning vectors of the given width.
func fakeEmbeddingServer(t *testing.T, dim int, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		emb := make([]float32, dim)
		for i := range emb {
			emb[i] = float32(i) / float32(dim)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data": []map[string]any{
				{"object": "embedding", "index": 0, "embedding": emb},
			},
			"model": "test-model",
		})
	}))
}

func TestEmbed(t *testing.T) {
	server := fakeEmbeddingServer(t, vector.Dim, nil)
	t.Cleanup(server.Close)

	client := NewClient(Config{BaseURL: server.URL, Model: "test-model"})

	v, err := client.Embed(context.Background(), "red leather wallet")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(v) != vector.Dim {
		t.Errorf("expected %d dimensions, got %d", vector.Dim, len(v))
	}

	// Same input, same output.
	again, err := client.Embed(context.Background(), "red leather wallet")
	if err != nil {
		t.Fatalf("Embed (again): %v", err)
	}
	for i := range v {
		if v[i] != again[i] {
			t.Fatal("expected deterministic embeddings for identical input")
		}
	}
}

func TestEmbedRejectsWrongDimension(t *testing.T) {
	server := fakeEmbeddingServer(t, 128, nil)
	t.Cleanup(server.Close)

	client := NewClient(Config{BaseURL: server.URL, Model: "test-model"})

	_, err := client.Embed(context.Background(), "anything")
	if !errors.Is(err, model.ErrEmbedding) {
		t.Errorf("expected embedding error for wrong dimension, got %v", err)
	}
}

func TestEmbedRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		emb := make([]float32, vector.Dim)
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   []map[string]any{{"object": "embedding", "index": 0, "embedding": emb}},
			"model":  "test-model",
		})
	}))
	t.Cleanup(server.Close)

	client := NewClient(Config{BaseURL: server.URL, Model: "test-model", MaxRetries: 2})

	if _, err := client.Embed(context.Background(), "flaky"); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

func TestProbeFailsWhenEndpointDown(t *testing.T) {
	server := fakeEmbeddingServer(t, vector.Dim, nil)
	server.Close() // unreachable from the start

	client := NewClient(Config{
		BaseURL:    server.URL,
		Model:      "test-model",
		MaxRetries: 1,
		Timeout:    2 * time.Second,
	})

	if err := client.Probe(context.Background()); err == nil {
		t.Error("expected probe to fail against a closed endpoint")
	}
}
