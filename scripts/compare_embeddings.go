//go:build ignore

package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"doc-intel-be/internal/config"
	"doc-intel-be/pkg/embedding"
)

// CosineSimilarity calculates similarity between two vectors
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0.0
	}
	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

func main() {
	cfg := config.Load()
	ctx := context.Background()
	timeout := time.Duration(cfg.Ai.ProviderTimeoutSec) * time.Second

	// 1. Initialize Providers
	fmt.Println("--- Initializing Providers ---")
	providers := map[string]embedding.EmbeddingProvider{
		"OLLAMA": embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel, timeout),
	}
	if cfg.Ai.GoogleGeminiKey != "" {
		providers["GEMINI"] = embedding.NewGeminiProvider(cfg.Ai.GoogleGeminiKey, "text-embedding-004", timeout)
	}

	// 2. Define Test Cases
	doc := "Remote work is allowed up to three days per week with manager approval."
	similarQuery := "How many days can I work from home each week?"
	unrelatedQuery := "What is the quarterly revenue forecast?"

	fmt.Println("\n--- Generating Embeddings ---")

	generate := func(name string, p embedding.EmbeddingProvider) (d, s, u []float32) {
		fmt.Printf("\n[%s] Generating...\n", name)

		vd, err := p.Generate(ctx, doc, embedding.TaskTypeDocument)
		if err != nil {
			log.Printf("Error %s (document): %v", name, err)
			return nil, nil, nil
		}
		fmt.Printf("[%s] Dimensions: %d\n", name, len(vd.Embedding.Values))

		vs, err := p.Generate(ctx, similarQuery, embedding.TaskTypeQuery)
		if err != nil {
			log.Printf("Error %s (similar query): %v", name, err)
			return nil, nil, nil
		}

		vu, err := p.Generate(ctx, unrelatedQuery, embedding.TaskTypeQuery)
		if err != nil {
			log.Printf("Error %s (unrelated query): %v", name, err)
			return nil, nil, nil
		}

		return vd.Embedding.Values, vs.Embedding.Values, vu.Embedding.Values
	}

	// 3. Compare Similarity per provider
	fmt.Println("\n--- Semantic Similarity Comparison ---")
	fmt.Println("(Higher is better, 1.0 = identical)")

	for name, p := range providers {
		d, s, u := generate(name, p)
		if d == nil || s == nil || u == nil {
			continue
		}
		fmt.Printf("\n[%s]\n", name)
		fmt.Printf("Similarity (document vs on-topic query):  %.4f\n", CosineSimilarity(d, s))
		fmt.Printf("Similarity (document vs unrelated query): %.4f\n", CosineSimilarity(d, u))
	}

	fmt.Println("\n--- Conclusion ---")
	fmt.Println("The on-topic query should score clearly above the unrelated one; if not, retrieval quality will suffer.")
}
