package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"doc-intel-be/internal/repository/implementation"
	"doc-intel-be/pkg/database"
	"doc-intel-be/pkg/embedding"
	"doc-intel-be/pkg/rag/score"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("DB_CONNECTION_STRING not set")
	}

	// Initialize embedding provider (Ollama - local)
	ollamaBaseURL := os.Getenv("OLLAMA_BASE_URL")
	if ollamaBaseURL == "" {
		ollamaBaseURL = "http://localhost:11434"
	}
	ollamaModel := os.Getenv("EMBEDDING_MODEL")
	if ollamaModel == "" {
		ollamaModel = "nomic-embed-text"
	}
	embeddingProvider := embedding.NewOllamaProvider(ollamaBaseURL, ollamaModel, 60*time.Second)

	// Connect to DB
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Failed to connect to DB:", err)
	}

	chunkRepo := implementation.NewChunkRepository(db)

	// === CONFIGURATION ===
	projectID := "smoke-test"
	if len(os.Args) > 1 {
		projectID = os.Args[1]
	}

	// === THRESHOLDS TO TEST ===
	// Similarity is 1 - distance/2, so 0.5 means orthogonal vectors.
	thresholds := []float64{0.75, 0.70, 0.65, 0.60, 0.55, 0.50}

	// === TEST QUERIES ===
	queries := []string{
		"What is the remote work policy?",
		"vacation days allowance",
		"expense reimbursement process",
		"security incident reporting",
	}
	if len(os.Args) > 2 {
		queries = []string{strings.Join(os.Args[2:], " ")}
	}

	ctx := context.Background()

	fmt.Println("=" + strings.Repeat("=", 79))
	fmt.Println("RAG RETRIEVAL DIAGNOSTIC TOOL")
	fmt.Println("=" + strings.Repeat("=", 79))
	fmt.Printf("Project ID: %s\n", projectID)
	fmt.Println()

	total, err := chunkRepo.CountByProject(ctx, projectID)
	if err != nil {
		log.Printf("Failed to count chunks: %v", err)
	} else {
		fmt.Printf("Total chunks in project: %d\n", total)
	}
	fmt.Println()

	// Run diagnostics for each query
	for _, query := range queries {
		fmt.Println("-" + strings.Repeat("-", 79))
		fmt.Printf("QUERY: \"%s\"\n", query)
		fmt.Println("-" + strings.Repeat("-", 79))

		// Generate embedding for query
		embeddingRes, err := embeddingProvider.Generate(ctx, query, embedding.TaskTypeQuery)
		if err != nil {
			log.Printf("Embedding failed for query '%s': %v", query, err)
			continue
		}

		// Pull more than the service default so weak tails are visible
		topK := 10
		matches, err := chunkRepo.SearchSimilar(ctx, projectID, embeddingRes.Embedding.Values, topK)
		if err != nil {
			log.Printf("Search failed: %v", err)
			continue
		}

		ranked := score.Rank(matches, 0)

		fmt.Printf("\nRaw Results (TopK=%d):\n", topK)
		fmt.Println()

		fmt.Printf("%-4s %-28s %-6s %-10s %-12s", "#", "File", "Idx", "Distance", "Similarity")
		for _, thresh := range thresholds {
			fmt.Printf(" @%.2f", thresh)
		}
		fmt.Println()
		fmt.Println(strings.Repeat("-", 110))

		distanceByID := make(map[string]float64, len(matches))
		for _, m := range matches {
			distanceByID[m.Chunk.Id.String()] = m.Distance
		}

		for i, res := range ranked {
			fileName := res.Chunk.FileName
			if fileName == "" {
				fileName = res.Chunk.SourceId
			}
			if len(fileName) > 26 {
				fileName = fileName[:23] + "..."
			}

			fmt.Printf("%-4d %-28s %-6d %-10.4f %-12.4f",
				i+1, fileName, res.Chunk.ChunkIndex,
				distanceByID[res.Chunk.Id.String()], res.Similarity)

			// Show pass/fail for each threshold
			for _, thresh := range thresholds {
				if res.Similarity >= thresh {
					fmt.Print("   Y  ")
				} else {
					fmt.Print("   -  ")
				}
			}
			fmt.Println()
		}
		fmt.Println()

		// Summary
		fmt.Println("Summary by Threshold:")
		for _, thresh := range thresholds {
			count := 0
			for _, res := range ranked {
				if res.Similarity >= thresh {
					count++
				}
			}
			fmt.Printf("  Threshold %.2f: %d chunks pass\n", thresh, count)
		}
		fmt.Println()
	}

	fmt.Println("=" + strings.Repeat("=", 79))
	fmt.Println("ANALYSIS COMPLETE")
	fmt.Println("=" + strings.Repeat("=", 79))
	fmt.Println()
	fmt.Println("Current System Configuration:")
	fmt.Println("  pkg/rag/score/scorer.go:")
	fmt.Println("    - Similarity:  1 - distance/2, clamped to [0, 1]")
	fmt.Println("    - Dedupe:      per chunk id, best score wins")
	fmt.Println("  internal/service/chat_service.go:")
	fmt.Println("    - TopK:        5 by default, request may set 1..20")
	fmt.Println()
	fmt.Println("Downstream Filters:")
	fmt.Println("  pkg/rag/prompt/builder.go:")
	fmt.Println("    - Token budget drops lowest-ranked chunks first")
	fmt.Println("    - Budget set by CONTEXT_TOKEN_BUDGET")
	fmt.Println()
	fmt.Println("Recommendations:")
	fmt.Println("  1. If relevant chunks rank low, check the embedding model matches ingestion")
	fmt.Println("  2. If TopK=5 excludes relevant chunks, raise top_k in the query request")
	fmt.Println("  3. If answers cite too little context, raise CONTEXT_TOKEN_BUDGET")
}
