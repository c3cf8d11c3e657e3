package main

import (
	"context"
	"log"
	"time"

	"doc-intel-be/internal/config"
	"doc-intel-be/internal/dto"
	"doc-intel-be/internal/repository/implementation"
	"doc-intel-be/internal/service"
	"doc-intel-be/pkg/database"
	"doc-intel-be/pkg/embedding"
	"doc-intel-be/pkg/retry"

	"doc-intel-be/internal/pkg/logger"
)

// Seeds a small demo corpus through the real ingestion path so similarity
// search has data to work with. Needs a reachable embedding provider.
func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	// Keep progress output on the console; domain logs go to file only.
	sysLogger := logger.NewIsolatedLogger("logs/seed.log")

	var provider embedding.EmbeddingProvider
	timeout := time.Duration(cfg.Ai.ProviderTimeoutSec) * time.Second
	if cfg.Ai.EmbeddingProvider == "openai" {
		provider = embedding.NewOpenAIProvider(cfg.Ai.OpenAIBaseURL, cfg.Ai.OpenAIAPIKey, cfg.Ai.EmbeddingModel, timeout)
	} else if cfg.Ai.EmbeddingProvider == "gemini" {
		provider = embedding.NewGeminiProvider(cfg.Ai.GoogleGeminiKey, cfg.Ai.EmbeddingModel, timeout)
	} else {
		provider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel, timeout)
	}

	policy := retry.NewPolicy(cfg.Ai.MaxRetries, time.Duration(cfg.Ai.RetryBaseDelayMs)*time.Millisecond, 2)
	gateway := embedding.NewGateway(provider, policy, cfg.Ai.MaxEmbedChars, sysLogger)

	chunkRepo := implementation.NewChunkRepository(db)
	ingestService := service.NewIngestService(chunkRepo, gateway, nil, nil, cfg.Ai.ChunkSize, cfg.Ai.ChunkOverlap, sysLogger)

	ctx := context.Background()

	documents := []dto.IngestTextRequest{
		{
			ProjectId: "demo-project",
			SourceId:  "handbook-2024",
			FileName:  "employee_handbook.txt",
			Text: `Welcome to the company. Standard working hours are 9am to 5pm, Monday through Friday.
Remote work is available up to three days per week with manager approval.
Annual leave starts at 25 days and grows by one day per year of service, capped at 30.
Expense reports must be filed within 30 days of the purchase and require receipts above 25 EUR.`,
		},
		{
			ProjectId: "demo-project",
			SourceId:  "security-policy-v3",
			FileName:  "security_policy.txt",
			Text: `All laptops must use full-disk encryption and a password manager.
Production database access requires a hardware security key and an approved change ticket.
Incidents must be reported to the security team within one hour of discovery.
Shared credentials are prohibited; service accounts are issued per team by the platform group.`,
		},
		{
			ProjectId: "demo-project",
			SourceId:  "onboarding-guide",
			FileName:  "onboarding.txt",
			Text: `New engineers pair with a buddy for their first two weeks.
The development environment bootstraps with a single make target; database fixtures load automatically.
Deployment to staging happens on every merge to main, production releases ship on Tuesdays and Thursdays.`,
		},
	}

	log.Println("Seeding demo corpus...")
	for _, doc := range documents {
		res, err := ingestService.IngestText(ctx, &doc)
		if err != nil {
			log.Fatalf("Error: Failed to seed %s: %v", doc.SourceId, err)
		}
		log.Printf("Seeded %s: %d chunks", res.SourceId, res.ChunksIngested)
	}

	log.Println("✅ Success: Demo corpus seeded.")
}
