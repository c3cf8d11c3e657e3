package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"doc-intel-be/pkg/events"
	pktNats "doc-intel-be/pkg/nats"

	"github.com/joho/godotenv"
)

// Tails the document event stream. Useful for checking what downstream
// consumers will actually see after an ingest or delete.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using system env")
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	subject := "doc.events.>"
	if len(os.Args) > 1 {
		subject = os.Args[1]
	}

	sub, err := pktNats.NewSubscriber(natsURL)
	if err != nil {
		log.Fatal("Failed to connect subscriber:", err)
	}
	defer sub.Close()

	err = sub.Subscribe(subject, "trace-events", func(ctx context.Context, event events.Event) error {
		fmt.Printf("[%s] %s\n", event.Timestamp().Format("15:04:05"), event.EventType())
		for k, v := range event.Payload() {
			fmt.Printf("    %s: %v\n", k, v)
		}
		return nil
	})
	if err != nil {
		log.Fatal("Failed to subscribe:", err)
	}

	log.Printf("Tailing %s on %s. Ctrl+C to stop.", subject, natsURL)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}
