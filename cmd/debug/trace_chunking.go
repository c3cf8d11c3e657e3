//go:build ignore

package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"doc-intel-be/pkg/rag/prompt"
	"doc-intel-be/pkg/utils"

	"github.com/joho/godotenv"
)

// Shows how a document body is split at the configured chunk size and
// overlap before embedding. Pass a file path to trace real content.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using system env")
	}

	chunkSize := 1500
	chunkOverlap := 200

	text := sampleText
	if len(os.Args) > 1 {
		data, err := os.ReadFile(os.Args[1])
		if err != nil {
			log.Fatal("Failed to read input file:", err)
		}
		text = string(data)
	}

	chunks := utils.SplitText(text, chunkSize, chunkOverlap)

	fmt.Println("=" + strings.Repeat("=", 79))
	fmt.Println("CHUNKING TRACE")
	fmt.Println("=" + strings.Repeat("=", 79))
	fmt.Printf("Input: %d runes, ChunkSize=%d, Overlap=%d\n", len([]rune(text)), chunkSize, chunkOverlap)
	fmt.Printf("Produced: %d chunks\n\n", len(chunks))

	for i, chunk := range chunks {
		runes := []rune(chunk)
		preview := chunk
		if len(runes) > 60 {
			preview = string(runes[:57]) + "..."
		}
		preview = strings.ReplaceAll(preview, "\n", " ")
		fmt.Printf("%-4d runes=%-6d tokens=%-6d %q\n",
			i, len(runes), prompt.CountTokens(chunk), preview)
	}

	fmt.Println()
	fmt.Println("Overlap check (tail of chunk N vs head of chunk N+1):")
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		curr := []rune(chunks[i])
		n := chunkOverlap
		if n > len(prev) {
			n = len(prev)
		}
		if n > len(curr) {
			n = len(curr)
		}
		shared := string(prev[len(prev)-n:]) == string(curr[:n])
		fmt.Printf("  %d -> %d: overlap intact = %v\n", i-1, i, shared)
	}
}

var sampleText = strings.Repeat(
	"Employees may work remotely up to three days per week with manager approval. "+
		"Expense reports are due within thirty days of purchase and require itemized receipts. "+
		"Security incidents must be reported to the on-call channel within one hour of discovery. ",
	12,
)
