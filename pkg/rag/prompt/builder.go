package prompt

import (
	"fmt"
	"strings"
	"sync"

	"doc-intel-be/internal/constant"
	"doc-intel-be/internal/entity"
	"doc-intel-be/pkg/llm"

	"github.com/pkoukk/tiktoken-go"
)

// historyWindow is how many trailing messages get inlined into the prompt.
const historyWindow = 6

// Builder assembles the grounded chat prompt from ranked chunks and
// conversation history
type Builder struct {
	query    string
	included []entity.ScoredChunk
	history  []llm.Message
}

// NewBuilder creates a prompt builder. Chunks must arrive ranked best-first;
// the builder keeps the longest prefix whose formatted context fits within
// tokenBudget. The best chunk is always kept so an oversized single chunk
// cannot empty the context.
func NewBuilder(query string, chunks []entity.ScoredChunk, history []llm.Message, tokenBudget int) *Builder {
	return &Builder{
		query:    query,
		included: fitToBudget(chunks, tokenBudget),
		history:  history,
	}
}

// Included returns the chunks that survived the token budget. Citation
// numbers in the prompt are 1-based positions in this slice.
func (b *Builder) Included() []entity.ScoredChunk {
	return b.included
}

// Messages produces the chat payload: the system framing, the prior
// conversation as a second system message, and the user turn carrying
// numbered context plus the question.
func (b *Builder) Messages() []llm.Message {
	messages := []llm.Message{
		{Role: constant.ChatMessageRoleSystem, Content: constant.AnswerSystemPromptV1},
	}

	if historyText := b.historyBlock(); historyText != "" {
		messages = append(messages, llm.Message{
			Role:    constant.ChatMessageRoleSystem,
			Content: "Previous conversation:\n" + historyText,
		})
	}

	messages = append(messages, llm.Message{
		Role:    constant.ChatMessageRoleUser,
		Content: b.userTurn(),
	})

	return messages
}

func (b *Builder) userTurn() string {
	var prompt strings.Builder

	prompt.WriteString("Context from documents:\n")
	for i, chunk := range b.included {
		prompt.WriteString(FormatSource(i+1, chunk.Chunk))
		prompt.WriteString("\n")
	}

	prompt.WriteString("\nQuestion: ")
	prompt.WriteString(b.query)
	prompt.WriteString("\n\nPlease answer the question based on the context provided above. Cite sources by number.")

	return prompt.String()
}

func (b *Builder) historyBlock() string {
	history := b.history
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	parts := make([]string, 0, len(history))
	for _, msg := range history {
		parts = append(parts, strings.ToUpper(msg.Role)+": "+msg.Content)
	}
	return strings.Join(parts, "\n\n")
}

// FormatSource renders one context entry. Pages are optional; table chunks
// and text chunks read the same way.
func FormatSource(number int, chunk entity.Chunk) string {
	page := "N/A"
	if chunk.PageNumber != nil {
		page = fmt.Sprintf("%d", *chunk.PageNumber)
	}
	return fmt.Sprintf("[Source %d] %s (Page %s):\n%s\n", number, chunk.FileName, page, chunk.Text)
}

func fitToBudget(chunks []entity.ScoredChunk, tokenBudget int) []entity.ScoredChunk {
	if tokenBudget <= 0 || len(chunks) == 0 {
		return chunks
	}

	kept := make([]entity.ScoredChunk, 0, len(chunks))
	used := 0
	for i, chunk := range chunks {
		cost := CountTokens(FormatSource(i+1, chunk.Chunk))
		if used+cost > tokenBudget && len(kept) > 0 {
			break
		}
		kept = append(kept, chunk)
		used += cost
	}
	return kept
}

var (
	encoderOnce sync.Once
	encoder     *tiktoken.Tiktoken
)

// CountTokens measures text with the cl100k_base BPE, which tracks closely
// enough across backends for budget trimming. Falls back to a characters/4
// estimate when the encoding cannot be loaded.
func CountTokens(text string) int {
	encoderOnce.Do(func() {
		encoder, _ = tiktoken.GetEncoding("cl100k_base")
	})
	if encoder == nil {
		return len([]rune(text)) / 4
	}
	return len(encoder.Encode(text, nil, nil))
}
