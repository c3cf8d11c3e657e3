package prompt

import (
	"fmt"
	"strings"
	"testing"

	"doc-intel-be/internal/constant"
	"doc-intel-be/internal/entity"
	"doc-intel-be/pkg/llm"
)

func scored(fileName, text string, page *int) entity.ScoredChunk {
	return entity.ScoredChunk{
		Chunk: entity.Chunk{
			FileName:   fileName,
			Text:       text,
			PageNumber: page,
		},
		Similarity: 0.9,
	}
}

func intPtr(v int) *int { return &v }

func TestFormatSource(t *testing.T) {
	tests := []struct {
		name   string
		number int
		chunk  entity.Chunk
		want   string
	}{
		{
			name:   "with page number",
			number: 1,
			chunk:  entity.Chunk{FileName: "report.pdf", PageNumber: intPtr(3), Text: "Alpha beta."},
			want:   "[Source 1] report.pdf (Page 3):\nAlpha beta.\n",
		},
		{
			name:   "without page number",
			number: 2,
			chunk:  entity.Chunk{FileName: "notes.txt", Text: "Gamma delta."},
			want:   "[Source 2] notes.txt (Page N/A):\nGamma delta.\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatSource(tt.number, tt.chunk)
			if got != tt.want {
				t.Errorf("FormatSource = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMessagesWithoutHistory(t *testing.T) {
	chunks := []entity.ScoredChunk{
		scored("handbook.pdf", "Remote work requires manager approval.", intPtr(12)),
	}

	builder := NewBuilder("What is the remote work policy?", chunks, nil, 0)
	messages := builder.Messages()

	if len(messages) != 2 {
		t.Fatalf("len(messages) = %d, want 2 (system + user)", len(messages))
	}

	if messages[0].Role != constant.ChatMessageRoleSystem {
		t.Errorf("messages[0].Role = %q, want system", messages[0].Role)
	}
	if messages[0].Content != constant.AnswerSystemPromptV1 {
		t.Errorf("messages[0] does not carry the answer system prompt")
	}

	user := messages[1]
	if user.Role != constant.ChatMessageRoleUser {
		t.Errorf("messages[1].Role = %q, want user", user.Role)
	}
	if !strings.HasPrefix(user.Content, "Context from documents:\n[Source 1] handbook.pdf (Page 12):\n") {
		t.Errorf("user turn does not open with the numbered context:\n%s", user.Content)
	}
	if !strings.Contains(user.Content, "\nQuestion: What is the remote work policy?\n") {
		t.Errorf("user turn does not carry the question:\n%s", user.Content)
	}
	if !strings.Contains(user.Content, "Cite sources by number.") {
		t.Errorf("user turn does not close with the citation instruction:\n%s", user.Content)
	}
}

func TestMessagesWithHistory(t *testing.T) {
	chunks := []entity.ScoredChunk{
		scored("handbook.pdf", "Vacation accrues at two days per month.", nil),
	}
	history := []llm.Message{
		{Role: constant.ChatMessageRoleUser, Content: "How much vacation do I get?"},
		{Role: constant.ChatMessageRoleAssistant, Content: "Two days per month [Source 1]."},
	}

	messages := NewBuilder("And when can I take it?", chunks, history, 0).Messages()

	if len(messages) != 3 {
		t.Fatalf("len(messages) = %d, want 3 (system + history + user)", len(messages))
	}

	block := messages[1]
	if block.Role != constant.ChatMessageRoleSystem {
		t.Errorf("history block role = %q, want system", block.Role)
	}
	if !strings.HasPrefix(block.Content, "Previous conversation:\n") {
		t.Errorf("history block prefix missing:\n%s", block.Content)
	}
	if !strings.Contains(block.Content, "USER: How much vacation do I get?") {
		t.Errorf("history block misses the user turn:\n%s", block.Content)
	}
	if !strings.Contains(block.Content, "ASSISTANT: Two days per month [Source 1].") {
		t.Errorf("history block misses the assistant turn:\n%s", block.Content)
	}
}

func TestHistoryBlockKeepsTrailingWindow(t *testing.T) {
	chunks := []entity.ScoredChunk{scored("a.txt", "Some context.", nil)}

	history := make([]llm.Message, 0, 8)
	for i := 1; i <= 8; i++ {
		role := constant.ChatMessageRoleUser
		if i%2 == 0 {
			role = constant.ChatMessageRoleAssistant
		}
		history = append(history, llm.Message{Role: role, Content: fmt.Sprintf("turn-%d", i)})
	}

	messages := NewBuilder("q", chunks, history, 0).Messages()
	if len(messages) != 3 {
		t.Fatalf("len(messages) = %d, want 3", len(messages))
	}
	block := messages[1].Content

	for i := 3; i <= 8; i++ {
		if !strings.Contains(block, fmt.Sprintf("turn-%d", i)) {
			t.Errorf("history block dropped turn-%d inside the window", i)
		}
	}
	for i := 1; i <= 2; i++ {
		if strings.Contains(block, fmt.Sprintf("turn-%d", i)) {
			t.Errorf("history block kept turn-%d outside the window", i)
		}
	}
}

func TestBudgetKeepsBestPrefix(t *testing.T) {
	chunks := []entity.ScoredChunk{
		scored("a.pdf", "The first chunk explains the primary topic at considerable length.", intPtr(1)),
		scored("b.pdf", "The second chunk continues with supporting detail and examples.", intPtr(2)),
		scored("c.pdf", "The third chunk closes the section with edge cases and caveats.", intPtr(3)),
	}

	t.Run("no budget keeps everything", func(t *testing.T) {
		b := NewBuilder("q", chunks, nil, 0)
		if got := len(b.Included()); got != 3 {
			t.Errorf("Included() = %d chunks, want 3", got)
		}
	})

	t.Run("generous budget keeps everything", func(t *testing.T) {
		b := NewBuilder("q", chunks, nil, 1_000_000)
		if got := len(b.Included()); got != 3 {
			t.Errorf("Included() = %d chunks, want 3", got)
		}
	})

	t.Run("tiny budget keeps the best chunk", func(t *testing.T) {
		b := NewBuilder("q", chunks, nil, 1)
		included := b.Included()
		if len(included) != 1 {
			t.Fatalf("Included() = %d chunks, want 1", len(included))
		}
		if included[0].Chunk.FileName != "a.pdf" {
			t.Errorf("kept chunk = %s, want the best-ranked a.pdf", included[0].Chunk.FileName)
		}
	})
}

func TestCitationNumbersFollowIncludedOrder(t *testing.T) {
	chunks := []entity.ScoredChunk{
		scored("first.pdf", "Alpha.", nil),
		scored("second.pdf", "Beta.", nil),
	}

	builder := NewBuilder("q", chunks, nil, 0)
	user := builder.Messages()[len(builder.Messages())-1].Content

	posFirst := strings.Index(user, "[Source 1] first.pdf")
	posSecond := strings.Index(user, "[Source 2] second.pdf")
	if posFirst == -1 || posSecond == -1 {
		t.Fatalf("numbered sources missing from user turn:\n%s", user)
	}
	if posFirst > posSecond {
		t.Errorf("source numbering does not follow ranking order")
	}

	included := builder.Included()
	if len(included) != 2 || included[0].Chunk.FileName != "first.pdf" {
		t.Errorf("Included() order diverges from citation order")
	}
}

func TestCountTokensIsPositiveForText(t *testing.T) {
	if got := CountTokens("The quick brown fox jumps over the lazy dog."); got <= 0 {
		t.Errorf("CountTokens = %d, want > 0", got)
	}
	if got := CountTokens(""); got != 0 {
		t.Errorf("CountTokens(\"\") = %d, want 0", got)
	}
}
