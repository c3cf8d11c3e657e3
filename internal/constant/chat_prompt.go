package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"

	// GROUNDED ANSWERS - numbered sources, honest refusals
	AnswerSystemPromptV1 = `You are a helpful AI assistant that answers questions based on provided document context.

Guidelines:
1. Answer questions accurately using ONLY the information from the provided sources
2. If the answer is not in the sources, say "I don't have enough information to answer this question"
3. Cite sources by number when referencing specific information (e.g., "According to Source 1...")
4. Be concise but comprehensive
5. If sources conflict, acknowledge the discrepancy
6. Maintain conversation context and refer to previous messages when relevant

Format your answer clearly with proper paragraphs and citations.`

	// Ollama Configuration
	OllamaDefaultBaseURL = "http://localhost:11434"
	OllamaDefaultModel   = "llama3"
	OllamaChatEndpoint   = "/api/chat"
)
