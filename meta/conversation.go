package meta

import (
	"fmt"

	"github.com/sashabaranov/go-openai"
)

const (
	defaultSystemPrompt = "You are a helpful assistant that answers based on the provided context."

	userPromptTemplate = "You are a helpful assistant. Answer the question using ONLY the provided context:\nContext: %s\nQuestion: %s\nAnswer:"
)

func GetSystemPrompt() string {
	return defaultSystemPrompt
}

// BuildPrompt renders the user prompt handed to the completion service. The context text is the
// only material the model is told to answer from.
func BuildPrompt(contextText string, userQuery string) string {
	return fmt.Sprintf(userPromptTemplate, contextText, userQuery)
}

// CreateConversation combines the system prompt and the rendered user prompt into the message
// list of a chat completion request.
func CreateConversation(systemPrompt string, userPrompt string) []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: userPrompt,
		},
	}
}
