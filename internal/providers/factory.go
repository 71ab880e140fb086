package providers

import (
	"fmt"
	"os"

	"vibeagent/internal/engine"
)

// NewLLMClient creates an engine.LLMClient for the named provider.
// Every provider except anthropic speaks the OpenAI wire protocol, so
// they share the OpenAI client pointed at a provider-specific base URL.
func NewLLMClient(provider, apiKey, baseURL, modelName string) (engine.LLMClient, string, error) {
	switch provider {
	case "", "openai":
		if apiKey == "" {
			return nil, "", fmt.Errorf("openai: API key not set")
		}
		if modelName == "" {
			modelName = "gpt-4o-mini"
		}
		client, err := NewOpenAIClient(apiKey, baseURL)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create OpenAI client: %w", err)
		}
		return client, modelName, nil

	case "anthropic":
		if apiKey == "" {
			return nil, "", fmt.Errorf("anthropic: API key not set")
		}
		if modelName == "" {
			modelName = "claude-3-5-sonnet-20241022"
		}
		client, err := NewAnthropicClient(apiKey)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create Anthropic client: %w", err)
		}
		return client, modelName, nil

	case "deepseek":
		if apiKey == "" {
			return nil, "", fmt.Errorf("deepseek: API key not set")
		}
		if modelName == "" {
			modelName = "deepseek-chat"
		}
		if baseURL == "" {
			baseURL = "https://api.deepseek.com/v1"
		}
		client, err := NewOpenAIClient(apiKey, baseURL)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create DeepSeek client: %w", err)
		}
		return client, modelName, nil

	case "groq":
		if apiKey == "" {
			return nil, "", fmt.Errorf("groq: API key not set")
		}
		if modelName == "" {
			modelName = "llama-3.1-70b-versatile"
		}
		if baseURL == "" {
			baseURL = "https://api.groq.com/openai/v1"
		}
		client, err := NewOpenAIClient(apiKey, baseURL)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create Groq client: %w", err)
		}
		return client, modelName, nil

	case "ollama":
		// Local server, key is a placeholder.
		if baseURL == "" {
			baseURL = "http://localhost:11434/v1"
		}
		if modelName == "" {
			modelName = "llama3.1"
		}
		if apiKey == "" {
			apiKey = "ollama"
		}
		client, err := NewOpenAIClient(apiKey, baseURL)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create Ollama client: %w", err)
		}
		return client, modelName, nil

	case "lmstudio":
		if baseURL == "" {
			baseURL = "http://localhost:1234/v1"
		}
		if modelName == "" {
			modelName = "local-model"
		}
		if apiKey == "" {
			apiKey = "lm-studio"
		}
		client, err := NewOpenAIClient(apiKey, baseURL)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create LM Studio client: %w", err)
		}
		return client, modelName, nil

	default:
		return nil, "", fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, deepseek, groq, ollama, lmstudio)", provider)
	}
}

// NewLLMClientFromEnv creates a client from LLM_PROVIDER and the
// provider's conventional environment variables.
func NewLLMClientFromEnv() (engine.LLMClient, string, error) {
	provider := os.Getenv("LLM_PROVIDER")
	if provider == "" {
		provider = "openai"
	}

	var apiKey, baseURL, modelName string
	switch provider {
	case "openai":
		apiKey = os.Getenv("OPENAI_API_KEY")
		baseURL = os.Getenv("OPENAI_BASE_URL")
		modelName = os.Getenv("OPENAI_MODEL")
	case "anthropic":
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
		modelName = os.Getenv("ANTHROPIC_MODEL")
	case "deepseek":
		apiKey = os.Getenv("DEEPSEEK_API_KEY")
		modelName = os.Getenv("DEEPSEEK_MODEL")
	case "groq":
		apiKey = os.Getenv("GROQ_API_KEY")
		modelName = os.Getenv("GROQ_MODEL")
	case "ollama":
		baseURL = os.Getenv("OLLAMA_BASE_URL")
		modelName = os.Getenv("OLLAMA_MODEL")
	case "lmstudio":
		baseURL = os.Getenv("LMSTUDIO_BASE_URL")
		modelName = os.Getenv("LMSTUDIO_MODEL")
	}

	return NewLLMClient(provider, apiKey, baseURL, modelName)
}
