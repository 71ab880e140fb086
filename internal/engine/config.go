package engine

import "time"

// CompressionConfig controls when conversation history is folded into a
// summary message.
type CompressionConfig struct {
	Enabled      bool
	TriggerBytes int // Compress when Memory.ContentSize exceeds this
	KeepRecent   int // Messages excluded from the summary window
}

// DefaultCompressionConfig returns sensible default compression configuration.
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		Enabled:      true,
		TriggerBytes: 48_000,
		KeepRecent:   8,
	}
}

// EngineConfig holds all engine configuration options.
type EngineConfig struct {
	RetryConfig       *RetryConfig
	CompressionConfig *CompressionConfig
}

// DefaultEngineConfig returns a default engine configuration.
func DefaultEngineConfig() EngineConfig {
	retryConfig := DefaultRetryConfig()
	compressionConfig := DefaultCompressionConfig()
	return EngineConfig{
		RetryConfig:       &retryConfig,
		CompressionConfig: &compressionConfig,
	}
}

// DefaultRetryConfig returns sensible default retry policies.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		LLMPolicy: RetryPolicy{
			MaxRetries:   3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
			Jitter:       true,
		},
		ToolPolicy: RetryPolicy{
			MaxRetries:   2,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     10 * time.Second,
			Multiplier:   2.0,
			Jitter:       true,
		},
	}
}
