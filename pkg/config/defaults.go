package config

const (
	defaultListen      = ":5001"
	defaultCORSOrigins = "*"

	defaultClientTarget = "http://localhost:5001"

	defaultProvider       = "echo"
	defaultChatModel      = "Qwen/Qwen2.5-Coder-7B-Instruct"
	defaultReasoningModel = "deepseek-ai/DeepSeek-R1-Distill-Llama-8B"
	defaultMaxTokens      = 1024
	defaultTimeout        = "2m"

	defaultStreamMode  = "auto"
	defaultChunkSize   = 10
	defaultChunkDelay  = "100ms"
	defaultWordDelay   = "50ms"
	defaultKeepAlive   = "20s"
	defaultIdleTimeout = "2m30s"
	defaultBuffer      = 64

	defaultStorageDriver = "memory"

	defaultEventsProvider = "nop"
	defaultEventsTopic    = "scribe.events"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Server: ServerConfig{
			Listen:      defaultListen,
			CORSOrigins: defaultCORSOrigins,
		},
		Client: ClientConfig{
			Target: defaultClientTarget,
		},
		Completion: CompletionConfig{
			Provider:       defaultProvider,
			ChatModel:      defaultChatModel,
			ReasoningModel: defaultReasoningModel,
			MaxTokens:      defaultMaxTokens,
			Timeout:        defaultTimeout,
		},
		Stream: StreamConfig{
			Mode:        defaultStreamMode,
			ChunkSize:   defaultChunkSize,
			ChunkDelay:  defaultChunkDelay,
			WordDelay:   defaultWordDelay,
			KeepAlive:   defaultKeepAlive,
			IdleTimeout: defaultIdleTimeout,
			Buffer:      defaultBuffer,
		},
		Storage: StorageConfig{
			Driver: defaultStorageDriver,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Topic:    defaultEventsTopic,
		},
	}
}
