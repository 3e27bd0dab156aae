package config

import "time"

// WorkerConfig contains worker pool and dispatch queue configuration.
type WorkerConfig struct {
	// Concurrency is the number of concurrent handler invocations.
	Concurrency int `env:"CONCURRENCY" envDefault:"4"`

	// MaxRetries is the per-task retry budget applied by the broker.
	// After the budget is exhausted the message is dead-lettered and
	// the task stays failed with the last recorded error.
	MaxRetries int `env:"MAX_RETRIES" envDefault:"3"`

	// Queue is the broker queue name tasks are dispatched to.
	Queue string `env:"QUEUE" envDefault:"default"`

	// HandlerTimeout bounds a single handler invocation.
	HandlerTimeout time.Duration `env:"HANDLER_TIMEOUT" envDefault:"2m"`
}

// Sanitize applies guardrails to worker configuration values.
func (w *WorkerConfig) Sanitize() {
	if w.Concurrency < 1 {
		w.Concurrency = 1
	}
	if w.MaxRetries < 0 {
		w.MaxRetries = 0
	}
	if w.Queue == "" {
		w.Queue = "default"
	}
	if w.HandlerTimeout <= 0 {
		w.HandlerTimeout = 2 * time.Minute
	}
}

// OllamaConfig contains configuration for the query_llm task handler.
type OllamaConfig struct {
	// Host is the base URL of the Ollama server.
	Host string `env:"HOST" envDefault:"http://localhost:11434"`

	// Model is the model name used for query_llm tasks.
	Model string `env:"MODEL" envDefault:"llama3.2"`

	// Timeout bounds a single generation call. The handler owns this
	// timeout; a hung call blocks only its own executor slot.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"60s"`
}

// Sanitize applies guardrails to Ollama configuration values.
func (o *OllamaConfig) Sanitize() {
	if o.Timeout <= 0 {
		o.Timeout = 60 * time.Second
	}
}
