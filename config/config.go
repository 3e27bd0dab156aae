package config

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - database.go: Postgres, Redis, and cache configuration
//   - http.go: HTTP server configuration
//   - worker.go: worker pool and queue configuration
//   - services.go: service mode selection
type AppConfig struct {
	// Postgres backs the task store (the single source of truth).
	Postgres DBConfig `envPrefix:"DB_"`

	// Redis backs both the result cache and the dispatch queue broker.
	Redis RedisConfig `envPrefix:"REDIS_"`

	// Cache configuration for terminal task responses.
	Cache CacheConfig

	// HTTP server configuration.
	HTTP HTTPConfig

	// Worker pool configuration.
	Worker WorkerConfig `envPrefix:"WORKER_"`

	// Ollama configuration for the query_llm task handler.
	Ollama OllamaConfig `envPrefix:"OLLAMA_"`

	// Logging configuration.
	Log LogConfig `envPrefix:"LOG_"`

	// Services selects which service modes this process runs,
	// comma-separated. Valid modes: api, worker.
	Services string `env:"SERVICES" envDefault:"api,worker"`
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Cache.Sanitize()
	c.HTTP.Sanitize()
	c.Worker.Sanitize()
	c.Ollama.Sanitize()
	c.Log.Sanitize()
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// IsAPIEnabled returns true if the HTTP API service is enabled.
func (c *AppConfig) IsAPIEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeAPI]
}

// IsWorkerEnabled returns true if the worker service is enabled.
func (c *AppConfig) IsWorkerEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeWorker]
}

// LogConfig controls structured logging output.
type LogConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `env:"LEVEL" envDefault:"info"`

	// Format selects the handler: "json" or "text".
	Format string `env:"FORMAT" envDefault:"json"`
}

// Sanitize normalises logging configuration values.
func (l *LogConfig) Sanitize() {
	if l.Format != "json" && l.Format != "text" {
		l.Format = "json"
	}
}
