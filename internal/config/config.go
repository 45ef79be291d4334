package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		Driver string
		DSN    string
	}
	LLM struct {
		Provider   string
		BaseURL    string
		Model      string
		APIKey     string
		Timeout    time.Duration
		MaxRetries int
		Sampling   Sampling
	}
	Prompt struct {
		// NullSentinel blanks settings the front end sent as "- null".
		NullSentinel bool
	}
	Catalog struct {
		Path string
	}
	Batch struct {
		Count       int
		Interval    time.Duration
		Concurrency int
		OutputDir   string
	}
	Log struct {
		Level  string
		Format string
	}
}

// Sampling mirrors llm.Sampling so config stays free of client imports.
type Sampling struct {
	Temperature       float64
	TopP              float64
	TopK              int
	MaxNewTokens      int
	RepetitionPenalty float64
	NoRepeatNgramSize int
	Seed              int
}

// Load reads config from environment (VILLAGE_ prefix) and optional village-forge.yaml.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("VILLAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("village-forge")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional config file

	setDefaults(v)
	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8000")
	v.SetDefault("db.driver", "sqlite3")
	v.SetDefault("db.dsn", "village-forge.db")
	v.SetDefault("llm.provider", "ollama")
	v.SetDefault("llm.model", "llama2")
	v.SetDefault("llm.timeout", "120s")
	v.SetDefault("llm.max_retries", 2)
	v.SetDefault("llm.temperature", 0.85)
	v.SetDefault("llm.top_p", 0.95)
	v.SetDefault("llm.top_k", 40)
	v.SetDefault("llm.max_new_tokens", 512)
	v.SetDefault("llm.repetition_penalty", 1.15)
	v.SetDefault("llm.no_repeat_ngram_size", 4)
	v.SetDefault("llm.seed", -1)
	v.SetDefault("prompt.null_sentinel", true)
	v.SetDefault("batch.count", 10)
	v.SetDefault("batch.interval", "2s")
	v.SetDefault("batch.concurrency", 1)
	v.SetDefault("batch.output_dir", ".")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.DB.Driver = v.GetString("db.driver")
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.LLM.Provider = v.GetString("llm.provider")
	cfg.LLM.BaseURL = v.GetString("llm.base_url")
	cfg.LLM.Model = v.GetString("llm.model")
	cfg.LLM.APIKey = v.GetString("llm.api_key")
	cfg.LLM.MaxRetries = v.GetInt("llm.max_retries")
	cfg.LLM.Sampling = Sampling{
		Temperature:       v.GetFloat64("llm.temperature"),
		TopP:              v.GetFloat64("llm.top_p"),
		TopK:              v.GetInt("llm.top_k"),
		MaxNewTokens:      v.GetInt("llm.max_new_tokens"),
		RepetitionPenalty: v.GetFloat64("llm.repetition_penalty"),
		NoRepeatNgramSize: v.GetInt("llm.no_repeat_ngram_size"),
		Seed:              v.GetInt("llm.seed"),
	}
	cfg.Prompt.NullSentinel = v.GetBool("prompt.null_sentinel")
	cfg.Catalog.Path = v.GetString("catalog.path")
	cfg.Batch.Count = v.GetInt("batch.count")
	cfg.Batch.Concurrency = v.GetInt("batch.concurrency")
	cfg.Batch.OutputDir = v.GetString("batch.output_dir")
	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Format = v.GetString("log.format")

	timeout, err := time.ParseDuration(v.GetString("llm.timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid VILLAGE_LLM_TIMEOUT: %w", err)
	}
	cfg.LLM.Timeout = timeout

	interval, err := time.ParseDuration(v.GetString("batch.interval"))
	if err != nil {
		return nil, fmt.Errorf("invalid VILLAGE_BATCH_INTERVAL: %w", err)
	}
	cfg.Batch.Interval = interval

	if cfg.DB.Driver == "" {
		return nil, fmt.Errorf("VILLAGE_DB_DRIVER is required (sqlite3, mysql, postgres)")
	}
	if cfg.DB.DSN == "" {
		return nil, fmt.Errorf("VILLAGE_DB_DSN is required")
	}
	if cfg.LLM.Provider == "" {
		return nil, fmt.Errorf("VILLAGE_LLM_PROVIDER is required (ollama, openai, openai-compatible, anthropic)")
	}
	if cfg.LLM.MaxRetries < 0 {
		return nil, fmt.Errorf("VILLAGE_LLM_MAX_RETRIES must not be negative")
	}
	if cfg.Batch.Concurrency < 1 {
		return nil, fmt.Errorf("VILLAGE_BATCH_CONCURRENCY must be at least 1")
	}

	return cfg, nil
}
