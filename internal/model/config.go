package model

import "time"

// Config is the complete draftgate configuration.
type Config struct {
	Gate        GateConfig        `yaml:"gate" mapstructure:"gate"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Knowledge   KnowledgeConfig   `yaml:"knowledge" mapstructure:"knowledge"`
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// GateConfig controls the quality-gate loop.
type GateConfig struct {
	// MaxIterations is the hard ceiling on REVISE cycles (>= 1).
	MaxIterations int `yaml:"max_iterations" mapstructure:"max_iterations"`

	// PassThreshold is the minimum overall score (0-10) to pass.
	PassThreshold float64 `yaml:"pass_threshold" mapstructure:"pass_threshold"`

	// MinWordCount is the hard structural floor. A draft below it can never
	// pass regardless of rubric scores.
	MinWordCount int `yaml:"min_word_count" mapstructure:"min_word_count"`

	// RequiredSections lists section headings the draft must contain.
	// Matching is case-insensitive substring on headings. Empty = no check.
	RequiredSections []string `yaml:"required_sections" mapstructure:"required_sections"`

	// Weights combines the length component and the rubric sub-scores into
	// the overall score. Keys are component names ("length" plus rubric
	// categories); missing components are dropped and the rest renormalized.
	Weights map[string]float64 `yaml:"weights" mapstructure:"weights"`

	// UnverifiedConfidenceFloor: unverified claims below this confidence
	// get a medium factual issue.
	UnverifiedConfidenceFloor float64 `yaml:"unverified_confidence_floor" mapstructure:"unverified_confidence_floor"`

	// VerifyWorkers bounds concurrent claim verifications within one
	// evaluation pass.
	VerifyWorkers int `yaml:"verify_workers" mapstructure:"verify_workers"`
}

// LLMConfig holds LLM provider configuration.
type LLMConfig struct {
	Provider   string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama
	Model      string `yaml:"model" mapstructure:"model"`
	APIKey     string `yaml:"-" mapstructure:"-"` // Never persisted; from env
	BaseURL    string `yaml:"base_url" mapstructure:"base_url"`
	Timeout    int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens  int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	HTTPProxy  string `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// KnowledgeConfig locates the verifier's knowledge store.
type KnowledgeConfig struct {
	// Path to the YAML knowledge base. Empty disables fact grounding;
	// all claims then verify as unverified.
	Path string `yaml:"path" mapstructure:"path"`

	// CheckLinks verifies accessibility of knowledge-source URLs at load.
	CheckLinks bool `yaml:"check_links" mapstructure:"check_links"`
}

// HTTPConfig controls outbound HTTP (link checks, robots.txt).
type HTTPConfig struct {
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
}

// CacheConfig controls verification and link-check caching.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig bounds parallel work outside the gate loop.
type ConcurrencyConfig struct {
	LinkWorkers  int `yaml:"link_workers" mapstructure:"link_workers"`   // Concurrent knowledge-source link checks
	BatchWorkers int `yaml:"batch_workers" mapstructure:"batch_workers"` // Concurrent document reviews
}

// OutputConfig controls rendering.
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Gate: GateConfig{
			MaxIterations: 3,
			PassThreshold: 9.0,
			MinWordCount:  1500,
			Weights: map[string]float64{
				"length":      0.20,
				"seo":         0.25,
				"eeat":        0.25,
				"structure":   0.15,
				"readability": 0.15,
			},
			UnverifiedConfidenceFloor: 0.5,
			VerifyWorkers:             4,
		},
		LLM: LLMConfig{
			Provider:  "",
			Timeout:   60,
			MaxTokens: 4096,
		},
		Knowledge: KnowledgeConfig{
			CheckLinks: false,
		},
		HTTP: HTTPConfig{
			Timeout:           10 * time.Second,
			UserAgent:         "Draftgate/0.1 (+https://github.com/ppiankov/draftgate)",
			RequestsPerSecond: 2,
			Burst:             5,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "",
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			LinkWorkers:  4,
			BatchWorkers: 2,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}

// DefaultRubricCategories are the rubric categories the critic scores when
// none are configured. They mirror the weight keys minus the length gate,
// which is measured locally.
func DefaultRubricCategories() []string {
	return []string{"seo", "eeat", "structure", "readability"}
}
