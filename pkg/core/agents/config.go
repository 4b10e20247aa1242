// Package agents runs the extraction agents that query the document index
// through a search-grounded LLM and return structured findings per company.
//
// External dependencies:
// - google.golang.org/genai: Gemini calls with Vertex AI Search grounding
// - github.com/RealAlexandreAI/json-repair, hjson-go: response recovery
// - gopkg.in/yaml.v2: roster and segment-guidance config
package agents

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Company is one roster entry. SegmentGuidance tells the agents which
// reporting segment of that company is the commercial-lines comparable;
// conglomerates bury it differently (Berkshire reports commercial P&C under
// BH Primary, not GEICO).
type Company struct {
	Ticker          string   `yaml:"ticker"`
	Name            string   `yaml:"name"`
	SegmentGuidance string   `yaml:"segment_guidance"`
	SegmentKeywords []string `yaml:"segment_keywords"`
	ExcludeSegments []string `yaml:"exclude_segments"`
}

// Config is the agents configuration file. Version gates compatibility so a
// stale file fails loudly instead of silently mis-steering queries.
type Config struct {
	Version       int       `yaml:"version"`
	SubjectTicker string    `yaml:"subject_ticker"`
	Model         string    `yaml:"model"`
	Companies     []Company `yaml:"companies"`

	MaxQueryIterations int     `yaml:"max_query_iterations"`
	MinQualityScore    float64 `yaml:"min_quality_score"`
	MaxConcurrent      int     `yaml:"max_concurrent"`
	BatchPauseSeconds  int     `yaml:"batch_pause_seconds"`
	CompanyTimeoutSecs int     `yaml:"company_timeout_seconds"`
}

// configVersion is the file version this build understands.
const configVersion = 1

// LoadConfig reads and validates the YAML config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Version != configVersion {
		return nil, fmt.Errorf("config version %d, this build wants %d", cfg.Version, configVersion)
	}
	if len(cfg.Companies) == 0 {
		return nil, fmt.Errorf("config has no companies")
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Model == "" {
		c.Model = "gemini-2.0-flash"
	}
	if c.MaxQueryIterations <= 0 {
		c.MaxQueryIterations = 3
	}
	if c.MinQualityScore <= 0 {
		c.MinQualityScore = 0.7
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 2
	}
	if c.BatchPauseSeconds <= 0 {
		c.BatchPauseSeconds = 3
	}
	if c.CompanyTimeoutSecs <= 0 {
		c.CompanyTimeoutSecs = 600
	}
}

// CompanyByTicker finds a roster entry.
func (c *Config) CompanyByTicker(ticker string) (Company, bool) {
	for _, comp := range c.Companies {
		if comp.Ticker == ticker {
			return comp, true
		}
	}
	return Company{}, false
}
