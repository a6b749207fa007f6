package pipeline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DocTypeConfig selects which payload sections of a document type carry
// prose worth collecting.
type DocTypeConfig struct {
	TextProps []string `yaml:"text_props"`
}

// Config drives a pipeline run.
type Config struct {
	ReadRoot  string `yaml:"read_root_dir"`
	WriteRoot string `yaml:"write_root_dir"`
	TempDir   string `yaml:"temp_dir"`
	Overwrite bool   `yaml:"overwrite"`

	// Workers bounds per-step file concurrency.
	Workers int `yaml:"workers"`

	// DocTypes maps a document type to the payload sections collected from
	// it. DocTypesWithText lists the types whose collected text feeds the
	// combined text output.
	DocTypes         map[string]DocTypeConfig `yaml:"doc_types"`
	DocTypesWithText []string                 `yaml:"doc_types_with_text"`

	// MaxFileCount stops a run after this many files when positive.
	MaxFileCount int `yaml:"max_file_count"`

	// DeleteAfterProcess removes each source file once processed.
	DeleteAfterProcess bool `yaml:"delete_after_process"`

	DatabasePath string `yaml:"database_path"`
	ListenAddr   string `yaml:"listen_addr"`
	LogLevel     string `yaml:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		TempDir: os.TempDir(),
		Workers: 4,
		DocTypes: map[string]DocTypeConfig{
			"CLAIM": {TextProps: []string{"body", "summary"}},
		},
		DocTypesWithText: []string{"CLAIM"},
		ListenAddr:       ":8080",
		LogLevel:         "info",
	}
}

// LoadConfig reads a YAML config file over the defaults. Callers validate
// once command-line overrides are applied.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ReadRoot == "" {
		return fmt.Errorf("read_root_dir is required")
	}
	if c.WriteRoot == "" {
		return fmt.Errorf("write_root_dir is required")
	}
	if c.TempDir == "" {
		return fmt.Errorf("temp_dir is required")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.MaxFileCount < 0 {
		return fmt.Errorf("max_file_count must not be negative, got %d", c.MaxFileCount)
	}
	for name, dt := range c.DocTypes {
		if len(dt.TextProps) == 0 {
			return fmt.Errorf("doc_types.%s: text_props must not be empty", name)
		}
	}
	return nil
}
