// Package config assembles runtime configuration from the environment plus an
// optional YAML tuning file. Credentials come from env only; the file carries
// non-secret knobs like extraction keywords.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/crosscut-io/crosscut/internal/extractor"
	"github.com/crosscut-io/crosscut/internal/ingestor"
	"github.com/crosscut-io/crosscut/internal/llm"
	"github.com/crosscut-io/crosscut/internal/notify"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM       llm.Config
	Notify    notify.Config
	Extractor extractor.Config
	Datadog   ingestor.Config
}

// fileConfig is the YAML surface. Only tuning knobs live here.
type fileConfig struct {
	Extractor struct {
		Keywords     []string `yaml:"keywords"`
		ContextLines *int     `yaml:"context_lines"`
		MaxChars     *int     `yaml:"max_chars"`
	} `yaml:"extractor"`
	LLM struct {
		Provider string `yaml:"provider"`
		Model    string `yaml:"model"`
		BaseURL  string `yaml:"base_url"`
	} `yaml:"llm"`
}

// Load reads the environment and, when path is non-empty, merges the YAML
// tuning file on top. The result is validated before being returned.
func Load(path string) (*Config, error) {
	cfg := &Config{
		LLM: llm.Config{
			Provider: llm.Provider(strings.ToLower(os.Getenv("LLM_PROVIDER"))),
			Model:    os.Getenv("LLM_MODEL"),
			BaseURL:  os.Getenv("OPENAI_BASE_URL"),
		},
		Notify: notify.Config{
			SlackWebhookURL: os.Getenv("SLACK_WEBHOOK_URL"),
			Jira: notify.JiraConfig{
				Server:     os.Getenv("JIRA_SERVER"),
				Email:      os.Getenv("JIRA_EMAIL"),
				APIToken:   os.Getenv("JIRA_API_TOKEN"),
				ProjectKey: os.Getenv("JIRA_PROJECT_KEY"),
				IssueType:  os.Getenv("JIRA_ISSUE_TYPE"),
			},
		},
		Extractor: extractor.DefaultConfig(),
		Datadog: ingestor.Config{
			APIKey: os.Getenv("DD_API_KEY"),
			AppKey: os.Getenv("DD_APPLICATION_KEY"),
		},
	}

	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = llm.ProviderAnthropic
	}

	if path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	switch cfg.LLM.Provider {
	case llm.ProviderAnthropic:
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	case llm.ProviderOpenAI:
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if len(fc.Extractor.Keywords) > 0 {
		cfg.Extractor.Keywords = fc.Extractor.Keywords
	}
	if fc.Extractor.ContextLines != nil {
		cfg.Extractor.ContextLines = *fc.Extractor.ContextLines
	}
	if fc.Extractor.MaxChars != nil {
		cfg.Extractor.MaxChars = *fc.Extractor.MaxChars
	}
	if fc.LLM.Provider != "" {
		cfg.LLM.Provider = llm.Provider(strings.ToLower(fc.LLM.Provider))
	}
	if fc.LLM.Model != "" {
		cfg.LLM.Model = fc.LLM.Model
	}
	if fc.LLM.BaseURL != "" {
		cfg.LLM.BaseURL = fc.LLM.BaseURL
	}
	return nil
}

// Validate rejects configurations that would only fail later, mid-run.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case llm.ProviderAnthropic:
		if c.LLM.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for provider %q", c.LLM.Provider)
		}
	case llm.ProviderOpenAI:
		if c.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for provider %q", c.LLM.Provider)
		}
	default:
		return fmt.Errorf("unknown LLM provider %q", c.LLM.Provider)
	}

	if err := validateJira(c.Notify.Jira); err != nil {
		return err
	}

	if c.Extractor.MaxChars <= 0 {
		return fmt.Errorf("extractor max_chars must be positive, got %d", c.Extractor.MaxChars)
	}
	if c.Extractor.ContextLines < 0 {
		return fmt.Errorf("extractor context_lines must not be negative, got %d", c.Extractor.ContextLines)
	}
	return nil
}

// validateJira enforces all-or-none: a partially filled JIRA block is a
// misconfiguration, not a disabled integration.
func validateJira(j notify.JiraConfig) error {
	fields := map[string]string{
		"JIRA_SERVER":      j.Server,
		"JIRA_EMAIL":       j.Email,
		"JIRA_API_TOKEN":   j.APIToken,
		"JIRA_PROJECT_KEY": j.ProjectKey,
	}
	var missing []string
	set := 0
	for name, v := range fields {
		if v == "" {
			missing = append(missing, name)
		} else {
			set++
		}
	}
	if set == 0 || set == len(fields) {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("incomplete JIRA configuration, missing %s", strings.Join(missing, ", "))
}
