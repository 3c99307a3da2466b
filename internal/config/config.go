package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the book configuration loaded from book.yml.
type Config struct {
	Title        Title          `yaml:"title"`
	Authorship   Authorship     `yaml:"authorship"`
	Template     string         `yaml:"template,omitempty"`
	Style        map[string]any `yaml:"style"`
	Build        BuildConfig    `yaml:"build"`
	Compiler     string         `yaml:"latex_compiler,omitempty"`
	Introduction string         `yaml:"introduction,omitempty"` // optional markdown intro page for the HTML export
}

// Title holds the book title block.
type Title struct {
	Name     string `yaml:"name"`
	Subtitle string `yaml:"subtitle,omitempty"`
}

// Authorship holds author and copyright details.
type Authorship struct {
	Author    string `yaml:"author"`
	Copyright string `yaml:"copyright,omitempty"`
}

// BuildConfig represents build process configuration.
type BuildConfig struct {
	OutputDir     string `yaml:"output_dir"`
	HTMLOutputDir string `yaml:"html_output_dir,omitempty"`
	TemplateDir   string `yaml:"template_dir,omitempty"`
	Extension     string `yaml:"extension,omitempty"`
}

// Load loads configuration from the specified file.
// Environment variables referenced in the YAML ($VAR) are expanded before
// unmarshalling; a .env/.env.local file is loaded first when present.
func Load(configPath string) (*Config, error) {
	loadEnvFile()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// loadEnvFile loads environment variables from .env/.env.local files.
// It stops at the first file that parses; absence of both is not an error.
// Existing process environment variables are not overwritten.
func loadEnvFile() {
	for _, envPath := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err == nil {
			fmt.Fprintf(os.Stderr, "Loaded environment variables from %s\n", envPath)
			return
		}
	}
}

func (c *Config) validate() error {
	var missing []string
	if c.Title.Name == "" {
		missing = append(missing, "title")
	}
	if c.Authorship.Author == "" {
		missing = append(missing, "authorship")
	}
	if c.Style == nil {
		missing = append(missing, "style")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration sections: %v", missing)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Build.OutputDir == "" {
		c.Build.OutputDir = "_build"
	}
	if c.Build.HTMLOutputDir == "" {
		c.Build.HTMLOutputDir = "html"
	}
	if c.Build.TemplateDir == "" {
		c.Build.TemplateDir = "_templates"
	}
	if c.Build.Extension == "" {
		c.Build.Extension = ".tex"
	}
	if c.Compiler == "" {
		c.Compiler = "xelatex"
	}
}

// StyleFlag reads a boolean flag from the style block. The style map is
// otherwise passed to templates verbatim without validation.
func (c *Config) StyleFlag(name string) bool {
	v, ok := c.Style[name]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}
