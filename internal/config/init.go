package config

import (
	"fmt"
	"os"
)

const defaultConfig = `# bookforge configuration
title:
  name: "Family Cookbook"
  subtitle: "Collected Recipes"

authorship:
  author: "Your Name"
  copyright: "2026"

# Style settings are passed to the book template verbatim.
style:
  documentclass: article
  font_size: 11pt
  geometry: margin=2cm
  include_toc: true
  include_index: false
  recent_appendix: true

build:
  output_dir: _build
  html_output_dir: html
  template_dir: _templates

latex_compiler: xelatex

# Optional markdown file rendered as the HTML export's opening page.
# introduction: intro.md
`

// Init writes a starter configuration file. Refuses to overwrite an
// existing file unless force is set.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}
	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
