// Package prompts loads the prompt templates the provider bindings format
// their requests with. Templates are markdown files with YAML frontmatter
// carrying binding metadata; users can override any of them from the config
// directory.
package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/adrg/frontmatter"
)

//go:embed *.md
var builtinFS embed.FS

// Meta is the YAML frontmatter of a prompt template.
type Meta struct {
	Description string   `yaml:"description"`
	Stop        []string `yaml:"stop"`
}

// Prompt is a parsed template plus its metadata.
type Prompt struct {
	Meta Meta
	tmpl *template.Template
}

// Load returns the prompt template for the given name.
// Checks user override at ~/.config/inkwell/prompts/<name> first.
func Load(name string) (*Prompt, error) {
	// Check user override
	configDir, err := os.UserConfigDir()
	if err == nil {
		userPath := filepath.Join(configDir, "inkwell", "prompts", name)
		if data, err := os.ReadFile(userPath); err == nil {
			return parse(name, data)
		}
	}

	// Fall back to embedded
	data, err := builtinFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("loading prompt template %s: %w", name, err)
	}
	return parse(name, data)
}

func parse(name string, data []byte) (*Prompt, error) {
	var meta Meta
	body, err := frontmatter.Parse(strings.NewReader(string(data)), &meta)
	if err != nil {
		// No frontmatter, so the entire content is the template body.
		body = data
		meta = Meta{}
	}
	tmpl, err := template.New(name).Parse(strings.TrimSpace(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parsing prompt template %s: %w", name, err)
	}
	return &Prompt{Meta: meta, tmpl: tmpl}, nil
}

// Execute renders the template with the given data map.
func (p *Prompt) Execute(data map[string]string) (string, error) {
	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing prompt template: %w", err)
	}
	return buf.String(), nil
}

// List returns the names of all available prompt templates.
func List() ([]string, error) {
	entries, err := builtinFS.ReadDir(".")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
