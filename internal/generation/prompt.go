package generation

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/phrazzld/scry-flashgen/internal/domain"
	"github.com/phrazzld/scry-flashgen/internal/schema"
)

// defaultPromptTemplate is used for every kind without an override file.
const defaultPromptTemplate = "Text: {{.ChunkText}}\n\n{{.Task}}"

// promptData represents the data passed to the prompt template
type promptData struct {
	ChunkText string
	Task      string
}

// loadTemplates parses one template per kind. When dir is set, a file named
// <kind>.tmpl in it replaces the default template for that kind.
func loadTemplates(dir string) (map[domain.Kind]*template.Template, error) {
	templates := make(map[domain.Kind]*template.Template, len(domain.Kinds))

	for _, kind := range domain.Kinds {
		text := defaultPromptTemplate
		if dir != "" {
			content, err := os.ReadFile(filepath.Join(dir, string(kind)+".tmpl"))
			switch {
			case err == nil:
				text = string(content)
			case errors.Is(err, os.ErrNotExist):
				// keep the default
			default:
				return nil, fmt.Errorf("%w: failed to read prompt template for %s: %v",
					ErrInvalidConfig, kind, err)
			}
		}

		tmpl, err := template.New(string(kind)).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse prompt template for %s: %v",
				ErrInvalidConfig, kind, err)
		}
		templates[kind] = tmpl
	}

	return templates, nil
}

// buildPrompt renders the human-turn prompt for one chunk.
func buildPrompt(tmpl *template.Template, chunkText string, def schema.Definition) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, promptData{ChunkText: chunkText, Task: def.Task}); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}
