package gemini

import (
	"google.golang.org/genai"

	"github.com/phrazzld/scry-flashgen/internal/schema"
)

// responseSchema converts a flashcard definition into the Gemini response
// schema: an object with a required "flashcards" array of items.
func responseSchema(def schema.Definition) *genai.Schema {
	properties := make(map[string]*genai.Schema, len(def.Properties))
	required := make([]string, 0, len(def.Properties))

	for _, p := range def.Properties {
		properties[p.Name] = propertySchema(p)
		if p.Required {
			required = append(required, p.Name)
		}
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"flashcards": {
				Type:        genai.TypeArray,
				Description: def.Description,
				Items: &genai.Schema{
					Type:       genai.TypeObject,
					Properties: properties,
					Required:   required,
				},
			},
		},
		Required: []string{"flashcards"},
	}
}

func propertySchema(p schema.Property) *genai.Schema {
	switch p.Type {
	case schema.TypeInteger:
		return &genai.Schema{Type: genai.TypeInteger, Description: p.Description}
	case schema.TypeStringArray:
		return &genai.Schema{
			Type:        genai.TypeArray,
			Description: p.Description,
			Items:       &genai.Schema{Type: genai.TypeString},
		}
	default:
		return &genai.Schema{Type: genai.TypeString, Description: p.Description}
	}
}
