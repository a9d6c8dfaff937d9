package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/phrazzld/scry-flashgen/internal/domain"
)

// Importance bounds for scored flashcards, inclusive.
const (
	MinImportance = 1
	MaxImportance = 10
)

// BlankMarker is the placeholder the model is asked to use in cloze cards.
const BlankMarker = "____"

// blankRegex matches one blank: a run of two or more underscores.
var blankRegex = regexp.MustCompile(`_{2,}`)

// RawCard is the decoded shape of a single item returned by the model. It is
// the union of the fields of every schema; each Definition reads only the
// fields it needs.
type RawCard struct {
	Question           string   `json:"question"`
	Answer             string   `json:"answer"`
	Importance         *int     `json:"importance"`
	QuestionWithBlanks string   `json:"question_with_blanks"`
	CorrectAnswers     []string `json:"correct_answers"`
}

// Property describes one field of the structured response.
type Property struct {
	Name        string
	Type        PropertyType
	Description string
	Required    bool
}

// PropertyType is the JSON type of a Property.
type PropertyType string

// Property types understood by the model providers.
const (
	TypeString      PropertyType = "string"
	TypeInteger     PropertyType = "integer"
	TypeStringArray PropertyType = "string_array"
)

// Definition is a registered flashcard shape.
type Definition struct {
	Kind domain.Kind

	// Description summarises the shape for humans and API listings.
	Description string

	// Instruction is the fixed system instruction describing the intent.
	Instruction string

	// Task is the human-turn request that follows the chunk text.
	Task string

	// Properties describes one item of the "flashcards" array.
	Properties []Property

	validate func(RawCard) (domain.Flashcard, error)
}

// Validate converts a raw item into a flashcard, or returns an error wrapping
// ErrMalformedFlashcard. Items are never repaired with default values.
func (d Definition) Validate(raw RawCard) (domain.Flashcard, error) {
	if d.validate == nil {
		return domain.Flashcard{}, fmt.Errorf("%w: %q", ErrUnsupportedSchema, d.Kind)
	}
	card, err := d.validate(raw)
	if err != nil {
		return domain.Flashcard{}, err
	}
	if err := card.Validate(); err != nil {
		return domain.Flashcard{}, fmt.Errorf("%w: %v", ErrMalformedFlashcard, err)
	}
	return card, nil
}

// JSONSchema renders the response structure as a JSON-schema document, for
// providers that take a schema in that form.
func (d Definition) JSONSchema() map[string]any {
	props := make(map[string]any, len(d.Properties))
	required := make([]string, 0, len(d.Properties))
	for _, p := range d.Properties {
		var prop map[string]any
		switch p.Type {
		case TypeInteger:
			prop = map[string]any{"type": "integer"}
		case TypeStringArray:
			prop = map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
		default:
			prop = map[string]any{"type": "string"}
		}
		prop["description"] = p.Description
		props[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"flashcards": map[string]any{
				"type":        "array",
				"description": "A list of flashcards based on the input text",
				"items": map[string]any{
					"type":       "object",
					"properties": props,
					"required":   required,
				},
			},
		},
		"required": []string{"flashcards"},
	}
}

// CountBlanks returns the number of blank markers in s.
func CountBlanks(s string) int {
	return len(blankRegex.FindAllStringIndex(s, -1))
}

func validateBasic(kind domain.Kind) func(RawCard) (domain.Flashcard, error) {
	return func(raw RawCard) (domain.Flashcard, error) {
		return domain.Flashcard{
			Kind:     kind,
			Question: strings.TrimSpace(raw.Question),
			Answer:   strings.TrimSpace(raw.Answer),
		}, nil
	}
}

func validateScored(raw RawCard) (domain.Flashcard, error) {
	if raw.Importance == nil {
		return domain.Flashcard{}, fmt.Errorf("%w: importance is missing", ErrMalformedFlashcard)
	}
	importance := *raw.Importance
	if importance < MinImportance || importance > MaxImportance {
		return domain.Flashcard{}, fmt.Errorf("%w: importance %d outside [%d, %d]",
			ErrMalformedFlashcard, importance, MinImportance, MaxImportance)
	}

	return domain.Flashcard{
		Kind:       domain.KindScored,
		Question:   strings.TrimSpace(raw.Question),
		Answer:     strings.TrimSpace(raw.Answer),
		Importance: &importance,
	}, nil
}

func validateCloze(raw RawCard) (domain.Flashcard, error) {
	question := strings.TrimSpace(raw.QuestionWithBlanks)
	blanks := CountBlanks(question)
	if blanks == 0 {
		return domain.Flashcard{}, fmt.Errorf("%w: no blank marker in question", ErrMalformedFlashcard)
	}
	if blanks != len(raw.CorrectAnswers) {
		return domain.Flashcard{}, fmt.Errorf("%w: %d blanks but %d answers",
			ErrMalformedFlashcard, blanks, len(raw.CorrectAnswers))
	}

	answers := make([]string, len(raw.CorrectAnswers))
	for i, a := range raw.CorrectAnswers {
		answers[i] = strings.TrimSpace(a)
	}

	return domain.Flashcard{
		Kind:               domain.KindCloze,
		QuestionWithBlanks: question,
		CorrectAnswers:     answers,
	}, nil
}
