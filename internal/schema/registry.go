package schema

import (
	"fmt"
	"strings"

	"github.com/phrazzld/scry-flashgen/internal/domain"
)

var questionAnswer = []Property{
	{
		Name:        "question",
		Type:        TypeString,
		Description: "The question or prompt on the front of the flashcard",
		Required:    true,
	},
	{
		Name:        "answer",
		Type:        TypeString,
		Description: "The answer or explanation on the back of the flashcard",
		Required:    true,
	},
}

// registry is populated once and read-only afterwards.
var registry = map[domain.Kind]Definition{
	domain.KindBasic: {
		Kind:        domain.KindBasic,
		Description: "Question and answer pairs",
		Instruction: "Generate a set of flashcards from the given text. " +
			"Focus on key concepts and important information.",
		Task:       "Generate a list of flashcards based on this text.",
		Properties: questionAnswer,
		validate:   validateBasic(domain.KindBasic),
	},
	domain.KindScored: {
		Kind:        domain.KindScored,
		Description: "Question and answer pairs with an importance score from 1 to 10",
		Instruction: "Generate a set of flashcards from the given text. " +
			"Focus on key concepts and important information. " +
			"Rate how important each concept is on a scale from 1 (trivia) to 10 (essential).",
		Task: "Generate a list of flashcards based on this text, each with an importance score.",
		Properties: append(append([]Property{}, questionAnswer...), Property{
			Name:        "importance",
			Type:        TypeInteger,
			Description: "How important this concept is, from 1 to 10",
			Required:    true,
		}),
		validate: validateScored,
	},
	domain.KindCloze: {
		Kind:        domain.KindCloze,
		Description: "Fill-in-the-blank sentences with an ordered answer key",
		Instruction: "Generate a set of cloze deletion flashcards from the given text. " +
			"Focus on creating simple fill-in-the-blank questions for key facts or important information.",
		Task: "Create flashcards using simple cloze deletions. For each flashcard, replace key information " +
			"with blanks (" + BlankMarker + ") to test the learner's memory. Provide the correct word or phrase " +
			"for each blank in the answer, in the same order as the blanks appear.",
		Properties: []Property{
			{
				Name:        "question_with_blanks",
				Type:        TypeString,
				Description: "A sentence with one or more blanks (" + BlankMarker + ") for the learner to fill in.",
				Required:    true,
			},
			{
				Name:        "correct_answers",
				Type:        TypeStringArray,
				Description: "The list of correct words or phrases that fill in the blanks, one per blank.",
				Required:    true,
			},
		},
		validate: validateCloze,
	},
	domain.KindIllustrated: {
		Kind:        domain.KindIllustrated,
		Description: "Question and answer pairs paired with images from the source document",
		Instruction: "Generate a set of flashcards from the given text. " +
			"Focus on key concepts and important information. " +
			"Each flashcard may later be shown next to a figure from the same document.",
		Task:       "Generate a list of flashcards based on this text.",
		Properties: questionAnswer,
		validate:   validateBasic(domain.KindIllustrated),
	},
}

// aliases maps the legacy form values to kinds.
var aliases = map[string]domain.Kind{
	"type-i":  domain.KindBasic,
	"type-ii": domain.KindCloze,
	"normal":  domain.KindBasic,
	"image":   domain.KindIllustrated,
}

// Resolve returns the definition registered for tag. Tags are matched
// case-insensitively against kind names and legacy aliases.
func Resolve(tag string) (Definition, error) {
	key := strings.ToLower(strings.TrimSpace(tag))
	kind := domain.Kind(key)
	if alias, ok := aliases[key]; ok {
		kind = alias
	}

	def, ok := registry[kind]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnsupportedSchema, tag)
	}
	return def, nil
}

// All returns every registered definition in a stable order.
func All() []Definition {
	defs := make([]Definition, 0, len(domain.Kinds))
	for _, k := range domain.Kinds {
		defs = append(defs, registry[k])
	}
	return defs
}
