package domain

import (
	"fmt"
	"strings"
)

// Kind identifies one of the supported flashcard shapes.
type Kind string

// Supported flashcard kinds
const (
	KindBasic       Kind = "basic"
	KindScored      Kind = "scored"
	KindCloze       Kind = "cloze"
	KindIllustrated Kind = "illustrated"
)

// Kinds lists every supported kind in a stable order.
var Kinds = []Kind{KindBasic, KindScored, KindCloze, KindIllustrated}

// IsValid reports whether k is one of the supported kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindBasic, KindScored, KindCloze, KindIllustrated:
		return true
	default:
		return false
	}
}

// ImageRef is an opaque reference to an image extracted from a source
// document. Data holds the base64 encoded image bytes.
type ImageRef struct {
	Name     string `json:"name"`
	Page     int    `json:"page,omitempty"`
	MIMEType string `json:"mime_type,omitempty"`
	Data     string `json:"data"`
}

// Flashcard is a single generated card. Which fields are populated depends
// on Kind: cloze cards use QuestionWithBlanks and CorrectAnswers, every other
// kind uses Question and Answer.
type Flashcard struct {
	Kind               Kind      `json:"kind"`
	Question           string    `json:"question,omitempty"`
	Answer             string    `json:"answer,omitempty"`
	Importance         *int      `json:"importance,omitempty"`
	QuestionWithBlanks string    `json:"question_with_blanks,omitempty"`
	CorrectAnswers     []string  `json:"correct_answers,omitempty"`
	Image              *ImageRef `json:"image"`
	ChunkIndex         int       `json:"chunk_index"`
}

// Front returns the question-equivalent side of the card.
func (f Flashcard) Front() string {
	if f.Kind == KindCloze {
		return f.QuestionWithBlanks
	}
	return f.Question
}

// Back returns the answer-equivalent side of the card. Cloze answers are
// joined in blank order.
func (f Flashcard) Back() string {
	if f.Kind == KindCloze {
		return strings.Join(f.CorrectAnswers, ", ")
	}
	return f.Answer
}

// Validate checks the invariants shared by every kind: a known kind and a
// non-empty question and answer side.
func (f Flashcard) Validate() error {
	if !f.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, f.Kind)
	}
	if strings.TrimSpace(f.Front()) == "" {
		return ErrEmptyQuestion
	}
	if f.Kind == KindCloze {
		if len(f.CorrectAnswers) == 0 {
			return ErrEmptyAnswer
		}
		for _, a := range f.CorrectAnswers {
			if strings.TrimSpace(a) == "" {
				return ErrEmptyAnswer
			}
		}
		return nil
	}
	if strings.TrimSpace(f.Answer) == "" {
		return ErrEmptyAnswer
	}
	return nil
}
