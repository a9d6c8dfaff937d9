package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlashcardValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		card    Flashcard
		wantErr error
	}{
		{
			name: "valid basic card",
			card: Flashcard{Kind: KindBasic, Question: "What is Go?", Answer: "A language"},
		},
		{
			name: "valid cloze card",
			card: Flashcard{
				Kind:               KindCloze,
				QuestionWithBlanks: "Go was created at ____.",
				CorrectAnswers:     []string{"Google"},
			},
		},
		{
			name:    "unknown kind",
			card:    Flashcard{Kind: "quiz", Question: "q", Answer: "a"},
			wantErr: ErrInvalidKind,
		},
		{
			name:    "blank question",
			card:    Flashcard{Kind: KindScored, Question: "   ", Answer: "a"},
			wantErr: ErrEmptyQuestion,
		},
		{
			name:    "missing answer",
			card:    Flashcard{Kind: KindIllustrated, Question: "q"},
			wantErr: ErrEmptyAnswer,
		},
		{
			name: "cloze with blank answer",
			card: Flashcard{
				Kind:               KindCloze,
				QuestionWithBlanks: "____ and ____",
				CorrectAnswers:     []string{"salt", " "},
			},
			wantErr: ErrEmptyAnswer,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.card.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tc.wantErr), "expected %v, got %v", tc.wantErr, err)
		})
	}
}

func TestFlashcardSides(t *testing.T) {
	t.Parallel()

	cloze := Flashcard{
		Kind:               KindCloze,
		QuestionWithBlanks: "____ is the capital of ____.",
		CorrectAnswers:     []string{"Paris", "France"},
	}
	assert.Equal(t, "____ is the capital of ____.", cloze.Front())
	assert.Equal(t, "Paris, France", cloze.Back())

	basic := Flashcard{Kind: KindBasic, Question: "q", Answer: "a"}
	assert.Equal(t, "q", basic.Front())
	assert.Equal(t, "a", basic.Back())
}

func TestResultFailedChunkIndices(t *testing.T) {
	t.Parallel()

	r := &Result{Failures: []GenerationFailure{{ChunkIndex: 1}, {ChunkIndex: 4}}}
	assert.Equal(t, []int{1, 4}, r.FailedChunkIndices())
	assert.Empty(t, (&Result{}).FailedChunkIndices())
}
