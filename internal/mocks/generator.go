package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/phrazzld/scry-flashgen/internal/domain"
	"github.com/phrazzld/scry-flashgen/internal/generation"
	"github.com/phrazzld/scry-flashgen/internal/schema"
)

// MockGenerator implements generation.Generator for testing
type MockGenerator struct {
	// GenerateFn allows test cases to mock the Generate behavior
	GenerateFn func(ctx context.Context, chunkText string, def schema.Definition) ([]domain.Flashcard, error)

	// Default response values
	Cards []domain.Flashcard
	Err   error

	// mu protects the call tracking state; Generate is called concurrently
	// by the pipeline.
	mu         sync.Mutex
	chunkTexts []string
	kinds      []domain.Kind
}

var _ generation.Generator = (*MockGenerator)(nil)

// Generate implements the generation.Generator interface
func (m *MockGenerator) Generate(
	ctx context.Context,
	chunkText string,
	def schema.Definition,
) ([]domain.Flashcard, error) {
	m.mu.Lock()
	m.chunkTexts = append(m.chunkTexts, chunkText)
	m.kinds = append(m.kinds, def.Kind)
	m.mu.Unlock()

	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, chunkText, def)
	}

	return m.Cards, m.Err
}

// CallCount returns the number of Generate calls so far.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chunkTexts)
}

// ChunkTexts returns a copy of the chunk texts passed to Generate, in call order.
func (m *MockGenerator) ChunkTexts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.chunkTexts...)
}

// Kinds returns the schema kinds passed to Generate, in call order.
func (m *MockGenerator) Kinds() []domain.Kind {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Kind(nil), m.kinds...)
}

// Reset clears the call history
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunkTexts = nil
	m.kinds = nil
}

// NewMockGeneratorWithCards creates a MockGenerator that returns the specified cards
func NewMockGeneratorWithCards(cards []domain.Flashcard) *MockGenerator {
	return &MockGenerator{
		Cards: cards,
	}
}

// NewMockGeneratorWithError creates a MockGenerator that returns the specified error
func NewMockGeneratorWithError(err error) *MockGenerator {
	return &MockGenerator{
		Err: err,
	}
}

// NewEchoGenerator creates a MockGenerator that returns one basic card per
// call whose question is the chunk text.
func NewEchoGenerator() *MockGenerator {
	return &MockGenerator{
		GenerateFn: func(_ context.Context, chunkText string, def schema.Definition) ([]domain.Flashcard, error) {
			return []domain.Flashcard{{
				Kind:     def.Kind,
				Question: chunkText,
				Answer:   fmt.Sprintf("answer for %q", chunkText),
			}}, nil
		},
	}
}

// MockGeneratorThatFails creates a MockGenerator that fails every call with
// a provider error.
func MockGeneratorThatFails() *MockGenerator {
	return NewMockGeneratorWithError(
		generation.NewError(generation.KindProviderError, fmt.Errorf("mock provider failure")),
	)
}
