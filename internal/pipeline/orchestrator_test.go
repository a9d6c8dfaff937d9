package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/scry-flashgen/internal/domain"
	"github.com/phrazzld/scry-flashgen/internal/generation"
	"github.com/phrazzld/scry-flashgen/internal/mocks"
	"github.com/phrazzld/scry-flashgen/internal/pipeline"
	"github.com/phrazzld/scry-flashgen/internal/platform/logger"
	"github.com/phrazzld/scry-flashgen/internal/schema"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustResolve(t *testing.T, tag string) schema.Definition {
	t.Helper()
	def, err := schema.Resolve(tag)
	require.NoError(t, err)
	return def
}

func newOrchestrator(t *testing.T, gen generation.Generator, cfg pipeline.Config) *pipeline.Orchestrator {
	t.Helper()
	o, err := pipeline.NewOrchestrator(gen, cfg, discardLogger())
	require.NoError(t, err)
	return o
}

func makeChunks(texts ...string) []domain.Chunk {
	chunks := make([]domain.Chunk, len(texts))
	offset := 0
	for i, text := range texts {
		chunks[i] = domain.Chunk{Index: i, Start: offset, Text: text}
		offset += len([]rune(text)) + 1
	}
	return chunks
}

// cardsPerChunk returns a generator that emits n basic cards for a chunk
// whose text is "chunk-<n>", and fails for "fail".
func cardsPerChunk() *mocks.MockGenerator {
	return &mocks.MockGenerator{
		GenerateFn: func(_ context.Context, text string, def schema.Definition) ([]domain.Flashcard, error) {
			if text == "fail" {
				return nil, generation.NewError(generation.KindProviderError, errors.New("upstream 500"))
			}
			var n int
			if _, err := fmt.Sscanf(text, "chunk-%d", &n); err != nil {
				n = 1
			}
			cards := make([]domain.Flashcard, n)
			for i := range cards {
				cards[i] = domain.Flashcard{
					Kind:     def.Kind,
					Question: fmt.Sprintf("%s q%d", text, i),
					Answer:   "a",
				}
			}
			return cards, nil
		},
	}
}

func TestRun_FailureIsolation(t *testing.T) {
	t.Parallel()

	o := newOrchestrator(t, cardsPerChunk(), pipeline.DefaultConfig())

	result, err := o.Run(context.Background(), makeChunks("chunk-1", "fail", "chunk-2"), mustResolve(t, "basic"), nil)
	require.NoError(t, err)

	require.Len(t, result.Flashcards, 3)
	assert.Equal(t, 0, result.Flashcards[0].ChunkIndex)
	assert.Equal(t, 2, result.Flashcards[1].ChunkIndex)
	assert.Equal(t, 2, result.Flashcards[2].ChunkIndex)
	assert.Equal(t, "chunk-2 q1", result.Flashcards[2].Question)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, 1, result.Failures[0].ChunkIndex)
	assert.Equal(t, string(generation.KindProviderError), result.Failures[0].Kind)
	assert.Contains(t, result.Failures[0].Cause, "upstream 500")
	assert.Equal(t, []int{1}, result.FailedChunkIndices())
	assert.Equal(t, 3, result.ChunkCount)
}

func TestRun_ImageZipping(t *testing.T) {
	t.Parallel()

	images := make([]domain.ImageRef, 5)
	for i := range images {
		images[i] = domain.ImageRef{Name: fmt.Sprintf("img-%d.png", i), Page: i + 1, MIMEType: "image/png"}
	}

	t.Run("illustrated", func(t *testing.T) {
		t.Parallel()

		o := newOrchestrator(t, cardsPerChunk(), pipeline.DefaultConfig())
		result, err := o.Run(context.Background(),
			makeChunks("chunk-2", "chunk-1", "chunk-3"), mustResolve(t, "illustrated"), images)
		require.NoError(t, err)

		require.Len(t, result.Flashcards, 6)
		for i := 0; i < 5; i++ {
			require.NotNil(t, result.Flashcards[i].Image, "card %d", i)
			assert.Equal(t, images[i].Name, result.Flashcards[i].Image.Name)
		}
		assert.Nil(t, result.Flashcards[5].Image)
	})

	t.Run("other schemas ignore images", func(t *testing.T) {
		t.Parallel()

		o := newOrchestrator(t, cardsPerChunk(), pipeline.DefaultConfig())
		result, err := o.Run(context.Background(), makeChunks("chunk-2"), mustResolve(t, "basic"), images)
		require.NoError(t, err)
		for _, card := range result.Flashcards {
			assert.Nil(t, card.Image)
		}
	})

	t.Run("no images", func(t *testing.T) {
		t.Parallel()

		o := newOrchestrator(t, cardsPerChunk(), pipeline.DefaultConfig())
		result, err := o.Run(context.Background(), makeChunks("chunk-2"), mustResolve(t, "illustrated"), nil)
		require.NoError(t, err)
		require.Len(t, result.Flashcards, 2)
		assert.Nil(t, result.Flashcards[0].Image)
	})
}

func TestRun_AllChunksFailed(t *testing.T) {
	t.Parallel()

	o := newOrchestrator(t, cardsPerChunk(), pipeline.DefaultConfig())

	result, err := o.Run(context.Background(), makeChunks("fail", "  ", "fail"), mustResolve(t, "basic"), nil)
	assert.Nil(t, result)
	require.ErrorIs(t, err, pipeline.ErrAllChunksFailed)

	var allFailed *pipeline.AllChunksFailedError
	require.True(t, errors.As(err, &allFailed))
	require.Len(t, allFailed.Failures, 2)
	assert.Equal(t, 0, allFailed.Failures[0].ChunkIndex)
	assert.Equal(t, 2, allFailed.Failures[1].ChunkIndex)
}

func TestRun_BlankChunksSkipped(t *testing.T) {
	t.Parallel()

	gen := cardsPerChunk()
	o := newOrchestrator(t, gen, pipeline.DefaultConfig())

	result, err := o.Run(context.Background(), makeChunks(" \n ", "chunk-1", "\t"), mustResolve(t, "basic"), nil)
	require.NoError(t, err)
	assert.Len(t, result.Flashcards, 1)
	assert.Empty(t, result.Failures)
	assert.Equal(t, []int{0, 2}, result.SkippedChunks)
	assert.Equal(t, 1, gen.CallCount())

	result, err = o.Run(context.Background(), makeChunks(" "), mustResolve(t, "basic"), nil)
	require.NoError(t, err, "a run with no non-blank chunk is not a failure")
	assert.Empty(t, result.Flashcards)
}

func TestRun_PreservesChunkOrder(t *testing.T) {
	t.Parallel()

	texts := make([]string, 12)
	for i := range texts {
		texts[i] = fmt.Sprintf("chunk-%d", 1+i%3)
	}

	gen := &mocks.MockGenerator{
		GenerateFn: func(_ context.Context, text string, def schema.Definition) ([]domain.Flashcard, error) {
			// Earlier chunks finish later.
			time.Sleep(time.Duration(len(text)%3) * time.Millisecond)
			return cardsPerChunk().GenerateFn(context.Background(), text, def)
		},
	}
	o := newOrchestrator(t, gen, pipeline.Config{Concurrency: 6, MaxAttempts: 1})

	result, err := o.Run(context.Background(), makeChunks(texts...), mustResolve(t, "basic"), nil)
	require.NoError(t, err)

	last := -1
	for _, card := range result.Flashcards {
		assert.GreaterOrEqual(t, card.ChunkIndex, last)
		assert.True(t, strings.HasPrefix(card.Question, texts[card.ChunkIndex]))
		last = card.ChunkIndex
	}
	assert.Len(t, result.Flashcards, 4*(1+2+3))
}

func TestRun_Cancellation(t *testing.T) {
	t.Parallel()

	t.Run("cancelled before start", func(t *testing.T) {
		t.Parallel()

		gen := cardsPerChunk()
		o := newOrchestrator(t, gen, pipeline.DefaultConfig())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := o.Run(ctx, makeChunks("chunk-1", "chunk-1"), mustResolve(t, "basic"), nil)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, gen.CallCount())
	})

	t.Run("cancelled mid run", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		gen := &mocks.MockGenerator{
			GenerateFn: func(ctx context.Context, _ string, _ schema.Definition) ([]domain.Flashcard, error) {
				cancel()
				return nil, generation.Classify(context.Canceled)
			},
		}
		o := newOrchestrator(t, gen, pipeline.Config{Concurrency: 1, MaxAttempts: 3, RetryDelay: time.Millisecond})

		result, err := o.Run(ctx, makeChunks("one", "two", "three", "four"), mustResolve(t, "basic"), nil)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, gen.CallCount(), "no chunk may be issued after cancellation")
	})
}

func TestRun_Retry(t *testing.T) {
	t.Parallel()

	t.Run("retryable kinds are repeated", func(t *testing.T) {
		t.Parallel()

		calls := 0
		gen := &mocks.MockGenerator{
			GenerateFn: func(_ context.Context, _ string, def schema.Definition) ([]domain.Flashcard, error) {
				calls++
				if calls < 3 {
					return nil, generation.NewError(generation.KindRateLimited, errors.New("429"))
				}
				return []domain.Flashcard{{Kind: def.Kind, Question: "Q", Answer: "A"}}, nil
			},
		}
		o := newOrchestrator(t, gen, pipeline.Config{Concurrency: 1, MaxAttempts: 3, RetryDelay: time.Millisecond})

		result, err := o.Run(context.Background(), makeChunks("text"), mustResolve(t, "basic"), nil)
		require.NoError(t, err)
		assert.Len(t, result.Flashcards, 1)
		assert.Equal(t, 3, gen.CallCount())
	})

	t.Run("invalid responses are not repeated", func(t *testing.T) {
		t.Parallel()

		gen := mocks.NewMockGeneratorWithError(
			generation.NewError(generation.KindInvalidResponse, errors.New("not json")))
		o := newOrchestrator(t, gen, pipeline.Config{Concurrency: 1, MaxAttempts: 3, RetryDelay: time.Millisecond})

		_, err := o.Run(context.Background(), makeChunks("text"), mustResolve(t, "basic"), nil)
		require.ErrorIs(t, err, pipeline.ErrAllChunksFailed)
		assert.Equal(t, 1, gen.CallCount())
	})

	t.Run("default config makes one attempt", func(t *testing.T) {
		t.Parallel()

		gen := mocks.NewMockGeneratorWithError(generation.NewError(generation.KindTimeout, nil))
		o := newOrchestrator(t, gen, pipeline.DefaultConfig())

		_, err := o.Run(context.Background(), makeChunks("text"), mustResolve(t, "basic"), nil)
		require.Error(t, err)
		assert.Equal(t, 1, gen.CallCount())
	})
}

func TestRun_UnsupportedSchema(t *testing.T) {
	t.Parallel()

	gen := cardsPerChunk()
	o := newOrchestrator(t, gen, pipeline.DefaultConfig())

	_, err := o.Run(context.Background(), makeChunks("chunk-1"), schema.Definition{Kind: "haiku"}, nil)
	assert.ErrorIs(t, err, schema.ErrUnsupportedSchema)
	assert.Equal(t, 0, gen.CallCount())
}

func TestNewOrchestrator(t *testing.T) {
	t.Parallel()

	_, err := pipeline.NewOrchestrator(nil, pipeline.DefaultConfig(), discardLogger())
	assert.ErrorIs(t, err, pipeline.ErrNilGenerator)

	o, err := pipeline.NewOrchestrator(cardsPerChunk(), pipeline.Config{}, nil)
	require.NoError(t, err)
	result, err := o.Run(context.Background(), makeChunks("chunk-1"), mustResolve(t, "basic"), nil)
	require.NoError(t, err)
	assert.Len(t, result.Flashcards, 1)
}

func TestNewOrchestrator_InvalidConcurrencyUsesDefault(t *testing.T) {
	t.Parallel()

	buf, l := logger.NewTestLogger(t)
	_, err := pipeline.NewOrchestrator(cardsPerChunk(), pipeline.Config{Concurrency: -2}, l)
	require.NoError(t, err)

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "invalid concurrency specified, using default", entries[0]["msg"])
	assert.EqualValues(t, pipeline.DefaultConfig().Concurrency, entries[0]["default"])
	assert.EqualValues(t, -2, entries[0]["specified"])
}
