package pipeline

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/phrazzld/scry-flashgen/internal/domain"
	"github.com/phrazzld/scry-flashgen/internal/generation"
	"github.com/phrazzld/scry-flashgen/internal/schema"
)

// generateWithRetry calls the generator up to MaxAttempts times. Only
// retryable kinds are repeated; the wait between attempts is
// base * 2^(attempt-1) * (0.5 + rand(0, 0.5)).
func (o *Orchestrator) generateWithRetry(
	ctx context.Context,
	chunk domain.Chunk,
	def schema.Definition,
) ([]domain.Flashcard, error) {
	var lastErr error

	for attempt := 1; attempt <= o.cfg.MaxAttempts; attempt++ {
		cards, err := o.generator.Generate(ctx, chunk.Text, def)
		if err == nil {
			return cards, nil
		}
		lastErr = err

		if attempt == o.cfg.MaxAttempts || !generation.IsRetryable(err) || ctx.Err() != nil {
			break
		}

		delay := backoff(o.cfg.RetryDelay, attempt)
		o.logger.InfoContext(ctx, "retrying chunk after delay",
			"chunk_index", chunk.Index,
			"attempt", attempt,
			"kind", generation.KindOf(err),
			"delay_ms", delay.Milliseconds())

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, lastErr
		}
	}

	return nil, lastErr
}

func backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	exp := float64(base) * math.Pow(2, float64(attempt-1))
	jitter := 0.5 + rand.Float64()*0.5 // between 0.5 and 1.0
	return time.Duration(exp * jitter)
}
