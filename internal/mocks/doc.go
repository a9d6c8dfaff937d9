// Package mocks provides hand-written test doubles for the generation
// interfaces, shared by the generation, pipeline and command tests.
//
// MockProvider stands in for a model provider and records every request:
//
//	provider := &mocks.MockProvider{
//	    CompleteFn: func(ctx context.Context, req generation.Request) (string, error) {
//	        return `{"flashcards": [{"question": "Q", "answer": "A"}]}`, nil
//	    },
//	}
//
// MockGenerator stands in for a whole generation client and is what the
// orchestrator tests drive. NewEchoGenerator returns one card per chunk
// whose question is the chunk text, which makes ordering easy to assert.
package mocks
