package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/phrazzld/scry-flashgen/internal/domain"
)

func writeJSON(w io.Writer, result *domain.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// writeCards prints one numbered block per card.
func writeCards(w io.Writer, result *domain.Result) error {
	var b strings.Builder
	for i, card := range result.Flashcards {
		fmt.Fprintf(&b, "%d. %s\n", i+1, card.Front())
		fmt.Fprintf(&b, "   -> %s\n", card.Back())

		tags := []string{fmt.Sprintf("chunk %d", card.ChunkIndex)}
		if card.Importance != nil {
			tags = append(tags, fmt.Sprintf("importance %d/10", *card.Importance))
		}
		if card.Kind == domain.KindIllustrated {
			if card.Image != nil {
				tags = append(tags, "image "+card.Image.Name)
			} else {
				tags = append(tags, "no image")
			}
		}
		fmt.Fprintf(&b, "   [%s]\n\n", strings.Join(tags, ", "))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeSummary(w io.Writer, result *domain.Result) {
	fmt.Fprintf(w, "%d flashcard(s) from %d chunk(s)", len(result.Flashcards), result.ChunkCount)
	if n := len(result.Failures); n > 0 {
		fmt.Fprintf(w, ", %d chunk(s) failed", n)
	}
	if n := len(result.SkippedChunks); n > 0 {
		fmt.Fprintf(w, ", %d skipped", n)
	}
	fmt.Fprintln(w)
	for _, f := range result.Failures {
		fmt.Fprintf(w, "  chunk %d: %s: %s\n", f.ChunkIndex, f.Kind, f.Cause)
	}
}
