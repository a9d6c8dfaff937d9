package chunker

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/phrazzld/scry-flashgen/internal/domain"
)

// ErrInvalidChunkConfig is returned when size or overlap are out of range.
var ErrInvalidChunkConfig = errors.New("invalid chunk configuration")

// DefaultSeparators are tried in order, coarsest first.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " "}

// Splitter splits text into chunks of at most Size runes.
type Splitter struct {
	size       int
	overlap    int
	separators []string
}

// New creates a Splitter. size must be positive and 0 <= overlap < size.
func New(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size must be positive, got %d", ErrInvalidChunkConfig, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: overlap must be in [0, %d), got %d",
			ErrInvalidChunkConfig, size, overlap)
	}
	return &Splitter{size: size, overlap: overlap, separators: DefaultSeparators}, nil
}

// Split is a convenience wrapper around New and Splitter.Split.
func Split(text string, size, overlap int) ([]domain.Chunk, error) {
	s, err := New(size, overlap)
	if err != nil {
		return nil, err
	}
	return s.Split(text), nil
}

// Size returns the maximum chunk length in runes.
func (s *Splitter) Size() int { return s.size }

// Overlap returns the maximum overlap between consecutive chunks in runes.
func (s *Splitter) Overlap() int { return s.overlap }

// piece is an atomic run of source text that is never split further.
type piece struct {
	text  string
	start int // rune offset in the source text
	n     int // rune count
}

// Split breaks text into ordered chunks. Blank input yields no chunks.
func (s *Splitter) Split(text string) []domain.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	pieces := s.pieces(nil, text, 0, 0)
	return s.merge(pieces)
}

// pieces recursively splits seg (starting at rune offset start) until every
// piece fits in a chunk. Separators stay attached to the preceding piece so
// the pieces concatenate back to the original text.
func (s *Splitter) pieces(out []piece, seg string, start, level int) []piece {
	n := utf8.RuneCountInString(seg)
	if n == 0 {
		return out
	}
	if n <= s.size {
		return append(out, piece{text: seg, start: start, n: n})
	}

	if level >= len(s.separators) {
		// Nothing semantic left to split on. The oversized piece is cut into
		// fixed windows by merge.
		return append(out, piece{text: seg, start: start, n: n})
	}

	sep := s.separators[level]
	if !strings.Contains(seg, sep) {
		return s.pieces(out, seg, start, level+1)
	}

	offset := start
	for _, part := range strings.SplitAfter(seg, sep) {
		if part == "" {
			continue
		}
		out = s.pieces(out, part, offset, level+1)
		offset += utf8.RuneCountInString(part)
	}
	return out
}

// merge packs pieces into windows of at most size runes, seeding each new
// window with up to overlap runes of trailing pieces from the previous one.
func (s *Splitter) merge(pieces []piece) []domain.Chunk {
	var (
		chunks []domain.Chunk
		window []piece
		total  int
		fresh  bool // window holds pieces not yet emitted
	)

	add := func(c domain.Chunk) {
		if last := len(chunks) - 1; last >= 0 && chunks[last].Start == c.Start {
			// The new window starts where the previous chunk did and
			// extends it, so it replaces it.
			c.Index = chunks[last].Index
			chunks[last] = c
			return
		}
		c.Index = len(chunks)
		chunks = append(chunks, c)
	}

	emit := func() {
		if c, ok := buildChunk(window); ok {
			add(c)
		}
		fresh = false
	}

	for _, p := range pieces {
		if p.n > s.size {
			if fresh {
				emit()
			}
			window, total = s.cut(p, add)
			continue
		}

		if total+p.n > s.size && len(window) > 0 {
			// A window that is not fresh only holds the tail of a hard cut,
			// which was already emitted.
			if fresh {
				emit()
			}
			window, total = s.seed(window, p.n)
		}
		window = append(window, p)
		total += p.n
		fresh = true
	}
	if fresh {
		emit()
	}
	return chunks
}

// cut emits windows of size runes over an unbreakable piece, advancing by
// exactly size-overlap runes, and returns the trailing overlap of the last
// window as the seed for whatever follows.
func (s *Splitter) cut(p piece, add func(domain.Chunk)) ([]piece, int) {
	stride := s.size - s.overlap
	lo, off := 0, 0
	for {
		hi := advance(p.text, lo, s.size)
		n := min(s.size, p.n-off)
		if c, ok := buildChunk([]piece{{text: p.text[lo:hi], start: p.start + off, n: n}}); ok {
			add(c)
		}
		if hi == len(p.text) {
			keep := min(s.overlap, n)
			if keep == 0 {
				return nil, 0
			}
			from := advance(p.text, lo, n-keep)
			return []piece{{text: p.text[from:], start: p.start + p.n - keep, n: keep}}, keep
		}
		lo = advance(p.text, lo, stride)
		off += stride
	}
}

// advance returns the byte offset reached by moving runes runes forward from
// byte offset from.
func advance(text string, from, runes int) int {
	i := from
	for ; runes > 0 && i < len(text); runes-- {
		_, w := utf8.DecodeRuneInString(text[i:])
		i += w
	}
	return i
}

// seed returns the trailing pieces of window totalling at most overlap runes
// that still leave room for a following piece of next runes.
func (s *Splitter) seed(window []piece, next int) ([]piece, int) {
	if s.overlap == 0 {
		return nil, 0
	}

	i := len(window)
	total := 0
	for i > 0 && total+window[i-1].n <= s.overlap {
		i--
		total += window[i].n
	}
	for i < len(window) && total+next > s.size {
		total -= window[i].n
		i++
	}

	seeded := make([]piece, len(window)-i)
	copy(seeded, window[i:])
	return seeded, total
}

// buildChunk joins the window and trims surrounding whitespace, adjusting the
// start offset by the number of leading runes removed.
func buildChunk(window []piece) (domain.Chunk, bool) {
	if len(window) == 0 {
		return domain.Chunk{}, false
	}

	var b strings.Builder
	for _, p := range window {
		b.WriteString(p.text)
	}
	raw := b.String()

	trimmedLeft := strings.TrimLeftFunc(raw, unicode.IsSpace)
	text := strings.TrimRightFunc(trimmedLeft, unicode.IsSpace)
	if text == "" {
		return domain.Chunk{}, false
	}

	lead := utf8.RuneCountInString(raw) - utf8.RuneCountInString(trimmedLeft)
	return domain.Chunk{Start: window[0].start + lead, Text: text}, true
}
