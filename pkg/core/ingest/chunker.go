package ingest

import (
	"log"
	"strings"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter reports how many tokens a string encodes to. The chunker
// treats it as an oracle and never inspects token boundaries directly.
type TokenCounter interface {
	Count(text string) int
}

type tiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func (t *tiktokenCounter) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

// charCounter approximates tokens as chars/4, the usual English-text ratio.
// Used only when the real tokenizer cannot be constructed.
type charCounter struct{}

func (charCounter) Count(text string) int {
	return (len(text) + 3) / 4
}

// Piece is one chunker output unit.
type Piece struct {
	Text string
	// Estimated is true when token counts came from the character
	// fallback rather than a real tokenizer.
	Estimated bool
	// Oversize is true when the piece exceeds the token budget because it
	// had no split point.
	Oversize bool
}

// Chunker splits text into pieces of at most MaxTokens tokens with
// OverlapTokens of trailing context carried into the next piece. Cuts are
// found by binary search on character offsets with the token counter as the
// oracle, then pulled back to the best natural boundary in the trailing
// fifth of the window.
type Chunker struct {
	MaxTokens     int
	OverlapTokens int

	counter   TokenCounter
	estimated bool
}

// NewChunker builds a chunker over the cl100k_base encoding. If the encoding
// cannot be loaded (offline without a cache, usually) it degrades to
// character estimation, logs once, and flags every piece it produces.
func NewChunker(maxTokens, overlapTokens int) *Chunker {
	c := &Chunker{MaxTokens: maxTokens, OverlapTokens: overlapTokens}
	if c.MaxTokens < 1 {
		c.MaxTokens = 1
	}
	// Overlap must leave room for new content or the window never advances
	if c.OverlapTokens >= c.MaxTokens {
		c.OverlapTokens = c.MaxTokens / 2
	}

	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		log.Printf("tokenizer unavailable (%v), falling back to character estimation", err)
		c.counter = charCounter{}
		c.estimated = true
		return c
	}
	c.counter = &tiktokenCounter{enc: enc}
	return c
}

// NewChunkerWithCounter builds a chunker over an explicit token counter.
func NewChunkerWithCounter(maxTokens, overlapTokens int, counter TokenCounter) *Chunker {
	c := &Chunker{MaxTokens: maxTokens, OverlapTokens: overlapTokens, counter: counter}
	if c.MaxTokens < 1 {
		c.MaxTokens = 1
	}
	if c.OverlapTokens >= c.MaxTokens {
		c.OverlapTokens = c.MaxTokens / 2
	}
	return c
}

// Split divides text into token-bounded pieces. Deterministic: the same
// input always yields the same pieces.
func (c *Chunker) Split(text string) []Piece {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var pieces []Piece
	start := 0

	for start < len(text) {
		rest := text[start:]
		if c.counter.Count(rest) <= c.MaxTokens {
			pieces = append(pieces, Piece{Text: rest, Estimated: c.estimated})
			break
		}

		end := c.fitEnd(text, start)
		oversize := false
		if end <= start {
			// Budget smaller than a single rune's tokens; emit the next
			// word whole rather than loop forever.
			end = start + nextAtomLen(rest)
			oversize = true
		} else {
			end = pullBack(text, start, end)
		}

		// Pieces are exact slices so the segment reconstructs losslessly
		// once overlaps are removed.
		pieces = append(pieces, Piece{
			Text:      text[start:end],
			Estimated: c.estimated,
			Oversize:  oversize,
		})

		next := c.overlapStart(text, start, end)
		// Restart guard: a window identical to the previous one would
		// recurse forever, so skip the overlap and resume at the cut.
		if next <= start {
			next = end
		}
		start = next
	}
	return pieces
}

// fitEnd binary-searches the largest end offset whose prefix from start
// stays within the token budget.
func (c *Chunker) fitEnd(text string, start int) int {
	lo, hi := start, len(text)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		mid = alignRune(text, mid)
		if mid <= lo {
			break
		}
		if c.counter.Count(text[start:mid]) <= c.MaxTokens {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return alignRune(text, lo)
}

// overlapStart finds the offset where the next window begins so that the
// carried-over tail is at most OverlapTokens tokens.
func (c *Chunker) overlapStart(text string, start, end int) int {
	if c.OverlapTokens <= 0 {
		return end
	}
	if c.counter.Count(text[start:end]) <= c.OverlapTokens {
		return start
	}
	// Smallest offset whose suffix up to end fits in the overlap budget.
	// Invariant: the suffix from hi fits, the suffix from lo does not.
	lo, hi := start, end
	for hi-lo > 1 {
		mid := alignRune(text, (lo+hi)/2)
		if mid <= lo {
			break
		}
		if c.counter.Count(text[mid:end]) <= c.OverlapTokens {
			hi = mid
		} else {
			lo = mid
		}
	}
	// Start the overlap on a word boundary when one is close by
	if sp := strings.IndexAny(text[hi:end], " \n"); sp >= 0 && sp < 40 {
		hi += sp + 1
	}
	return hi
}

// boundary preference, best first
var boundaryMarks = []string{"\n\n", ". ", "! ", "? ", "\n", " "}

// pullBack moves a hard cut to the last natural boundary inside the trailing
// fifth of the window. If none of the marks appear there the hard cut stands.
func pullBack(text string, start, end int) int {
	window := text[start:end]
	zone := len(window) - len(window)/5
	for _, mark := range boundaryMarks {
		if idx := strings.LastIndex(window, mark); idx >= zone {
			return start + idx + len(mark)
		}
	}
	return end
}

// nextAtomLen is the byte length of the next whitespace-delimited word, or
// one rune when the text starts with whitespace.
func nextAtomLen(text string) int {
	if idx := strings.IndexAny(text, " \n\t"); idx > 0 {
		return idx + 1
	} else if idx == 0 {
		return 1
	}
	return len(text)
}

// alignRune pulls an offset back onto a rune boundary.
func alignRune(text string, offset int) int {
	for offset > 0 && offset < len(text) && !utf8.RuneStart(text[offset]) {
		offset--
	}
	return offset
}
