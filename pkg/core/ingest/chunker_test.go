package ingest

import (
	"fmt"
	"strings"
	"testing"
)

// wordCounter counts whitespace-delimited words, a deterministic stand-in
// for a BPE tokenizer in tests.
type wordCounter struct{}

func (wordCounter) Count(text string) int {
	return len(strings.Fields(text))
}

func repeatSentences(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "Sentence %d notes the combined ratio improved again. ", i)
		if i%5 == 4 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}

func TestSplitRespectsTokenBudget(t *testing.T) {
	c := NewChunkerWithCounter(40, 8, wordCounter{})
	pieces := c.Split(repeatSentences(60))
	if len(pieces) < 2 {
		t.Fatalf("expected multiple pieces, got %d", len(pieces))
	}
	for i, p := range pieces {
		if n := (wordCounter{}).Count(p.Text); n > 40 && !p.Oversize {
			t.Errorf("piece %d has %d tokens, budget 40, not flagged oversize", i, n)
		}
	}
}

func TestSplitCutsAtSentenceBoundary(t *testing.T) {
	c := NewChunkerWithCounter(40, 0, wordCounter{})
	pieces := c.Split(repeatSentences(60))
	for i, p := range pieces[:len(pieces)-1] {
		trimmed := strings.TrimRight(p.Text, " \n")
		if !strings.HasSuffix(trimmed, ".") {
			t.Errorf("piece %d does not end at a sentence: %q", i, tail(trimmed, 30))
		}
	}
}

func TestSplitOverlapCarriedForward(t *testing.T) {
	c := NewChunkerWithCounter(40, 8, wordCounter{})
	text := repeatSentences(60)
	pieces := c.Split(text)
	if len(pieces) < 2 {
		t.Fatalf("expected multiple pieces, got %d", len(pieces))
	}
	for i := 1; i < len(pieces); i++ {
		overlap := sharedOverlap(pieces[i-1].Text, pieces[i].Text)
		if overlap == 0 {
			t.Errorf("piece %d shares no overlap with its predecessor", i)
		}
		if n := (wordCounter{}).Count(pieces[i].Text[:overlap]); n > 8 {
			t.Errorf("piece %d overlap is %d tokens, budget 8", i, n)
		}
	}
}

func TestSplitReconstructsLosslessly(t *testing.T) {
	c := NewChunkerWithCounter(40, 8, wordCounter{})
	text := strings.TrimSpace(repeatSentences(60))
	pieces := c.Split(text)

	rebuilt := pieces[0].Text
	for _, p := range pieces[1:] {
		k := sharedOverlap(rebuilt, p.Text)
		rebuilt += p.Text[k:]
	}
	if rebuilt != text {
		t.Fatalf("reconstruction differs: got %d bytes, want %d", len(rebuilt), len(text))
	}
}

func TestSplitDeterministic(t *testing.T) {
	c := NewChunkerWithCounter(40, 8, wordCounter{})
	text := repeatSentences(45)
	first := c.Split(text)
	for run := 0; run < 3; run++ {
		again := c.Split(text)
		if len(again) != len(first) {
			t.Fatalf("run %d: %d pieces vs %d", run, len(again), len(first))
		}
		for i := range again {
			if again[i].Text != first[i].Text {
				t.Fatalf("run %d piece %d differs", run, i)
			}
		}
	}
}

func TestSplitShortTextSinglePiece(t *testing.T) {
	c := NewChunkerWithCounter(100, 10, wordCounter{})
	pieces := c.Split("A short paragraph that fits easily.")
	if len(pieces) != 1 {
		t.Fatalf("got %d pieces, want 1", len(pieces))
	}
	if pieces[0].Oversize {
		t.Error("short piece flagged oversize")
	}
}

func TestSplitEmptyText(t *testing.T) {
	c := NewChunkerWithCounter(100, 10, wordCounter{})
	if pieces := c.Split("   \n  "); pieces != nil {
		t.Fatalf("got %d pieces for blank input", len(pieces))
	}
}

func TestOverlapClampedBelowBudget(t *testing.T) {
	c := NewChunkerWithCounter(40, 40, wordCounter{})
	if c.OverlapTokens >= c.MaxTokens {
		t.Fatalf("overlap %d not clamped below budget %d", c.OverlapTokens, c.MaxTokens)
	}
	// Must still terminate and make progress
	pieces := c.Split(repeatSentences(60))
	if len(pieces) < 2 {
		t.Fatalf("expected multiple pieces, got %d", len(pieces))
	}
}

// blockCounter charges ten tokens for any nonempty text, so no prefix of a
// word ever fits a small budget. Forces the atomic-oversize path.
type blockCounter struct{}

func (blockCounter) Count(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	return 10 * len(strings.Fields(text))
}

func TestSplitAtomicOversizeEmittedWhole(t *testing.T) {
	c := NewChunkerWithCounter(4, 0, blockCounter{})
	pieces := c.Split("first second")
	if len(pieces) < 2 {
		t.Fatalf("got %d pieces, want one per word", len(pieces))
	}
	if !pieces[0].Oversize {
		t.Error("indivisible over-budget piece not flagged oversize")
	}
	if strings.TrimSpace(pieces[0].Text) != "first" {
		t.Errorf("first piece = %q, want the whole word", pieces[0].Text)
	}
}

// sharedOverlap finds the longest prefix of next that is a suffix of prev.
func sharedOverlap(prev, next string) int {
	max := len(next)
	if len(prev) < max {
		max = len(prev)
	}
	for k := max; k > 0; k-- {
		if strings.HasSuffix(prev, next[:k]) {
			return k
		}
	}
	return 0
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
