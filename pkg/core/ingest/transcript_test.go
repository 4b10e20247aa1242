package ingest

import (
	"strings"
	"testing"
)

const sampleTranscript = `Operator:
Good morning and welcome to the third quarter earnings call.

Christopher Swift - Chief Executive Officer:
Thank you. We delivered strong results this quarter.
Core earnings were up year over year.

Beth Costello - Chief Financial Officer:
Net income for the quarter was four hundred million dollars.
`

func TestSegmentTranscript(t *testing.T) {
	segments := SegmentTranscript(sampleTranscript)
	if len(segments) != 3 {
		t.Fatalf("got %d segments, want 3", len(segments))
	}
	tests := []struct {
		speaker string
		phrase  string
	}{
		{"Operator", "Good morning"},
		{"Christopher Swift - Chief Executive Officer", "Core earnings"},
		{"Beth Costello - Chief Financial Officer", "four hundred million"},
	}
	for i, tt := range tests {
		if segments[i].Label != tt.speaker {
			t.Errorf("segment %d speaker = %q, want %q", i, segments[i].Label, tt.speaker)
		}
		if !strings.Contains(segments[i].Text, tt.phrase) {
			t.Errorf("segment %d missing %q: %q", i, tt.phrase, segments[i].Text)
		}
	}
}

func TestSegmentTranscriptLeadingUnattributed(t *testing.T) {
	text := "Forward looking statements apply to this call.\n\nOperator:\nFirst question please."
	segments := SegmentTranscript(text)
	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(segments))
	}
	if segments[0].Label != "Unknown" {
		t.Errorf("leading segment speaker = %q, want Unknown", segments[0].Label)
	}
	if segments[1].Label != "Operator" {
		t.Errorf("second speaker = %q, want Operator", segments[1].Label)
	}
}

func TestSegmentTranscriptCompleteness(t *testing.T) {
	segments := SegmentTranscript(sampleTranscript)
	joined := ""
	for _, s := range segments {
		joined += s.Text + "\n"
	}
	for _, line := range strings.Split(sampleTranscript, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasSuffix(line, ":") {
			continue
		}
		if !strings.Contains(joined, line) {
			t.Errorf("content line lost: %q", line)
		}
	}
}

func TestSegmentTranscriptBodyLinesNotSpeakers(t *testing.T) {
	// A capitalised sentence without a trailing colon stays in the turn.
	text := "Operator:\nGood morning\nThank You All\nNext line."
	segments := SegmentTranscript(text)
	if len(segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(segments))
	}
	if !strings.Contains(segments[0].Text, "Thank You All") {
		t.Errorf("body line misread as attribution: %q", segments[0].Text)
	}
}
