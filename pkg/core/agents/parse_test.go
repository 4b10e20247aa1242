package agents

import (
	"errors"
	"strings"
	"testing"
)

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		key  string
		want interface{}
	}{
		{"strict json", `{"combined_ratio": 94.2}`, "combined_ratio", 94.2},
		{"fenced block", "```json\n{\"ticker\": \"HIG\"}\n```", "ticker", "HIG"},
		{"prose wrapped", `Based on the filings, here is the data: {"year": 2025} hope that helps.`, "year", 2025.0},
		{"single quotes repaired", `{'ticker': 'TRV'}`, "ticker", "TRV"},
		{"hjson leniency", "{\n  ticker: CNA\n}", "ticker", "CNA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ParseResponse(tt.raw)
			if err != nil {
				t.Fatalf("ParseResponse(%q): %v", tt.raw, err)
			}
			if out[tt.key] != tt.want {
				t.Errorf("out[%q] = %v, want %v", tt.key, out[tt.key], tt.want)
			}
		})
	}
}

func TestParseResponseFailure(t *testing.T) {
	raw := "I could not find any relevant information in the provided documents."
	out, err := ParseResponse(raw)
	if err == nil {
		t.Fatalf("want failure, got %v", out)
	}
	var failure *ExtractionFailure
	if !errors.As(err, &failure) {
		t.Fatalf("error type %T, want *ExtractionFailure", err)
	}
	if failure.Stage == "" {
		t.Error("failure has no stage")
	}
	if !strings.Contains(failure.RawPreview, "could not find") {
		t.Errorf("preview = %q", failure.RawPreview)
	}
}

func TestParseResponsePreviewTruncated(t *testing.T) {
	raw := strings.Repeat("x", 2000)
	_, err := ParseResponse(raw)
	var failure *ExtractionFailure
	if !errors.As(err, &failure) {
		t.Fatalf("error type %T", err)
	}
	if len(failure.RawPreview) > previewLen {
		t.Errorf("preview length %d exceeds %d", len(failure.RawPreview), previewLen)
	}
}
