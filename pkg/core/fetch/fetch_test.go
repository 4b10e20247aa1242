package fetch

import (
	"strings"
	"testing"
)

func TestFilingFilename(t *testing.T) {
	f := Filing{Ticker: "BRK.B", Form: "10-K", FilingDate: "2025-02-24"}
	if got := f.Filename(); got != "BRK.B_10-K_2025-02-24.html" {
		t.Errorf("Filename() = %q", got)
	}
}

func TestFormatTranscript(t *testing.T) {
	tr := transcriptResponse{
		Split: []struct {
			Speaker string `json:"speaker"`
			Role    string `json:"role"`
			Company string `json:"company"`
			Text    string `json:"text"`
		}{
			{Speaker: "Operator", Text: "Good morning everyone."},
			{Speaker: "Beth Costello", Role: "Chief Financial Officer", Text: "Thank you."},
			{Speaker: "", Text: "Unattributed remark."},
		},
	}
	got := formatTranscript(tr)
	for _, want := range []string{
		"Operator:\nGood morning everyone.",
		"Beth Costello - Chief Financial Officer:\nThank you.",
		"Unknown:\nUnattributed remark.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("transcript missing %q:\n%s", want, got)
		}
	}
}

func TestFormatTranscriptFallsBackToFlatText(t *testing.T) {
	tr := transcriptResponse{Transcript: "Operator: Good morning."}
	if got := formatTranscript(tr); got != "Operator: Good morning." {
		t.Errorf("flat fallback = %q", got)
	}
}
