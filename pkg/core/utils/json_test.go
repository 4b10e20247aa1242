package utils

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"no fence", `{"a": 1}`, `{"a": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFences(tt.in); got != tt.want {
				t.Errorf("StripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSliceBraces(t *testing.T) {
	got, ok := SliceBraces(`Here are the results: {"combined_ratio": 94.2} as requested.`)
	if !ok || got != `{"combined_ratio": 94.2}` {
		t.Errorf("SliceBraces = %q, %v", got, ok)
	}
	if _, ok := SliceBraces("no object here"); ok {
		t.Error("SliceBraces found an object in plain text")
	}
}

func TestRepairJSON(t *testing.T) {
	repaired, err := RepairJSON(`{'ticker': 'HIG', 'metrics': [1, 2,}`)
	if err != nil {
		t.Fatal(err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(repaired), &out); err != nil {
		t.Fatalf("repaired output still invalid: %v\n%s", err, repaired)
	}
	if out["ticker"] != "HIG" {
		t.Errorf("ticker = %v", out["ticker"])
	}
}

func TestParseHJSON(t *testing.T) {
	out, err := ParseHJSON("{\n  ticker: HIG\n  year: 2025\n}")
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatal(err)
	}
	if m["ticker"] != "HIG" {
		t.Errorf("ticker = %v", m["ticker"])
	}
}

func TestCleanMarkdown(t *testing.T) {
	in := "```markdown\n# Report\n\nBody text.\n```"
	got := CleanMarkdown(in)
	if !strings.HasPrefix(got, "# Report") {
		t.Errorf("CleanMarkdown = %q", got)
	}
	if strings.Contains(got, "```") {
		t.Errorf("fence survived: %q", got)
	}
}

func TestValidateMarkdown(t *testing.T) {
	if !ValidateMarkdown("# Title\n\nSome text.") {
		t.Error("valid markdown rejected")
	}
	if ValidateMarkdown("   ") {
		t.Error("blank input accepted")
	}
}
