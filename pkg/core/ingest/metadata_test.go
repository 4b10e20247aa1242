package ingest

import "testing"

func TestParseFilingFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		ticker   string
		form     string
		year     int
		quarter  string
	}{
		{"q3 late filer", "TRV_10-Q_2025-11-03.html", "TRV", "10-Q", 2025, "Q3"},
		{"q1 may filing", "HIG_10-Q_2025-04-24.html", "HIG", "10-Q", 2025, "Q1"},
		{"q2 july filing", "CB_10-Q_2025-07-30.html", "CB", "10-Q", 2025, "Q2"},
		{"december straggler stays q3", "CNA_10-Q_2025-12-01.html", "CNA", "10-Q", 2025, "Q3"},
		{"annual report", "WRB_10-K_2025-02-21.html", "WRB", "10-K", 2025, QuarterAnnual},
		{"dotted ticker survives", "BRK.B_10-K_2025-02-24.html", "BRK.B", "10-K", 2025, QuarterAnnual},
		{"nested path", "data/raw/AIG_10-Q_2025-08-01.html", "AIG", "10-Q", 2025, "Q2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, err := ParseFilingFilename(tt.filename)
			if err != nil {
				t.Fatalf("ParseFilingFilename(%q): %v", tt.filename, err)
			}
			if meta.Ticker != tt.ticker {
				t.Errorf("ticker = %q, want %q", meta.Ticker, tt.ticker)
			}
			if meta.FormType != tt.form {
				t.Errorf("form = %q, want %q", meta.FormType, tt.form)
			}
			if meta.Year != tt.year {
				t.Errorf("year = %d, want %d", meta.Year, tt.year)
			}
			if meta.Quarter != tt.quarter {
				t.Errorf("quarter = %q, want %q", meta.Quarter, tt.quarter)
			}
			if meta.DocType != DocTypeFiling {
				t.Errorf("doc type = %q, want %q", meta.DocType, DocTypeFiling)
			}
		})
	}
}

func TestParseFilingFilenameDeterministic(t *testing.T) {
	first, err := ParseFilingFilename("TRV_10-Q_2025-11-03.html")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := ParseFilingFilename("TRV_10-Q_2025-11-03.html")
		if err != nil {
			t.Fatal(err)
		}
		if again != first {
			t.Fatalf("run %d differs: %+v vs %+v", i, again, first)
		}
	}
}

func TestParseFilingFilenameInvalid(t *testing.T) {
	tests := []struct {
		name     string
		filename string
	}{
		{"no tokens", "readme.html"},
		{"missing date", "TRV_10-Q.html"},
		{"garbage date", "TRV_10-Q_notadate.html"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, err := ParseFilingFilename(tt.filename)
			if err == nil {
				t.Fatalf("ParseFilingFilename(%q): want error", tt.filename)
			}
			if meta.Ticker != "UNKNOWN" {
				t.Errorf("fallback ticker = %q, want UNKNOWN", meta.Ticker)
			}
			if meta.Quarter != QuarterAnnual {
				t.Errorf("fallback quarter = %q, want %q", meta.Quarter, QuarterAnnual)
			}
		})
	}
}

func TestParseTranscriptFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		ticker   string
		year     int
		quarter  string
		date     string
	}{
		{"standard", "HIG_EARNINGS_2025_Q3_2025-10-28.txt", "HIG", 2025, "Q3", "2025-10-28"},
		{"dotted ticker", "BRK.B_EARNINGS_2025_Q2_2025-08-02.txt", "BRK.B", 2025, "Q2", "2025-08-02"},
		{"lowercase quarter", "WRB_EARNINGS_2024_q4_2025-01-27.txt", "WRB", 2024, "Q4", "2025-01-27"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, err := ParseTranscriptFilename(tt.filename)
			if err != nil {
				t.Fatalf("ParseTranscriptFilename(%q): %v", tt.filename, err)
			}
			if meta.Ticker != tt.ticker || meta.Year != tt.year || meta.Quarter != tt.quarter || meta.FilingDate != tt.date {
				t.Errorf("got %+v", meta)
			}
			if meta.DocType != DocTypeTranscript {
				t.Errorf("doc type = %q, want %q", meta.DocType, DocTypeTranscript)
			}
		})
	}
}

func TestParseTranscriptFilenameInvalid(t *testing.T) {
	tests := []string{
		"HIG_2025_Q3_2025-10-28.txt",
		"HIG_EARNINGS_20x5_Q3_2025-10-28.txt",
		"HIG_EARNINGS_2025_Q9_2025-10-28.txt",
		"notes.txt",
	}
	for _, filename := range tests {
		if _, err := ParseTranscriptFilename(filename); err == nil {
			t.Errorf("ParseTranscriptFilename(%q): want error", filename)
		}
	}
}

func TestQuarterDisplay(t *testing.T) {
	if got := QuarterDisplay(QuarterAnnual); got != "Annual" {
		t.Errorf("QuarterDisplay(N/A) = %q", got)
	}
	if got := QuarterDisplay("Q3"); got != "Q3" {
		t.Errorf("QuarterDisplay(Q3) = %q", got)
	}
}
