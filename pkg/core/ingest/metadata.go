package ingest

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var filingDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseFilingFilename extracts metadata from a filing filename of the form
// TICKER_FORM_YYYY-MM-DD.html, e.g. "TRV_10-Q_2025-11-03.html". The ticker
// may itself contain dots or dashes (BRK.B), so only the last two
// underscore-separated tokens are positional.
//
// For 10-Qs the fiscal quarter is inferred from the filing month: filings
// through May cover Q1, through August Q2, through November Q3. December
// filings also map to Q3; a 10-Q filed that late is a straggler for the
// quarter ended September, not a Q4 report (there is no Q4 10-Q).
func ParseFilingFilename(filename string) (Metadata, error) {
	meta := Metadata{Ticker: "UNKNOWN", Quarter: QuarterAnnual, DocType: DocTypeFiling}

	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	parts := strings.Split(base, "_")
	if len(parts) < 3 {
		return meta, fmt.Errorf("filing filename %q: want TICKER_FORM_DATE, got %d tokens", filename, len(parts))
	}

	date := parts[len(parts)-1]
	form := parts[len(parts)-2]
	ticker := strings.Join(parts[:len(parts)-2], "_")

	if !filingDatePattern.MatchString(date) {
		return meta, fmt.Errorf("filing filename %q: bad date token %q", filename, date)
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return meta, fmt.Errorf("filing filename %q: %w", filename, err)
	}

	meta.Ticker = strings.ToUpper(ticker)
	meta.FormType = form
	meta.FilingDate = date
	meta.Year = t.Year()

	switch form {
	case "10-K":
		meta.Quarter = QuarterAnnual
	case "10-Q":
		meta.Quarter = quarterFromFilingMonth(int(t.Month()))
	default:
		meta.Quarter = QuarterAnnual
	}
	return meta, nil
}

// quarterFromFilingMonth maps a 10-Q filing month to the fiscal quarter the
// filing reports on, assuming calendar fiscal years and the usual ~40-day
// filing lag.
func quarterFromFilingMonth(month int) string {
	switch {
	case month <= 5:
		return "Q1"
	case month <= 8:
		return "Q2"
	default:
		return "Q3"
	}
}

// ParseTranscriptFilename extracts metadata from an earnings-call transcript
// filename of the form TICKER_EARNINGS_YYYY_Q<N>_YYYY-MM-DD.txt. Year and
// quarter are read directly from the name rather than inferred.
func ParseTranscriptFilename(filename string) (Metadata, error) {
	meta := Metadata{Ticker: "UNKNOWN", Quarter: QuarterAnnual, DocType: DocTypeTranscript}

	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	parts := strings.Split(base, "_")
	if len(parts) < 5 {
		return meta, fmt.Errorf("transcript filename %q: want TICKER_EARNINGS_YEAR_QUARTER_DATE, got %d tokens", filename, len(parts))
	}

	date := parts[len(parts)-1]
	quarter := strings.ToUpper(parts[len(parts)-2])
	yearTok := parts[len(parts)-3]
	marker := parts[len(parts)-4]
	ticker := strings.Join(parts[:len(parts)-4], "_")

	if !strings.EqualFold(marker, "EARNINGS") {
		return meta, fmt.Errorf("transcript filename %q: missing EARNINGS marker", filename)
	}
	year, err := strconv.Atoi(yearTok)
	if err != nil || year < 1990 || year > 2100 {
		return meta, fmt.Errorf("transcript filename %q: bad year token %q", filename, yearTok)
	}
	if len(quarter) != 2 || quarter[0] != 'Q' || quarter[1] < '1' || quarter[1] > '4' {
		return meta, fmt.Errorf("transcript filename %q: bad quarter token %q", filename, quarter)
	}
	if !filingDatePattern.MatchString(date) {
		return meta, fmt.Errorf("transcript filename %q: bad date token %q", filename, date)
	}

	meta.Ticker = strings.ToUpper(ticker)
	meta.FilingDate = date
	meta.Year = year
	meta.Quarter = quarter
	return meta, nil
}

// QuarterDisplay renders a quarter value for humans: the annual sentinel
// becomes "Annual", everything else passes through.
func QuarterDisplay(quarter string) string {
	if quarter == QuarterAnnual {
		return "Annual"
	}
	return quarter
}
