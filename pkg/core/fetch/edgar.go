// Package fetch downloads the corpus: SEC filings from EDGAR and earnings
// call transcripts from the API Ninjas endpoint. Files are written with the
// exact names the ingestion metadata parser expects.
package fetch

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	// SEC requires a descriptive User-Agent with a contact address
	secUserAgent = "insurance-intel/1.0 (research; contact: ops@example.com)"

	companyTickersURL = "https://www.sec.gov/files/company_tickers.json"
	submissionsURL    = "https://data.sec.gov/submissions/CIK%s.json"
	archivesURL       = "https://www.sec.gov/Archives/edgar/data/%s/%s/%s"
)

// EDGARClient fetches filings via the SEC submissions API.
type EDGARClient struct {
	httpClient *http.Client

	mu          sync.RWMutex
	tickerCache map[string]string // upper ticker -> zero-padded CIK
}

func NewEDGARClient() *EDGARClient {
	return &EDGARClient{
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		tickerCache: make(map[string]string),
	}
}

func (c *EDGARClient) fetchURL(url string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", secUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// LookupCIK resolves a ticker to its zero-padded CIK using the SEC company
// tickers file, loaded once and cached.
func (c *EDGARClient) LookupCIK(ticker string) (string, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	c.mu.RLock()
	cik, ok := c.tickerCache[ticker]
	loaded := len(c.tickerCache) > 0
	c.mu.RUnlock()
	if ok {
		return cik, nil
	}
	if !loaded {
		if err := c.loadTickerCache(); err != nil {
			return "", err
		}
		c.mu.RLock()
		cik, ok = c.tickerCache[ticker]
		c.mu.RUnlock()
		if ok {
			return cik, nil
		}
	}
	// EDGAR lists class shares with a dash (BRK-B), the roster uses a dot
	if alt := strings.ReplaceAll(ticker, ".", "-"); alt != ticker {
		c.mu.RLock()
		cik, ok = c.tickerCache[alt]
		c.mu.RUnlock()
		if ok {
			return cik, nil
		}
	}
	return "", fmt.Errorf("ticker %s not found in SEC company list", ticker)
}

func (c *EDGARClient) loadTickerCache() error {
	fmt.Println("Loading ticker-CIK map from SEC...")
	body, err := c.fetchURL(companyTickersURL)
	if err != nil {
		return fmt.Errorf("load company tickers: %w", err)
	}
	var entries map[string]struct {
		CIK    int    `json:"cik_str"`
		Ticker string `json:"ticker"`
	}
	if err := json.Unmarshal(body, &entries); err != nil {
		return fmt.Errorf("parse company tickers: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range entries {
		c.tickerCache[strings.ToUpper(e.Ticker)] = fmt.Sprintf("%010d", e.CIK)
	}
	fmt.Printf("Loaded %d tickers.\n", len(c.tickerCache))
	return nil
}

// Filing describes one filing found in the submissions index.
type Filing struct {
	Ticker          string
	Form            string
	FilingDate      string // YYYY-MM-DD
	AccessionNumber string
	PrimaryDocument string
	CIK             string
}

// Filename is the canonical local name for the filing.
func (f Filing) Filename() string {
	return fmt.Sprintf("%s_%s_%s.html", f.Ticker, f.Form, f.FilingDate)
}

// recentFilings mirrors the column-oriented layout of the submissions API.
type submissionsDoc struct {
	Filings struct {
		Recent struct {
			AccessionNumber []string `json:"accessionNumber"`
			Form            []string `json:"form"`
			FilingDate      []string `json:"filingDate"`
			PrimaryDocument []string `json:"primaryDocument"`
		} `json:"recent"`
	} `json:"filings"`
}

// LatestFilings returns the most recent filing of each requested form type.
func (c *EDGARClient) LatestFilings(ticker string, forms ...string) ([]Filing, error) {
	cik, err := c.LookupCIK(ticker)
	if err != nil {
		return nil, err
	}
	body, err := c.fetchURL(fmt.Sprintf(submissionsURL, cik))
	if err != nil {
		return nil, fmt.Errorf("submissions for %s: %w", ticker, err)
	}
	var doc submissionsDoc
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parse submissions for %s: %w", ticker, err)
	}

	recent := doc.Filings.Recent
	var out []Filing
	for _, want := range forms {
		for i, form := range recent.Form {
			if form != want {
				continue
			}
			if i >= len(recent.AccessionNumber) || i >= len(recent.FilingDate) || i >= len(recent.PrimaryDocument) {
				break
			}
			out = append(out, Filing{
				Ticker:          strings.ToUpper(ticker),
				Form:            form,
				FilingDate:      recent.FilingDate[i],
				AccessionNumber: recent.AccessionNumber[i],
				PrimaryDocument: recent.PrimaryDocument[i],
				CIK:             cik,
			})
			break // recent list is newest first
		}
	}
	return out, nil
}

// Download fetches the filing's primary document and writes it under dir
// using the canonical filename. Returns the written path.
func (c *EDGARClient) Download(filing Filing, dir string) (string, error) {
	accession := strings.ReplaceAll(filing.AccessionNumber, "-", "")
	cik := strings.TrimLeft(filing.CIK, "0")
	url := fmt.Sprintf(archivesURL, cik, accession, filing.PrimaryDocument)

	body, err := c.fetchURL(url)
	if err != nil {
		return "", fmt.Errorf("download %s %s: %w", filing.Ticker, filing.Form, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, filing.Filename())
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
