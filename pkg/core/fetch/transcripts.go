package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const transcriptAPIURL = "https://api.api-ninjas.com/v1/earningstranscript"

// TranscriptClient pulls earnings-call transcripts from the API Ninjas
// endpoint and writes them in the speaker-per-line format the transcript
// segmenter expects.
type TranscriptClient struct {
	apiKey     string
	httpClient *http.Client
}

func NewTranscriptClient(apiKey string) (*TranscriptClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("transcript client: API key is required")
	}
	return &TranscriptClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

type transcriptResponse struct {
	Date       string `json:"date"`
	Transcript string `json:"transcript"`
	Split      []struct {
		Speaker string `json:"speaker"`
		Role    string `json:"role"`
		Company string `json:"company"`
		Text    string `json:"text"`
	} `json:"transcript_split"`
}

// Fetch retrieves one quarter's call for a ticker. EDGAR-style dotted class
// tickers are sent without the suffix; the API only knows parent symbols.
func (t *TranscriptClient) Fetch(ctx context.Context, ticker string, year, quarter int) (string, string, error) {
	apiTicker := ticker
	if idx := strings.Index(apiTicker, "."); idx > 0 {
		apiTicker = apiTicker[:idx]
	}

	q := url.Values{}
	q.Set("ticker", apiTicker)
	q.Set("year", fmt.Sprintf("%d", year))
	q.Set("quarter", fmt.Sprintf("%d", quarter))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, transcriptAPIURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("X-Api-Key", t.apiKey)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("fetch transcript %s %d Q%d: %w", ticker, year, quarter, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("fetch transcript %s %d Q%d: status %d", ticker, year, quarter, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", err
	}

	var tr transcriptResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", "", fmt.Errorf("parse transcript %s %d Q%d: %w", ticker, year, quarter, err)
	}
	if tr.Date == "" && tr.Transcript == "" && len(tr.Split) == 0 {
		return "", "", fmt.Errorf("no transcript available for %s %d Q%d", ticker, year, quarter)
	}
	return formatTranscript(tr), tr.Date, nil
}

// formatTranscript renders the per-speaker split as attribution lines
// followed by the turn text. Falls back to the flat transcript when the
// split is missing.
func formatTranscript(tr transcriptResponse) string {
	if len(tr.Split) == 0 {
		return tr.Transcript
	}
	var sb strings.Builder
	for _, turn := range tr.Split {
		speaker := strings.TrimSpace(turn.Speaker)
		if speaker == "" {
			speaker = "Unknown"
		}
		if role := strings.TrimSpace(turn.Role); role != "" {
			speaker = speaker + " - " + role
		}
		fmt.Fprintf(&sb, "%s:\n%s\n\n", speaker, strings.TrimSpace(turn.Text))
	}
	return sb.String()
}

// Save writes a fetched transcript under dir with the canonical filename
// TICKER_EARNINGS_YYYY_Q<N>_DATE.txt and returns the path.
func (t *TranscriptClient) Save(dir, ticker string, year, quarter int, date, content string) (string, error) {
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	name := fmt.Sprintf("%s_EARNINGS_%d_Q%d_%s.txt", strings.ToUpper(ticker), year, quarter, date)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
