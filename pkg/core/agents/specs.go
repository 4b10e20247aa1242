package agents

import (
	"fmt"

	"insurance_intel/pkg/core/ingest"
)

// Dimension names, used in result routing and report sections.
const (
	DimFinancialMetrics = "financial_metrics"
	DimCompetitivePos   = "competitive_positioning"
	DimStrategicMoves   = "strategic_initiatives"
	DimRiskOutlook      = "risk_outlook"
)

const commonSystemPrompt = `You are a commercial-insurance analyst. Answer only from the
provided filing and earnings-call material. Respond with a single JSON object and no
surrounding prose. If the material does not support an answer, use null for that field
rather than guessing.`

func periodPhrase(year int, quarter string) string {
	return fmt.Sprintf("%s %d", ingest.QuarterDisplay(quarter), year)
}

func promptHeader(company Company, year int, quarter string) string {
	return fmt.Sprintf(
		"Company: %s (%s)\nPeriod: %s\nSegment guidance: %s\n",
		company.Name, company.Ticker, periodPhrase(year, quarter), company.SegmentGuidance)
}

func evidenceBlock(evidence string) string {
	if evidence == "" {
		return ""
	}
	return "\nRelevant extracts:\n" + evidence
}

// FinancialMetricsSpec extracts commercial-segment underwriting metrics.
func FinancialMetricsSpec() AgentSpec {
	return AgentSpec{
		Dimension:    DimFinancialMetrics,
		SystemPrompt: commonSystemPrompt,
		BuildQuery: func(c Company, year int, quarter string) string {
			return fmt.Sprintf("%s %s commercial segment combined ratio net written premiums %s",
				c.Ticker, c.Name, periodPhrase(year, quarter))
		},
		BuildPrompt: func(c Company, year int, quarter string, evidence string) string {
			return promptHeader(c, year, quarter) + evidenceBlock(evidence) + `
Extract the commercial-segment financial metrics for the period. Return JSON:
{
  "ticker": string,
  "segment": string,
  "net_written_premiums": number or null,
  "premium_growth_pct": number or null,
  "combined_ratio": number or null,
  "loss_ratio": number or null,
  "expense_ratio": number or null,
  "underwriting_income": number or null,
  "reserve_development": string or null,
  "notes": string
}`
		},
	}
}

// CompetitivePositioningSpec compares market position and pricing posture.
func CompetitivePositioningSpec() AgentSpec {
	return AgentSpec{
		Dimension:    DimCompetitivePos,
		SystemPrompt: commonSystemPrompt,
		BuildQuery: func(c Company, year int, quarter string) string {
			return fmt.Sprintf("%s commercial lines market position pricing renewal rate %s",
				c.Ticker, periodPhrase(year, quarter))
		},
		BuildPrompt: func(c Company, year int, quarter string, evidence string) string {
			return promptHeader(c, year, quarter) + evidenceBlock(evidence) + `
Describe the company's competitive position in commercial lines for the period. Return JSON:
{
  "ticker": string,
  "market_position": string,
  "pricing_trends": string or null,
  "renewal_rate_change": string or null,
  "retention": string or null,
  "new_business": string or null,
  "competitive_advantages": [string],
  "notes": string
}`
		},
	}
}

// StrategicInitiativesSpec captures announced strategic moves.
func StrategicInitiativesSpec() AgentSpec {
	return AgentSpec{
		Dimension:    DimStrategicMoves,
		SystemPrompt: commonSystemPrompt,
		BuildQuery: func(c Company, year int, quarter string) string {
			return fmt.Sprintf("%s strategic initiatives investments acquisitions technology commercial %s",
				c.Ticker, periodPhrase(year, quarter))
		},
		BuildPrompt: func(c Company, year int, quarter string, evidence string) string {
			return promptHeader(c, year, quarter) + evidenceBlock(evidence) + `
List strategic initiatives affecting the commercial business announced or discussed in
the period. Return JSON:
{
  "ticker": string,
  "initiatives": [
    {"name": string, "category": string, "description": string, "expected_impact": string or null}
  ],
  "notes": string
}`
		},
	}
}

// RiskOutlookSpec assesses stated risks and forward guidance.
func RiskOutlookSpec() AgentSpec {
	return AgentSpec{
		Dimension:    DimRiskOutlook,
		SystemPrompt: commonSystemPrompt,
		BuildQuery: func(c Company, year int, quarter string) string {
			return fmt.Sprintf("%s risk factors outlook guidance catastrophe reserves commercial %s",
				c.Ticker, periodPhrase(year, quarter))
		},
		BuildPrompt: func(c Company, year int, quarter string, evidence string) string {
			return promptHeader(c, year, quarter) + evidenceBlock(evidence) + `
Summarise the risks and forward outlook for the commercial business in the period.
Return JSON:
{
  "ticker": string,
  "key_risks": [string],
  "catastrophe_exposure": string or null,
  "reserve_adequacy": string or null,
  "outlook": string or null,
  "notes": string
}`
		},
	}
}

// AllSpecs returns the four dimensions in report order.
func AllSpecs() []AgentSpec {
	return []AgentSpec{
		FinancialMetricsSpec(),
		CompetitivePositioningSpec(),
		StrategicInitiativesSpec(),
		RiskOutlookSpec(),
	}
}
