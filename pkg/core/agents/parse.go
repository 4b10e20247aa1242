package agents

import (
	"encoding/json"
	"fmt"

	"insurance_intel/pkg/core/utils"
)

// ExtractionFailure reports that a model response never yielded a usable
// JSON object. Stage names the last recovery strategy attempted; RawPreview
// keeps the head of the response for debugging. Failures are data, not
// panics: a company's result carries one instead of fabricated numbers.
type ExtractionFailure struct {
	Stage      string `json:"stage"`
	RawPreview string `json:"raw_response_preview"`
	Err        error  `json:"-"`
}

func (e *ExtractionFailure) Error() string {
	return fmt.Sprintf("extraction failed at %s stage: %v", e.Stage, e.Err)
}

func (e *ExtractionFailure) Unwrap() error {
	return e.Err
}

const previewLen = 300

func preview(raw string) string {
	if len(raw) > previewLen {
		return raw[:previewLen]
	}
	return raw
}

// ParseResponse recovers a JSON object from a model response. The chain is
// strict and ordered: plain parse, fence strip, brace slice, mechanical
// repair, hjson. Each stage feeds the next; when the last one fails the
// caller gets an ExtractionFailure, never a guessed object.
func ParseResponse(raw string) (map[string]interface{}, error) {
	var out map[string]interface{}

	if err := json.Unmarshal([]byte(raw), &out); err == nil {
		return out, nil
	}

	stripped := utils.StripCodeFences(raw)
	if err := json.Unmarshal([]byte(stripped), &out); err == nil {
		return out, nil
	}

	sliced, ok := utils.SliceBraces(stripped)
	if ok {
		if err := json.Unmarshal([]byte(sliced), &out); err == nil {
			return out, nil
		}
	} else {
		sliced = stripped
	}

	repaired, repairErr := utils.RepairJSON(sliced)
	if repairErr == nil {
		if err := json.Unmarshal([]byte(repaired), &out); err == nil {
			return out, nil
		}
	}

	hjsonOut, hjsonErr := utils.ParseHJSON(sliced)
	if hjsonErr == nil {
		if err := json.Unmarshal([]byte(hjsonOut), &out); err == nil {
			return out, nil
		}
	}

	return nil, &ExtractionFailure{
		Stage:      "hjson",
		RawPreview: preview(raw),
		Err:        fmt.Errorf("no strategy produced a JSON object (repair: %v, hjson: %v)", repairErr, hjsonErr),
	}
}
