package ingest

import (
	"regexp"
	"strings"
)

// speakerLine matches a transcript attribution line such as
// "John Doe - Chief Financial Officer:" or "Operator:". The name may carry an
// optional " - Role" suffix. The trailing colon is required so ordinary
// sentences that happen to fill a line are not mistaken for attributions.
var speakerLine = regexp.MustCompile(`^([A-Z][A-Za-z\s.']+?(?:\s-\s[A-Za-z\s,.&()]+)?):\s*$`)

// SegmentTranscript splits an earnings-call transcript into speaker turns.
// Lines between two attributions belong to the earlier speaker; content
// before the first attribution is credited to "Unknown". Consecutive lines
// of one turn are joined with newlines, so nothing is lost or reordered.
func SegmentTranscript(text string) []Segment {
	var segments []Segment
	speaker := "Unknown"
	var buf []string

	flush := func() {
		body := strings.TrimSpace(strings.Join(buf, "\n"))
		if body != "" {
			segments = append(segments, Segment{Label: speaker, Text: body})
		}
		buf = buf[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if m := speakerLine.FindStringSubmatch(trimmed); m != nil && trimmed != "" {
			flush()
			speaker = strings.TrimSpace(m[1])
			continue
		}
		buf = append(buf, line)
	}
	flush()
	return segments
}
