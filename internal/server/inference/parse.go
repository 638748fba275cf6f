package inference

import (
	"encoding/json"
	"regexp"
	"strings"
)

// TitleSummary is the pair extracted from a model response.
type TitleSummary struct {
	Title   string
	Summary string
}

// Parser tries to extract a (title, summary) pair from raw model output.
// ok is false when the format could not be recognized.
type Parser func(raw string) (pair TitleSummary, ok bool)

const (
	maxTitleLen   = 100
	maxSummaryLen = 500
)

// Placeholder values returned when every parsing strategy fails.
const (
	PlaceholderTitle   = "Journal Entry"
	PlaceholderSummary = "Unable to generate summary due to parsing error"
)

var (
	titleRe   = regexp.MustCompile(`(?s)TITLE_START:(.*?)TITLE_END`)
	summaryRe = regexp.MustCompile(`(?s)SUMMARY_START:(.*?)SUMMARY_END`)
)

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}

// clean normalizes a delimiter-protocol span: the capture keeps the colon
// that precedes the closing marker, so a trailing ":" is stripped.
func clean(s string, max int) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ":")
	return truncate(strings.TrimSpace(s), max)
}

// ParseDelimited extracts the pair from the TITLE_START/SUMMARY_START marker
// protocol. When the title markers are missing it degrades to taking the
// first non-empty line before the summary marker as the title.
func ParseDelimited(raw string) (TitleSummary, bool) {
	summaryMatch := summaryRe.FindStringSubmatch(raw)
	if summaryMatch == nil {
		return TitleSummary{}, false
	}
	summary := clean(summaryMatch[1], maxSummaryLen)

	var title string
	if titleMatch := titleRe.FindStringSubmatch(raw); titleMatch != nil {
		title = clean(titleMatch[1], maxTitleLen)
	} else {
		title = recoverTitle(raw)
	}

	if title == "" || summary == "" {
		return TitleSummary{}, false
	}
	return TitleSummary{Title: title, Summary: summary}, true
}

// recoverTitle returns the first non-empty line preceding the summary marker.
func recoverTitle(raw string) string {
	idx := strings.Index(raw, "SUMMARY_START:")
	if idx < 0 {
		return ""
	}
	for _, line := range strings.Split(raw[:idx], "\n") {
		if line := clean(line, maxTitleLen); line != "" {
			return line
		}
	}
	return ""
}

var (
	fenceRe       = regexp.MustCompile("(?m)^```(?:json)?\\s*|\\s*```$")
	bareKeyRe     = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)(\s*:)`)
	missingComma  = regexp.MustCompile("\"\\s*\\n\\s*\"")
)

// ParseJSONObject extracts the pair from a single JSON object in raw,
// applying best-effort repair first: code fences stripped, the outermost
// brace pair isolated, bare keys quoted, missing commas between adjacent
// string fields inserted. Backticks inside values (the prompt asks for them
// instead of quotes) become apostrophes.
func ParseJSONObject(raw string) (TitleSummary, bool) {
	s := fenceRe.ReplaceAllString(strings.TrimSpace(raw), "")

	first := strings.Index(s, "{")
	last := strings.LastIndex(s, "}")
	if first < 0 || last < 0 || first >= last {
		return TitleSummary{}, false
	}
	s = s[first : last+1]
	s = bareKeyRe.ReplaceAllString(s, `$1"$2"$3`)
	s = missingComma.ReplaceAllString(s, "\",\n\"")

	var parsed struct {
		Title   string `json:"title"`
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(s), &parsed); err != nil {
		return TitleSummary{}, false
	}

	title := strings.ReplaceAll(truncate(strings.TrimSpace(parsed.Title), maxTitleLen), "`", "'")
	summary := strings.ReplaceAll(truncate(strings.TrimSpace(parsed.Summary), maxSummaryLen), "`", "'")
	if title == "" || summary == "" {
		return TitleSummary{}, false
	}
	return TitleSummary{Title: title, Summary: summary}, true
}
