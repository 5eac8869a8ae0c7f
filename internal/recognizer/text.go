package recognizer

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Vision models like to announce their answer; these preambles are dropped.
var preamblePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(the\s+)?text\s+in\s+(the\s+)?image\s+(is|says|reads):?\s*`),
	regexp.MustCompile(`(?i)^(the\s+)?image\s+contains\s+(the\s+following\s+)?text:?\s*`),
	regexp.MustCompile(`(?i)^(certainly!\s+)?here'?s?\s+(is\s+)?(the\s+)?text\s+(extracted\s+)?from\s+(the\s+)?image:?\s*`),
	regexp.MustCompile(`(?i)^here'?s?\s+(is\s+)?the\s+extracted\s+text(\s+from\s+(the\s+)?image)?:?\s*`),
	regexp.MustCompile(`(?i)^(i\s+can\s+see\s+)?text\s+(that\s+says|reading):?\s*`),
	regexp.MustCompile(`(?i)^extracted\s+text:?\s*`),
}

var wsRe = regexp.MustCompile(`\s+`)

// CleanResponse strips model chatter around the extracted text: known
// preambles, a wrapping code fence and surrounding quotes.
func CleanResponse(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") && strings.HasSuffix(s, "```") && len(s) >= 6 {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], " \t") {
			s = s[nl+1:] // language tag line
		}
		s = strings.TrimSpace(s)
	}

	for _, re := range preamblePatterns {
		s = strings.TrimSpace(re.ReplaceAllString(s, ""))
	}

	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}

// NormalizeText applies NFC, drops zero-width and control characters and
// collapses whitespace runs to single spaces.
func NormalizeText(s string) string {
	if s == "" {
		return s
	}
	s = norm.NFC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\u200B' || r == '\u200C' || r == '\u200D' || r == '\uFEFF':
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteRune(r)
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(wsRe.ReplaceAllString(b.String(), " "))
}

// PostProcess is the cleanup applied to every backend's output.
func PostProcess(s string) string {
	return NormalizeText(CleanResponse(s))
}
