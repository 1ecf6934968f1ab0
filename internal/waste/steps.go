package waste

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	lineBreaks = regexp.MustCompile(`[\r\n]+`)
	// numberedStep finds "<digits>. " inside a line. Leftmost matching means a
	// match always starts at the first digit of a run, so "12. " is one
	// marker and never split into "1" and "2. ".
	numberedStep = regexp.MustCompile(`\d+\.\s`)
	numberPrefix = regexp.MustCompile(`^\d+\.\s+`)
)

const bulletGlyphs = "*-+•◦▪‣–"

// Step is one instruction line with its display position.
type Step struct {
	Number int
	Text   string
}

// FormatSteps splits free-form instruction text into clean steps. Lines are
// split on line breaks and before inline "N. " numbering; one leading bullet
// or number marker is removed from each. It never fails: unparseable text
// comes back as a single step and blank text as no steps.
func FormatSteps(raw string) []string {
	steps := []string{}
	for _, line := range lineBreaks.Split(raw, -1) {
		for _, seg := range splitNumbered(line) {
			seg = strings.TrimSpace(seg)
			if seg == "" {
				continue
			}
			seg = strings.TrimSpace(stripMarker(seg))
			if seg == "" {
				continue
			}
			steps = append(steps, seg)
		}
	}
	return steps
}

func splitNumbered(line string) []string {
	var segs []string
	start := 0
	for _, m := range numberedStep.FindAllStringIndex(line, -1) {
		if m[0] > start {
			segs = append(segs, line[start:m[0]])
			start = m[0]
		}
	}
	return append(segs, line[start:])
}

func stripMarker(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if strings.ContainsRune(bulletGlyphs, r) {
		return s[size:]
	}
	if loc := numberPrefix.FindStringIndex(s); loc != nil {
		return s[loc[1]:]
	}
	return s
}

// NumberSteps numbers steps from 1 regardless of any numbering in the text.
func NumberSteps(steps []string) []Step {
	out := make([]Step, len(steps))
	for i, s := range steps {
		out[i] = Step{Number: i + 1, Text: s}
	}
	return out
}
