// Package persona recovers persona documents from free-form model output.
//
// Parsing is deliberately lenient: a line that cannot be fully understood is
// kept with whatever could be extracted and an anomaly is recorded on the
// document. Format never fails.
package persona

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"persona-agent/internal/core/domain"
)

const maxLabelRunes = 40

var citationPattern = regexp.MustCompile(`(?i)\[\s*source\s*:\s*([^\]]*)\]\s*$`)

// lineBreak matches every Unicode line terminator, CRLF as one.
var lineBreak = regexp.MustCompile(`\r\n|[\n\v\f\r\x{85}\x{2028}\x{2029}]`)

var headers = func() map[string]domain.SectionName {
	m := make(map[string]domain.SectionName, len(domain.SectionOrder))
	for _, name := range domain.SectionOrder {
		m[string(name)] = name
	}
	return m
}()

// Words that may surround an id inside a citation token.
var citationNoise = map[string]bool{
	"post": true, "comment": true, "id": true, "post/comment": true, "and": true,
}

// Tokens that explicitly mean "no source".
var noSource = map[string]bool{
	"n/a": true, "na": true, "none": true, "unknown": true, "-": true,
}

// Format parses raw model text into a persona document for username. Citations
// are kept only when they name a record of activity.
func Format(raw, username string, activity domain.UserActivity) domain.PersonaDocument {
	doc := domain.NewPersonaDocument(username)
	known := activity.IDs()

	lines := splitLines(raw)
	if i := indexOf(lines, username); i >= 0 {
		lines = lines[i+1:]
	} else {
		doc.Anomalies = append(doc.Anomalies, domain.Anomaly{Kind: domain.AnomalyMissingUsername})
	}

	seen := make(map[domain.SectionName]bool, len(domain.SectionOrder))
	var current *domain.Section
	for _, line := range lines {
		if name, ok := headers[line]; ok {
			current = doc.Section(name)
			seen[name] = true
			continue
		}
		if current == nil {
			doc.Anomalies = append(doc.Anomalies, domain.Anomaly{Kind: domain.AnomalyOrphanLine, Line: line})
			continue
		}
		attr, anomaly := parseAttribute(line, current.Name, known)
		current.Attributes = append(current.Attributes, attr)
		if anomaly != "" {
			doc.Anomalies = append(doc.Anomalies, domain.Anomaly{Kind: anomaly, Line: line})
		}
	}

	for _, name := range domain.SectionOrder {
		if !seen[name] {
			doc.Anomalies = append(doc.Anomalies, domain.Anomaly{Kind: domain.AnomalyMissingSection, Line: string(name)})
		}
	}
	return doc
}

// splitLines trims every line and drops blank ones.
func splitLines(raw string) []string {
	var out []string
	for _, line := range lineBreak.Split(raw, -1) {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func indexOf(lines []string, s string) int {
	for i, line := range lines {
		if line == s {
			return i
		}
	}
	return -1
}

func parseAttribute(line string, section domain.SectionName, known map[string]struct{}) (domain.Attribute, domain.AnomalyKind) {
	text := stripBullet(line)

	var attr domain.Attribute
	anomaly := domain.AnomalyMissingCitation
	if m := citationPattern.FindStringSubmatchIndex(text); m != nil {
		attr.Citation, anomaly = resolveCitation(text[m[2]:m[3]], known)
		text = strings.TrimSpace(text[:m[0]])
	}

	if section.Labeled() {
		attr.Label, attr.Value = splitLabel(text)
	} else {
		attr.Value = text
	}
	return attr, anomaly
}

func stripBullet(line string) string {
	for _, marker := range []string{"-", "*", "•"} {
		rest, ok := strings.CutPrefix(line, marker)
		if !ok {
			continue
		}
		if rest == "" || unicode.IsSpace([]rune(rest)[0]) {
			return strings.TrimSpace(rest)
		}
	}
	return line
}

// resolveCitation picks the first id in ref that belongs to the activity. When
// the activity has no ids to check against, the first candidate is trusted.
func resolveCitation(ref string, known map[string]struct{}) (string, domain.AnomalyKind) {
	tokens := strings.FieldsFunc(ref, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})

	sawCandidate := false
	for _, tok := range tokens {
		tok = strings.Trim(tok, `"'()<>:.`)
		lower := strings.ToLower(tok)
		if tok == "" || citationNoise[lower] {
			continue
		}
		if noSource[lower] {
			continue
		}
		sawCandidate = true
		for _, id := range candidates(tok) {
			if len(known) == 0 {
				return id, ""
			}
			if _, ok := known[id]; ok {
				return id, ""
			}
		}
	}
	if sawCandidate {
		return "", domain.AnomalyUnknownCitation
	}
	return "", domain.AnomalyMissingCitation
}

// candidates yields tok and, for reddit fullnames such as t3_abc, the bare id.
func candidates(tok string) []string {
	for _, prefix := range []string{"t1_", "t3_"} {
		if rest, ok := strings.CutPrefix(tok, prefix); ok && rest != "" {
			return []string{tok, rest}
		}
	}
	return []string{tok}
}

func splitLabel(text string) (string, string) {
	idx := strings.Index(text, ":")
	if idx <= 0 || strings.HasPrefix(text[idx+1:], "//") {
		return "", text
	}
	label := strings.TrimSpace(text[:idx])
	if label == "" || utf8.RuneCountInString(label) > maxLabelRunes || strings.Contains(label, "[") {
		return "", text
	}
	return label, strings.TrimSpace(text[idx+1:])
}
