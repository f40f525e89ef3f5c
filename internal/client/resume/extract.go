// Package resume derives answer suggestions from an attached resume file.
// Extraction is best effort: any parse failure degrades to treating the raw
// bytes as plain text, and an empty result simply yields no suggestions.
// Attaching the file never depends on this succeeding.
package resume

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// maxMotivationLen caps the suggested motivation text.
const maxMotivationLen = 280

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	xmlTagRe     = regexp.MustCompile(`<[^>]+>`)

	yearsRe         = regexp.MustCompile(`(?i)(\d{1,2})\s+\+?\s*(?:years?|yrs?)\s+(?:of\s+)?experience`)
	yearsFallbackRe = regexp.MustCompile(`(?i)(\d{1,2})\+?\s*(?:yrs|years)`)

	sectionStopRe = regexp.MustCompile(`(?i)(experience|employment|work history|education|skills|projects|certifications|contact)\b`)

	emailRe   = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	contactRe = regexp.MustCompile(`(?i)\b(?:phone|tel|github|linkedin|portfolio)\b`)
	phoneRe   = regexp.MustCompile(`\d{3}[\s().-]*\d{3}[\s().-]*\d{4}`)
)

// summarySections are scanned in order; the first heading found wins.
var summarySections = []string{"summary", "objective", "profile"}

// Suggestions holds the answer values derived from a resume.
type Suggestions struct {
	Motivation      string
	YearsExperience string
	Summary         string
}

// Fields returns the non-empty suggestions keyed by answer field name.
func (s Suggestions) Fields() map[string]string {
	out := map[string]string{}
	if s.Motivation != "" {
		out["motivation"] = s.Motivation
	}
	if s.YearsExperience != "" {
		out["years_experience"] = s.YearsExperience
	}
	return out
}

// ExtractText converts the attachment bytes to whitespace-normalized plain
// text. PDF and docx containers get a real extraction pass; anything else,
// and any extraction failure, falls back to reading the bytes as text.
func ExtractText(fileName string, data []byte) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		if text, err := extractPDFText(data); err == nil {
			return cleanWhitespace(text)
		}
	case ".docx", ".doc":
		if text, err := extractDocxText(data); err == nil {
			return cleanWhitespace(text)
		}
	}
	return cleanWhitespace(string(data))
}

// MapToAnswers runs the suggestion heuristics over extracted text.
func MapToAnswers(text string) Suggestions {
	var s Suggestions

	if m := yearsRe.FindStringSubmatch(text); m != nil {
		s.YearsExperience = m[1]
	} else if m := yearsFallbackRe.FindStringSubmatch(text); m != nil {
		s.YearsExperience = m[1]
	}

	// Prefer the summary/objective/profile section; fall back to the whole
	// document when no such heading exists.
	section := summarySection(text)
	if section == "" {
		section = text
	}

	sentences := make([]string, 0, 2)
	for _, sent := range splitSentences(section) {
		sent = strings.TrimSpace(sent)
		if sent == "" || isContactLine(sent) {
			continue
		}
		sentences = append(sentences, sent)
		if len(sentences) == 2 {
			break
		}
	}

	s.Summary = strings.Join(sentences, " ")
	if s.Summary != "" {
		s.Motivation = s.Summary
		if len(s.Motivation) > maxMotivationLen {
			s.Motivation = s.Motivation[:maxMotivationLen]
		}
	}
	return s
}

// summarySection returns the text between a summary-like heading and the
// next section heading, or "" when no summary heading is present.
func summarySection(text string) string {
	lower := strings.ToLower(text)
	for _, keyword := range summarySections {
		idx := strings.Index(lower, keyword)
		if idx == -1 {
			continue
		}
		after := text[idx+len(keyword):]
		if loc := sectionStopRe.FindStringIndex(after); loc != nil {
			return after[:loc[0]]
		}
		return after
	}
	return ""
}

// splitSentences breaks text at sentence-ending punctuation followed by
// whitespace.
func splitSentences(text string) []string {
	var out []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		if runes[i] != '.' && runes[i] != '!' && runes[i] != '?' {
			continue
		}
		j := i + 1
		if j >= len(runes) || !unicode.IsSpace(runes[j]) {
			continue
		}
		out = append(out, string(runes[start:j]))
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		start = j
		i = j - 1
	}
	if start < len(runes) {
		out = append(out, string(runes[start:]))
	}
	return out
}

// isContactLine filters sentences that are really contact details, which
// make poor motivation text.
func isContactLine(s string) bool {
	return emailRe.MatchString(s) || contactRe.MatchString(s) || phoneRe.MatchString(s)
}

// extractDocxText reads the main document part of a docx container and
// strips the markup.
func extractDocxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	f, err := zr.Open("word/document.xml")
	if err != nil {
		return "", err
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return xmlTagRe.ReplaceAllString(string(raw), " "), nil
}

func cleanWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}
