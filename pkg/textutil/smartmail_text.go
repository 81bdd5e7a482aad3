// Package textutil provides the sentence and whitespace helpers shared by the
// analysis pipeline stages.
package textutil

import (
	"strings"
	"unicode"
)

// CleanWhitespace collapses all runs of whitespace (including newlines from
// stripped HTML) into single spaces and trims the ends.
func CleanWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TruncateRunes cuts s to at most n runes. No ellipsis is added; callers that
// want one append it themselves.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// SplitSentences splits text at sentence boundaries: '.', '!' or '?' followed
// by whitespace. Trailing terminators stay attached to their sentence. Empty
// fragments are dropped.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	var b strings.Builder
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		b.WriteRune(runes[i])
		if isTerminator(runes[i]) && (i+1 == len(runes) || unicode.IsSpace(runes[i+1])) {
			if s := strings.TrimSpace(b.String()); s != "" {
				sentences = append(sentences, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// FirstNSentences joins the first n sentences of text with single spaces.
func FirstNSentences(text string, n int) string {
	sents := SplitSentences(text)
	if len(sents) > n {
		sents = sents[:n]
	}
	return strings.Join(sents, " ")
}

// Tokenize lowercases text and splits it into word tokens (runs of letters,
// digits and apostrophes). This is what gives keyword matching word-boundary
// semantics: "asapx" is one token and never matches "asap".
func Tokenize(text string) []string {
	lower := strings.ToLower(text)
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}
