package textutil

import (
	"reflect"
	"testing"
)

func TestCleanWhitespace(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses runs", "hello   world", "hello world"},
		{"newlines and tabs", "a\n\tb\r\nc", "a b c"},
		{"trims ends", "  padded  ", "padded"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanWhitespace(tt.in); got != tt.want {
				t.Errorf("CleanWhitespace(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"shorter than limit", "abc", 10, "abc"},
		{"exact limit", "abcde", 5, "abcde"},
		{"cut", "abcdef", 3, "abc"},
		{"multibyte safe", "héllo wörld", 5, "héllo"},
		{"zero", "abc", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateRunes(tt.in, tt.n); got != tt.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			"basic",
			"First one. Second one! Third one?",
			[]string{"First one.", "Second one!", "Third one?"},
		},
		{
			"no trailing terminator",
			"Done. And a tail without period",
			[]string{"Done.", "And a tail without period"},
		},
		{
			"decimal not split",
			"The invoice is 12.50 total. Pay soon.",
			[]string{"The invoice is 12.50 total.", "Pay soon."},
		},
		{
			"empty",
			"   ",
			nil,
		},
		{
			"single sentence",
			"Just one sentence.",
			[]string{"Just one sentence."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitSentences(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFirstNSentences(t *testing.T) {
	in := "One. Two. Three. Four."
	if got := FirstNSentences(in, 2); got != "One. Two." {
		t.Errorf("FirstNSentences = %q, want %q", got, "One. Two.")
	}
	if got := FirstNSentences("Only one.", 2); got != "Only one." {
		t.Errorf("FirstNSentences short input = %q", got)
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"lowercases and splits", "Please reply ASAP!", []string{"please", "reply", "asap"}},
		{"punctuation boundaries", "urgent, now; must.", []string{"urgent", "now", "must"}},
		{"apostrophes kept", "don't wait", []string{"don't", "wait"}},
		{"no match inside words", "asapx", []string{"asapx"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
