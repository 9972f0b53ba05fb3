package sanitize

import (
	"strings"
	"testing"
	"unicode"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "plain text unchanged",
			input:    "Form I-130 checklist:\nPassport copy",
			expected: "Form I-130 checklist:\nPassport copy",
		},
		{
			name:     "non latin1 removed not replaced",
			input:    "visa 签证 application",
			expected: "visa  application",
		},
		{
			name:     "emoji removed",
			input:    "done \U0001F389!",
			expected: "done !",
		},
		{
			name:     "tab becomes single space",
			input:    "a\tb",
			expected: "a b",
		},
		{
			name:     "control characters stripped",
			input:    "a\x00b\x07c\x1bd",
			expected: "abcd",
		},
		{
			name:     "newline and carriage return kept",
			input:    "a\r\nb",
			expected: "a\r\nb",
		},
		{
			name:     "c1 controls stripped",
			input:    "a\u0085b\u009fc",
			expected: "abc",
		},
		{
			name:     "non-breaking space becomes space",
			input:    "a\u00a0b",
			expected: "a b",
		},
		{
			name:     "short dash run untouched",
			input:    "---------",
			expected: "---------",
		},
		{
			name:     "dash run of ten is one group",
			input:    "----------",
			expected: "----------",
		},
		{
			name:     "long dash run grouped",
			input:    strings.Repeat("-", 25),
			expected: "---------- ---------- -----",
		},
		{
			name:     "long underscore run grouped",
			input:    strings.Repeat("_", 20),
			expected: "__________ __________",
		},
		{
			name:     "long equals run grouped",
			input:    strings.Repeat("=", 12),
			expected: "========== ==",
		},
		{
			name:     "long token split at forty",
			input:    strings.Repeat("a", 41),
			expected: strings.Repeat("a", 40) + " a",
		},
		{
			name:     "token of exactly forty untouched",
			input:    strings.Repeat("a", 40),
			expected: strings.Repeat("a", 40),
		},
		{
			name:     "url split like any long token",
			input:    "https://example.com/very/long/path/segment/q?x=1234567890",
			expected: "https://example.com/very/long/path/segme nt/q?x=1234567890",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Sanitize(tt.input))
		})
	}
}

// maxTokenLen returns the length in runes of the widest whitespace-delimited
// token in s.
func maxTokenLen(s string) int {
	max := 0
	count := 0
	for _, r := range s {
		if unicode.IsSpace(r) {
			if count > max {
				max = count
			}
			count = 0
			continue
		}
		count++
	}
	if count > max {
		max = count
	}
	return max
}

func sanitizeCorpus() []string {
	f := gofakeit.New(42)
	corpus := []string{
		"",
		"plain words",
		strings.Repeat("x", 500),
		strings.Repeat("-", 100),
		strings.Repeat("_", 39) + "\n" + strings.Repeat("=", 80),
		"mixed 世界 content   with\ttabs\x00and controls",
		strings.Repeat("\n", 100),
		"https://example.com/" + strings.Repeat("segment/", 30),
		strings.Repeat("a", 40) + " " + strings.Repeat("b", 41),
	}
	for i := 0; i < 50; i++ {
		corpus = append(corpus,
			f.Paragraph(2, 4, 12, "\n"),
			f.URL()+f.LetterN(uint(f.Number(0, 120))),
			f.Sentence(30),
		)
	}
	return corpus
}

func TestSanitizeIdempotent(t *testing.T) {
	for _, s := range sanitizeCorpus() {
		once := Sanitize(s)
		require.Equal(t, once, Sanitize(once), "input %q", s)
	}
}

func TestSanitizeTokenWidthBound(t *testing.T) {
	for _, s := range sanitizeCorpus() {
		out := Sanitize(s)
		assert.LessOrEqual(t, maxTokenLen(out), MaxTokenLen, "input %q", s)
	}
}

func TestSanitizeNarrowsCharset(t *testing.T) {
	for _, s := range sanitizeCorpus() {
		for _, r := range Sanitize(s) {
			assert.LessOrEqual(t, r, unicode.MaxLatin1, "input %q", s)
		}
	}
}

func TestNarrow(t *testing.T) {
	assert.Equal(t, "José", Narrow("José"))
	assert.Equal(t, "Ana", Narrow("Ana\U0001F600"))
	assert.Equal(t, "", Narrow("世界"))
}
