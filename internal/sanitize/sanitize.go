// Package sanitize normalizes arbitrary free text into a form the
// fixed-width document renderer can always paginate. The single contract:
// after Sanitize, no atomic token is wider than the wrappable line width,
// whatever the renderer's own word-wrap does.
package sanitize

import (
	"strings"
	"unicode"
)

const (
	// MaxTokenLen is the widest non-whitespace run allowed through. Any
	// longer run is split by inserting a space every MaxTokenLen runes.
	MaxTokenLen = 40

	// Runs of a repeated rule character at least ruleRunMin long are broken
	// into space-separated groups of ruleGroupLen.
	ruleRunMin   = 10
	ruleGroupLen = 10
)

// ruleChars are characters people type as horizontal rules or underlines.
// A long unbroken run of one of these defeats word-wrap just like a long
// word does.
const ruleChars = "-_=*~"

// Sanitize makes raw safe for fixed-width pagination. It is total (empty in,
// empty out; never fails) and idempotent: applying it twice equals applying
// it once.
func Sanitize(raw string) string {
	if raw == "" {
		return ""
	}
	s := Narrow(raw)
	s = stripControls(s)
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = softenRuleRuns(s)
	s = softenLongTokens(s)
	return s
}

// Narrow removes every rune outside Latin-1. The renderer's core fonts cover
// only that single-byte set, so narrowing is a removal, not a replacement.
func Narrow(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r <= unicode.MaxLatin1 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// stripControls removes control characters except newline and carriage
// return. Tab becomes a single space. Latin-1 C1 controls (0x80-0x9F) are
// control characters too and are removed with the rest.
func stripControls(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r':
			b.WriteRune(r)
		case r == '\t':
			b.WriteByte(' ')
		case unicode.IsControl(r):
			// dropped
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// softenRuleRuns breaks a run of ruleRunMin or more identical rule
// characters into space-separated groups of ruleGroupLen. A group of exactly
// ruleGroupLen re-enters this function as a single group and comes out
// unchanged, which keeps the pass idempotent.
func softenRuleRuns(s string) string {
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(rs); {
		r := rs[i]
		if !strings.ContainsRune(ruleChars, r) {
			b.WriteRune(r)
			i++
			continue
		}

		j := i
		for j < len(rs) && rs[j] == r {
			j++
		}
		run := j - i

		if run < ruleRunMin {
			for k := 0; k < run; k++ {
				b.WriteRune(r)
			}
		} else {
			for k := 0; k < run; k += ruleGroupLen {
				if k > 0 {
					b.WriteByte(' ')
				}
				n := ruleGroupLen
				if run-k < n {
					n = run - k
				}
				for t := 0; t < n; t++ {
					b.WriteRune(r)
				}
			}
		}
		i = j
	}
	return b.String()
}

// softenLongTokens splits every maximal non-whitespace run longer than
// MaxTokenLen by inserting a space each MaxTokenLen runes. URL-shaped tokens
// get no exemption: a link wider than the wrap width is sliced like any
// other token, and because this is a single pass nothing is processed twice.
// Whitespace outside tokens passes through untouched, so segments of exactly
// MaxTokenLen produced here are stable on a second application.
func softenLongTokens(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/MaxTokenLen + 1)
	var tok []rune

	flush := func() {
		if len(tok) == 0 {
			return
		}
		if len(tok) <= MaxTokenLen {
			b.WriteString(string(tok))
		} else {
			for i := 0; i < len(tok); i += MaxTokenLen {
				if i > 0 {
					b.WriteByte(' ')
				}
				end := i + MaxTokenLen
				if end > len(tok) {
					end = len(tok)
				}
				b.WriteString(string(tok[i:end]))
			}
		}
		tok = tok[:0]
	}

	for _, r := range s {
		if unicode.IsSpace(r) {
			flush()
			b.WriteRune(r)
		} else {
			tok = append(tok, r)
		}
	}
	flush()
	return b.String()
}
