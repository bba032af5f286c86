// File: internal/usecase/normalize.go
package usecase

import (
	"regexp"
	"strings"
)

// The generation provider wraps useful output in conversational noise:
// reasoning blocks, "Sure, here you go" preambles and a trailing authorship
// signature. Normalization peels these off in a fixed order so the stored
// content is the document and nothing else.

var (
	reasoningBlockRe = regexp.MustCompile(`(?s)<(think|thinking|reasoning)>.*?</(?:think|thinking|reasoning)>`)
	signatureLineRe  = regexp.MustCompile(`^--\s*Generated by\s+.+--$`)
	headingLineRe    = regexp.MustCompile(`^(#{1,6}\s+\S|Title\s*[:：])`)
	abstractRe       = regexp.MustCompile(`(?mi)^#{1,6}\s*(?:Abstract|Summary)\s*$`)
	headingAnyRe     = regexp.MustCompile(`(?m)^#{1,6}\s+\S`)
)

// conversational openers that mark a throwaway leading paragraph
var preambleOpeners = []string{
	"sure", "here", "of course", "certainly", "okay", "ok,", "great",
	"absolutely", "below", "i ", "i'",
}

const (
	abstractMaxLen    = 500
	abstractMinLen    = 50
	preambleMaxLen    = 200
	abstractFallback  = "No abstract available"
	signatureFallback = "-- Generated by %s (Fallback) --"
)

// NormalizeResponse cleans one raw generation response. It returns the
// extracted trailing signature (empty when the text carries none; the caller
// decides on a fallback) and the cleaned content. Normalizing already-clean
// content is a no-op.
func NormalizeResponse(raw string) (signature, clean string) {
	// 1. drop delimited internal-reasoning blocks wholesale
	clean = reasoningBlockRe.ReplaceAllString(raw, "")
	clean = strings.TrimSpace(clean)

	// 2. peel a trailing "-- Generated by X --" line
	if idx := strings.LastIndex(clean, "\n"); idx >= 0 {
		last := strings.TrimSpace(clean[idx+1:])
		if signatureLineRe.MatchString(last) {
			signature = last
			clean = strings.TrimSpace(clean[:idx])
		}
	} else if signatureLineRe.MatchString(clean) {
		// single-line response that is only a signature
		signature = clean
		clean = ""
	}

	// 3. discard the conversational preamble before the first heading
	clean = stripPreamble(clean)
	return signature, clean
}

func stripPreamble(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if headingLineRe.MatchString(strings.TrimSpace(line)) {
			if i == 0 {
				return s
			}
			return strings.TrimSpace(strings.Join(lines[i:], "\n"))
		}
	}

	// No heading anywhere: strip a short leading conversational clause up to
	// the first blank-line-delimited paragraph break.
	parts := strings.SplitN(s, "\n\n", 2)
	if len(parts) == 2 {
		first := strings.TrimSpace(parts[0])
		if len(first) <= preambleMaxLen && looksConversational(first) {
			return strings.TrimSpace(parts[1])
		}
	}
	return s
}

func looksConversational(para string) bool {
	if strings.HasSuffix(para, ":") {
		return true
	}
	l := strings.ToLower(para)
	for _, opener := range preambleOpeners {
		if strings.HasPrefix(l, opener) {
			return true
		}
	}
	return false
}

// DeriveAbstract pulls an abstract out of cleaned paper content: a labeled
// Abstract/Summary section first, the first substantial paragraph second,
// an explicit unavailable marker last. It never fails.
func DeriveAbstract(content string) string {
	if loc := abstractRe.FindStringIndex(content); loc != nil {
		rest := content[loc[1]:]
		if next := headingAnyRe.FindStringIndex(rest); next != nil {
			rest = rest[:next[0]]
		}
		if a := strings.TrimSpace(rest); a != "" {
			return truncate(a, abstractMaxLen)
		}
	}

	for _, para := range strings.Split(content, "\n\n") {
		if p := strings.TrimSpace(para); len(p) > abstractMinLen {
			return truncate(p, abstractMaxLen)
		}
	}
	return abstractFallback
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
