// File: internal/usecase/normalize_test.go
package usecase

import (
	"strings"
	"testing"
)

func TestNormalizeResponseStripsReasoningAndSignature(t *testing.T) {
	raw := "<think>\nLet me plan the structure first...\n</think>\n" +
		"# Results\n\nThe findings are significant.\n\n-- Generated by claude-sonnet-4 --"

	sig, clean := NormalizeResponse(raw)
	if sig != "-- Generated by claude-sonnet-4 --" {
		t.Errorf("signature = %q", sig)
	}
	if strings.Contains(clean, "think") {
		t.Errorf("reasoning block survived: %q", clean)
	}
	if !strings.HasPrefix(clean, "# Results") {
		t.Errorf("clean = %q", clean)
	}
	if strings.Contains(clean, "Generated by") {
		t.Errorf("signature survived in content: %q", clean)
	}
}

func TestNormalizeResponseStripsPreamble(t *testing.T) {
	raw := "Sure! Here is the literature review you asked for:\n\n# Literature Review\n\nPrior work falls into three camps."

	_, clean := NormalizeResponse(raw)
	if !strings.HasPrefix(clean, "# Literature Review") {
		t.Errorf("preamble survived: %q", clean)
	}
}

func TestNormalizeResponseKeepsHeadinglessContent(t *testing.T) {
	// a document with no heading and a non-conversational opener stays intact
	raw := "Quantum error correction remains the central obstacle to scaling.\n\nRecent work suggests otherwise."

	_, clean := NormalizeResponse(raw)
	if clean != raw {
		t.Errorf("content was mangled: %q", clean)
	}
}

func TestNormalizeResponseIdempotent(t *testing.T) {
	raw := "Okay, here's the draft:\n\n# Draft\n\nBody text.\n\n-- Generated by gpt-4o --"

	sig1, clean1 := NormalizeResponse(raw)
	sig2, clean2 := NormalizeResponse(clean1)
	if sig1 == "" {
		t.Fatal("first pass found no signature")
	}
	if sig2 != "" {
		t.Errorf("second pass found a signature: %q", sig2)
	}
	if clean1 != clean2 {
		t.Errorf("not idempotent:\n first: %q\nsecond: %q", clean1, clean2)
	}
}

func TestNormalizeResponseSignatureOnly(t *testing.T) {
	sig, clean := NormalizeResponse("-- Generated by tiny-model --")
	if sig != "-- Generated by tiny-model --" {
		t.Errorf("signature = %q", sig)
	}
	if clean != "" {
		t.Errorf("clean = %q, want empty", clean)
	}
}

func TestNormalizeResponseNoSignature(t *testing.T) {
	sig, clean := NormalizeResponse("# Plain\n\nNothing trailing here.")
	if sig != "" {
		t.Errorf("signature = %q, want empty so the caller synthesizes one", sig)
	}
	if clean == "" {
		t.Error("content lost")
	}
}

func TestDeriveAbstractLabeledSection(t *testing.T) {
	content := "# Title\n\n## Abstract\n\nThis paper proposes a novel approach to distributed consensus under partial synchrony.\n\n## Introduction\n\nIntro body."
	got := DeriveAbstract(content)
	want := "This paper proposes a novel approach to distributed consensus under partial synchrony."
	if got != want {
		t.Errorf("abstract = %q, want %q", got, want)
	}
}

func TestDeriveAbstractFirstParagraphFallback(t *testing.T) {
	content := "short\n\nThis opening paragraph is comfortably longer than fifty characters and should win.\n\nMore text."
	got := DeriveAbstract(content)
	if !strings.HasPrefix(got, "This opening paragraph") {
		t.Errorf("abstract = %q", got)
	}
}

func TestDeriveAbstractUnavailable(t *testing.T) {
	if got := DeriveAbstract("tiny"); got != "No abstract available" {
		t.Errorf("abstract = %q", got)
	}
}

func TestDeriveAbstractTruncates(t *testing.T) {
	long := "## Abstract\n\n" + strings.Repeat("x", 900)
	got := DeriveAbstract(long)
	if len(got) != 500 {
		t.Errorf("len = %d, want 500", len(got))
	}
}
