// File: internal/usecase/scores.go
package usecase

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"research-paper-ai/internal/domain/model"
)

// ScorePolicy is the configured quality-gate shape: which dimensions are
// tracked, the scale they live on, and the floor used when a review text
// yields nothing. The floor must sit below the pass threshold so an
// unparseable review can never satisfy the gate.
type ScorePolicy struct {
	Dimensions []string
	ScaleMax   float64
	Floor      float64
}

// ExtractScores parses a review's freeform text into per-dimension scores.
// The strategy is layered and the order is a contract:
//  1. a JSON object located anywhere in the text (bracket-matched scan,
//     the surrounding prose is expected);
//  2. label patterns ("novelty: 8", "Total: 85/100", "[8.5]") in priority
//     order, first in-range match per field;
//  3. the configured floor for anything still missing.
//
// Values on the 0-100 scale are rescaled down; values outside any known
// scale are discarded.
func ExtractScores(review string, policy ScorePolicy) *model.DimensionScores {
	out := &model.DimensionScores{Dimensions: make(map[string]float64, len(policy.Dimensions))}

	dims, total := scanJSONScores(review, policy)

	for _, name := range policy.Dimensions {
		if v, ok := dims[name]; ok {
			out.Dimensions[name] = v
			continue
		}
		if v, ok := scanLabeledScore(review, name, policy); ok {
			out.Dimensions[name] = v
			continue
		}
		out.Dimensions[name] = policy.Floor
	}

	switch {
	case total >= 0:
		out.Total = total
	default:
		if v, ok := scanTotalScore(review, policy); ok {
			out.Total = v
		} else {
			out.Total = meanFound(out.Dimensions, policy)
		}
	}
	return out
}

// scanJSONScores walks the text for '{'-rooted substrings, matching brackets
// by hand (a full-document parse would choke on the prose around the block).
// It returns whatever dimensions it found plus the total, -1 when absent.
func scanJSONScores(s string, policy ScorePolicy) (map[string]float64, float64) {
	dims := map[string]float64{}
	total := -1.0

	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			continue
		}
		end, ok := matchBrace(s, i)
		if !ok {
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal([]byte(s[i:end+1]), &obj); err != nil {
			continue
		}

		scores, _ := obj["scores"].(map[string]any)
		if scores == nil {
			// flat fallbacks seen in the wild
			scores = obj
		}
		for _, name := range policy.Dimensions {
			if v, ok := normalizedNumber(scores[name], policy); ok {
				dims[name] = v
			}
		}
		for _, key := range []string{"total", "total_score", "score"} {
			if v, ok := normalizedNumber(scores[key], policy); ok && total < 0 {
				total = v
			}
		}
		if len(dims) > 0 || total >= 0 {
			return dims, total
		}
	}
	return dims, total
}

// matchBrace returns the index of the brace closing s[start], honoring
// string literals and escapes.
func matchBrace(s string, start int) (int, bool) {
	depth := 0
	inString := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func normalizedNumber(v any, policy ScorePolicy) (float64, bool) {
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	return normalizeScale(f, policy)
}

// normalizeScale accepts values on the configured scale as-is, rescales the
// known 0-100 alternate, and rejects everything else.
func normalizeScale(v float64, policy ScorePolicy) (float64, bool) {
	switch {
	case v >= 0 && v <= policy.ScaleMax:
		return v, true
	case v > policy.ScaleMax && v <= 100:
		return v * policy.ScaleMax / 100, true
	default:
		return 0, false
	}
}

var numberPattern = `(\d+(?:\.\d+)?)`

// labelPattern pairs a regex with the scale its match is known to be on;
// denom 0 means "unknown, let normalizeScale decide".
type labelPattern struct {
	re    string
	denom float64
}

func scanLabeledScore(s, dimension string, policy ScorePolicy) (float64, bool) {
	patterns := []labelPattern{
		{`(?i)"?` + regexp.QuoteMeta(dimension) + `"?\s*[:：]\s*` + numberPattern, 0},
		{`(?i)` + regexp.QuoteMeta(dimension) + `\s+score\s*[:：]?\s*` + numberPattern, 0},
	}
	return firstMatch(s, patterns, policy)
}

func scanTotalScore(s string, policy ScorePolicy) (float64, bool) {
	patterns := []labelPattern{
		{`"total"\s*:\s*` + numberPattern, 0},
		{`(?i)total\s*[:：]\s*` + numberPattern, 0},
		{`(?i)overall\s*[:：]\s*` + numberPattern, 0},
		{`(?i)score\s*[:：]\s*` + numberPattern, 0},
		{numberPattern + `\s*/\s*100`, 100},
		{numberPattern + `\s*/\s*` + strconv.FormatFloat(policy.ScaleMax, 'f', -1, 64) + `\b`, policy.ScaleMax},
		{`\[\s*` + numberPattern + `\s*\]`, 0},
	}
	return firstMatch(s, patterns, policy)
}

func firstMatch(s string, patterns []labelPattern, policy ScorePolicy) (float64, bool) {
	for _, p := range patterns {
		re, err := regexp.Compile(p.re)
		if err != nil {
			continue
		}
		m := re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if p.denom > 0 {
			if v < 0 || v > p.denom {
				continue
			}
			return v * policy.ScaleMax / p.denom, true
		}
		if normalized, ok := normalizeScale(v, policy); ok {
			return normalized, true
		}
	}
	return 0, false
}

// meanFound averages the dimensions that parsed to something other than the
// floor; when nothing parsed, the total is the floor as well.
func meanFound(dims map[string]float64, policy ScorePolicy) float64 {
	var sum float64
	var n int
	for _, v := range dims {
		if v != policy.Floor {
			sum += v
			n++
		}
	}
	if n == 0 {
		return policy.Floor
	}
	return sum / float64(n)
}

// Passes reports whether every tracked dimension meets the threshold. The
// gate is per-dimension so one weak axis can't hide behind a strong one.
func (p ScorePolicy) Passes(scores *model.DimensionScores, threshold float64) bool {
	if scores == nil {
		return false
	}
	for _, name := range p.Dimensions {
		if scores.Dimensions[name] < threshold {
			return false
		}
	}
	return true
}

func (p ScorePolicy) String() string {
	return fmt.Sprintf("dimensions=%v scale=%.0f floor=%.1f", p.Dimensions, p.ScaleMax, p.Floor)
}
