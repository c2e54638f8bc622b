// -----------------------------------------------------------------------
// Response Repair - ordered strategies for semi-structured model output
// -----------------------------------------------------------------------

package analyzer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ternarybob/docify/internal/models"
)

// repairStrategy is one attempt at turning raw model text into a valid
// analysis. Strategies run in order; the first success wins.
type repairStrategy struct {
	name  string
	apply func(text string) (*ParsedAnalysis, error)
}

var repairStrategies = []repairStrategy{
	{name: "direct", apply: repairDirect},
	{name: "extract", apply: repairExtract},
	{name: "syntactic", apply: repairSyntactic},
	{name: "synthesize", apply: repairSynthesize},
}

// repairDirect parses the trimmed text as a single JSON object.
func repairDirect(text string) (*ParsedAnalysis, error) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") || !strings.HasSuffix(trimmed, "}") {
		return nil, fmt.Errorf("text is not a bare JSON object")
	}
	return parseAndValidate(trimmed)
}

var fencedJSONRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// repairExtract pulls JSON-looking substrings out of surrounding prose:
// fenced code blocks first, then the largest brace-balanced substring.
func repairExtract(text string) (*ParsedAnalysis, error) {
	for _, match := range fencedJSONRegex.FindAllStringSubmatch(text, -1) {
		if parsed, err := parseAndValidate(match[1]); err == nil {
			return parsed, nil
		}
	}

	if candidate := braceBalancedSubstring(text); candidate != "" {
		return parseAndValidate(candidate)
	}

	return nil, fmt.Errorf("no JSON object found in response")
}

// braceBalancedSubstring returns the first brace-balanced {...} span,
// skipping braces inside string literals.
func braceBalancedSubstring(text string) string {
	start := strings.Index(text, "{")
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1]
				}
			}
		}
	}

	return ""
}

var (
	trailingCommaRegex = regexp.MustCompile(`,\s*([}\]])`)
	bareKeyRegex       = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	singleQuoteRegex   = regexp.MustCompile(`'([^'\\]*)'`)
)

// repairSyntactic fixes the common JSON mistakes models make (trailing
// commas, unquoted keys, single-quoted strings) and reparses.
func repairSyntactic(text string) (*ParsedAnalysis, error) {
	candidate := braceBalancedSubstring(text)
	if candidate == "" {
		candidate = strings.TrimSpace(text)
	}

	candidate = trailingCommaRegex.ReplaceAllString(candidate, "$1")
	candidate = bareKeyRegex.ReplaceAllString(candidate, `$1"$2":`)
	candidate = singleQuoteRegex.ReplaceAllString(candidate, `"$1"`)

	return parseAndValidate(candidate)
}

const synthesisSummaryLines = 3

// repairSynthesize builds a minimal two-block analysis from the raw text.
// This strategy never fails, so the pipeline cannot dead-end on malformed
// model output.
func repairSynthesize(text string) (*ParsedAnalysis, error) {
	trimmed := strings.TrimSpace(text)

	var summaryLines []string
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		summaryLines = append(summaryLines, line)
		if len(summaryLines) >= synthesisSummaryLines {
			break
		}
	}
	summary := strings.Join(summaryLines, " ")
	if summary == "" {
		summary = "Analysis could not be generated in the expected format."
	}

	return &ParsedAnalysis{
		Summary: summary,
		Blocks: []models.AnalysisBlock{
			{
				ID:       "fallback-summary",
				Type:     models.BlockTypeSummary,
				Size:     models.BlockSizeMedium,
				Title:    "Document Summary",
				Content:  summary,
				Metadata: map[string]interface{}{"priority": "high"},
			},
			{
				ID:      "fallback-raw",
				Type:    models.BlockTypeKeyPoints,
				Size:    models.BlockSizeSmall,
				Title:   "Raw Response",
				Content: fmt.Sprintf("**Unparsed output** ***The model returned %d characters that could not be parsed as structured analysis.***", len(trimmed)),
				Metadata: map[string]interface{}{
					"raw_length": len(trimmed),
				},
			},
		},
	}, nil
}
