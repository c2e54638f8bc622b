// -----------------------------------------------------------------------
// Block Conventions - per-type content checks and auto-repair
// -----------------------------------------------------------------------

package analyzer

import (
	"regexp"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docify/internal/models"
)

const (
	maxSummaryChars = 2000
)

// boldTitleRegex matches the **Title** ***Body*** markup structured text
// blocks use for their entries.
var boldTitleRegex = regexp.MustCompile(`\*\*[^*]+\*\*`)

// mermaidStartTokens are the diagram keywords a mermaid block must open
// with to render.
var mermaidStartTokens = []string{
	"graph",
	"flowchart",
	"sequenceDiagram",
	"classDiagram",
	"stateDiagram",
	"erDiagram",
	"gantt",
	"pie",
}

// blockConvention describes the content rule for one block type and how to
// handle a violation.
type blockConvention struct {
	check  func(block *models.AnalysisBlock) bool
	repair func(block *models.AnalysisBlock) bool
}

// conventionTable maps block types to their markup conventions. Types
// absent from the table carry free-form content.
var conventionTable = map[models.BlockType]blockConvention{
	models.BlockTypeCode: {
		check:  func(b *models.AnalysisBlock) bool { return b.Language() != "" },
		repair: repairCodeLanguage,
	},
	models.BlockTypeMermaid: {
		check: hasMermaidStart,
	},
	models.BlockTypeKeyPoints:       {check: hasBoldTitles},
	models.BlockTypeBestPractices:   {check: hasBoldTitles},
	models.BlockTypeGuide:           {check: hasBoldTitles},
	models.BlockTypeArchitecture:    {check: hasBoldTitles},
	models.BlockTypeAPIReference:    {check: hasBoldTitles},
	models.BlockTypeTroubleshooting: {check: hasBoldTitles},
	models.BlockTypeComparison: {
		check: func(b *models.AnalysisBlock) bool {
			return strings.Contains(b.Content, "****")
		},
	},
}

func hasBoldTitles(b *models.AnalysisBlock) bool {
	return boldTitleRegex.MatchString(b.Content)
}

func hasMermaidStart(b *models.AnalysisBlock) bool {
	content := strings.TrimSpace(b.Content)
	for _, token := range mermaidStartTokens {
		if strings.HasPrefix(content, token) {
			return true
		}
	}
	return false
}

// repairCodeLanguage sniffs a language from code content when metadata has
// none. Returns false when nothing recognizable is found.
func repairCodeLanguage(b *models.AnalysisBlock) bool {
	lang := sniffLanguage(b.Content)
	if lang == "" {
		return false
	}
	if b.Metadata == nil {
		b.Metadata = map[string]interface{}{}
	}
	b.Metadata["language"] = lang
	return true
}

// sniffLanguage guesses a programming language from keyword signals.
func sniffLanguage(code string) string {
	switch {
	case strings.Contains(code, "def ") && strings.Contains(code, ":"):
		return "python"
	case strings.Contains(code, "import ") && strings.Contains(code, ":") && !strings.Contains(code, ";"):
		return "python"
	case strings.Contains(code, "function ") || strings.Contains(code, "=>") || strings.Contains(code, "const "):
		return "javascript"
	case strings.Contains(code, "public class ") || strings.Contains(code, "public static void"):
		return "java"
	case strings.Contains(code, "<?php"):
		return "php"
	case strings.Contains(code, "<html") || strings.Contains(code, "<div"):
		return "html"
	case containsAnyFold(code, "SELECT ", "INSERT INTO ", "CREATE TABLE "):
		return "sql"
	case strings.HasPrefix(strings.TrimSpace(code), "#!") || strings.Contains(code, "echo "):
		return "bash"
	}
	return ""
}

func containsAnyFold(s string, subs ...string) bool {
	upper := strings.ToUpper(s)
	for _, sub := range subs {
		if strings.Contains(upper, sub) {
			return true
		}
	}
	return false
}

// applyConventions runs the per-type content checks, auto-repairing where
// possible and dropping blocks that cannot be fixed.
func applyConventions(blocks []models.AnalysisBlock, logger arbor.ILogger) []models.AnalysisBlock {
	kept := blocks[:0]
	for i := range blocks {
		block := &blocks[i]
		convention, ok := conventionTable[block.Type]
		if !ok || convention.check(block) {
			kept = append(kept, *block)
			continue
		}
		if convention.repair != nil && convention.repair(block) {
			logger.Debug().
				Str("block_id", block.ID).
				Str("type", string(block.Type)).
				Msg("Block content repaired to meet convention")
			kept = append(kept, *block)
			continue
		}
		logger.Debug().
			Str("block_id", block.ID).
			Str("type", string(block.Type)).
			Msg("Dropping block, content convention violated")
	}
	return kept
}

// capSummary enforces the summary length cap, cutting at the last sentence
// boundary past half the cap when one exists.
func capSummary(summary string) string {
	if len(summary) <= maxSummaryChars {
		return summary
	}

	truncated := summary[:maxSummaryChars]
	if idx := strings.LastIndexAny(truncated, ".!?"); idx > maxSummaryChars/2 {
		return truncated[:idx+1]
	}
	return truncated + "..."
}
