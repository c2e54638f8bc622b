package analyzer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/docify/internal/models"
)

// ParsedAnalysis is the raw shape expected from the model before grid and
// convention passes run.
type ParsedAnalysis struct {
	Summary string                 `json:"summary"`
	Blocks  []models.AnalysisBlock `json:"blocks"`
}

// validateSchema checks a parsed response against the block schema. Any
// failure sends the cascade on to the next repair strategy.
func validateSchema(parsed *ParsedAnalysis) error {
	if parsed == nil {
		return fmt.Errorf("nil analysis")
	}
	if strings.TrimSpace(parsed.Summary) == "" {
		return fmt.Errorf("summary is empty")
	}
	if len(parsed.Blocks) == 0 {
		return fmt.Errorf("blocks array is empty")
	}
	if len(parsed.Blocks) > models.MaxBlocks {
		return fmt.Errorf("too many blocks: %d (max %d)", len(parsed.Blocks), models.MaxBlocks)
	}

	seen := make(map[string]bool, len(parsed.Blocks))
	for i, block := range parsed.Blocks {
		if block.ID == "" {
			return fmt.Errorf("block %d has no id", i)
		}
		if seen[block.ID] {
			return fmt.Errorf("duplicate block id %q", block.ID)
		}
		seen[block.ID] = true

		if !block.Type.IsValid() {
			return fmt.Errorf("block %q has unknown type %q", block.ID, block.Type)
		}
		if !block.Size.IsValid() {
			return fmt.Errorf("block %q has unknown size %q", block.ID, block.Size)
		}
		if strings.TrimSpace(block.Title) == "" {
			return fmt.Errorf("block %q has no title", block.ID)
		}
		if strings.TrimSpace(block.Content) == "" {
			return fmt.Errorf("block %q has no content", block.ID)
		}
	}

	return nil
}

// parseAndValidate decodes text as a ParsedAnalysis and schema-validates it.
func parseAndValidate(text string) (*ParsedAnalysis, error) {
	var parsed ParsedAnalysis
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	for i := range parsed.Blocks {
		if parsed.Blocks[i].Metadata == nil {
			parsed.Blocks[i].Metadata = map[string]interface{}{}
		}
	}
	if err := validateSchema(&parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}
