package models

import "time"

// BlockType identifies the kind of an analysis block.
type BlockType string

const (
	BlockTypeSummary         BlockType = "summary"
	BlockTypeKeyPoints       BlockType = "key_points"
	BlockTypeArchitecture    BlockType = "architecture"
	BlockTypeMermaid         BlockType = "mermaid"
	BlockTypeCode            BlockType = "code"
	BlockTypeAPIReference    BlockType = "api_reference"
	BlockTypeGuide           BlockType = "guide"
	BlockTypeComparison      BlockType = "comparison"
	BlockTypeBestPractices   BlockType = "best_practices"
	BlockTypeTroubleshooting BlockType = "troubleshooting"
)

// BlockTypes lists every valid block type.
var BlockTypes = []BlockType{
	BlockTypeSummary,
	BlockTypeKeyPoints,
	BlockTypeArchitecture,
	BlockTypeMermaid,
	BlockTypeCode,
	BlockTypeAPIReference,
	BlockTypeGuide,
	BlockTypeComparison,
	BlockTypeBestPractices,
	BlockTypeTroubleshooting,
}

// IsValid reports whether t is a known block type.
func (t BlockType) IsValid() bool {
	for _, known := range BlockTypes {
		if t == known {
			return true
		}
	}
	return false
}

// BlockSize is the display footprint of a block on the rendering grid.
type BlockSize string

const (
	BlockSizeSmall  BlockSize = "small"
	BlockSizeMedium BlockSize = "medium"
	BlockSizeLarge  BlockSize = "large"
)

// Grid layout bounds for a block list.
const (
	// GridCapacity is the total cost budget for one analysis.
	GridCapacity = 8
	// MaxBlocks caps the number of blocks regardless of size.
	MaxBlocks = 6
	// MaxMediumBlocks caps medium blocks before demotion to small.
	MaxMediumBlocks = 2
)

// IsValid reports whether s is a known block size.
func (s BlockSize) IsValid() bool {
	switch s {
	case BlockSizeSmall, BlockSizeMedium, BlockSizeLarge:
		return true
	}
	return false
}

// GridCost returns the grid units the size occupies.
func (s BlockSize) GridCost() int {
	switch s {
	case BlockSizeMedium:
		return 2
	case BlockSizeLarge:
		return 3
	default:
		return 1
	}
}

// AnalysisBlock is one structured unit of LLM output.
type AnalysisBlock struct {
	ID       string                 `json:"id"`
	Type     BlockType              `json:"type"`
	Size     BlockSize              `json:"size"`
	Title    string                 `json:"title"`
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Language returns the metadata language tag for a code block, empty when
// unset.
func (b *AnalysisBlock) Language() string {
	if b.Metadata == nil {
		return ""
	}
	if lang, ok := b.Metadata["language"].(string); ok {
		return lang
	}
	return ""
}

// TotalGridCost sums the grid cost of a block list.
func TotalGridCost(blocks []AnalysisBlock) int {
	total := 0
	for _, b := range blocks {
		total += b.Size.GridCost()
	}
	return total
}

// ToolUsage records one tool invocation made by the model during analysis.
type ToolUsage struct {
	Tool      string    `json:"tool"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// AnalysisResult is the validated output of one analysis run.
type AnalysisResult struct {
	DocumentID        string          `json:"document_id"`
	AnalysisID        string          `json:"analysis_id"`
	Summary           string          `json:"summary"`
	Blocks            []AnalysisBlock `json:"blocks"`
	ToolUsage         []ToolUsage     `json:"tool_usage,omitempty"`
	ProcessingSeconds float64         `json:"processing_seconds"`
}
