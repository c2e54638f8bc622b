package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocument(t *testing.T) {
	doc := NewDocument("https://example.com", "Example", "summarize", "u1")

	assert.NotEmpty(t, doc.ID)
	assert.Contains(t, doc.ID, "doc_")
	assert.Equal(t, DocumentStatusPending, doc.Status)
	assert.False(t, doc.CreatedAt.IsZero())
}

func TestDocumentSetAnalysisRoundTrip(t *testing.T) {
	doc := NewDocument("https://example.com", "Example", "", "")

	result := &AnalysisResult{
		DocumentID: doc.ID,
		Summary:    "A summary",
		Blocks: []AnalysisBlock{
			{ID: "b1", Type: BlockTypeSummary, Size: BlockSizeMedium, Title: "Overview", Content: "text"},
			{ID: "b2", Type: BlockTypeCode, Size: BlockSizeSmall, Title: "Sample", Content: "print('hi')",
				Metadata: map[string]interface{}{"language": "python"}},
		},
		ToolUsage:         []ToolUsage{{Tool: "google_search"}},
		ProcessingSeconds: 1.5,
	}

	require.NoError(t, doc.SetAnalysis(result))
	assert.Equal(t, "A summary", doc.AnalysisSummary)
	assert.Equal(t, `["google_search"]`, doc.ToolsUsed)

	blocks, err := doc.Blocks()
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, result.Blocks[0].ID, blocks[0].ID)
	assert.Equal(t, result.Blocks[1].Type, blocks[1].Type)
	assert.Equal(t, "python", blocks[1].Language())
}

func TestDocumentStatus(t *testing.T) {
	assert.True(t, DocumentStatusCompleted.IsTerminal())
	assert.True(t, DocumentStatusFailed.IsTerminal())
	assert.False(t, DocumentStatusScraping.IsTerminal())
	assert.True(t, DocumentStatusAnalyzing.IsValid())
	assert.False(t, DocumentStatus("archived").IsValid())
}
