package report

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docify/internal/common"
	"github.com/ternarybob/docify/internal/models"
)

func testReportService() *Service {
	config := common.NewDefaultConfig()
	return NewService(&config.Report, arbor.NewLogger())
}

func completedDocument(t *testing.T) *models.Document {
	t.Helper()

	doc := models.NewDocument("https://docs.example.com", "Example Docs", "", "")
	doc.Status = models.DocumentStatusCompleted
	doc.AnalysisSummary = "Example Docs covers installation, configuration and the HTTP API."
	doc.PagesCrawled = 4
	doc.WordCount = 2300

	blocks := []models.AnalysisBlock{
		{
			ID:      "b1",
			Type:    models.BlockTypeKeyPoints,
			Size:    models.BlockSizeSmall,
			Title:   "Key Points",
			Content: "**Install** ***One command setup.*** **Configure** ***The TOML file is optional.***",
		},
		{
			ID:       "b2",
			Type:     models.BlockTypeCode,
			Size:     models.BlockSizeMedium,
			Title:    "Quick Start",
			Content:  "def main():\n    print(\"hello\")",
			Metadata: map[string]interface{}{"language": "python"},
		},
	}
	payload, err := json.Marshal(blocks)
	require.NoError(t, err)
	doc.AnalysisBlocks = string(payload)

	return doc
}

func TestRenderProducesPDF(t *testing.T) {
	service := testReportService()
	doc := completedDocument(t)

	pdfBytes, err := service.Render(context.Background(), doc)
	require.NoError(t, err)
	require.NotEmpty(t, pdfBytes)
	assert.Equal(t, "%PDF", string(pdfBytes[:4]))
	assert.Greater(t, len(pdfBytes), 500)
}

func TestRenderRequiresAnalysis(t *testing.T) {
	service := testReportService()

	doc := models.NewDocument("https://docs.example.com", "Example", "", "")
	_, err := service.Render(context.Background(), doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no analysis")
}

func TestRenderNilDocument(t *testing.T) {
	service := testReportService()

	_, err := service.Render(context.Background(), nil)
	assert.Error(t, err)
}

func TestBuildMarkdownSections(t *testing.T) {
	doc := completedDocument(t)
	blocks, err := doc.Blocks()
	require.NoError(t, err)

	markdown := buildMarkdown(doc, blocks)

	assert.Contains(t, markdown, "# Example Docs")
	assert.Contains(t, markdown, "Source: https://docs.example.com")
	assert.Contains(t, markdown, "## Summary")
	assert.Contains(t, markdown, "## Key Points")
	assert.Contains(t, markdown, "## Quick Start")
	assert.Contains(t, markdown, "```python")
}

func TestBlockBodyFormatting(t *testing.T) {
	tests := []struct {
		name     string
		block    models.AnalysisBlock
		expected string
	}{
		{
			name: "code block fenced with language",
			block: models.AnalysisBlock{
				Type:     models.BlockTypeCode,
				Content:  "print(1)",
				Metadata: map[string]interface{}{"language": "python"},
			},
			expected: "```python\nprint(1)\n```",
		},
		{
			name: "mermaid block fenced",
			block: models.AnalysisBlock{
				Type:    models.BlockTypeMermaid,
				Content: "graph TD\nA-->B",
			},
			expected: "```\ngraph TD\nA-->B\n```",
		},
		{
			name: "comparison delimiters become paragraph breaks",
			block: models.AnalysisBlock{
				Type:    models.BlockTypeComparison,
				Content: "**Option A** fast****slower but cheaper",
			},
			expected: "**Option A** fast\n\nslower but cheaper",
		},
		{
			name: "plain block passes through",
			block: models.AnalysisBlock{
				Type:    models.BlockTypeGuide,
				Content: "**Step 1** ***Do the thing.***",
			},
			expected: "**Step 1** ***Do the thing.***",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, blockBody(tt.block))
		})
	}
}
