package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DocumentStatus tracks a document through the analysis pipeline.
type DocumentStatus string

const (
	DocumentStatusPending   DocumentStatus = "pending"
	DocumentStatusScraping  DocumentStatus = "scraping"
	DocumentStatusAnalyzing DocumentStatus = "analyzing"
	DocumentStatusCompleted DocumentStatus = "completed"
	DocumentStatusFailed    DocumentStatus = "failed"
)

// IsValid reports whether s is one of the known statuses.
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentStatusPending, DocumentStatusScraping, DocumentStatusAnalyzing,
		DocumentStatusCompleted, DocumentStatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether the status ends a run.
func (s DocumentStatus) IsTerminal() bool {
	return s == DocumentStatusCompleted || s == DocumentStatusFailed
}

// Document is the persisted record for an analyzed URL. Status updates
// overwrite the whole record; a document has at most one active run.
type Document struct {
	ID     string `json:"id" badgerhold:"key"`
	URL    string `json:"url"`
	Title  string `json:"title"`
	UserID string `json:"user_id,omitempty"`

	// Free-form guidance passed through to the prompt builder.
	Instructions string `json:"instructions,omitempty"`

	Status DocumentStatus `json:"status" badgerhold:"index"`

	// Scrape output
	ScrapedContent string `json:"scraped_content,omitempty"`
	WordCount      int    `json:"word_count"`
	PagesCrawled   int    `json:"pages_crawled"`

	// Analysis output. Blocks and tools are stored serialized so the
	// record round-trips through badgerhold without nested indexing.
	AnalysisSummary   string  `json:"analysis_summary,omitempty"`
	AnalysisBlocks    string  `json:"analysis_blocks,omitempty"`
	ToolsUsed         string  `json:"tools_used,omitempty"`
	ProcessingSeconds float64 `json:"processing_seconds,omitempty"`

	ErrorMessage string `json:"error_message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDocument creates a pending document for a URL.
func NewDocument(url, title, instructions, userID string) *Document {
	now := time.Now()
	return &Document{
		ID:           "doc_" + uuid.New().String(),
		URL:          url,
		Title:        title,
		Instructions: instructions,
		UserID:       userID,
		Status:       DocumentStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// SetAnalysis stores an analysis result on the document, serializing the
// block list and tool names.
func (d *Document) SetAnalysis(result *AnalysisResult) error {
	blocks, err := json.Marshal(result.Blocks)
	if err != nil {
		return fmt.Errorf("failed to serialize analysis blocks: %w", err)
	}

	toolNames := make([]string, 0, len(result.ToolUsage))
	for _, usage := range result.ToolUsage {
		toolNames = append(toolNames, usage.Tool)
	}
	tools, err := json.Marshal(toolNames)
	if err != nil {
		return fmt.Errorf("failed to serialize tool usage: %w", err)
	}

	d.AnalysisSummary = result.Summary
	d.AnalysisBlocks = string(blocks)
	d.ToolsUsed = string(tools)
	d.ProcessingSeconds = result.ProcessingSeconds
	return nil
}

// Blocks deserializes the stored analysis block list.
func (d *Document) Blocks() ([]AnalysisBlock, error) {
	if d.AnalysisBlocks == "" {
		return nil, nil
	}
	var blocks []AnalysisBlock
	if err := json.Unmarshal([]byte(d.AnalysisBlocks), &blocks); err != nil {
		return nil, fmt.Errorf("failed to deserialize analysis blocks: %w", err)
	}
	return blocks, nil
}

// DocumentStats summarizes the document store.
type DocumentStats struct {
	TotalDocuments    int                    `json:"total_documents"`
	DocumentsByStatus map[DocumentStatus]int `json:"documents_by_status"`
	TotalWordCount    int                    `json:"total_word_count"`
	LastUpdated       time.Time              `json:"last_updated"`
}
