// -----------------------------------------------------------------------
// PDF Extraction - pdfcpu-backed text extraction, first pages only
// -----------------------------------------------------------------------

package extractor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/ternarybob/docify/internal/models"
)

// maxPDFPages bounds extraction; long PDFs contribute their opening pages
// only.
const maxPDFPages = 10

func (s *Service) extractPDF(raw []byte, pageURL string) (*models.ContentRecord, error) {
	// pdfcpu works on files, so round-trip through the temp dir.
	tempFile := filepath.Join(s.tempDir, fmt.Sprintf("extract_%s.pdf", uuid.New().String()))
	if err := os.WriteFile(tempFile, raw, 0644); err != nil {
		return nil, fmt.Errorf("failed to write temp PDF file: %w", err)
	}
	defer os.Remove(tempFile)

	pdfCtx, err := api.ReadContextFile(tempFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	pageCount := pdfCtx.PageCount

	outDir := filepath.Join(s.tempDir, fmt.Sprintf("pages_%s", uuid.New().String()))
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create extraction dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	extractPages := pageCount
	if extractPages > maxPDFPages {
		extractPages = maxPDFPages
	}
	pageSelection := make([]string, 0, extractPages)
	for pageNum := 1; pageNum <= extractPages; pageNum++ {
		pageSelection = append(pageSelection, fmt.Sprintf("%d", pageNum))
	}

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(tempFile, outDir, pageSelection, conf); err != nil {
		return nil, fmt.Errorf("failed to extract PDF content: %w", err)
	}

	pageTexts := make(map[int]string)
	files, _ := os.ReadDir(outDir)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(outDir, file.Name()))
		if err != nil {
			continue
		}
		var pageNum int
		if _, err := fmt.Sscanf(file.Name(), "Content_page_%d", &pageNum); err != nil {
			if _, err := fmt.Sscanf(file.Name(), "page_%d", &pageNum); err != nil {
				continue
			}
		}
		pageTexts[pageNum] = string(content)
	}

	var builder strings.Builder
	for pageNum := 1; pageNum <= extractPages; pageNum++ {
		text, ok := pageTexts[pageNum]
		if !ok {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString(text)
	}

	cleaned := CleanText(builder.String())

	return &models.ContentRecord{
		URL:       pageURL,
		Title:     titleFromURL(pageURL),
		Body:      cleaned,
		WordCount: CountWords(cleaned),
		Kind:      models.ContentKindPDF,
		KindMetadata: map[string]interface{}{
			"page_count":      pageCount,
			"pages_extracted": extractPages,
			"bytes":           len(raw),
		},
	}, nil
}
