// -----------------------------------------------------------------------
// Excel Extraction - Sheet names, headers, and leading rows as text
// -----------------------------------------------------------------------

package extractor

import (
	"fmt"
	"strings"

	"github.com/tealeg/xlsx/v2"

	"github.com/ternarybob/docify/internal/models"
)

// maxExcelRows bounds the data rows rendered per sheet.
const maxExcelRows = 20

func (s *Service) extractExcel(raw []byte, pageURL string) (*models.ContentRecord, error) {
	file, err := xlsx.OpenBinary(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	if len(file.Sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}

	var builder strings.Builder
	sheetNames := make([]string, 0, len(file.Sheets))
	totalRows := 0

	for _, sheet := range file.Sheets {
		sheetNames = append(sheetNames, sheet.Name)
		totalRows += len(sheet.Rows)

		builder.WriteString("Sheet: ")
		builder.WriteString(sheet.Name)
		builder.WriteString("\n")

		for i, row := range sheet.Rows {
			if i > maxExcelRows {
				break
			}
			cells := make([]string, 0, len(row.Cells))
			for _, cell := range row.Cells {
				cells = append(cells, cell.String())
			}
			line := strings.TrimSpace(strings.Join(cells, " | "))
			if line == "" {
				continue
			}
			if i == 0 {
				builder.WriteString("Columns: ")
			}
			builder.WriteString(line)
			builder.WriteString("\n")
		}
		builder.WriteString("\n")
	}

	cleaned := CleanText(builder.String())

	return &models.ContentRecord{
		URL:       pageURL,
		Title:     titleFromURL(pageURL),
		Body:      cleaned,
		WordCount: CountWords(cleaned),
		Kind:      models.ContentKindExcel,
		KindMetadata: map[string]interface{}{
			"sheets":     sheetNames,
			"total_rows": totalRows,
		},
	}, nil
}
