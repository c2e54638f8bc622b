package walker

import (
	"fmt"
	"strings"

	"github.com/ternarybob/docify/internal/models"
)

const maxCombinedBytes = 75000

// kindOrder fixes the section order of the combined body so HTML content
// always leads.
var kindOrder = []models.ContentKind{
	models.ContentKindHTML,
	models.ContentKindPDF,
	models.ContentKindDoc,
	models.ContentKindExcel,
	models.ContentKindCSV,
	models.ContentKindJSON,
	models.ContentKindFeed,
	models.ContentKindXML,
	models.ContentKindText,
}

// combineRecords merges extracted pages into a single analysis body, grouped
// by content kind with section headers, capped at maxCombinedBytes.
func combineRecords(records []*models.ContentRecord) (string, bool) {
	grouped := make(map[models.ContentKind][]*models.ContentRecord)
	for _, record := range records {
		grouped[record.Kind] = append(grouped[record.Kind], record)
	}

	var builder strings.Builder
	for _, kind := range kindOrder {
		group := grouped[kind]
		if len(group) == 0 {
			continue
		}
		builder.WriteString(fmt.Sprintf("==== %s CONTENT (%d files) ====\n\n", strings.ToUpper(string(kind)), len(group)))
		for _, record := range group {
			builder.WriteString("URL: ")
			builder.WriteString(record.URL)
			builder.WriteString("\nTitle: ")
			builder.WriteString(record.Title)
			builder.WriteString("\n\n")
			builder.WriteString(record.Body)
			builder.WriteString("\n\n")
		}
	}

	combined := builder.String()
	if len(combined) > maxCombinedBytes {
		return combined[:maxCombinedBytes] + "...", true
	}
	return combined, false
}
