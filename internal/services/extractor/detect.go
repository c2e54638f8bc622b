package extractor

import (
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/ternarybob/docify/internal/models"
)

// DetectKind classifies content using the Content-Type header first, then
// the URL path suffix. HTML is the default.
func DetectKind(header http.Header, rawURL string) models.ContentKind {
	contentType := ""
	if header != nil {
		contentType = strings.ToLower(header.Get("Content-Type"))
	}

	switch {
	case strings.Contains(contentType, "application/pdf"):
		return models.ContentKindPDF
	case strings.Contains(contentType, "wordprocessingml"), strings.Contains(contentType, "application/msword"):
		return models.ContentKindDoc
	case strings.Contains(contentType, "spreadsheetml"), strings.Contains(contentType, "application/vnd.ms-excel"):
		return models.ContentKindExcel
	case strings.Contains(contentType, "text/csv"):
		return models.ContentKindCSV
	case strings.Contains(contentType, "application/json"):
		return models.ContentKindJSON
	case strings.Contains(contentType, "application/rss+xml"), strings.Contains(contentType, "application/atom+xml"):
		return models.ContentKindFeed
	case strings.Contains(contentType, "/xml"), strings.Contains(contentType, "+xml"):
		return models.ContentKindXML
	case strings.Contains(contentType, "text/plain"):
		return models.ContentKindText
	case strings.Contains(contentType, "text/html"), strings.Contains(contentType, "application/xhtml"):
		return models.ContentKindHTML
	}

	return kindFromSuffix(rawURL)
}

func kindFromSuffix(rawURL string) models.ContentKind {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return models.ContentKindHTML
	}

	switch strings.ToLower(path.Ext(parsed.Path)) {
	case ".pdf":
		return models.ContentKindPDF
	case ".doc", ".docx":
		return models.ContentKindDoc
	case ".xls", ".xlsx":
		return models.ContentKindExcel
	case ".csv":
		return models.ContentKindCSV
	case ".json":
		return models.ContentKindJSON
	case ".rss", ".atom":
		return models.ContentKindFeed
	case ".xml":
		return models.ContentKindXML
	case ".txt", ".text", ".md":
		return models.ContentKindText
	}

	return models.ContentKindHTML
}
