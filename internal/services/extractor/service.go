// -----------------------------------------------------------------------
// Extractor Service - Kind dispatch over the per-format handlers
// -----------------------------------------------------------------------

package extractor

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docify/internal/interfaces"
	"github.com/ternarybob/docify/internal/models"
)

// Service turns raw fetched bytes into normalized content records.
type Service struct {
	logger  arbor.ILogger
	tempDir string
}

// Compile-time interface assertion
var _ interfaces.ExtractService = (*Service)(nil)

// NewService creates an extractor service.
func NewService(logger arbor.ILogger) *Service {
	tempDir := filepath.Join(os.TempDir(), "docify-extract")
	os.MkdirAll(tempDir, 0755)

	return &Service{
		logger:  logger,
		tempDir: tempDir,
	}
}

// DetectKind classifies content by header then URL suffix.
func (s *Service) DetectKind(header http.Header, url string) models.ContentKind {
	return DetectKind(header, url)
}

// Extract dispatches to the handler for the detected kind. A failed
// extraction returns an error; callers treat the page as skippable.
func (s *Service) Extract(ctx context.Context, raw []byte, kind models.ContentKind, url string) (*models.ContentRecord, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("no content to extract")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var record *models.ContentRecord
	var err error

	switch kind {
	case models.ContentKindHTML:
		record, err = s.extractHTML(raw, url)
	case models.ContentKindPDF:
		record, err = s.extractPDF(raw, url)
	case models.ContentKindDoc:
		record, err = s.extractDoc(raw, url)
	case models.ContentKindExcel:
		record, err = s.extractExcel(raw, url)
	case models.ContentKindCSV:
		record, err = s.extractCSV(raw, url)
	case models.ContentKindJSON:
		record, err = s.extractJSON(raw, url)
	case models.ContentKindXML, models.ContentKindFeed:
		record, err = s.extractXML(raw, url)
	case models.ContentKindText:
		record, err = s.extractText(raw, url)
	default:
		record, err = s.extractHTML(raw, url)
	}

	if err != nil {
		s.logger.Warn().
			Str("url", url).
			Str("kind", string(kind)).
			Err(err).
			Msg("Content extraction failed")
		return nil, err
	}

	s.logger.Debug().
		Str("url", url).
		Str("kind", string(record.Kind)).
		Int("words", record.WordCount).
		Msg("Extracted content")

	return record, nil
}
