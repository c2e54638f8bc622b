// -----------------------------------------------------------------------
// Word Extraction - docx paragraph text via the document.xml part
// -----------------------------------------------------------------------

package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/ternarybob/docify/internal/models"
)

func (s *Service) extractDoc(raw []byte, pageURL string) (*models.ContentRecord, error) {
	reader, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("failed to open document archive: %w", err)
	}

	var documentXML []byte
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open document.xml: %w", err)
		}
		documentXML, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read document.xml: %w", err)
		}
		break
	}
	if documentXML == nil {
		return nil, fmt.Errorf("archive has no word/document.xml, not a docx file")
	}

	paragraphs, err := docxParagraphs(documentXML)
	if err != nil {
		return nil, err
	}
	if len(paragraphs) == 0 {
		return nil, fmt.Errorf("document has no text content")
	}

	cleaned := CleanText(strings.Join(paragraphs, "\n"))

	return &models.ContentRecord{
		URL:       pageURL,
		Title:     titleFromURL(pageURL),
		Body:      cleaned,
		WordCount: CountWords(cleaned),
		Kind:      models.ContentKindDoc,
		KindMetadata: map[string]interface{}{
			"paragraphs": len(paragraphs),
		},
	}, nil
}

// docxParagraphs walks the WordprocessingML token stream collecting the
// text runs of each paragraph (w:p / w:t elements).
func docxParagraphs(documentXML []byte) ([]string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(documentXML))

	var paragraphs []string
	var current strings.Builder
	inText := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse document XML: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if text := strings.TrimSpace(current.String()); text != "" {
					paragraphs = append(paragraphs, text)
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	if text := strings.TrimSpace(current.String()); text != "" {
		paragraphs = append(paragraphs, text)
	}

	return paragraphs, nil
}
