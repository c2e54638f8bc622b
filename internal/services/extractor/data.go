// -----------------------------------------------------------------------
// Data Extraction - CSV, JSON, XML and feed handling
// -----------------------------------------------------------------------

package extractor

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/ternarybob/docify/internal/models"
)

const (
	maxCSVRecords    = 50
	maxCSVPreview    = 20
	maxJSONChars     = 2000
	maxXMLChars      = 2000
	maxFeedEntries   = 10
	maxFeedSummary   = 500
	maxPlainTextSize = 10000
)

// decodeCharset converts raw bytes to UTF-8, sniffing the encoding from
// content when no declaration is present.
func decodeCharset(raw []byte) string {
	reader, err := charset.NewReader(bytes.NewReader(raw), "")
	if err != nil {
		return string(raw)
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

func (s *Service) extractCSV(raw []byte, pageURL string) (*models.ContentRecord, error) {
	text := decodeCharset(raw)

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1

	var records [][]string
	for len(records) < maxCSVRecords {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Tolerate ragged rows; a partially parsed CSV still previews.
			continue
		}
		records = append(records, record)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV has no parseable records")
	}

	var builder strings.Builder
	builder.WriteString("Columns: ")
	builder.WriteString(strings.Join(records[0], " | "))
	builder.WriteString("\n")
	for i, record := range records[1:] {
		if i >= maxCSVPreview {
			break
		}
		builder.WriteString(strings.Join(record, " | "))
		builder.WriteString("\n")
	}

	cleaned := CleanText(builder.String())

	return &models.ContentRecord{
		URL:       pageURL,
		Title:     titleFromURL(pageURL),
		Body:      cleaned,
		WordCount: CountWords(cleaned),
		Kind:      models.ContentKindCSV,
		KindMetadata: map[string]interface{}{
			"rows_sampled": len(records),
			"columns":      len(records[0]),
		},
	}, nil
}

func (s *Service) extractJSON(raw []byte, pageURL string) (*models.ContentRecord, error) {
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	indented, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode JSON: %w", err)
	}

	preview := string(indented)
	if len(preview) > maxJSONChars {
		preview = preview[:maxJSONChars] + "..."
	}

	cleaned := CleanText(preview)

	return &models.ContentRecord{
		URL:       pageURL,
		Title:     titleFromURL(pageURL),
		Body:      cleaned,
		WordCount: CountWords(cleaned),
		Kind:      models.ContentKindJSON,
		KindMetadata: map[string]interface{}{
			"bytes": len(raw),
		},
	}, nil
}

// rssFeed covers the RSS 2.0 shape.
type rssFeed struct {
	Channel struct {
		Title       string    `xml:"title"`
		Description string    `xml:"description"`
		Items       []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

// atomFeed covers the Atom shape.
type atomFeed struct {
	Title    string      `xml:"title"`
	Subtitle string      `xml:"subtitle"`
	Entries  []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title   string `xml:"title"`
	Summary string `xml:"summary"`
	Updated string `xml:"updated"`
}

func (s *Service) extractXML(raw []byte, pageURL string) (*models.ContentRecord, error) {
	text := decodeCharset(raw)
	head := strings.ToLower(text)
	if len(head) > 512 {
		head = head[:512]
	}

	if strings.Contains(head, "<rss") {
		return s.extractRSS(text, pageURL)
	}
	if strings.Contains(head, "<feed") {
		return s.extractAtom(text, pageURL)
	}

	outline, elementCount := xmlOutline(text)
	cleaned := CleanText(outline)
	if cleaned == "" {
		return nil, fmt.Errorf("XML produced no readable content")
	}

	return &models.ContentRecord{
		URL:       pageURL,
		Title:     titleFromURL(pageURL),
		Body:      cleaned,
		WordCount: CountWords(cleaned),
		Kind:      models.ContentKindXML,
		KindMetadata: map[string]interface{}{
			"elements": elementCount,
		},
	}, nil
}

func (s *Service) extractRSS(text, pageURL string) (*models.ContentRecord, error) {
	var feed rssFeed
	if err := xml.Unmarshal([]byte(text), &feed); err != nil {
		return nil, fmt.Errorf("failed to parse RSS feed: %w", err)
	}

	var builder strings.Builder
	builder.WriteString(feed.Channel.Title)
	builder.WriteString("\n")
	builder.WriteString(feed.Channel.Description)
	builder.WriteString("\n\n")

	for i, item := range feed.Channel.Items {
		if i >= maxFeedEntries {
			break
		}
		builder.WriteString(item.Title)
		builder.WriteString(": ")
		builder.WriteString(truncate(item.Description, maxFeedSummary))
		builder.WriteString("\n")
	}

	title := strings.TrimSpace(feed.Channel.Title)
	if title == "" {
		title = titleFromURL(pageURL)
	}

	cleaned := CleanText(builder.String())

	return &models.ContentRecord{
		URL:         pageURL,
		Title:       title,
		Description: strings.TrimSpace(feed.Channel.Description),
		Body:        cleaned,
		WordCount:   CountWords(cleaned),
		Kind:        models.ContentKindFeed,
		KindMetadata: map[string]interface{}{
			"entries": len(feed.Channel.Items),
			"format":  "rss",
		},
	}, nil
}

func (s *Service) extractAtom(text, pageURL string) (*models.ContentRecord, error) {
	var feed atomFeed
	if err := xml.Unmarshal([]byte(text), &feed); err != nil {
		return nil, fmt.Errorf("failed to parse Atom feed: %w", err)
	}

	var builder strings.Builder
	builder.WriteString(feed.Title)
	builder.WriteString("\n")
	builder.WriteString(feed.Subtitle)
	builder.WriteString("\n\n")

	for i, entry := range feed.Entries {
		if i >= maxFeedEntries {
			break
		}
		builder.WriteString(entry.Title)
		builder.WriteString(": ")
		builder.WriteString(truncate(entry.Summary, maxFeedSummary))
		builder.WriteString("\n")
	}

	title := strings.TrimSpace(feed.Title)
	if title == "" {
		title = titleFromURL(pageURL)
	}

	cleaned := CleanText(builder.String())

	return &models.ContentRecord{
		URL:         pageURL,
		Title:       title,
		Description: strings.TrimSpace(feed.Subtitle),
		Body:        cleaned,
		WordCount:   CountWords(cleaned),
		Kind:        models.ContentKindFeed,
		KindMetadata: map[string]interface{}{
			"entries": len(feed.Entries),
			"format":  "atom",
		},
	}, nil
}

// xmlOutline renders element names and text content as an indented tree,
// capped at maxXMLChars.
func xmlOutline(text string) (string, int) {
	decoder := xml.NewDecoder(strings.NewReader(text))
	decoder.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		return charset.NewReaderLabel(label, input)
	}

	var builder strings.Builder
	depth := 0
	elements := 0

	for builder.Len() < maxXMLChars {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := token.(type) {
		case xml.StartElement:
			elements++
			builder.WriteString(strings.Repeat("  ", depth))
			builder.WriteString(t.Name.Local)
			builder.WriteString("\n")
			depth++
		case xml.EndElement:
			if depth > 0 {
				depth--
			}
		case xml.CharData:
			content := strings.TrimSpace(string(t))
			if content != "" {
				builder.WriteString(strings.Repeat("  ", depth))
				builder.WriteString(truncate(content, 120))
				builder.WriteString("\n")
			}
		}
	}

	outline := builder.String()
	if len(outline) > maxXMLChars {
		outline = outline[:maxXMLChars] + "..."
	}
	return outline, elements
}

func (s *Service) extractText(raw []byte, pageURL string) (*models.ContentRecord, error) {
	text := decodeCharset(raw)
	if len(text) > maxPlainTextSize {
		text = text[:maxPlainTextSize]
	}

	cleaned := CleanText(text)
	if cleaned == "" {
		return nil, fmt.Errorf("text content is empty")
	}

	return &models.ContentRecord{
		URL:       pageURL,
		Title:     titleFromURL(pageURL),
		Body:      cleaned,
		WordCount: CountWords(cleaned),
		Kind:      models.ContentKindText,
		KindMetadata: map[string]interface{}{
			"bytes": len(raw),
		},
	}, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
