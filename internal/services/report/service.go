// -------------------------------------------------------------------------
// Report service renders a completed document's analysis as a PDF. Block
// content is markdown; it is parsed with goldmark and laid out with fpdf.
// -------------------------------------------------------------------------

package report

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docify/internal/common"
	"github.com/ternarybob/docify/internal/interfaces"
	"github.com/ternarybob/docify/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Service implements interfaces.ReportService.
type Service struct {
	config *common.ReportConfig
	logger arbor.ILogger
}

var _ interfaces.ReportService = (*Service)(nil)

// NewService creates a report service.
func NewService(config *common.ReportConfig, logger arbor.ILogger) *Service {
	return &Service{
		config: config,
		logger: logger,
	}
}

// Render builds the PDF for a document's analysis.
func (s *Service) Render(ctx context.Context, doc *models.Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}
	if doc.AnalysisSummary == "" {
		return nil, fmt.Errorf("document %s has no analysis to render", doc.ID)
	}

	blocks, err := doc.Blocks()
	if err != nil {
		return nil, err
	}

	markdown := buildMarkdown(doc, blocks)

	s.logger.Debug().
		Str("document_id", doc.ID).
		Int("blocks", len(blocks)).
		Int("markdown_len", len(markdown)).
		Msg("Rendering analysis report")

	pageSize := s.config.PageSize
	if pageSize == "" {
		pageSize = "A4"
	}
	fontFamily := s.config.FontFamily
	if fontFamily == "" {
		fontFamily = "Arial"
	}

	pdf := fpdf.New("P", "mm", pageSize, "")
	pdf.SetTitle(doc.Title, true)
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()
	pdf.SetFont(fontFamily, "", 9)

	md := goldmark.New(goldmark.WithExtensions(extension.Strikethrough))
	source := []byte(markdown)
	root := md.Parser().Parse(text.NewReader(source))

	renderer := &pdfRenderer{
		pdf:    pdf,
		source: source,
		font:   fontFamily,
		size:   9,
	}
	if err := renderer.render(root); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}

	s.logger.Debug().Int("pdf_size", buf.Len()).Msg("Report PDF generated")
	return buf.Bytes(), nil
}

// buildMarkdown assembles the report source: title page material, summary,
// then one section per block in stored order.
func buildMarkdown(doc *models.Document, blocks []models.AnalysisBlock) string {
	var b strings.Builder

	title := doc.Title
	if title == "" {
		title = doc.URL
	}

	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Source: %s\n\n", doc.URL)
	if doc.PagesCrawled > 0 {
		fmt.Fprintf(&b, "Pages analyzed: %d (%d words)\n\n", doc.PagesCrawled, doc.WordCount)
	}

	b.WriteString("## Summary\n\n")
	b.WriteString(doc.AnalysisSummary)
	b.WriteString("\n\n")

	for _, block := range blocks {
		sectionTitle := block.Title
		if sectionTitle == "" {
			sectionTitle = string(block.Type)
		}
		fmt.Fprintf(&b, "## %s\n\n", sectionTitle)
		b.WriteString(blockBody(block))
		b.WriteString("\n\n")
	}

	return b.String()
}

// blockBody formats one block's content for the markdown source. Code and
// diagram blocks get fenced so they render monospaced.
func blockBody(block models.AnalysisBlock) string {
	switch block.Type {
	case models.BlockTypeCode:
		lang := block.Language()
		return fmt.Sprintf("```%s\n%s\n```", lang, block.Content)
	case models.BlockTypeMermaid:
		return fmt.Sprintf("```\n%s\n```", block.Content)
	case models.BlockTypeComparison:
		// Four-asterisk column delimiters read poorly as emphasis; render
		// each column on its own line.
		return strings.ReplaceAll(block.Content, "****", "\n\n")
	default:
		return block.Content
	}
}

type pdfRenderer struct {
	pdf    *fpdf.Fpdf
	source []byte
	font   string
	size   float64
	bold   bool
	italic bool
	inList bool
	depth  int
}

func (r *pdfRenderer) render(node ast.Node) error {
	return ast.Walk(node, r.walk)
}

func (r *pdfRenderer) updateFont() {
	style := ""
	if r.bold {
		style += "B"
	}
	if r.italic {
		style += "I"
	}
	r.pdf.SetFont(r.font, style, r.size)
}

func (r *pdfRenderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n.Kind() {
	case ast.KindHeading:
		return r.handleHeading(n.(*ast.Heading), entering)
	case ast.KindParagraph:
		if !entering {
			r.pdf.Ln(7)
		}
	case ast.KindText:
		if entering {
			r.pdf.Write(5, string(n.Text(r.source)))
		}
	case ast.KindEmphasis:
		return r.handleEmphasis(n.(*ast.Emphasis), entering)
	case ast.KindCodeSpan:
		return r.handleCodeSpan(n.(*ast.CodeSpan), entering)
	case ast.KindFencedCodeBlock:
		if entering {
			r.renderCodeBlock(n.(*ast.FencedCodeBlock).Lines())
			return ast.WalkSkipChildren, nil
		}
	case ast.KindCodeBlock:
		if entering {
			r.renderCodeBlock(n.(*ast.CodeBlock).Lines())
			return ast.WalkSkipChildren, nil
		}
	case ast.KindList:
		return r.handleList(n.(*ast.List), entering)
	case ast.KindListItem:
		if entering {
			r.pdf.Ln(5)
			indent := float64(r.depth) * 5.0
			r.pdf.SetX(15 + indent)
			r.pdf.Write(5, "- ")
		}
	case ast.KindThematicBreak:
		if entering {
			r.pdf.Ln(2)
			r.pdf.Line(15, r.pdf.GetY(), 195, r.pdf.GetY())
			r.pdf.Ln(2)
		}
	}
	return ast.WalkContinue, nil
}

func (r *pdfRenderer) handleHeading(n *ast.Heading, entering bool) (ast.WalkStatus, error) {
	if entering {
		r.pdf.Ln(6)
		size := 10.0
		switch n.Level {
		case 1:
			size = 14
		case 2:
			size = 12
		case 3:
			size = 11
		}
		r.pdf.SetFont(r.font, "B", size)
	} else {
		r.pdf.Ln(6)
		r.updateFont()
	}
	return ast.WalkContinue, nil
}

func (r *pdfRenderer) handleEmphasis(n *ast.Emphasis, entering bool) (ast.WalkStatus, error) {
	if n.Level == 2 {
		r.bold = entering
	} else {
		r.italic = entering
	}
	r.updateFont()
	return ast.WalkContinue, nil
}

func (r *pdfRenderer) handleCodeSpan(n *ast.CodeSpan, entering bool) (ast.WalkStatus, error) {
	if entering {
		r.pdf.SetFont("Courier", "", r.size)
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if textNode, ok := c.(*ast.Text); ok {
				r.pdf.Write(5, string(textNode.Segment.Value(r.source)))
			}
		}
	} else {
		r.updateFont()
	}
	return ast.WalkSkipChildren, nil
}

func (r *pdfRenderer) renderCodeBlock(lines *text.Segments) {
	r.pdf.Ln(2)
	r.pdf.SetFont("Courier", "", r.size)
	r.pdf.SetFillColor(245, 245, 245)

	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		r.pdf.MultiCell(0, 5, string(line.Value(r.source)), "", "L", true)
	}

	r.pdf.SetFillColor(255, 255, 255)
	r.updateFont()
	r.pdf.Ln(2)
}

func (r *pdfRenderer) handleList(n *ast.List, entering bool) (ast.WalkStatus, error) {
	if entering {
		r.inList = true
		r.depth++
	} else {
		r.depth--
		if r.depth == 0 {
			r.inList = false
			r.pdf.Ln(2)
		}
	}
	return ast.WalkContinue, nil
}
