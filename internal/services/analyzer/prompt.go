// -----------------------------------------------------------------------
// Prompt Builder - deterministic analysis prompt templating
// -----------------------------------------------------------------------

package analyzer

import (
	"fmt"
	"strings"

	"github.com/ternarybob/docify/internal/models"
)

const maxPromptBodyChars = 4000

const promptTemplate = `You are an expert technical documentation analyzer. Analyze the following web content and create a comprehensive explanation with visual elements.

CONTENT TITLE: %s
CONTENT DESCRIPTION: %s
USER INSTRUCTIONS: %s

SCRAPED CONTENT (%d pages, %d words):
%s

TASK: Create a structured analysis with summary and visual elements to explain this documentation. Return a JSON response with the following structure:

{
  "summary": "A comprehensive summary of the document content",
  "blocks": [
    {
      "id": "unique-id-1",
      "type": "summary|key_points|architecture|mermaid|code|api_reference|guide|comparison|best_practices|troubleshooting",
      "size": "small|medium|large",
      "title": "Block title",
      "content": "Block content (mermaid syntax for mermaid type)",
      "metadata": {
        "language": "javascript|python|etc (for code blocks)",
        "priority": "high|medium|low"
      }
    }
  ]
}

CONTENT BLOCK TYPES:
- summary: Overview explanation
- key_points: Important highlights
- architecture: System/component structure
- mermaid: Visual diagrams using valid Mermaid syntax
- code: Code examples with language specification
- api_reference: API documentation
- guide: Step-by-step instructions
- comparison: Compare different approaches
- best_practices: Recommendations
- troubleshooting: Common issues and solutions

SIZE AND LAYOUT RULES:
- small: Quick facts, simple explanations (1 grid unit)
- medium: Detailed explanations, moderate diagrams (2 grid units)
- large: Complex diagrams, comprehensive guides (3 grid units)
- The total layout budget is 8 grid units. MAXIMUM 6 BLOCKS TOTAL.
- Use at most 2 medium blocks. A large block must be the ONLY block in the response.

FORMATTING CONVENTIONS:
- Structured text blocks (key_points, architecture, api_reference, guide, best_practices, troubleshooting) format each entry as: **Entry Title** ***Entry body text***
- comparison blocks separate the two sides with a four-asterisk delimiter: left content ****right content
- mermaid blocks must start with a diagram keyword (graph, flowchart, sequenceDiagram, classDiagram, stateDiagram, erDiagram, gantt, pie)
- code blocks must set metadata.language

ANALYSIS STRATEGY:
1. First, analyze the content type and structure
2. Identify the most important concepts and relationships
3. Choose appropriate visualization types (mermaid for flows, code for examples)
4. Prioritize content based on user instructions
5. Ensure summary is comprehensive but concise

Ensure the response is valid JSON.`

// BuildPrompt renders the analysis prompt for one crawl result. Pure
// templating; deterministic given its inputs.
func (s *Service) BuildPrompt(content *models.CrawlResult, instructions string) string {
	if instructions == "" {
		instructions = "Analyze this documentation comprehensively"
	}

	title := content.Title
	if title == "" {
		title = "Untitled Document"
	}
	description := content.Description
	if description == "" {
		description = "No description available"
	}

	body := content.CombinedBody
	if len(body) > maxPromptBodyChars {
		body = truncateAtWordBoundary(body, maxPromptBodyChars) + "..."
	}

	return fmt.Sprintf(promptTemplate, title, description, instructions, content.PagesCrawled, content.TotalWordCount, body)
}

// truncateAtWordBoundary cuts s at the last space before max, falling back
// to a hard cut when no space is close enough.
func truncateAtWordBoundary(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	if idx := strings.LastIndex(cut, " "); idx > max/2 {
		return cut[:idx]
	}
	return cut
}
