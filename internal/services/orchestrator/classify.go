package orchestrator

import (
	"strings"

	"github.com/ternarybob/docify/internal/services/llm"
)

// suggestAction maps a run failure to the caller-facing recovery hint.
func suggestAction(err error) string {
	if err == nil {
		return ""
	}

	switch llm.ClassifyError(err) {
	case llm.ErrorKindRateLimited, llm.ErrorKindOverloaded:
		return "retry_later"
	case llm.ErrorKindNetwork:
		return "check_later"
	case llm.ErrorKindMalformed:
		return "retry"
	}

	lowered := strings.ToLower(err.Error())
	if strings.Contains(lowered, "no content could be extracted") ||
		strings.Contains(lowered, "no scraped content") {
		return "rescrape"
	}
	if strings.Contains(lowered, "json") || strings.Contains(lowered, "format") {
		return "retry"
	}

	return ""
}
