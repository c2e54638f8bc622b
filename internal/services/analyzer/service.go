// -----------------------------------------------------------------------
// Analyzer Service - prompt building and response validation pipeline
// -----------------------------------------------------------------------

package analyzer

import (
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docify/internal/interfaces"
	"github.com/ternarybob/docify/internal/models"
)

// Service builds analysis prompts and turns raw model output into validated
// block lists via the repair cascade.
type Service struct {
	logger arbor.ILogger
}

var _ interfaces.AnalyzerService = (*Service)(nil)

func NewService(logger arbor.ILogger) *Service {
	return &Service{logger: logger}
}

// ParseResponse runs the repair cascade over raw model text, then applies
// grid enforcement, content conventions, and the summary cap. The final
// synthesis strategy always succeeds, so the returned error is only ever a
// defensive guard.
func (s *Service) ParseResponse(raw string) (*models.AnalysisResult, error) {
	var parsed *ParsedAnalysis
	for _, strategy := range repairStrategies {
		candidate, err := strategy.apply(raw)
		if err != nil {
			s.logger.Debug().
				Str("strategy", strategy.name).
				Err(err).
				Msg("Repair strategy failed, trying next")
			continue
		}
		s.logger.Debug().
			Str("strategy", strategy.name).
			Int("blocks", len(candidate.Blocks)).
			Msg("Model response parsed")
		parsed = candidate
		break
	}
	if parsed == nil {
		// Synthesis never fails, so this path should be unreachable.
		parsed, _ = repairSynthesize(raw)
	}

	blocks := enforceGrid(parsed.Blocks, s.logger)
	blocks = applyConventions(blocks, s.logger)
	if len(blocks) == 0 {
		// Every block was dropped by convention checks; fall back to the
		// synthesized shape so the pipeline still produces a result.
		fallback, _ := repairSynthesize(raw)
		blocks = fallback.Blocks
	}

	return &models.AnalysisResult{
		Summary: capSummary(parsed.Summary),
		Blocks:  blocks,
	}, nil
}
