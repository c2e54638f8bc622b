package analyzer

import (
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docify/internal/models"
)

// enforceGrid applies the layout budget to a schema-valid block list:
// a large block is exclusive, at most two mediums (the rest demote to
// small), and tail blocks drop until total cost fits the capacity.
func enforceGrid(blocks []models.AnalysisBlock, logger arbor.ILogger) []models.AnalysisBlock {
	// Large blocks occupy the whole layout; keep only the first one.
	for i, block := range blocks {
		if block.Size == models.BlockSizeLarge {
			if len(blocks) > 1 {
				logger.Debug().
					Str("block_id", block.ID).
					Int("dropped", len(blocks)-1).
					Msg("Large block is exclusive, dropping other blocks")
			}
			return []models.AnalysisBlock{blocks[i]}
		}
	}

	// Demote mediums beyond the cap.
	mediums := 0
	for i := range blocks {
		if blocks[i].Size != models.BlockSizeMedium {
			continue
		}
		mediums++
		if mediums > models.MaxMediumBlocks {
			logger.Debug().
				Str("block_id", blocks[i].ID).
				Msg("Demoting medium block to small, medium cap reached")
			blocks[i].Size = models.BlockSizeSmall
		}
	}

	// Drop from the tail until the budget fits.
	for len(blocks) > 0 && models.TotalGridCost(blocks) > models.GridCapacity {
		dropped := blocks[len(blocks)-1]
		blocks = blocks[:len(blocks)-1]
		logger.Debug().
			Str("block_id", dropped.ID).
			Int("remaining", len(blocks)).
			Msg("Dropping tail block, grid capacity exceeded")
	}

	return blocks
}
