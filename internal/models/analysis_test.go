package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlockSizeGridCost(t *testing.T) {
	assert.Equal(t, 1, BlockSizeSmall.GridCost())
	assert.Equal(t, 2, BlockSizeMedium.GridCost())
	assert.Equal(t, 3, BlockSizeLarge.GridCost())
}

func TestTotalGridCost(t *testing.T) {
	blocks := []AnalysisBlock{
		{ID: "a", Size: BlockSizeLarge},
		{ID: "b", Size: BlockSizeMedium},
		{ID: "c", Size: BlockSizeSmall},
	}
	assert.Equal(t, 6, TotalGridCost(blocks))
	assert.Equal(t, 0, TotalGridCost(nil))
}

func TestBlockTypeIsValid(t *testing.T) {
	for _, bt := range BlockTypes {
		assert.True(t, bt.IsValid(), "expected %s to be valid", bt)
	}
	assert.False(t, BlockType("poem").IsValid())
}

func TestAnalysisBlockLanguage(t *testing.T) {
	block := AnalysisBlock{
		Type:     BlockTypeCode,
		Metadata: map[string]interface{}{"language": "python"},
	}
	assert.Equal(t, "python", block.Language())

	noLang := AnalysisBlock{Type: BlockTypeCode}
	assert.Equal(t, "", noLang.Language())
}
