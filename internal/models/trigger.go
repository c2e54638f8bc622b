package models

import (
	"encoding/json"
	"fmt"
)

// AnalyzeRequest is the normalized analysis trigger. Both wire shapes the
// service accepts (database event payloads and direct HTTP calls) map into
// this struct before any processing happens.
type AnalyzeRequest struct {
	DocumentID   string `json:"document_id" validate:"required"`
	URL          string `json:"url" validate:"required,url"`
	Title        string `json:"title,omitempty"`
	Instructions string `json:"instructions,omitempty"`
	UserID       string `json:"user_id,omitempty"`
}

// triggerWire covers the field spellings of both trigger shapes. Event
// payloads use "$id"/"user_id"; HTTP callers use "documentId"/"userId".
type triggerWire struct {
	EventID     string `json:"$id"`
	EventUserID string `json:"user_id"`
	HTTPID      string `json:"documentId"`
	HTTPUserID  string `json:"userId"`

	URL          string `json:"url"`
	Title        string `json:"title"`
	Instructions string `json:"instructions"`
}

// NormalizeTrigger decodes either trigger wire shape into an
// AnalyzeRequest. The event shape wins when both spellings are present.
func NormalizeTrigger(raw []byte) (*AnalyzeRequest, error) {
	var wire triggerWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("failed to decode trigger payload: %w", err)
	}

	req := &AnalyzeRequest{
		URL:          wire.URL,
		Title:        wire.Title,
		Instructions: wire.Instructions,
	}

	if wire.EventID != "" {
		req.DocumentID = wire.EventID
		req.UserID = wire.EventUserID
	} else {
		req.DocumentID = wire.HTTPID
		req.UserID = wire.HTTPUserID
	}
	if req.UserID == "" {
		req.UserID = wire.EventUserID
	}
	if req.UserID == "" {
		req.UserID = wire.HTTPUserID
	}

	if req.DocumentID == "" {
		return nil, fmt.Errorf("trigger payload missing document ID")
	}
	if req.URL == "" {
		return nil, fmt.Errorf("trigger payload missing url")
	}

	return req, nil
}
