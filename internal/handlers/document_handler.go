// -----------------------------------------------------------------------
// Last Modified: Wednesday, 8th October 2025 12:57:01 pm
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docify/internal/common"
	"github.com/ternarybob/docify/internal/interfaces"
	"github.com/ternarybob/docify/internal/models"
	"github.com/ternarybob/docify/internal/services/orchestrator"
)

const maxTriggerBodyBytes = 1 << 20 // 1MB

// DocumentHandler serves the document CRUD and analysis endpoints.
type DocumentHandler struct {
	logger       arbor.ILogger
	storage      interfaces.DocumentStorage
	orchestrator *orchestrator.Service
	report       interfaces.ReportService
}

func NewDocumentHandler(storage interfaces.DocumentStorage, orch *orchestrator.Service, report interfaces.ReportService, logger arbor.ILogger) *DocumentHandler {
	return &DocumentHandler{
		logger:       logger,
		storage:      storage,
		orchestrator: orch,
		report:       report,
	}
}

// AnalyzeHandler runs the scrape-and-analyze pipeline for a document.
// POST /api/documents/analyze
func (h *DocumentHandler) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	if !RequireMethod(w, r, "POST") {
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxTriggerBodyBytes))
	if err != nil {
		WriteFailure(w, http.StatusBadRequest, "failed to read request body", nil, started)
		return
	}

	req, err := models.NormalizeTrigger(body)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Rejected analysis trigger")
		WriteFailure(w, http.StatusBadRequest, err.Error(), nil, started)
		return
	}

	h.logger.Info().
		Str("document_id", req.DocumentID).
		Str("url", req.URL).
		Msg("Analysis triggered")

	result, err := h.orchestrator.Process(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		if strings.HasPrefix(err.Error(), "invalid request") {
			status = http.StatusBadRequest
		}
		WriteFailure(w, status, err.Error(), result, started)
		return
	}

	WriteResult(w, http.StatusOK, result, started)
}

type createDocumentRequest struct {
	URL          string `json:"url"`
	Title        string `json:"title,omitempty"`
	Instructions string `json:"instructions,omitempty"`
	UserID       string `json:"user_id,omitempty"`
}

// CreateHandler registers a pending document without running analysis.
// POST /api/documents
func (h *DocumentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req createDocumentRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, maxTriggerBodyBytes))
	if err == nil {
		err = json.Unmarshal(body, &req)
	}
	if err != nil {
		WriteFailure(w, http.StatusBadRequest, "invalid request body", nil, started)
		return
	}

	if err := common.ValidateScrapeURL(req.URL, h.logger); err != nil {
		WriteFailure(w, http.StatusBadRequest, err.Error(), nil, started)
		return
	}

	doc := models.NewDocument(req.URL, req.Title, req.Instructions, req.UserID)
	if err := h.storage.Save(r.Context(), doc); err != nil {
		h.logger.Error().Err(err).Msg("Failed to save document")
		WriteFailure(w, http.StatusInternalServerError, "failed to save document", nil, started)
		return
	}

	h.logger.Info().Str("document_id", doc.ID).Str("url", doc.URL).Msg("Document created")
	WriteResult(w, http.StatusOK, doc, started)
}

// ListHandler returns documents with limit/offset pagination.
// GET /api/documents?limit=50&offset=0
func (h *DocumentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	limit, offset := GetPaginationParams(r)
	docs, err := h.storage.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list documents")
		WriteFailure(w, http.StatusInternalServerError, "failed to list documents", nil, started)
		return
	}

	total, err := h.storage.Count(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to count documents")
		WriteFailure(w, http.StatusInternalServerError, "failed to count documents", nil, started)
		return
	}

	WriteResult(w, http.StatusOK, map[string]interface{}{
		"documents": docs,
		"count":     len(docs),
		"total":     total,
		"limit":     limit,
		"offset":    offset,
	}, started)
}

// GetHandler returns a single document by ID.
// GET /api/documents/{id}
func (h *DocumentHandler) GetHandler(w http.ResponseWriter, r *http.Request, documentID string) {
	started := time.Now()

	doc, err := h.storage.Get(r.Context(), documentID)
	if err != nil {
		WriteFailure(w, http.StatusNotFound, err.Error(), nil, started)
		return
	}

	WriteResult(w, http.StatusOK, doc, started)
}

// DeleteHandler removes a document by ID.
// DELETE /api/documents/{id}
func (h *DocumentHandler) DeleteHandler(w http.ResponseWriter, r *http.Request, documentID string) {
	started := time.Now()

	if err := h.storage.Delete(r.Context(), documentID); err != nil {
		h.logger.Error().Err(err).Str("document_id", documentID).Msg("Failed to delete document")
		WriteFailure(w, http.StatusInternalServerError, "failed to delete document", nil, started)
		return
	}

	h.logger.Info().Str("document_id", documentID).Msg("Document deleted")
	WriteResult(w, http.StatusOK, map[string]string{
		"document_id": documentID,
		"message":     "document deleted",
	}, started)
}

// ReportHandler renders a completed document's analysis as a PDF.
// GET /api/documents/{id}/report
func (h *DocumentHandler) ReportHandler(w http.ResponseWriter, r *http.Request, documentID string) {
	started := time.Now()

	if !RequireMethod(w, r, "GET") {
		return
	}

	doc, err := h.storage.Get(r.Context(), documentID)
	if err != nil {
		WriteFailure(w, http.StatusNotFound, err.Error(), nil, started)
		return
	}

	pdf, err := h.report.Render(r.Context(), doc)
	if err != nil {
		h.logger.Error().Err(err).Str("document_id", documentID).Msg("Failed to render report")
		WriteFailure(w, http.StatusUnprocessableEntity, err.Error(), nil, started)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", documentID+".pdf"))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

// StatsHandler returns aggregate document counts.
// GET /api/documents/stats
func (h *DocumentHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	if !RequireMethod(w, r, "GET") {
		return
	}

	stats, err := h.storage.GetStats(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to compute document stats")
		WriteFailure(w, http.StatusInternalServerError, "failed to compute stats", nil, started)
		return
	}

	WriteResult(w, http.StatusOK, stats, started)
}
