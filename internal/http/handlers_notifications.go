package http

import (
	"net/http"
	"strings"

	"kesho/internal/core"
	"kesho/internal/log"
	"kesho/internal/services"
)

type previewResponse struct {
	Matched bool                          `json:"matched"`
	Preview *services.NotificationPreview `json:"preview,omitempty"`
}

type commitResponse struct {
	Preview     services.NotificationPreview `json:"preview"`
	Transaction core.TransactionView         `json:"transaction"`
}

func decodeNotification(w http.ResponseWriter, r *http.Request) (string, error) {
	var req notificationRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		return "", err
	}
	return strings.TrimSpace(req.Text), nil
}

// handlePreviewNotification parses pasted text without recording anything.
// Text that is not a confirmed payment is a normal, unmatched result.
func (s *Server) handlePreviewNotification(w http.ResponseWriter, r *http.Request) {
	text, err := decodeNotification(w, r)
	if err != nil {
		s.fail(w, r, log.OpImportNotice, err)
		return
	}
	preview, ok, err := s.service.PreviewNotification(r.Context(), text)
	if err != nil {
		s.fail(w, r, log.OpImportNotice, err)
		return
	}
	resp := previewResponse{Matched: ok}
	if ok {
		resp.Preview = &preview
	}
	NewJSONResponse().JSON(resp).Write(w)
}

// handleCommitNotification records the payment a notification describes.
func (s *Server) handleCommitNotification(w http.ResponseWriter, r *http.Request) {
	text, err := decodeNotification(w, r)
	if err != nil {
		s.fail(w, r, log.OpImportNotice, err)
		return
	}
	preview, tx, err := s.service.CommitNotification(r.Context(), text)
	if err != nil {
		s.fail(w, r, log.OpImportNotice, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+tx.ID).
		JSON(commitResponse{
			Preview:     preview,
			Transaction: core.TransactionView{Transaction: tx, Category: preview.Category},
		}).
		Write(w)
}
