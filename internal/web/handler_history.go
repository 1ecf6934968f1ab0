package web

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/Akshith040/EcoScan1/internal/domain"
	"github.com/Akshith040/EcoScan1/internal/service"
	"github.com/Akshith040/EcoScan1/internal/waste"
)

type refineForm struct {
	Description string `validate:"max=1000"`
}

// historyItem is one row of the history page.
type historyItem struct {
	*domain.HistoryEntry
	Steps    []waste.Step
	PhotoURL string
}

func newHistoryItem(e *domain.HistoryEntry) historyItem {
	item := historyItem{
		HistoryEntry: e,
		Steps:        waste.NumberSteps(waste.FormatSteps(e.RecyclingInstructions)),
	}
	switch {
	case e.ImageKey != "":
		item.PhotoURL = "/history/" + e.ID + "/photo"
	case strings.HasPrefix(e.ImageURL, "https://"):
		item.PhotoURL = e.ImageURL
	}
	return item
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	entries, err := s.service.History(r.Context(), user.ID)
	if err != nil {
		http.Error(w, "failed to list history", http.StatusInternalServerError)
		s.logger.Error("list history failed", "user_id", user.ID, "error", err)
		return
	}

	items := make([]historyItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, newHistoryItem(e))
	}
	if err := s.renderPage(w, newPage(r, "history", items), "base.html", "pages/history.html"); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

func (s *Server) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	reader, mimeType, err := s.service.Photo(r.Context(), user.ID, id)
	if errors.Is(err, service.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "failed to get photo", http.StatusInternalServerError)
		s.logger.Error("get photo failed", "entry_id", id, "error", err)
		return
	}
	defer closeWithLog(reader, "photo reader", s.logger)

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "private, max-age=86400")
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write photo failed", "entry_id", id, "error", err)
	}
}

// handleRefine regenerates the instructions of an entry using the user's own
// description of the item and swaps in the instructions partial.
func (s *Server) handleRefine(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	form := refineForm{Description: strings.TrimSpace(r.FormValue("description"))}
	if err := s.validate.Struct(form); err != nil {
		http.Error(w, "description too long", http.StatusBadRequest)
		return
	}

	analysis, err := s.service.Refine(r.Context(), user.ID, id, form.Description)
	var ierr *waste.InstructionError
	switch {
	case errors.Is(err, service.ErrNotFound):
		http.NotFound(w, r)
		return
	case errors.As(err, &ierr):
		http.Error(w, "Failed to provide recycling instructions. Please try again.", http.StatusBadGateway)
		s.logger.Warn("refine instructions failed", "user_id", user.ID, "entry_id", id, "error", err)
		return
	case err != nil:
		http.Error(w, "failed to refine instructions", http.StatusInternalServerError)
		s.logger.Error("refine failed", "user_id", user.ID, "entry_id", id, "error", err)
		return
	}

	if err := s.renderPartial(w, "partials/instructions.html", s.resultView(analysis)); err != nil {
		s.logger.Error("render partial failed", "error", err)
	}
}
