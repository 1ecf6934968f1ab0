package web

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/Akshith040/EcoScan1/internal/photostore"
	"github.com/Akshith040/EcoScan1/internal/service"
	"github.com/Akshith040/EcoScan1/internal/waste"
)

const maxPhotoSize = 20 << 20 // 20 MB

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if err := s.renderPage(w, newPage(r, "home", nil), "base.html", "pages/home.html"); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

// handleClassify runs the full pipeline on an uploaded photo and answers with
// the result partial. The photo arrives as the multipart field "image".
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	imageData, ok := s.readPhoto(w, r)
	if !ok {
		return
	}
	mimeType, ok := photostore.DetectImageMIME(imageData)
	if !ok {
		http.Error(w, "unsupported image format", http.StatusBadRequest)
		return
	}

	analysis, err := s.service.Analyze(r.Context(), user.ID, imageData, mimeType)
	var cerr *waste.ClassificationError
	switch {
	case errors.As(err, &cerr):
		http.Error(w, "Failed to classify waste. Please try again.", http.StatusBadGateway)
		s.logger.Warn("classification failed", "user_id", user.ID, "error", err)
		return
	case err != nil:
		http.Error(w, "failed to process photo", http.StatusInternalServerError)
		s.logger.Error("analyze photo failed", "user_id", user.ID, "error", err)
		return
	}

	if err := s.renderPartial(w, "partials/result.html", s.resultView(analysis)); err != nil {
		s.logger.Error("render partial failed", "error", err)
	}
}

// readPhoto reads the "image" field of a multipart upload, answering the
// request itself when that fails.
func (s *Server) readPhoto(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize+1<<20)
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			http.Error(w, "image too large", http.StatusRequestEntityTooLarge)
			return nil, false
		}
		http.Error(w, "failed to parse form", http.StatusBadRequest)
		return nil, false
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "image file required", http.StatusBadRequest)
		return nil, false
	}
	defer closeWithLog(file, "upload file", s.logger)

	if header.Size > maxPhotoSize {
		http.Error(w, "image too large", http.StatusRequestEntityTooLarge)
		return nil, false
	}

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read file", http.StatusInternalServerError)
		s.logger.Error("read upload failed", "error", err)
		return nil, false
	}
	if len(data) == 0 {
		http.Error(w, "image file required", http.StatusBadRequest)
		return nil, false
	}
	return data, true
}

// resultView is what the result and instructions partials render.
type resultView struct {
	*service.Analysis
	GuideURL       string
	InstructionsOK bool
}

func (s *Server) resultView(a *service.Analysis) resultView {
	return resultView{
		Analysis:       a,
		GuideURL:       guideURL(a.Entry.WasteType),
		InstructionsOK: a.InstructionsErr == nil && len(a.Steps) > 0,
	}
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
