package web

import (
	"net/http"

	"github.com/Akshith040/EcoScan1/internal/catalog"
	"github.com/Akshith040/EcoScan1/internal/waste"
)

type guideView struct {
	catalog.Guide
	Numbered []waste.Step
}

func (s *Server) handleListGuides(w http.ResponseWriter, r *http.Request) {
	if err := s.renderPage(w, newPage(r, "guide", s.catalog.Guides()), "base.html", "pages/guides.html"); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

func (s *Server) handleGetGuide(w http.ResponseWriter, r *http.Request) {
	g := s.catalog.Lookup(r.PathValue("type"))
	view := guideView{Guide: g, Numbered: waste.NumberSteps(g.Steps)}
	if err := s.renderPage(w, newPage(r, "guide", view), "base.html", "pages/guide.html"); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}
