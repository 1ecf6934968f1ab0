package web

import (
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Akshith040/EcoScan1/internal/auth"
	"github.com/Akshith040/EcoScan1/internal/catalog"
	"github.com/Akshith040/EcoScan1/internal/service"
)

type Server struct {
	service   *service.EcoSnapService
	sessions  *auth.Sessions
	catalog   *catalog.Catalog
	templates fs.FS
	mux       *http.ServeMux
	tmplFuncs template.FuncMap
	validate  *validator.Validate
	logger    *slog.Logger
}

func NewServer(svc *service.EcoSnapService, sessions *auth.Sessions, cat *catalog.Catalog, tmpl fs.FS, logger *slog.Logger) *Server {
	s := &Server{
		service:   svc,
		sessions:  sessions,
		catalog:   cat,
		templates: tmpl,
		mux:       http.NewServeMux(),
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger,
		tmplFuncs: template.FuncMap{
			"percent":  percent,
			"date":     func(t time.Time) string { return t.Local().Format("Jan 2, 2006 15:04") },
			"guideURL": guideURL,
		},
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleHome)
	s.mux.HandleFunc("POST /classify", s.handleClassify)

	s.mux.HandleFunc("GET /history", s.handleListHistory)
	s.mux.HandleFunc("GET /history/{id}/photo", s.handleGetPhoto)
	s.mux.HandleFunc("POST /history/{id}/refine", s.handleRefine)

	s.mux.HandleFunc("GET /guide", s.handleListGuides)
	s.mux.HandleFunc("GET /guide/{type}", s.handleGetGuide)

	s.mux.HandleFunc("GET /auth/login", s.handleLoginPage)
	s.mux.HandleFunc("POST /auth/login", s.handleLogin)
	s.mux.HandleFunc("GET /auth/signup", s.handleSignupPage)
	s.mux.HandleFunc("POST /auth/signup", s.handleSignup)
	s.mux.HandleFunc("POST /auth/logout", s.handleLogout)
	s.mux.HandleFunc("GET /auth/error", s.handleAuthError)

	s.mux.HandleFunc("GET /api/history", s.handleAPIListHistory)
	s.mux.HandleFunc("POST /api/history", s.handleAPICreateHistory)
	s.mux.HandleFunc("POST /api/register", s.handleAPIRegister)

	if static, err := fs.Sub(s.templates, "static"); err == nil {
		s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	}
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy",
			"default-src 'self'; "+
				"script-src 'self' 'unsafe-inline' https://unpkg.com; "+
				"style-src 'self' 'unsafe-inline'; "+
				"img-src 'self' data: blob: https:; "+
				"connect-src 'self'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.sessions.Middleware(s.logger, s.mux))).ServeHTTP(w, r)
}

func (s *Server) NewHTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// renderPage parses and executes a full-page template set.
func (s *Server) renderPage(w http.ResponseWriter, data any, files ...string) error {
	return s.renderPageStatus(w, http.StatusOK, data, files...)
}

func (s *Server) renderPageStatus(w http.ResponseWriter, status int, data any, files ...string) error {
	tmpl, err := template.New("").Funcs(s.tmplFuncs).ParseFS(s.templates, files...)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	return tmpl.ExecuteTemplate(w, "base", data)
}

// renderPartial parses and executes the {{define}} block of a single partial.
func (s *Server) renderPartial(w http.ResponseWriter, file string, data any) error {
	tmpl, err := template.New("").Funcs(s.tmplFuncs).ParseFS(s.templates, file)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	basename := file
	if idx := strings.LastIndexByte(file, '/'); idx >= 0 {
		basename = file[idx+1:]
	}
	for _, t := range tmpl.Templates() {
		if n := t.Name(); n != "" && n != basename {
			return t.Execute(w, data)
		}
	}
	return tmpl.ExecuteTemplate(w, basename, data)
}

// page is the data every full page receives.
type page struct {
	User      *auth.User
	ActiveNav string
	Data      any
}

func newPage(r *http.Request, nav string, data any) page {
	u, _ := auth.UserFromContext(r.Context())
	return page{User: u, ActiveNav: nav, Data: data}
}

// percent formats a 0..1 confidence as a percentage with two decimals.
func percent(confidence float64) string {
	return fmt.Sprintf("%.2f%%", confidence*100)
}

func guideURL(wasteType string) string {
	return "/guide/" + url.PathEscape(strings.TrimSpace(wasteType))
}
