package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Akshith040/EcoScan1/internal/auth"
	"github.com/Akshith040/EcoScan1/internal/service"
)

type loginForm struct {
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"required,max=72"`
}

type signupForm struct {
	Name     string `validate:"max=100"`
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"required,min=8,max=72"`
}

// authView backs the login and signup pages.
type authView struct {
	Name        string
	Email       string
	CallbackURL string
	Error       string
}

// authErrorMessages maps the ?error= codes of /auth/error to what the user sees.
var authErrorMessages = map[string]string{
	"default":           "An error occurred during authentication.",
	"accessdenied":      "You do not have permission to access this resource.",
	"credentialssignin": "The email or password you entered is incorrect.",
	"sessionrequired":   "Please sign in to access this page.",
}

func authErrorMessage(code string) string {
	if msg, ok := authErrorMessages[strings.ToLower(code)]; ok {
		return msg
	}
	return authErrorMessages["default"]
}

// currentUser returns the signed-in user, or answers 401 when there is none.
func currentUser(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	return u, true
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	view := authView{CallbackURL: auth.SafeCallback(r.URL.Query().Get("callbackUrl"))}
	if err := s.renderPage(w, newPage(r, "login", view), "base.html", "pages/login.html"); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	form := loginForm{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	}
	view := authView{Email: form.Email, CallbackURL: auth.SafeCallback(r.FormValue("callbackUrl"))}

	if err := s.validate.Struct(form); err != nil {
		view.Error = "Please enter a valid email and password."
		s.renderAuthPage(w, r, http.StatusBadRequest, "login", view)
		return
	}

	user, err := s.service.Authenticate(r.Context(), form.Email, form.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		view.Error = authErrorMessage("credentialssignin")
		s.renderAuthPage(w, r, http.StatusUnauthorized, "login", view)
		return
	}
	if err != nil {
		s.logger.Error("login failed", "error", err)
		http.Redirect(w, r, "/auth/error?error=default", http.StatusSeeOther)
		return
	}

	if err := s.sessions.SetCookie(w, r, user); err != nil {
		s.logger.Error("issue session failed", "user_id", user.ID, "error", err)
		http.Redirect(w, r, "/auth/error?error=default", http.StatusSeeOther)
		return
	}
	s.logger.Info("user signed in", "user_id", user.ID)
	http.Redirect(w, r, view.CallbackURL, http.StatusSeeOther)
}

func (s *Server) handleSignupPage(w http.ResponseWriter, r *http.Request) {
	if err := s.renderPage(w, newPage(r, "signup", authView{}), "base.html", "pages/signup.html"); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

// handleSignup creates the account and signs the new user in.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	form := signupForm{
		Name:     strings.TrimSpace(r.FormValue("name")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	}
	view := authView{Name: form.Name, Email: form.Email}

	if err := s.validate.Struct(form); err != nil {
		view.Error = signupErrorMessage(err)
		s.renderAuthPage(w, r, http.StatusBadRequest, "signup", view)
		return
	}

	user, err := s.service.Register(r.Context(), form.Name, form.Email, form.Password)
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		view.Error = "User with this email already exists"
		s.renderAuthPage(w, r, http.StatusConflict, "signup", view)
		return
	case errors.Is(err, service.ErrPasswordTooLong):
		view.Error = "Please enter a password of at most 72 characters."
		s.renderAuthPage(w, r, http.StatusBadRequest, "signup", view)
		return
	case err != nil:
		s.logger.Error("signup failed", "error", err)
		view.Error = "Failed to create account"
		s.renderAuthPage(w, r, http.StatusInternalServerError, "signup", view)
		return
	}

	if err := s.sessions.SetCookie(w, r, user); err != nil {
		s.logger.Error("issue session failed", "user_id", user.ID, "error", err)
		http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.ClearCookie(w)
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", auth.LoginPath)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
}

func (s *Server) handleAuthError(w http.ResponseWriter, r *http.Request) {
	msg := authErrorMessage(r.URL.Query().Get("error"))
	if err := s.renderPage(w, newPage(r, "", msg), "base.html", "pages/auth_error.html"); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

func (s *Server) renderAuthPage(w http.ResponseWriter, r *http.Request, status int, name string, view authView) {
	if err := s.renderPageStatus(w, status, newPage(r, name, view), "base.html", "pages/"+name+".html"); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

// signupErrorMessage names the first field that failed validation.
func signupErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Please check the form and try again."
	}
	switch f := verrs[0]; f.Field() {
	case "Email":
		return "Please enter a valid email address."
	case "Password":
		if f.Tag() == "min" {
			return "Password must be at least 8 characters."
		}
		return "Please enter a password of at most 72 characters."
	case "Name":
		return "Name must be at most 100 characters."
	}
	return "Please check the form and try again."
}
