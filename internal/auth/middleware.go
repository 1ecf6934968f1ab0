package auth

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

const LoginPath = "/auth/login"

// authPages are the login and signup forms; signed-in users are sent home.
var authPages = []string{"/auth/login", "/auth/signup"}

var publicPrefixes = []string{"/auth/error", "/static/", "/healthz"}

// Middleware attaches the session user to the request context and keeps
// anonymous visitors out of every page that is not public. JSON API routes
// under /api/ always pass through and answer 401 themselves.
func (s *Sessions) Middleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		u, signedIn := s.FromRequest(r)
		if signedIn {
			r = r.WithContext(WithUser(r.Context(), u))
		}

		switch {
		case strings.HasPrefix(path, "/api/"):
		case isAuthPage(path):
			if signedIn && r.Method == http.MethodGet {
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}
		case hasPrefix(path, publicPrefixes):
		case !signedIn:
			target := LoginURL(r.URL.RequestURI())
			logger.Debug("redirecting anonymous request", "path", path)
			if r.Header.Get("HX-Request") == "true" {
				w.Header().Set("HX-Redirect", target)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoginURL is the login page that returns to callback after signing in.
func LoginURL(callback string) string {
	return LoginPath + "?callbackUrl=" + url.QueryEscape(callback)
}

// SafeCallback returns raw if it is a path on this site and "/" otherwise,
// so a crafted callbackUrl cannot send users to another host.
func SafeCallback(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return "/"
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" {
		return "/"
	}
	if isAuthPage(u.Path) {
		return "/"
	}
	return raw
}

func isAuthPage(path string) bool {
	for _, p := range authPages {
		if path == p {
			return true
		}
	}
	return false
}

func hasPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
