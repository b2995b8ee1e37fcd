package http

import (
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/middleware/security"
)

const (
	sessionCookieName = "fintrack_session"
	flashCookieName   = "fintrack_flash"
)

// FlashKind selects the styling of a flash message.
type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashDanger  FlashKind = "danger"
	FlashWarning FlashKind = "warning"
	FlashInfo    FlashKind = "info"
)

// Flash is a one-shot message carried across a redirect in a cookie.
type Flash struct {
	Kind    FlashKind
	Message string
}

func flashCookie(f Flash, secure bool) *http.Cookie {
	payload := string(f.Kind) + "\n" + f.Message
	return &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(payload)),
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   60,
	}
}

func decodeFlash(value string) (Flash, bool) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return Flash{}, false
	}
	kind, msg, ok := strings.Cut(string(raw), "\n")
	if !ok || msg == "" {
		return Flash{}, false
	}
	switch FlashKind(kind) {
	case FlashSuccess, FlashDanger, FlashWarning, FlashInfo:
		return Flash{Kind: FlashKind(kind), Message: msg}, true
	}
	return Flash{}, false
}

// popFlash reads and clears the pending flash message.
func (s *Server) popFlash(w http.ResponseWriter, r *http.Request) *Flash {
	c, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	f, ok := decodeFlash(c.Value)
	if !ok {
		return nil
	}
	return &f
}

// redirectWithFlash answers a form submission.
func (s *Server) redirectWithFlash(w http.ResponseWriter, location string, kind FlashKind, message string) {
	NewResponse().Flash(kind, message, s.secureCookies).Redirect(location).Write(w)
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func sessionToken(r *http.Request) string {
	c, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// currentUser resolves the session cookie. A renewed session gets a fresh
// cookie; a dead one is cleared.
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) (core.User, bool) {
	token := sessionToken(r)
	if token == "" {
		return core.User{}, false
	}
	user, renewed, err := s.sessions.Resolve(r.Context(), token)
	if err != nil {
		if !core.IsAuth(err) {
			s.logger.ErrorContext(r.Context(), "Session lookup failed", "error", err)
		}
		s.clearSessionCookie(w)
		return core.User{}, false
	}
	if !renewed.IsZero() {
		s.setSessionCookie(w, token, renewed)
	}
	return user, true
}

// requireSession lets only authenticated browsers through. Others are sent to
// the login page with the requested path in next.
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.currentUser(w, r)
		if !ok {
			target := "/auth/login?next=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
		security.NoStore(next).ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
	}
}

// guestOnly redirects authenticated browsers to the dashboard.
func (s *Server) guestOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.currentUser(w, r); ok {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		next(w, r)
	}
}

// requireToken authenticates API calls with a bearer JWT. The user must
// still exist.
func (s *Server) requireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			s.unauthorized(w)
			return
		}
		claims, err := s.tokens.Parse(strings.TrimSpace(raw))
		if err != nil {
			s.unauthorized(w)
			return
		}
		user, err := s.credentials.User(r.Context(), claims.UserID)
		if err != nil {
			if !core.IsNotFound(err) {
				s.logger.ErrorContext(r.Context(), "Token user lookup failed", "error", err)
				JSONError(http.StatusInternalServerError, "internal error", "").Write(w)
				return
			}
			s.unauthorized(w)
			return
		}
		security.NoStore(next).ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
	}
}

func (s *Server) unauthorized(w http.ResponseWriter) {
	NewResponse().
		Header("WWW-Authenticate", `Bearer realm="fintrack"`).
		Status(http.StatusUnauthorized).
		JSON(apiError{Error: "authentication required"}).
		Write(w)
}

// userFrom returns the identity placed in the context by a gate. Handlers
// behind a gate always have one.
func userFrom(r *http.Request) core.User {
	u, _ := auth.UserFrom(r.Context())
	return u
}

// safeNext accepts only local absolute paths.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	if u, err := url.Parse(next); err != nil || u.Host != "" || u.Scheme != "" {
		return "/"
	}
	return next
}

func userFromContext(r *http.Request) (core.User, bool) {
	return auth.UserFrom(r.Context())
}
