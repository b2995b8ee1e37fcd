package http

import (
	"net/http"
	"net/url"
	"sync/atomic"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "register.html", "Register", nil)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.redirectWithFlash(w, "/auth/register", FlashDanger, "Invalid request.")
		return
	}
	username := sanitizeInput(r.PostForm.Get("username"))
	clientIP := s.securityDetector.ExtractClientIP(r)

	_, err := s.credentials.Register(r.Context(), username, r.PostForm.Get("password"), r.PostForm.Get("confirm"))
	switch {
	case err == nil:
		s.events.Auth(r.Context(), applog.OpRegister, username, true, clientIP)
		s.redirectWithFlash(w, "/auth/login", FlashSuccess, "Registration successful. Please log in.")
	case core.IsConflict(err):
		s.events.Auth(r.Context(), applog.OpRegister, username, false, clientIP)
		s.redirectWithFlash(w, "/auth/register", FlashWarning, "That username is already taken, please choose another.")
	case core.IsValidation(err):
		s.redirectWithFlash(w, "/auth/register", FlashDanger, capitalize(core.UserMessage(err))+".")
	default:
		s.internalError(w, r, "Registration failed", err)
	}
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login.html", "Log in", struct{ Next string }{Next: r.URL.Query().Get("next")})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.redirectWithFlash(w, "/auth/login", FlashDanger, "Invalid request.")
		return
	}
	username := sanitizeInput(r.PostForm.Get("username"))
	next := r.Form.Get("next")
	clientIP := s.securityDetector.ExtractClientIP(r)

	user, err := s.credentials.Authenticate(r.Context(), username, r.PostForm.Get("password"))
	if err != nil {
		if !core.IsAuth(err) {
			s.internalError(w, r, "Login failed", err)
			return
		}
		atomic.AddInt64(&s.appMetrics.failedLogins, 1)
		s.events.Auth(r.Context(), applog.OpLogin, username, false, clientIP)
		back := "/auth/login"
		if next != "" {
			back += "?next=" + url.QueryEscape(next)
		}
		s.redirectWithFlash(w, back, FlashDanger, "Invalid username or password.")
		return
	}

	token, expires, err := s.sessions.Start(r.Context(), user.ID)
	if err != nil {
		s.internalError(w, r, "Failed to start session", err)
		return
	}
	s.events.Auth(r.Context(), applog.OpLogin, username, true, clientIP)
	s.setSessionCookie(w, token, expires)
	s.redirectWithFlash(w, safeNext(next), FlashSuccess, "Logged in.")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.End(r.Context(), sessionToken(r)); err != nil {
		s.logger.WarnContext(r.Context(), "Failed to delete session", "error", err)
	}
	user := userFrom(r)
	s.events.Auth(r.Context(), applog.OpLogout, user.Username, true, s.securityDetector.ExtractClientIP(r))
	s.clearSessionCookie(w)
	s.redirectWithFlash(w, "/auth/login", FlashInfo, "Logged out.")
}

func (s *Server) handlePasswordPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "password.html", "Change password", nil)
}

// handleChangePassword replaces the password, ends every session of the user
// and starts a fresh one for this browser.
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.redirectWithFlash(w, "/auth/password", FlashDanger, "Invalid request.")
		return
	}
	user := userFrom(r)

	err := s.credentials.ChangePassword(r.Context(), user.ID,
		r.PostForm.Get("current"), r.PostForm.Get("password"), r.PostForm.Get("confirm"))
	switch {
	case err == nil:
	case core.IsValidation(err), core.IsAuth(err):
		s.redirectWithFlash(w, "/auth/password", FlashDanger, capitalize(core.UserMessage(err))+".")
		return
	default:
		s.internalError(w, r, "Password change failed", err)
		return
	}

	if err := s.sessions.EndAll(r.Context(), user.ID); err != nil {
		s.logger.WarnContext(r.Context(), "Failed to end sessions after password change", "error", err)
	}
	token, expires, err := s.sessions.Start(r.Context(), user.ID)
	if err != nil {
		s.internalError(w, r, "Failed to start session", err)
		return
	}
	s.setSessionCookie(w, token, expires)
	s.redirectWithFlash(w, "/", FlashSuccess, "Password changed.")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + s[1:]
	}
	return s
}
