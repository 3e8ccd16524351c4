// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package web is the HTTP collaborator in front of the auth core. It
// parses credentials and cookies, delegates every decision to the
// session manager, and renders the result. No security logic lives here.
package web

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/pkg/errutil"
)

// SessionService defines the session operations needed by HTTP handlers.
type SessionService interface {
	// Login authenticates credentials and returns a new session id.
	Login(ctx context.Context, username, password string) (string, error)

	// Logout invalidates a session. Idempotent.
	Logout(ctx context.Context, sessionID string) error

	// Guard applies an auth mode to a session id.
	Guard(ctx context.Context, mode auth.Mode, sessionID string) (*auth.Principal, error)

	// TTL returns the session lifetime, used for the cookie max-age.
	TTL() time.Duration
}

// CredentialVerifier defines the direct credential check used by the
// basic-auth endpoint.
type CredentialVerifier interface {
	Verify(ctx context.Context, username, password string) (auth.Principal, error)
}

var loginTemplate = template.Must(template.New("login").Parse(
	`<html><head><title>Login page</title></head><body>` +
		`{{if .Message}}<h3>{{.Message}}</h3><br/>{{end}}` +
		`<form method="post" action="/login">` +
		`Username: <input type="text" name="username"><br>` +
		`Password: <input type="password" name="password"><br/>` +
		`<input type="submit" value="Login"></form></body></html>`))

var homeTemplate = template.Must(template.New("home").Parse(
	`<html><head><title>Login page</title></head><body><h3>Welcome {{.Name}}!</h3><br/>` +
		`<form method="get" action="/logout">` +
		`<input type="submit" value="Logout">` +
		`</form></body></html>`))

// Handler serves the login flow.
type Handler struct {
	sessions   SessionService
	verifier   CredentialVerifier
	cookieName string
	logger     *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(sessions SessionService, verifier CredentialVerifier, cookieName string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		sessions:   sessions,
		verifier:   verifier,
		cookieName: cookieName,
		logger:     logger,
	}
}

// Routes registers the handler's endpoints on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/login", h.handleLogin)
	mux.HandleFunc("/home", h.handleHome)
	mux.HandleFunc("/logout", h.handleLogout)
	mux.HandleFunc("/auth", h.handleBasicAuth)
}

// sessionID extracts the session cookie value, or "" if absent.
func (h *Handler) sessionID(r *http.Request) string {
	cookie, err := r.Cookie(h.cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// setSessionCookie hands the opaque session id to the client.
func (h *Handler) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(h.sessions.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie expires the session cookie.
func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// handleLogin renders the login form and processes submissions.
// Already-authenticated visitors are sent to /home; failed submissions
// re-render the form with a generic message that never says which
// field was wrong.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	principal, err := h.sessions.Guard(r.Context(), auth.ModeOptional, h.sessionID(r))
	if err != nil {
		h.internalError(w, "resolve session", err)
		return
	}
	if principal != nil {
		http.Redirect(w, r, "/home", http.StatusFound)
		return
	}

	if r.Method != http.MethodPost {
		h.renderLogin(w, "")
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		h.renderLogin(w, "Missing username or password")
		return
	}

	sessionID, err := h.sessions.Login(r.Context(), username, password)
	if err != nil {
		if auth.IsRejected(err) {
			h.renderLogin(w, "Invalid username or password")
			return
		}
		h.internalError(w, "login", err)
		return
	}

	h.setSessionCookie(w, sessionID)
	http.Redirect(w, r, "/home", http.StatusFound)
}

// handleHome greets the authenticated principal.
func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	principal, err := h.sessions.Guard(r.Context(), auth.ModeRequired, h.sessionID(r))
	if err != nil {
		if auth.IsUnauthenticated(err) {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		h.internalError(w, "resolve session", err)
		return
	}

	if err := homeTemplate.Execute(w, struct{ Name string }{Name: principal.DisplayName}); err != nil {
		h.logger.Error("render home page", "error", err)
	}
}

// handleLogout removes the session and clears the cookie.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context(), h.sessionID(r)); err != nil {
		h.internalError(w, "logout", err)
		return
	}
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// handleBasicAuth greets a caller authenticated by basic-auth header.
func (h *Handler) handleBasicAuth(w http.ResponseWriter, r *http.Request) {
	username, password, ok := r.BasicAuth()
	if !ok {
		h.challenge(w)
		return
	}

	principal, err := h.verifier.Verify(r.Context(), username, password)
	if err != nil {
		if auth.IsRejected(err) {
			h.challenge(w)
			return
		}
		h.internalError(w, "verify credentials", err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	//nolint:errcheck // greeting write error is acceptable, client may disconnect
	w.Write([]byte("hello, " + principal.DisplayName))
}

func (h *Handler) renderLogin(w http.ResponseWriter, message string) {
	if err := loginTemplate.Execute(w, struct{ Message string }{Message: message}); err != nil {
		h.logger.Error("render login page", "error", err)
	}
}

func (h *Handler) challenge(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="gatehouse"`)
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

// internalError maps infrastructure failures to a 500. Credential and
// session failures never take this path.
func (h *Handler) internalError(w http.ResponseWriter, operation string, err error) {
	errutil.LogError(h.logger, operation+" failed", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
