package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"quote-api/internal/apperr"
	"quote-api/internal/metrics"
	"quote-api/internal/session"
)

const (
	defaultUsername = "guest"
	maxBodyBytes    = 1 << 20
)

type loginRequest struct {
	Username string `json:"username"`
}

type loginResponse struct {
	Message string `json:"message"`
}

// handleLogin moves an anonymous session to logged in. A session can log in
// once; the second attempt is rejected until the session expires.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		s.metrics.Login(metrics.LoginInvalidRequest)
		s.writeError(w, r, apperr.Validation("Invalid request body"))
		return
	}

	sess, err := s.sessions.Get(r, s.cfg.SessionCookieName)
	if err != nil {
		s.writeError(w, r, apperr.Storage("Session lookup failed", err))
		return
	}

	if session.RecordOf(sess).IsLoggedIn {
		s.metrics.Login(metrics.LoginAlreadyLogged)
		s.writeError(w, r, apperr.Conflict("Already logged in"))
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = defaultUsername
	}
	session.Apply(sess, session.Record{IsLoggedIn: true, Username: username})

	if err := sess.Save(r, w); err != nil {
		s.metrics.Login(metrics.LoginSaveFailed)
		s.writeError(w, r, apperr.Storage("Session save failed", err))
		return
	}

	s.metrics.Login(metrics.LoginSucceeded)
	writeJSON(w, http.StatusOK, loginResponse{Message: "Login successful"})
}

// decodeOptionalJSON decodes a JSON body into v. An empty body or a non-JSON
// content type leaves v untouched.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || !strings.HasSuffix(mediaType, "json") {
			return nil
		}
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}
