package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/MarcoEnzoS/14608und1Nacht/internal/service"
)

// Cookie session layout.
const (
	SessionName = "planner"
	// userKey holds the last-used display name for auto-login.
	userKey  = "planner_current_user_v1"
	adminKey = "admin_unlocked"
)

type ctxKey int

const userCtxKey ctxKey = iota

// NewCookieStore returns the signed cookie store for the planner session.
// The cookie lives for 30 days so a returning browser logs in automatically.
func NewCookieStore(secret string) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

type loginRequest struct {
	Name string `json:"name"`
}

// SessionResponse is the body of the /session endpoints.
type SessionResponse struct {
	service.SessionInfo
	AdminUnlocked bool `json:"admin_unlocked"`
}

// session returns the cookie session. A cookie that fails to decode (e.g.
// after a secret rotation) yields a fresh, empty session.
func (s *Server) session(r *http.Request) *sessions.Session {
	sess, err := s.cookies.Get(r, SessionName)
	if err != nil {
		s.log.DebugContext(r.Context(), "discarding unreadable session cookie", "error", err)
	}
	return sess
}

func cookieUser(sess *sessions.Session) string {
	name, _ := sess.Values[userKey].(string)
	return name
}

func adminUnlocked(sess *sessions.Session) bool {
	unlocked, _ := sess.Values[adminKey].(bool)
	return unlocked
}

// Login handles POST /session. It starts a session for the given name and
// remembers the name in the cookie. Admin mode starts locked.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	info, err := s.planner.Login(req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess := s.session(r)
	if prev := cookieUser(sess); prev != "" && prev != req.Name {
		s.planner.Logout(prev)
	}
	sess.Values[userKey] = info.User
	sess.Values[adminKey] = false
	if err := sess.Save(r, w); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{SessionInfo: info})
}

// GetSession handles GET /session. A browser whose cookie remembers a name is
// logged in again automatically.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	user, ok := s.ensureLoggedIn(w, r, sess)
	if !ok {
		return
	}
	info, err := s.planner.Session(user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{SessionInfo: info, AdminUnlocked: adminUnlocked(sess)})
}

// Logout handles DELETE /session: ends the session and clears the cookie.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	if user := cookieUser(sess); user != "" {
		s.planner.Logout(user)
	}
	delete(sess.Values, userKey)
	delete(sess.Values, adminKey)
	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ensureLoggedIn resolves the cookie user and starts a session when the
// planner has none for them, e.g. after a restart. A running session is
// reused. It writes 401 and returns
// false when the cookie names nobody or a name that is no longer valid.
func (s *Server) ensureLoggedIn(w http.ResponseWriter, r *http.Request, sess *sessions.Session) (string, bool) {
	user := cookieUser(sess)
	if user == "" {
		writeErrorBody(w, http.StatusUnauthorized, "not_logged_in", "log in first")
		return "", false
	}
	if _, err := s.planner.EnsureSession(user); err != nil {
		s.log.InfoContext(r.Context(), "auto-login failed, clearing cookie", "user", user, "error", err)
		delete(sess.Values, userKey)
		delete(sess.Values, adminKey)
		sess.Options.MaxAge = -1
		_ = sess.Save(r, w)
		writeErrorBody(w, http.StatusUnauthorized, "not_logged_in", "log in first")
		return "", false
	}
	return user, true
}

// requireUser rejects requests without a logged-in user and stores the user
// in the request context.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.ensureLoggedIn(w, r, s.session(r))
		if !ok {
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userCtxKey, user)))
	})
}

// currentUser returns the user stored by requireUser.
func currentUser(r *http.Request) string {
	user, _ := r.Context().Value(userCtxKey).(string)
	return user
}
