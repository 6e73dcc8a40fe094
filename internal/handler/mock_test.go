package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MarcoEnzoS/14608und1Nacht/internal/domain"
	"github.com/MarcoEnzoS/14608und1Nacht/internal/family"
	"github.com/MarcoEnzoS/14608und1Nacht/internal/handler"
	"github.com/MarcoEnzoS/14608und1Nacht/internal/service"
	"github.com/MarcoEnzoS/14608und1Nacht/internal/tripstore"
)

// ---- mock Planner ----------------------------------------------------------

// mockPlanner is a test double for handler.Planner.
// Set only the method fields your test needs. Login and EnsureSession default
// to accepting everybody so cookie-based tests need no setup.
type mockPlanner struct {
	login         func(name string) (service.SessionInfo, error)
	logout        func(name string)
	session       func(user string) (service.SessionInfo, error)
	ensureSession func(name string) (service.SessionInfo, error)
	snapshot      func(user string) (tripstore.Snapshot, error)
	status        func(user string) (tripstore.Status, error)
	refresh       func(ctx context.Context, user string) error
	setRSVP       func(user, eventID string, people []string, status domain.RSVPStatus) error
	toggleMeal    func(user, day string, slot domain.MealSlot, person string) (bool, error)
	setMeals      func(user, day string, slot domain.MealSlot, people []string, enabled bool) error
	updateProfile func(user, person string, patch domain.ProfilePatch) (domain.Profile, error)
	costs         func(user string) (service.CostSummary, error)
	unlockAdmin   func(user, pin string) error
	saveEvent     func(ctx context.Context, user string, unlocked bool, draft service.EventDraft) (domain.Event, error)
	deleteEvent   func(ctx context.Context, user string, unlocked bool, id string) error
	export        func(user string) ([]domain.AttendanceRow, error)
}

func (m *mockPlanner) Login(name string) (service.SessionInfo, error) {
	if m.login != nil {
		return m.login(name)
	}
	return sessionInfo(name), nil
}
func (m *mockPlanner) Logout(name string) {
	if m.logout != nil {
		m.logout(name)
	}
}
func (m *mockPlanner) Session(user string) (service.SessionInfo, error) {
	if m.session != nil {
		return m.session(user)
	}
	return sessionInfo(user), nil
}
func (m *mockPlanner) EnsureSession(name string) (service.SessionInfo, error) {
	if m.ensureSession != nil {
		return m.ensureSession(name)
	}
	return sessionInfo(name), nil
}
func (m *mockPlanner) Snapshot(user string) (tripstore.Snapshot, error) { return m.snapshot(user) }
func (m *mockPlanner) Status(user string) (tripstore.Status, error)     { return m.status(user) }
func (m *mockPlanner) Refresh(ctx context.Context, user string) error   { return m.refresh(ctx, user) }
func (m *mockPlanner) SetRSVP(user, eventID string, people []string, status domain.RSVPStatus) error {
	return m.setRSVP(user, eventID, people, status)
}
func (m *mockPlanner) ToggleMeal(user, day string, slot domain.MealSlot, person string) (bool, error) {
	return m.toggleMeal(user, day, slot, person)
}
func (m *mockPlanner) SetMeals(user, day string, slot domain.MealSlot, people []string, enabled bool) error {
	return m.setMeals(user, day, slot, people, enabled)
}
func (m *mockPlanner) UpdateProfile(user, person string, patch domain.ProfilePatch) (domain.Profile, error) {
	return m.updateProfile(user, person, patch)
}
func (m *mockPlanner) Costs(user string) (service.CostSummary, error) { return m.costs(user) }
func (m *mockPlanner) UnlockAdmin(user, pin string) error             { return m.unlockAdmin(user, pin) }
func (m *mockPlanner) SaveEvent(ctx context.Context, user string, unlocked bool, draft service.EventDraft) (domain.Event, error) {
	return m.saveEvent(ctx, user, unlocked, draft)
}
func (m *mockPlanner) DeleteEvent(ctx context.Context, user string, unlocked bool, id string) error {
	return m.deleteEvent(ctx, user, unlocked, id)
}
func (m *mockPlanner) Export(user string) ([]domain.AttendanceRow, error) { return m.export(user) }

// compile-time checks: the mock and the real planner satisfy handler.Planner.
var (
	_ handler.Planner = (*mockPlanner)(nil)
	_ handler.Planner = (*service.Planner)(nil)
)

// ---- helpers ---------------------------------------------------------------

func sessionInfo(name string) service.SessionInfo {
	return service.SessionInfo{
		User:    name,
		Managed: []string{name},
		Family:  family.Group{Label: family.LabelJustYou, People: []string{name}},
	}
}

// newHTTPHandler wires a Server with the given mock into the full router,
// exactly as main.go does in production.
func newHTTPHandler(p handler.Planner) http.Handler {
	return newHTTPHandlerWithDB(p, nil)
}

func newHTTPHandlerWithDB(p handler.Planner, db handler.Pinger) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := handler.NewServer(p, handler.NewCookieStore("0123456789abcdef0123456789abcdef"), db, log)
	return handler.NewRouter(srv, handler.RouterConfig{
		CORSOrigins:  []string{"http://localhost:5173"},
		MaxBodyBytes: 1 << 10,
	})
}

// do sends a request with an optional JSON body and cookies.
func do(h http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// login performs POST /session for name and returns the session cookie.
func login(t *testing.T, h http.Handler, name string) *http.Cookie {
	t.Helper()
	rec := do(h, http.MethodPost, "/session", `{"name":"`+name+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return sessionCookie(t, rec)
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == handler.SessionName {
			return c
		}
	}
	t.Fatalf("response has no %q cookie", handler.SessionName)
	return nil
}
