package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcoEnzoS/14608und1Nacht/internal/domain"
	"github.com/MarcoEnzoS/14608und1Nacht/internal/handler"
	"github.com/MarcoEnzoS/14608und1Nacht/internal/service"
	"github.com/MarcoEnzoS/14608und1Nacht/internal/tripstore"
)

func snapshotFixture() tripstore.Snapshot {
	return tripstore.Snapshot{
		Participants: []string{"Benno", "Emil"},
		TripDays:     []string{"2026-09-01"},
		Events: []domain.Event{{
			ID: "e1", Title: "Boat", Date: "2026-09-01",
			RSVP: map[string]domain.RSVPStatus{"Benno": domain.RSVPYes, "Emil": domain.RSVPPending},
		}},
		Meals: domain.Meals{"2026-09-01": {domain.Lunch: {"Benno": true, "Emil": false}}},
		Profiles: map[string]domain.Profile{
			"Benno": {Arrival: &domain.Leg{Date: "2026-09-01", Time: "10:00", Flight: "LH1"}},
			"Emil":  {},
		},
	}
}

func TestGetState_ReturnsSnapshotAndStatus(t *testing.T) {
	p := &mockPlanner{
		snapshot: func(user string) (tripstore.Snapshot, error) {
			assert.Equal(t, "Benno", user)
			return snapshotFixture(), nil
		},
		status: func(string) (tripstore.Status, error) {
			return tripstore.Status{Phase: tripstore.PhaseReady}, nil
		},
	}
	h := newHTTPHandler(p)
	cookie := login(t, h, "Benno")

	rec := do(h, http.MethodGet, "/state", "", cookie)

	require.Equal(t, http.StatusOK, rec.Code)
	var body handler.StateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, snapshotFixture(), body.Snapshot)
	assert.Equal(t, tripstore.PhaseReady, body.Status.Phase)
}

func TestRefreshState_FailureStillReturnsStaleState(t *testing.T) {
	p := &mockPlanner{
		refresh: func(context.Context, string) error { return errors.New("offline") },
		snapshot: func(string) (tripstore.Snapshot, error) {
			return snapshotFixture(), nil
		},
		status: func(string) (tripstore.Status, error) {
			return tripstore.Status{Phase: tripstore.PhaseReady, Stale: true, LastError: "offline"}, nil
		},
	}
	h := newHTTPHandler(p)
	cookie := login(t, h, "Benno")

	rec := do(h, http.MethodPost, "/state/refresh", "", cookie)

	require.Equal(t, http.StatusOK, rec.Code)
	var body handler.StateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, body.Status.Stale)
	assert.Equal(t, "offline", body.Status.LastError)
}

func TestGetState_ServiceError_Returns500(t *testing.T) {
	p := &mockPlanner{snapshot: func(string) (tripstore.Snapshot, error) {
		return tripstore.Snapshot{}, errors.New("unexpected")
	}}
	h := newHTTPHandler(p)
	cookie := login(t, h, "Benno")

	rec := do(h, http.MethodGet, "/state", "", cookie)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "internal_error", body.Error.Code)
	assert.NotContains(t, body.Error.Message, "unexpected")
}

func TestGetCosts(t *testing.T) {
	p := &mockPlanner{costs: func(user string) (service.CostSummary, error) {
		return service.CostSummary{Label: "family", People: []string{user, "Emil"}, Total: 1250, Formatted: "1250€"}, nil
	}}
	h := newHTTPHandler(p)
	cookie := login(t, h, "Benno")

	rec := do(h, http.MethodGet, "/costs", "", cookie)

	require.Equal(t, http.StatusOK, rec.Code)
	var body service.CostSummary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "1250€", body.Formatted)
	assert.Equal(t, []string{"Benno", "Emil"}, body.People)
}
