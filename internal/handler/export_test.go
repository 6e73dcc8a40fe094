package handler_test

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcoEnzoS/14608und1Nacht/internal/domain"
	"github.com/MarcoEnzoS/14608und1Nacht/internal/handler"
)

func exportRowFixture() domain.AttendanceRow {
	price := 25.5
	return domain.AttendanceRow{
		EventID:    "evt_1",
		EventTitle: "Boat, big one",
		EventDate:  "2026-09-01",
		StartTime:  "10:00",
		Person:     "Emil",
		Status:     domain.RSVPYes,
		PriceEUR:   &price,
	}
}

func exportPlanner(rows []domain.AttendanceRow, err error) *mockPlanner {
	return &mockPlanner{export: func(string) ([]domain.AttendanceRow, error) { return rows, err }}
}

// ---- GET /export: JSON ------------------------------------------------------

func TestGetExport_DefaultJSON_EmptyResult(t *testing.T) {
	h := newHTTPHandler(exportPlanner([]domain.AttendanceRow{}, nil))
	cookie := login(t, h, "Marco")

	rec := do(h, http.MethodGet, "/export", "", cookie)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	var rows []handler.ExportRow
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rows))
	assert.Empty(t, rows)
}

func TestGetExport_JSON_OmitsEmptyStartTime(t *testing.T) {
	row := exportRowFixture()
	row.StartTime = ""
	row.PriceEUR = nil
	h := newHTTPHandler(exportPlanner([]domain.AttendanceRow{row}, nil))
	cookie := login(t, h, "Marco")

	rec := do(h, http.MethodGet, "/export?format=json", "", cookie)

	require.Equal(t, http.StatusOK, rec.Code)
	var raw []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&raw))
	require.Len(t, raw, 1)
	assert.NotContains(t, raw[0], "start_time")
	assert.NotContains(t, raw[0], "price_eur")
	assert.Equal(t, "yes", raw[0]["status"])
}

// ---- GET /export: CSV -------------------------------------------------------

func TestGetExport_CSV_EmptyResult_HasHeaderRow(t *testing.T) {
	h := newHTTPHandler(exportPlanner(nil, nil))
	cookie := login(t, h, "Marco")

	rec := do(h, http.MethodGet, "/export?format=csv", "", cookie)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "event_id", records[0][0])
}

func TestGetExport_CSV_OneRow(t *testing.T) {
	h := newHTTPHandler(exportPlanner([]domain.AttendanceRow{exportRowFixture()}, nil))
	cookie := login(t, h, "Marco")

	rec := do(h, http.MethodGet, "/export?format=csv", "", cookie)

	require.Equal(t, http.StatusOK, rec.Code)
	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"evt_1", "Boat, big one", "2026-09-01", "10:00", "Emil", "yes", "25.5"}, records[1])
}

func TestGetExport_UnknownFormat_Returns422(t *testing.T) {
	h := newHTTPHandler(exportPlanner(nil, nil))
	cookie := login(t, h, "Marco")

	rec := do(h, http.MethodGet, "/export?format=xml", "", cookie)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetExport_ServiceError_Returns500(t *testing.T) {
	h := newHTTPHandler(exportPlanner(nil, errors.New("db exploded")))
	cookie := login(t, h, "Marco")

	rec := do(h, http.MethodGet, "/export", "", cookie)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
