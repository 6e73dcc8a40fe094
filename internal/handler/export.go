// export.go implements GET /export.
// Returns one row per event and participant as a flat table.
// Supports content negotiation via ?format=csv (CSV) or default (JSON).

package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/MarcoEnzoS/14608und1Nacht/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"event_id", "event_title", "event_date", "start_time",
	"person", "status", "price_eur",
}

// ExportRow is the JSON shape of one attendance row.
type ExportRow struct {
	EventID    string   `json:"event_id"`
	EventTitle string   `json:"event_title"`
	EventDate  string   `json:"event_date"`
	StartTime  *string  `json:"start_time,omitempty"`
	Person     string   `json:"person"`
	Status     string   `json:"status"`
	PriceEUR   *float64 `json:"price_eur,omitempty"`
}

// GetExport handles GET /export.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	rows, err := s.planner.Export(currentUser(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "json":
		writeJSON(w, http.StatusOK, buildJSONResponse(rows))
	case "csv":
		body := buildCSV(rows)
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="attendance.csv"`)
		w.Header().Set("Content-Length", strconv.Itoa(body.Len()))
		w.WriteHeader(http.StatusOK)
		_, _ = body.WriteTo(w)
	default:
		writeErrorBody(w, http.StatusUnprocessableEntity, "validation_error", "format must be json or csv")
	}
}

// buildJSONResponse converts domain rows to their JSON form.
// Empty start times become nil pointers (omitted in JSON).
func buildJSONResponse(rows []domain.AttendanceRow) []ExportRow {
	out := make([]ExportRow, 0, len(rows))
	for _, r := range rows {
		row := ExportRow{
			EventID:    r.EventID,
			EventTitle: r.EventTitle,
			EventDate:  r.EventDate,
			Person:     r.Person,
			Status:     string(r.Status),
			PriceEUR:   r.PriceEUR,
		}
		if r.StartTime != "" {
			start := r.StartTime
			row.StartTime = &start
		}
		out = append(out, row)
	}
	return out
}

// buildCSV encodes domain rows as CSV with a header row.
func buildCSV(rows []domain.AttendanceRow) *bytes.Buffer {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	w.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		w.Write(rowToCSVRecord(r))
	}
	w.Flush()
	return &buf
}

// rowToCSVRecord encodes one row as a flat string slice.
// A missing price is encoded as an empty string.
func rowToCSVRecord(r domain.AttendanceRow) []string {
	price := ""
	if r.PriceEUR != nil {
		price = strconv.FormatFloat(*r.PriceEUR, 'f', -1, 64)
	}
	return []string{
		r.EventID,
		r.EventTitle,
		r.EventDate,
		r.StartTime,
		r.Person,
		string(r.Status),
		price,
	}
}
