package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"vms-backend/internal/apperr"
	"vms-backend/internal/models"
)

func TestExportCSV(t *testing.T) {
	f := newVisitorFixture(t)
	v1 := f.checkIn(t)
	f.checkIn(t)
	if _, err := f.svc.Exit(context.Background(), securityActor, v1.ID); err != nil {
		t.Fatalf("Exit failed: %v", err)
	}

	export := NewExportService(f.visitors)
	data, err := export.ExportCSV(context.Background(), adminActor, nil, nil, "name")
	if err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("record count = %d, want header + 2 rows", len(records))
	}
	if records[0][0] != "ID" || records[0][8] != "Status" {
		t.Errorf("unexpected header: %v", records[0])
	}

	// The exited visitor carries an exit time, the active one does not.
	sawExit, sawBlank := false, false
	for _, rec := range records[1:] {
		if rec[7] == "" {
			sawBlank = true
		} else {
			sawExit = true
		}
	}
	if !sawExit || !sawBlank {
		t.Errorf("expected one row with exit time and one without, got %v", records[1:])
	}
}

func TestExportSortByNameIgnoresCase(t *testing.T) {
	store := newFakeVisitorStore()
	now := time.Now()
	for i, name := range []string{"Bob", "alice", "Carol"} {
		v := models.Visitor{
			Name:          name,
			Email:         "v@example.com",
			StaffUsername: "alice",
			EntryTime:     now.Add(time.Duration(i) * time.Minute),
			Status:        models.StatusActive,
		}
		if err := store.Create(context.Background(), &v); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	export := NewExportService(store)
	data, err := export.ExportCSV(context.Background(), adminActor, nil, nil, "name")
	if err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	var names []string
	for _, rec := range records[1:] {
		names = append(names, rec[1])
	}
	want := []string{"alice", "Bob", "Carol"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}

func TestExportIncludesStaffUsername(t *testing.T) {
	f := newVisitorFixture(t)
	f.checkIn(t)

	export := NewExportService(f.visitors)
	data, err := export.ExportCSV(context.Background(), adminActor, nil, nil, "")
	if err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if records[0][5] != "Staff Username" {
		t.Errorf("column 6 header = %q, want Staff Username", records[0][5])
	}
	if records[1][5] != f.host.Username {
		t.Errorf("staff column = %q, want %q", records[1][5], f.host.Username)
	}
}

func TestExportRequiresAdmin(t *testing.T) {
	f := newVisitorFixture(t)
	export := NewExportService(f.visitors)

	if _, err := export.ExportCSV(context.Background(), securityActor, nil, nil, ""); !apperr.IsAuthorization(err) {
		t.Errorf("csv: err = %v, want authorization error", err)
	}
	if _, err := export.ExportExcel(context.Background(), staffActor, nil, nil, ""); !apperr.IsAuthorization(err) {
		t.Errorf("excel: err = %v, want authorization error", err)
	}
}

func TestExportExcelProducesWorkbook(t *testing.T) {
	f := newVisitorFixture(t)
	f.checkIn(t)

	export := NewExportService(f.visitors)
	data, err := export.ExportExcel(context.Background(), adminActor, nil, nil, "")
	if err != nil {
		t.Fatalf("ExportExcel failed: %v", err)
	}
	// xlsx files are zip archives.
	if len(data) < 4 || data[0] != 'P' || data[1] != 'K' {
		t.Error("output does not look like an xlsx workbook")
	}
}
