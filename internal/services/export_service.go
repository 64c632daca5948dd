package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"vms-backend/internal/apperr"
	"vms-backend/internal/auth"
	"vms-backend/internal/models"
)

const exportTimeLayout = "2006-01-02 15:04:05"

var exportHeader = []string{"ID", "Name", "Email", "Phone", "Purpose", "Staff Username", "Entry Time", "Exit Time", "Status"}

// ExportService renders visitor reports as CSV or Excel. Exports are
// unpaginated; the date range bounds the result instead.
type ExportService struct {
	Visitors VisitorStore
}

func NewExportService(visitors VisitorStore) *ExportService {
	return &ExportService{Visitors: visitors}
}

func (s *ExportService) fetch(ctx context.Context, actor auth.Actor, from, to *time.Time, sortBy string) ([]models.Visitor, error) {
	if !actor.HasRole(models.RoleAdmin) {
		return nil, apperr.New(apperr.KindAuthorization, "admin access required")
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, apperr.New(apperr.KindValidation, "to must not precede from")
	}
	visitors, err := s.Visitors.ListByDateRangeAll(ctx, from, to)
	if err != nil {
		return nil, err
	}
	switch sortBy {
	case "name":
		sort.Slice(visitors, func(i, j int) bool {
			return strings.ToLower(visitors[i].Name) < strings.ToLower(visitors[j].Name)
		})
	default: // latest first
		sort.Slice(visitors, func(i, j int) bool { return visitors[i].EntryTime.After(visitors[j].EntryTime) })
	}
	return visitors, nil
}

// ExportCSV renders the report as CSV bytes.
func (s *ExportService) ExportCSV(ctx context.Context, actor auth.Actor, from, to *time.Time, sortBy string) ([]byte, error) {
	visitors, err := s.fetch(ctx, actor, from, to, sortBy)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, v := range visitors {
		exit := ""
		if v.ExitTime != nil {
			exit = v.ExitTime.Format(exportTimeLayout)
		}
		record := []string{
			strconv.Itoa(v.ID),
			v.Name,
			v.Email,
			v.Phone,
			v.Purpose,
			v.StaffUsername,
			v.EntryTime.Format(exportTimeLayout),
			exit,
			v.Status,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportExcel renders the report as an .xlsx workbook.
func (s *ExportService) ExportExcel(ctx context.Context, actor auth.Actor, from, to *time.Time, sortBy string) ([]byte, error) {
	visitors, err := s.fetch(ctx, actor, from, to, sortBy)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Visitors"
	f.SetSheetName(f.GetSheetName(0), sheet)

	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, title)
	}
	for row, v := range visitors {
		exit := "Still Inside"
		if v.ExitTime != nil {
			exit = v.ExitTime.Format(exportTimeLayout)
		}
		values := []interface{}{
			v.ID, v.Name, v.Email, v.Phone, v.Purpose, v.StaffUsername,
			v.EntryTime.Format(exportTimeLayout), exit, v.Status,
		}
		for col, val := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, val)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
