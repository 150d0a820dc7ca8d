package api

import (
	"fmt"
	"net/http"
	"time"

	"granbokning/internal/models"
	"granbokning/internal/triage"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Bokningar"

// handleExport streams the full booking list as an .xlsx attachment, in the
// same order the triage view shows it.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	bookings, err := s.bookings.ListBookings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load bookings")
		return
	}

	f, err := buildWorkbook(triage.OrderForDisplay(bookings))
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to build export workbook")
		writeError(w, http.StatusInternalServerError, "failed to build export")
		return
	}
	defer f.Close()

	fileName := fmt.Sprintf("bookings_export_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))

	if err := f.Write(w); err != nil {
		s.logger.Error().Err(err).Msg("failed to write export workbook")
	}
}

func buildWorkbook(bookings []*models.Booking) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"ID", "Namn", "E-post", "Telefon", "Adress",
		"Upphämtningsdatum", "Önskad tid", "Övrig information", "Upphämtad", "Skapad",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(exportSheet, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(exportSheet, "A1", lastHeader, headerStyle)

	for i, b := range bookings {
		row := i + 2
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("A%d", row), b.ID)
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("B%d", row), b.Name)
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("C%d", row), b.Email)
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("D%d", row), b.Phone)
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("E%d", row), b.Address)
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("F%d", row), b.PickupDate)
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("G%d", row), b.TimePreference)
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("H%d", row), b.AdditionalInfo)
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("I%d", row), boolToJaNej(b.PickedUp))
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("J%d", row), b.CreatedAt.Format("02.01.2006 15:04"))
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 8)
	_ = f.SetColWidth(exportSheet, "B", "B", 25)
	_ = f.SetColWidth(exportSheet, "C", "C", 28)
	_ = f.SetColWidth(exportSheet, "D", "D", 16)
	_ = f.SetColWidth(exportSheet, "E", "E", 30)
	_ = f.SetColWidth(exportSheet, "F", "G", 18)
	_ = f.SetColWidth(exportSheet, "H", "H", 35)
	_ = f.SetColWidth(exportSheet, "I", "J", 16)

	_ = f.DeleteSheet("Sheet1")

	return f, nil
}

func boolToJaNej(v bool) string {
	if v {
		return "Ja"
	}
	return "Nej"
}
