package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gymdesk/internal/models"

	"github.com/xuri/excelize/v2"
)

// ScheduleWriter renders trainer schedules into xlsx workbooks.
type ScheduleWriter struct {
	dir string
}

func NewScheduleWriter(dir string) *ScheduleWriter {
	return &ScheduleWriter{dir: dir}
}

// WriteSchedule creates a workbook with a trainers-by-dates grid and returns
// the saved file path.
func (w *ScheduleWriter) WriteSchedule(
	startDate, endDate time.Time,
	dailyBookings map[string][]*models.Booking,
	trainers []models.Trainer,
) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Schedule"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Period: %s - %s",
		startDate.Format("02.01.2006"), endDate.Format("02.01.2006")))

	dateHeaders := writeDateHeaders(f, sheetName, startDate, endDate)
	writeTrainerHeaders(f, sheetName, trainers)
	writeBookingCells(f, sheetName, dailyBookings, trainers, dateHeaders)

	_ = f.SetColWidth(sheetName, "A", "A", 25)
	for i := 'B'; i <= 'Z'; i++ {
		_ = f.SetColWidth(sheetName, string(i), string(i), 24)
	}

	lastCol, _ := excelize.ColumnNumberToName(len(dateHeaders) + 1)
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")

	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", style)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("schedule_%s_to_%s.xlsx",
		startDate.Format("2006-01-02"),
		endDate.Format("2006-01-02"))
	filePath := filepath.Join(w.dir, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	return filePath, nil
}

func writeDateHeaders(f *excelize.File, sheetName string, startDate, endDate time.Time) map[string]int {
	col := 2
	currentDate := startDate
	dateHeaders := make(map[string]int)

	for !currentDate.After(endDate) {
		cell, _ := excelize.CoordinatesToCellName(col, 2)
		_ = f.SetCellValue(sheetName, cell, currentDate.Format("02.01"))
		dateHeaders[currentDate.Format("2006-01-02")] = col

		style, _ := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
			Font:      &excelize.Font{Bold: true},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		})
		_ = f.SetCellStyle(sheetName, cell, cell, style)

		col++
		currentDate = currentDate.AddDate(0, 0, 1)
	}
	return dateHeaders
}

func writeTrainerHeaders(f *excelize.File, sheetName string, trainers []models.Trainer) {
	row := 3
	for _, trainer := range trainers {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		label := trainer.Name
		if trainer.Specialty != "" {
			label = fmt.Sprintf("%s (%s)", trainer.Name, trainer.Specialty)
		}
		_ = f.SetCellValue(sheetName, cell, label)

		style, _ := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
			Font: &excelize.Font{Bold: true},
		})
		_ = f.SetCellStyle(sheetName, cell, cell, style)

		row++
	}
}

func writeBookingCells(
	f *excelize.File, sheetName string,
	dailyBookings map[string][]*models.Booking,
	trainers []models.Trainer,
	dateHeaders map[string]int,
) {
	for dateKey, bookings := range dailyBookings {
		col, exists := dateHeaders[dateKey]
		if !exists {
			continue
		}

		byTrainer := make(map[string][]*models.Booking)
		for _, booking := range bookings {
			byTrainer[booking.TrainerID] = append(byTrainer[booking.TrainerID], booking)
		}

		row := 3
		for _, trainer := range trainers {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			trainerBookings := byTrainer[trainer.ID]

			var cellValue string
			if len(trainerBookings) > 0 {
				for _, booking := range trainerBookings {
					cellValue += fmt.Sprintf("%s — %s [%s]\n", booking.TimeSlot, booking.MemberName, booking.Status)
				}
			} else {
				cellValue = "free"
			}

			_ = f.SetCellValue(sheetName, cell, cellValue)
			row++
		}
	}
}
