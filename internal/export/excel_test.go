package export

import (
	"path/filepath"
	"testing"
	"time"

	"gymdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteSchedule(t *testing.T) {
	dir := t.TempDir()
	writer := NewScheduleWriter(dir)

	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 2)

	trainers := []models.Trainer{
		{ID: "tr-1", Name: "Arn", Specialty: "strength", IsActive: true},
		{ID: "tr-2", Name: "Bea", IsActive: true},
	}
	daily := map[string][]*models.Booking{
		"2025-06-02": {
			{TrainerID: "tr-1", TimeSlot: "8:00 AM - 9:00 AM", MemberName: "Alex", Status: models.StatusConfirmed},
			{TrainerID: "tr-1", TimeSlot: "9:00 AM - 10:00 AM", MemberName: "Pat", Status: models.StatusPending},
		},
	}

	path, err := writer.WriteSchedule(start, end, daily, trainers)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "schedule_2025-06-02_to_2025-06-04.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("Schedule", "A1")
	require.NoError(t, err)
	assert.Contains(t, title, "02.06.2025")

	// trainer with bookings on the first date column
	cell, err := f.GetCellValue("Schedule", "B3")
	require.NoError(t, err)
	assert.Contains(t, cell, "Alex")
	assert.Contains(t, cell, "8:00 AM - 9:00 AM")

	// trainer without bookings is marked free
	cell, err = f.GetCellValue("Schedule", "B4")
	require.NoError(t, err)
	assert.Equal(t, "free", cell)
}

func TestWriteSchedule_EmptyRange(t *testing.T) {
	dir := t.TempDir()
	writer := NewScheduleWriter(dir)

	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	path, err := writer.WriteSchedule(day, day, nil, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, path)
}
