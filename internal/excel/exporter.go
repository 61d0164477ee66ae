package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/example/habitbot/pkg/models"
)

// exportSheet is the worksheet all habits are written to.
const exportSheet = "Habits"

var exportHeader = []string{
	"ID", "User ID", "Action", "Time", "Place", "Duration (min)",
	"Frequency (days)", "Pleasant", "Reward", "Related Habit ID", "Public", "Created At",
}

// ExportHabits writes the given habits to an .xlsx workbook at path.
func ExportHabits(path string, habits []models.Habit) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %v", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %v", err)
	}

	for col, title := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to build header cell name: %v", err)
		}
		if err := f.SetCellValue(exportSheet, cell, title); err != nil {
			return fmt.Errorf("failed to write header: %v", err)
		}
	}

	for row, h := range habits {
		place := ""
		if h.Place.Valid {
			place = h.Place.String
		}
		reward := ""
		if h.Reward.Valid {
			reward = h.Reward.String
		}
		related := ""
		if h.RelatedHabitID.Valid {
			related = fmt.Sprintf("%d", h.RelatedHabitID.Int64)
		}

		values := []interface{}{
			h.ID, h.UserID, h.Action, h.Time.String(), place, h.Duration,
			h.Frequency, h.IsPleasant, reward, related, h.IsPublic,
			h.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return fmt.Errorf("failed to build cell name: %v", err)
			}
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return fmt.Errorf("failed to write habit row: %v", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save export file: %v", err)
	}
	return nil
}
