package models

import "fmt"

func PeriodKey(year, month int) string {
	return fmt.Sprintf("%d-%02d", year, month)
}

var frenchMonths = [...]string{
	"Janvier", "Février", "Mars", "Avril", "Mai", "Juin",
	"Juillet", "Août", "Septembre", "Octobre", "Novembre", "Décembre",
}

// PeriodLabel renders a period the way receipts and reminders show it,
// e.g. "Mars 2025".
func PeriodLabel(year, month int) string {
	if month < 1 || month > 12 {
		return fmt.Sprintf("%d/%d", month, year)
	}
	return fmt.Sprintf("%s %d", frenchMonths[month-1], year)
}
