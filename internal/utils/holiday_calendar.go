package utils

import (
	"time"

	cal "github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/fr"
)

// French public holidays, built once.
var frBusiness = cal.NewBusinessCalendar()

func init() {
	frBusiness.AddHoliday(fr.Holidays...)
}

func IsFrenchHoliday(t time.Time) bool {
	actual, observed, _ := frBusiness.IsHoliday(t)
	return actual || observed
}

// NextBusinessDay returns t when it is a working day, otherwise the first
// working day after it.
func NextBusinessDay(t time.Time) time.Time {
	d := t
	for i := 0; i < 14 && !frBusiness.IsWorkday(d); i++ {
		d = d.AddDate(0, 0, 1)
	}
	return d
}
