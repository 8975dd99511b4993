package billing

import "time"

// Period holds the billing period boundaries and the bill lifecycle dates
// derived from a (year, month) pair.
type Period struct {
	Start     time.Time
	End       time.Time
	Generated time.Time
	Due       time.Time
}

// CalculatePeriod computes the billing period for a bill month.
// Start is the first calendar day, End the last (leap-aware), Generated the
// first day of the following month and Due exactly one calendar month after
// Generated, with the day clamped to the target month.
func CalculatePeriod(year, month int) (Period, error) {
	if month < 1 || month > 12 {
		return Period{}, ErrInvalidPeriod
	}
	if year < 1 {
		return Period{}, ErrInvalidPeriod
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)

	nextYear, nextMonth := year, month+1
	if nextMonth > 12 {
		nextMonth = 1
		nextYear++
	}
	generated := time.Date(nextYear, time.Month(nextMonth), 1, 0, 0, 0, 0, time.UTC)

	return Period{
		Start:     start,
		End:       end,
		Generated: generated,
		Due:       addMonthClamped(generated),
	}, nil
}

// addMonthClamped adds one calendar month, clamping the day-of-month to the
// last day of the target month instead of letting it spill over.
func addMonthClamped(t time.Time) time.Time {
	year, month, day := t.Date()
	firstOfNext := time.Date(year, month+1, 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfNext.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfNext.Year(), firstOfNext.Month(), day, 0, 0, 0, 0, t.Location())
}

var romanianMonthNames = [12]string{
	"Ianuarie", "Februarie", "Martie", "Aprilie", "Mai", "Iunie",
	"Iulie", "August", "Septembrie", "Octombrie", "Noiembrie", "Decembrie",
}

// MonthName returns the Romanian name of a bill month.
func MonthName(month int) (string, error) {
	if month < 1 || month > 12 {
		return "", ErrInvalidPeriod
	}
	return romanianMonthNames[month-1], nil
}

// PreviousBillMonth returns the chronologically preceding (year, month) key.
func PreviousBillMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}
