package ledger

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"essenza/internal/core"

	"github.com/xuri/excelize/v2"
)

// dayFirstLayouts are tried in order. Go's "2006" needs four digits, so
// two-digit years never parse.
var dayFirstLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2006-1-2",
}

var errDateRange = errors.New("year out of range")

// ParseDayFirst parses a ledger date cell. Text dates are day-first
// (15/01/2024), ISO dates are accepted, and bare numbers are Excel serial
// dates as stored by spreadsheet applications.
func ParseDayFirst(raw string) (core.Date, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return core.Date{}, core.ErrInvalidDate
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromSerial(f)
	}

	datePart, timePart := splitTime(s)
	if timePart != "" && !validClock(timePart) {
		return core.Date{}, core.ErrInvalidDate
	}
	for _, layout := range dayFirstLayouts {
		t, err := time.Parse(layout, datePart)
		if err != nil {
			continue
		}
		if err := checkYear(t.Year()); err != nil {
			return core.Date{}, err
		}
		return core.DateOf(t), nil
	}
	return core.Date{}, core.ErrInvalidDate
}

func fromSerial(f float64) (core.Date, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 1 {
		return core.Date{}, core.ErrInvalidDate
	}
	t, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return core.Date{}, core.ErrInvalidDate
	}
	if err := checkYear(t.Year()); err != nil {
		return core.Date{}, err
	}
	return core.DateOf(t), nil
}

func checkYear(y int) error {
	if y < 1900 || y > 9999 {
		return errors.Join(core.ErrInvalidDate, errDateRange)
	}
	return nil
}

// splitTime separates "15/01/2024 10:30" or "2024-01-15T10:30:00".
func splitTime(s string) (string, string) {
	if i := strings.IndexAny(s, " T"); i > 0 {
		return s[:i], strings.TrimSpace(s[i+1:])
	}
	return s, ""
}

func validClock(s string) bool {
	s = strings.TrimSuffix(s, "Z")
	for _, layout := range []string{"15:04:05", "15:04"} {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
