package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var monthAbbrevs = [12]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

// MonthKey identifies a calendar month. Label is for display and period
// selection, Index for chronological ordering.
type MonthKey struct {
	Year  int
	Month time.Month
}

// MonthKeyOf derives the month key of a date.
func MonthKeyOf(d Date) MonthKey {
	return MonthKey{Year: d.Year(), Month: d.Month()}
}

// Label returns e.g. "Jan/2024".
func (k MonthKey) Label() string {
	if k.Month < time.January || k.Month > time.December {
		return ""
	}
	return fmt.Sprintf("%s/%04d", monthAbbrevs[k.Month-1], k.Year)
}

// Abbrev returns the month abbreviation without the year.
func (k MonthKey) Abbrev() string {
	if k.Month < time.January || k.Month > time.December {
		return ""
	}
	return monthAbbrevs[k.Month-1]
}

// Index sorts chronologically across years, unlike Label.
func (k MonthKey) Index() int {
	return k.Year*12 + int(k.Month) - 1
}

// ParseMonthLabel is the inverse of Label.
func ParseMonthLabel(label string) (MonthKey, error) {
	label = strings.TrimSpace(label)
	name, yearStr, ok := strings.Cut(label, "/")
	if !ok || len(yearStr) != 4 {
		return MonthKey{}, fmt.Errorf("invalid month label %q", label)
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return MonthKey{}, fmt.Errorf("invalid month label %q: %w", label, err)
	}
	for i, abbrev := range monthAbbrevs {
		if strings.EqualFold(abbrev, name) {
			return MonthKey{Year: year, Month: time.Month(i + 1)}, nil
		}
	}
	return MonthKey{}, fmt.Errorf("invalid month label %q", label)
}
