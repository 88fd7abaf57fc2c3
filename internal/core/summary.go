package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// MonthAmount is one point of a monthly evolution series.
type MonthAmount struct {
	Month  MonthKey
	Amount Money
}

// Label is a convenience for templates.
func (m MonthAmount) Label() string {
	return m.Month.Label()
}
