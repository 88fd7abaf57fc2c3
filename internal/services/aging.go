// Package services provides the reporting pipeline and its orchestration.
//
// This file implements the aging classifier. Each bucket has its own
// checker, and every item is tested against every checker in a separate
// pass. The buckets are NOT a partition: "due this month" overlaps the
// other three on purpose, each bucket answering its own question.
package services

import (
	"fmt"

	"essenza/internal/core"
)

// Bucket names an aging view.
type Bucket string

const (
	Overdue        Bucket = "overdue"
	DueToday       Bucket = "due_today"
	DueWithin7Days Bucket = "due_within_7_days"
	DueThisMonth   Bucket = "due_this_month"
)

// Label returns the Portuguese caption used on the dashboard.
func (b Bucket) Label() string {
	switch b {
	case Overdue:
		return "Vencidos"
	case DueToday:
		return "Vencem hoje"
	case DueWithin7Days:
		return "Próximos 7 dias"
	case DueThisMonth:
		return "Vencem este mês"
	default:
		return string(b)
	}
}

// BucketChecker is the strategy interface for one aging bucket.
type BucketChecker interface {
	// Contains reports whether an item due on due, daysToDue days after
	// ref, belongs to the bucket.
	Contains(daysToDue int, due, ref core.Date) bool
}

// OverdueChecker matches items whose due date has passed.
type OverdueChecker struct{}

func (OverdueChecker) Contains(days int, _, _ core.Date) bool { return days < 0 }

// DueTodayChecker matches items due on the reference date.
type DueTodayChecker struct{}

func (DueTodayChecker) Contains(days int, _, _ core.Date) bool { return days == 0 }

// WithinDaysChecker matches items due in (0, Days] days.
type WithinDaysChecker struct {
	Days int
}

func (c WithinDaysChecker) Contains(days int, _, _ core.Date) bool {
	return days > 0 && days <= c.Days
}

// SameMonthChecker matches items due in the reference calendar month,
// whatever their other buckets.
type SameMonthChecker struct{}

func (SameMonthChecker) Contains(_ int, due, ref core.Date) bool {
	return due.SameMonth(ref)
}

// AgingClassifier holds an ordered registry of bucket checkers.
type AgingClassifier struct {
	order    []Bucket
	checkers map[Bucket]BucketChecker
}

// NewAgingClassifier returns a classifier with the four standard buckets.
func NewAgingClassifier() *AgingClassifier {
	c := &AgingClassifier{checkers: make(map[Bucket]BucketChecker)}
	c.Register(Overdue, OverdueChecker{})
	c.Register(DueToday, DueTodayChecker{})
	c.Register(DueWithin7Days, WithinDaysChecker{Days: 7})
	c.Register(DueThisMonth, SameMonthChecker{})
	return c
}

// Register adds or replaces a bucket. New buckets are appended to the order.
func (c *AgingClassifier) Register(b Bucket, checker BucketChecker) {
	if _, ok := c.checkers[b]; !ok {
		c.order = append(c.order, b)
	}
	c.checkers[b] = checker
}

// Checker returns the checker registered for b.
func (c *AgingClassifier) Checker(b Bucket) (BucketChecker, error) {
	checker, ok := c.checkers[b]
	if !ok {
		return nil, fmt.Errorf("unknown aging bucket: %s", b)
	}
	return checker, nil
}

// Buckets returns the registered buckets in display order.
func (c *AgingClassifier) Buckets() []Bucket {
	out := make([]Bucket, len(c.order))
	copy(out, c.order)
	return out
}

// AgedItem is a pending item with its days-to-due and bucket membership
// relative to one reference date.
type AgedItem struct {
	core.PendingItem
	DaysToDue int
	Buckets   []Bucket
}

// In reports whether the item belongs to b.
func (a AgedItem) In(b Bucket) bool {
	for _, x := range a.Buckets {
		if x == b {
			return true
		}
	}
	return false
}

// BucketSummary is the subtotal of one bucket.
type BucketSummary struct {
	Bucket Bucket
	Count  int
	Total  core.Money
}

// AgingReport is the classification of a pending set on a reference date.
type AgingReport struct {
	Reference  core.Date
	Items      []AgedItem
	Buckets    []BucketSummary
	ByCategory []core.CategoryAmount
	Total      core.Money
}

// Bucket returns the summary of b, zero if b is not registered.
func (r AgingReport) Bucket(b Bucket) BucketSummary {
	for _, s := range r.Buckets {
		if s.Bucket == b {
			return s
		}
	}
	return BucketSummary{Bucket: b}
}

// ItemsIn returns the items belonging to b.
func (r AgingReport) ItemsIn(b Bucket) []AgedItem {
	var out []AgedItem
	for _, it := range r.Items {
		if it.In(b) {
			out = append(out, it)
		}
	}
	return out
}

// Classify computes days-to-due for every item against ref and runs one
// pass per bucket. The result does not depend on the wall clock.
func (c *AgingClassifier) Classify(items []core.PendingItem, ref core.Date) AgingReport {
	report := AgingReport{
		Reference: ref,
		Items:     make([]AgedItem, len(items)),
		Buckets:   make([]BucketSummary, len(c.order)),
	}
	for i, it := range items {
		report.Items[i] = AgedItem{PendingItem: it, DaysToDue: it.DaysToDue(ref)}
		report.Total = report.Total.Add(it.Amount)
	}

	for bi, b := range c.order {
		checker := c.checkers[b]
		summary := BucketSummary{Bucket: b}
		for i := range report.Items {
			it := &report.Items[i]
			if checker.Contains(it.DaysToDue, it.DueDate, ref) {
				it.Buckets = append(it.Buckets, b)
				summary.Count++
				summary.Total = summary.Total.Add(it.Amount)
			}
		}
		report.Buckets[bi] = summary
	}

	report.ByCategory = rankCategories(items, func(it core.PendingItem) (string, core.Money) {
		return it.Category, it.Amount
	})
	return report
}

// Classify runs the standard buckets.
func Classify(items []core.PendingItem, ref core.Date) AgingReport {
	return NewAgingClassifier().Classify(items, ref)
}
