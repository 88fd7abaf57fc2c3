package services

import (
	"essenza/internal/core"
	"testing"
)

func TestBucketCheckers(t *testing.T) {
	ref := core.NewDate(2024, 6, 15)

	tests := []struct {
		name    string
		checker BucketChecker
		due     core.Date
		want    bool
	}{
		{"overdue - yesterday", OverdueChecker{}, core.NewDate(2024, 6, 14), true},
		{"overdue - today is not overdue", OverdueChecker{}, ref, false},
		{"due today - today", DueTodayChecker{}, ref, true},
		{"due today - tomorrow", DueTodayChecker{}, core.NewDate(2024, 6, 16), false},
		{"within 7 - today excluded", WithinDaysChecker{Days: 7}, ref, false},
		{"within 7 - day 1", WithinDaysChecker{Days: 7}, core.NewDate(2024, 6, 16), true},
		{"within 7 - day 7 included", WithinDaysChecker{Days: 7}, core.NewDate(2024, 6, 22), true},
		{"within 7 - day 8 excluded", WithinDaysChecker{Days: 7}, core.NewDate(2024, 6, 23), false},
		{"this month - earlier in month", SameMonthChecker{}, core.NewDate(2024, 6, 1), true},
		{"this month - next month", SameMonthChecker{}, core.NewDate(2024, 7, 1), false},
		{"this month - same month last year", SameMonthChecker{}, core.NewDate(2023, 6, 20), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.checker.Contains(ref.DaysUntil(tt.due), tt.due, ref)
			if got != tt.want {
				t.Errorf("%T.Contains() = %v, want %v", tt.checker, got, tt.want)
			}
		})
	}
}

func TestClassify_OverlappingBuckets(t *testing.T) {
	ref := core.NewDate(2024, 6, 15)
	items := []core.PendingItem{
		{DueDate: core.NewDate(2024, 6, 10), Amount: core.Money{Cents: 1000}, Category: "A", Direction: core.Payable},
		{DueDate: core.NewDate(2024, 6, 15), Amount: core.Money{Cents: 2000}, Category: "B", Direction: core.Payable},
		{DueDate: core.NewDate(2024, 6, 20), Amount: core.Money{Cents: 3000}, Category: "A", Direction: core.Payable},
		{DueDate: core.NewDate(2024, 6, 30), Amount: core.Money{Cents: 4000}, Category: "C", Direction: core.Payable},
	}

	report := Classify(items, ref)

	want := [][]Bucket{
		{Overdue, DueThisMonth},
		{DueToday, DueThisMonth},
		{DueWithin7Days, DueThisMonth},
		{DueThisMonth},
	}
	for i, it := range report.Items {
		if len(it.Buckets) != len(want[i]) {
			t.Fatalf("item %d buckets = %v, want %v", i, it.Buckets, want[i])
		}
		for j, b := range want[i] {
			if it.Buckets[j] != b {
				t.Errorf("item %d buckets = %v, want %v", i, it.Buckets, want[i])
			}
		}
	}

	if got := report.Items[0].DaysToDue; got != -5 {
		t.Errorf("DaysToDue = %d, want -5", got)
	}

	checks := map[Bucket]int64{
		Overdue:        1000,
		DueToday:       2000,
		DueWithin7Days: 3000,
		DueThisMonth:   10000,
	}
	for b, cents := range checks {
		if got := report.Bucket(b).Total.Cents; got != cents {
			t.Errorf("bucket %s total = %d, want %d", b, got, cents)
		}
	}

	// Overlap is kept: the bucket totals exceed the grand total.
	var sum int64
	for _, s := range report.Buckets {
		sum += s.Total.Cents
	}
	if report.Total.Cents != 10000 || sum <= report.Total.Cents {
		t.Errorf("expected overlapping buckets, total=%d sum=%d", report.Total.Cents, sum)
	}

	if len(report.ByCategory) != 3 || report.ByCategory[0].Name != "A" || report.ByCategory[0].Amount.Cents != 4000 {
		t.Errorf("unexpected category ranking %+v", report.ByCategory)
	}
	if got := len(report.ItemsIn(DueThisMonth)); got != 4 {
		t.Errorf("ItemsIn(DueThisMonth) = %d, want 4", got)
	}
}

func TestClassify_Empty(t *testing.T) {
	report := Classify(nil, core.NewDate(2024, 6, 15))
	if len(report.Buckets) != 4 || !report.Total.IsZero() || len(report.Items) != 0 {
		t.Fatalf("unexpected empty report %+v", report)
	}
}

type weekendChecker struct{}

func (weekendChecker) Contains(_ int, due, _ core.Date) bool {
	wd := due.Weekday()
	return wd == 0 || wd == 6
}

func TestAgingClassifier_Register(t *testing.T) {
	c := NewAgingClassifier()
	c.Register("weekend", weekendChecker{})

	if _, err := c.Checker("weekend"); err != nil {
		t.Fatalf("Checker() error = %v", err)
	}
	if _, err := c.Checker("nope"); err == nil {
		t.Fatal("expected error for unknown bucket")
	}
	if got := c.Buckets(); len(got) != 5 || got[4] != "weekend" {
		t.Fatalf("unexpected bucket order %v", got)
	}

	// 2024-06-16 is a Sunday.
	report := c.Classify([]core.PendingItem{{DueDate: core.NewDate(2024, 6, 16), Amount: core.Money{Cents: 1}}}, core.NewDate(2024, 6, 15))
	if report.Bucket("weekend").Count != 1 {
		t.Errorf("custom bucket not applied: %+v", report.Buckets)
	}
}
