package core

import (
	"sort"
	"time"
)

// MonthKey identifies a calendar month in "YYYY-MM" form. It sorts
// chronologically as a plain string.
type MonthKey string

// MonthKeyOf returns the key for the month containing t.
func MonthKeyOf(t time.Time) MonthKey {
	return MonthKey(t.Format("2006-01"))
}

// ParseMonthKey validates a "YYYY-MM" string.
func ParseMonthKey(s string) (MonthKey, error) {
	if _, err := time.Parse("2006-01", s); err != nil {
		return "", ErrInvalidMonth
	}
	return MonthKey(s), nil
}

func (k MonthKey) Validate() error {
	_, err := ParseMonthKey(string(k))
	return err
}

func (k MonthKey) String() string {
	return string(k)
}

// LastDay returns the last calendar day of the month. Month-close stamps
// its auto-savings row with this date.
func (k MonthKey) LastDay() Date {
	t, err := time.Parse("2006-01", string(k))
	if err != nil {
		return Date{}
	}
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Date{Time: first.AddDate(0, 1, -1)}
}

// Contains reports whether the date falls within the month.
func (k MonthKey) Contains(d Date) bool {
	return d.Key() == k
}

// AvailableMonths lists every month that has at least one transaction,
// newest first. The current month is always included so the UI has a
// default selection even before the first entry.
func AvailableMonths(transactions []Transaction, now time.Time) []MonthKey {
	seen := map[MonthKey]struct{}{MonthKeyOf(now): {}}
	for _, t := range transactions {
		seen[t.Date.Key()] = struct{}{}
	}
	out := make([]MonthKey, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] > out[j] })
	return out
}
