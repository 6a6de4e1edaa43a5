// Package reporting derives revenue figures from the receipt history.
// Every function takes now explicitly and uses now's location for calendar boundaries.
package reporting

import (
	"errors"
	"fmt"
	"math"
	"time"

	"pos-terminal/internal/models"
)

type Filter string

const (
	FilterToday     Filter = "today"
	FilterThisWeek  Filter = "thisWeek"
	FilterThisMonth Filter = "thisMonth"
	FilterThisYear  Filter = "thisYear"
)

var ErrUnknownFilter = errors.New("unknown report filter")

// ParseFilter defaults to today when s is empty.
func ParseFilter(s string) (Filter, error) {
	switch Filter(s) {
	case "":
		return FilterToday, nil
	case FilterToday, FilterThisWeek, FilterThisMonth, FilterThisYear:
		return Filter(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFilter, s)
}

// PreviousLabel names the comparison period, e.g. "so với tuần trước".
func (f Filter) PreviousLabel() string {
	switch f {
	case FilterToday:
		return "ngày hôm qua"
	case FilterThisWeek:
		return "tuần trước"
	case FilterThisMonth:
		return "tháng trước"
	case FilterThisYear:
		return "năm trước"
	}
	return "kỳ trước"
}

type Summary struct {
	Filter            Filter `json:"filter"`
	Total             int64  `json:"total"`
	OrderCount        int    `json:"orderCount"`
	AverageOrderValue int64  `json:"averageOrderValue"`
	PreviousTotal     int64  `json:"previousTotal"`
	Growth            int    `json:"growth"`
	PreviousLabel     string `json:"previousLabel"`
}

// Summarize totals the current period and compares it with the one before.
func Summarize(receipts []models.Receipt, filter Filter, now time.Time) Summary {
	s := Summary{Filter: filter, PreviousLabel: filter.PreviousLabel()}
	for _, r := range receipts {
		d := r.Date.In(now.Location())
		switch {
		case inCurrent(filter, d, now):
			s.Total += r.TotalAmount
			s.OrderCount++
		case inPrevious(filter, d, now):
			s.PreviousTotal += r.TotalAmount
		}
	}
	if s.OrderCount > 0 {
		s.AverageOrderValue = s.Total / int64(s.OrderCount)
	}
	s.Growth = Growth(s.Total, s.PreviousTotal)
	return s
}

// Growth is the rounded percentage change. A zero previous period counts as
// +100% when there is current revenue and 0% otherwise.
func Growth(current, previous int64) int {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	pct := float64(current-previous) / float64(previous) * 100
	return int(math.Floor(pct + 0.5))
}

func inCurrent(f Filter, d, now time.Time) bool {
	switch f {
	case FilterToday:
		return sameDay(d, now)
	case FilterThisWeek:
		return daysAgo(d, now) < 7
	case FilterThisMonth:
		return d.Year() == now.Year() && d.Month() == now.Month()
	case FilterThisYear:
		return d.Year() == now.Year()
	}
	return false
}

func inPrevious(f Filter, d, now time.Time) bool {
	switch f {
	case FilterToday:
		return sameDay(d, now.AddDate(0, 0, -1))
	case FilterThisWeek:
		days := daysAgo(d, now)
		return days >= 7 && days < 14
	case FilterThisMonth:
		// from the first of the month so that e.g. March 31 maps to February
		last := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
		return d.Year() == last.Year() && d.Month() == last.Month()
	case FilterThisYear:
		return d.Year() == now.Year()-1
	}
	return false
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// daysAgo is the number of whole 24h spans between d and now.
func daysAgo(d, now time.Time) int {
	return int(math.Floor(now.Sub(d).Hours() / 24))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
