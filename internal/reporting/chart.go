package reporting

import (
	"fmt"
	"time"

	"pos-terminal/internal/models"
	"pos-terminal/internal/util"
)

const (
	businessHourStart = 6
	emptyYAxisMax     = 1_000_000
)

var weekdayLabels = [7]string{"CN", "T2", "T3", "T4", "T5", "T6", "T7"}

type ChartPoint struct {
	Label   string `json:"label"`
	Revenue int64  `json:"revenue"`
}

type Chart struct {
	Filter    Filter       `json:"filter"`
	Points    []ChartPoint `json:"points"`
	YAxisMax  float64      `json:"yAxisMax"`
	AxisLabel string       `json:"axisLabel"`
}

// BuildChart buckets the current period's revenue by the filter's granularity.
func BuildChart(receipts []models.Receipt, filter Filter, now time.Time) Chart {
	var points []ChartPoint
	switch filter {
	case FilterToday:
		points = hourly(receipts, now)
	case FilterThisWeek:
		points = weekdays(receipts, now)
	case FilterThisMonth:
		points = weeksOfMonth(receipts, now)
	case FilterThisYear:
		points = months(receipts, now)
	default:
		points = []ChartPoint{}
	}

	top := YAxisMax(points)
	return Chart{Filter: filter, Points: points, YAxisMax: top, AxisLabel: util.CompactAmount(top)}
}

// YAxisMax leaves 10% headroom above the highest bucket.
func YAxisMax(points []ChartPoint) float64 {
	var highest int64
	for _, p := range points {
		if p.Revenue > highest {
			highest = p.Revenue
		}
	}
	if highest == 0 {
		return emptyYAxisMax
	}
	return float64(highest) * 1.1
}

func hourly(receipts []models.Receipt, now time.Time) []ChartPoint {
	var byHour [24]int64
	for _, r := range receipts {
		d := r.Date.In(now.Location())
		if sameDay(d, now) {
			byHour[d.Hour()] += r.TotalAmount
		}
	}

	points := make([]ChartPoint, 0, 24-businessHourStart)
	for h := businessHourStart; h < 24; h++ {
		points = append(points, ChartPoint{Label: fmt.Sprintf("%d:00", h), Revenue: byHour[h]})
	}
	return points
}

func weekdays(receipts []models.Receipt, now time.Time) []ChartPoint {
	var byDay [7]int64
	for _, r := range receipts {
		d := r.Date.In(now.Location())
		if daysAgo(d, now) < 7 {
			byDay[d.Weekday()] += r.TotalAmount
		}
	}

	points := make([]ChartPoint, 0, 7)
	for i, label := range weekdayLabels {
		points = append(points, ChartPoint{Label: label, Revenue: byDay[i]})
	}
	return points
}

// weeksOfMonth uses fixed day ranges 1-7, 8-14, 15-21, 22-28, 29+ and drops empty weeks.
func weeksOfMonth(receipts []models.Receipt, now time.Time) []ChartPoint {
	var byWeek [5]int64
	for _, r := range receipts {
		d := r.Date.In(now.Location())
		if d.Year() != now.Year() || d.Month() != now.Month() {
			continue
		}
		week := (d.Day() - 1) / 7
		if week > 4 {
			week = 4
		}
		byWeek[week] += r.TotalAmount
	}

	points := make([]ChartPoint, 0, 5)
	for i, revenue := range byWeek {
		if revenue > 0 {
			points = append(points, ChartPoint{Label: fmt.Sprintf("Tuần %d", i+1), Revenue: revenue})
		}
	}
	return points
}

func months(receipts []models.Receipt, now time.Time) []ChartPoint {
	var byMonth [12]int64
	for _, r := range receipts {
		d := r.Date.In(now.Location())
		if d.Year() == now.Year() {
			byMonth[d.Month()-1] += r.TotalAmount
		}
	}

	points := make([]ChartPoint, 0, 12)
	for i, revenue := range byMonth {
		points = append(points, ChartPoint{Label: fmt.Sprintf("T%d", i+1), Revenue: revenue})
	}
	return points
}
