package reporting

import (
	"sort"
	"time"

	"pos-terminal/internal/models"
)

const (
	hotDailyThreshold   = 7
	hotWeeklyThreshold  = 30
	hotMonthlyThreshold = 365
	hotProductsLimit    = 8
)

type Badge string

const (
	BadgeDaily   Badge = "red"
	BadgeWeekly  Badge = "orange"
	BadgeMonthly Badge = "green"
)

type HotProduct struct {
	ProductID       string `json:"productId"`
	Name            string `json:"name"`
	Price           int64  `json:"price"`
	DailyQuantity   int    `json:"dailyQuantity"`
	WeeklyQuantity  int    `json:"weeklyQuantity"`
	MonthlyQuantity int    `json:"monthlyQuantity"`
	Revenue         int64  `json:"revenue"`
	Badge           Badge  `json:"badge"`
}

// HotProducts ranks best sellers over day-aligned windows starting today,
// 7 days ago and 30 days ago. Revenue covers the 30-day window.
func HotProducts(receipts []models.Receipt, now time.Time) []HotProduct {
	today := startOfDay(now)
	weekAgo := today.AddDate(0, 0, -7)
	monthAgo := today.AddDate(0, 0, -30)

	byID := make(map[string]*HotProduct)
	order := make([]string, 0)
	for _, r := range receipts {
		d := r.Date.In(now.Location())
		if d.Before(monthAgo) {
			continue
		}
		for _, item := range r.Products {
			p, ok := byID[item.ProductID]
			if !ok {
				p = &HotProduct{ProductID: item.ProductID, Name: item.ProductName, Price: item.Price}
				byID[item.ProductID] = p
				order = append(order, item.ProductID)
			}
			if !d.Before(today) {
				p.DailyQuantity += item.Quantity
			}
			if !d.Before(weekAgo) {
				p.WeeklyQuantity += item.Quantity
			}
			p.MonthlyQuantity += item.Quantity
			p.Revenue += item.Price * int64(item.Quantity)
		}
	}

	hot := make([]HotProduct, 0)
	for _, id := range order {
		p := byID[id]
		if badge, ok := badgeFor(p); ok {
			p.Badge = badge
			hot = append(hot, *p)
		}
	}

	sort.SliceStable(hot, func(i, j int) bool {
		if hot[i].Revenue != hot[j].Revenue {
			return hot[i].Revenue > hot[j].Revenue
		}
		return hot[i].Name < hot[j].Name
	})
	if len(hot) > hotProductsLimit {
		hot = hot[:hotProductsLimit]
	}
	return hot
}

func badgeFor(p *HotProduct) (Badge, bool) {
	switch {
	case p.DailyQuantity >= hotDailyThreshold:
		return BadgeDaily, true
	case p.WeeklyQuantity >= hotWeeklyThreshold:
		return BadgeWeekly, true
	case p.MonthlyQuantity >= hotMonthlyThreshold:
		return BadgeMonthly, true
	}
	return "", false
}
