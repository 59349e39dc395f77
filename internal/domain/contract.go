package domain

import (
	"fmt"
	"strings"
	"time"
)

// Frequency is a contract's delivery-frequency policy.
type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
	FrequencyCustom   Frequency = "custom"
)

// Allocation is a partial quantity sourced from one warehouse or supplier.
type Allocation struct {
	EntityID string
	Name     string
	Quantity float64
}

// ContractProduct is the product a contract delivers.
type ContractProduct struct {
	ProductID     string
	Name          string
	TotalQuantity float64
}

// Contract is a supply agreement: one product, a required total quantity, a
// source warehouse (optionally topped up by a supplier pickup), destination
// sale points, a validity window, and a delivery-frequency policy.
type Contract struct {
	ID           string
	Name         string
	StartDate    time.Time
	EndDate      time.Time
	SalePointIDs []string
	Warehouse    Allocation
	Supplier     Allocation
	Product      ContractProduct
	Frequency    Frequency
	DeliveryDays []time.Weekday
}

// ActiveOn reports whether the planning date falls inside the contract's
// validity window (inclusive on both ends, compared by calendar day).
func (c *Contract) ActiveOn(date time.Time) bool {
	d := truncateDay(date)
	return !d.Before(truncateDay(c.StartDate)) && !d.After(truncateDay(c.EndDate))
}

// NeedsSupplier reports whether the warehouse allocation alone cannot cover
// the contract quantity, requiring a supplier pickup leg.
func (c *Contract) NeedsSupplier() bool {
	return c.Product.TotalQuantity > c.Warehouse.Quantity
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday maps a lowercase English day name to a time.Weekday.
func ParseWeekday(s string) (time.Weekday, error) {
	day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q", s)
	}
	return day, nil
}

// WeekdayName is the lowercase English name used on the wire and in seeds.
func WeekdayName(d time.Weekday) string {
	return strings.ToLower(d.String())
}
