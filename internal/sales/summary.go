package sales

import (
	"cmp"
	"slices"
	"time"

	"go-timeclock/internal/rollup"
)

const (
	// CommonAttribution is the key for sales not credited to any worker.
	CommonAttribution = "common"

	DateLayout = "2006-01-02"
)

// TransactionRecord is an immutable snapshot of one sale.
type TransactionRecord struct {
	ID              string
	AttributionKey  *string // nil when the sale belongs to the shop as a whole
	PaymentCategory string
	Amount          int64
	OccurredAt      time.Time
}

// Attribution returns the attribution key, or CommonAttribution.
func (r TransactionRecord) Attribution() string {
	if r.AttributionKey == nil || *r.AttributionKey == "" {
		return CommonAttribution
	}
	return *r.AttributionKey
}

// Totals is the monetary leaf shared by daily and window-wide views.
type Totals struct {
	ByCategory    map[string]int64 `json:"by_category"`
	ByAttribution map[string]int64 `json:"by_attribution"`
	Total         int64            `json:"total"`
	Count         int              `json:"count"`
}

func (t Totals) add(rec TransactionRecord) Totals {
	if t.ByCategory == nil {
		t.ByCategory = make(map[string]int64)
		t.ByAttribution = make(map[string]int64)
	}
	t.ByCategory[rec.PaymentCategory] += rec.Amount
	t.ByAttribution[rec.Attribution()] += rec.Amount
	t.Total += rec.Amount
	t.Count++
	return t
}

// DailyTotals is one calendar day of sales.
type DailyTotals struct {
	Totals
	Date         string              `json:"date"`
	Transactions []TransactionRecord `json:"-"`
}

// Summary is the sales view over a reporting window.
type Summary struct {
	Totals
	Days []DailyTotals `json:"days"`
}

// SumByPaymentCategory folds transactions into per-day and window-wide
// totals keyed by payment category and attribution key. Days are the
// calendar dates of OccurredAt in loc, ascending; empty days are absent.
func SumByPaymentCategory(records []TransactionRecord, loc *time.Location) Summary {
	if loc == nil {
		loc = time.UTC
	}
	dateKey := func(rec TransactionRecord) string {
		return rec.OccurredAt.In(loc).Format(DateLayout)
	}

	byDate := rollup.GroupBy(records, dateKey)
	dayTotals := rollup.Fold(records, dateKey, Totals.add)

	summary := Summary{Days: make([]DailyTotals, 0, len(byDate))}
	for _, date := range rollup.SortedKeys(byDate) {
		txs := byDate[date]
		slices.SortStableFunc(txs, func(a, b TransactionRecord) int {
			if c := a.OccurredAt.Compare(b.OccurredAt); c != 0 {
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		})
		summary.Days = append(summary.Days, DailyTotals{
			Date:         date,
			Totals:       dayTotals[date],
			Transactions: txs,
		})
	}

	for _, rec := range records {
		summary.Totals = summary.Totals.add(rec)
	}
	if summary.ByCategory == nil {
		summary.ByCategory = map[string]int64{}
		summary.ByAttribution = map[string]int64{}
	}
	return summary
}

// CategoryTotal sums amounts of one payment category.
func CategoryTotal(records []TransactionRecord, category string) int64 {
	var total int64
	for _, rec := range records {
		if rec.PaymentCategory == category {
			total += rec.Amount
		}
	}
	return total
}
