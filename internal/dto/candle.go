package dto

import (
	"fmt"
	"sort"
	"time"

	"etf-momentum/pkg/utils"
)

// Candle is one daily OHLCV observation for a symbol. Dates are UTC
// calendar dates with no intraday component.
type Candle struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// PriceSeries is a chronologically ordered candle sequence for one symbol.
// The core only ever reads sub-slices of it; producers are responsible for
// calling Sort once after assembly.
type PriceSeries []Candle

// Sort orders the series by date ascending.
func (s PriceSeries) Sort() {
	sort.Slice(s, func(i, j int) bool {
		return s[i].Date.Before(s[j].Date)
	})
}

// UpTo returns the prefix of the series with dates on or before the given
// date. The result shares backing storage with the receiver; callers must
// treat it as read-only.
func (s PriceSeries) UpTo(date time.Time) PriceSeries {
	date = utils.NormalizeDate(date)
	n := sort.Search(len(s), func(i int) bool {
		return s[i].Date.After(date)
	})
	return s[:n]
}

// CloseAsOf returns the most recent close on or before the given date.
func (s PriceSeries) CloseAsOf(date time.Time) (float64, bool) {
	prefix := s.UpTo(date)
	if len(prefix) == 0 {
		return 0, false
	}
	return prefix[len(prefix)-1].Close, true
}

// FirstDate returns the earliest date in the series.
func (s PriceSeries) FirstDate() (time.Time, bool) {
	if len(s) == 0 {
		return time.Time{}, false
	}
	return s[0].Date, true
}

// LastDate returns the latest date in the series.
func (s PriceSeries) LastDate() (time.Time, bool) {
	if len(s) == 0 {
		return time.Time{}, false
	}
	return s[len(s)-1].Date, true
}

// QualityIssues reports structural problems in a series: unsorted or
// duplicate dates and non-positive closes. An empty result means the series
// satisfies the ordering and price invariants the core depends on.
func (s PriceSeries) QualityIssues() []string {
	var issues []string
	for i, c := range s {
		if c.Close <= 0 {
			issues = append(issues, fmt.Sprintf("non-positive close %.4f at %s", c.Close, utils.FormatDate(c.Date)))
		}
		if i == 0 {
			continue
		}
		if !s[i-1].Date.Before(c.Date) {
			issues = append(issues, fmt.Sprintf("dates not strictly increasing at %s", utils.FormatDate(c.Date)))
		}
	}
	return issues
}
