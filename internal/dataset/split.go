package dataset

import (
	"fmt"
	"time"

	"etf-momentum/internal/dto"
	"etf-momentum/pkg/utils"
)

const (
	// MinInSampleObservations is the floor for a usable training partition,
	// sized so the longest default momentum lookback has history to work with.
	MinInSampleObservations = 90
	// MinOOSObservations is the floor for a meaningful held-out partition.
	MinOOSObservations = 30
)

// ValidationResult itemizes why a split is or is not usable.
type ValidationResult struct {
	Passed bool     `json:"passed"`
	Issues []string `json:"issues,omitempty"`
}

// Partition is one symbol's chronological split.
type Partition struct {
	Symbol      string           `json:"symbol"`
	SplitDate   time.Time        `json:"split_date"`
	InSample    dto.PriceSeries  `json:"-"`
	OutOfSample dto.PriceSeries  `json:"-"`
	Validation  ValidationResult `json:"validation"`
}

// Partitioner splits chronologically ordered price series into disjoint
// in-sample and out-of-sample partitions and checks them for leakage and
// sufficiency.
type Partitioner struct {
	minInSample int
	minOOS      int
}

func NewPartitioner() *Partitioner {
	return &Partitioner{
		minInSample: MinInSampleObservations,
		minOOS:      MinOOSObservations,
	}
}

// Split partitions by the date predicate: in-sample strictly before the
// split date, out-of-sample on or after it. The input is re-sorted by date
// first so the partition is stable regardless of input order.
func (p *Partitioner) Split(series dto.PriceSeries, splitDate time.Time) (dto.PriceSeries, dto.PriceSeries) {
	splitDate = utils.NormalizeDate(splitDate)

	sorted := append(dto.PriceSeries(nil), series...)
	sorted.Sort()

	var inSample, outOfSample dto.PriceSeries
	for _, c := range sorted {
		if c.Date.Before(splitDate) {
			inSample = append(inSample, c)
		} else {
			outOfSample = append(outOfSample, c)
		}
	}
	return inSample, outOfSample
}

// Validate checks a partition pair for emptiness, temporal overlap, and
// minimum observation counts. All findings are itemized; Passed is true
// only when there are none.
func (p *Partitioner) Validate(inSample, outOfSample dto.PriceSeries) ValidationResult {
	result := ValidationResult{Passed: true}
	fail := func(format string, args ...interface{}) {
		result.Passed = false
		result.Issues = append(result.Issues, fmt.Sprintf(format, args...))
	}

	if len(inSample) == 0 || len(outOfSample) == 0 {
		fail("one or both partitions are empty")
		return result
	}

	inEnd, _ := inSample.LastDate()
	outStart, _ := outOfSample.FirstDate()
	if !inEnd.Before(outStart) {
		fail("temporal overlap detected: in-sample ends %s, out-of-sample starts %s",
			utils.FormatDate(inEnd), utils.FormatDate(outStart))
	}

	if len(inSample) < p.minInSample {
		fail("insufficient in-sample data: %d observations (minimum %d)", len(inSample), p.minInSample)
	}
	if len(outOfSample) < p.minOOS {
		fail("insufficient out-of-sample data: %d observations (minimum %d)", len(outOfSample), p.minOOS)
	}

	return result
}

// RecommendSplitDate picks the observation whose positional index leaves the
// out-of-sample share of rows closest to the requested fraction. Position
// based, not calendar-proportional: trading gaps do not skew the split.
func (p *Partitioner) RecommendSplitDate(series dto.PriceSeries, oosFraction float64) (time.Time, error) {
	if len(series) == 0 {
		return time.Time{}, fmt.Errorf("cannot recommend split date for empty series")
	}
	if oosFraction <= 0 || oosFraction >= 1 {
		return time.Time{}, fmt.Errorf("oos fraction must be in (0, 1), got %.3f", oosFraction)
	}

	sorted := append(dto.PriceSeries(nil), series...)
	sorted.Sort()

	total := len(sorted)
	splitIndex := total - int(float64(total)*oosFraction)
	if splitIndex >= total {
		splitIndex = total - 1
	}
	if splitIndex < 0 {
		splitIndex = 0
	}

	return utils.NormalizeDate(sorted[splitIndex].Date), nil
}

// SplitAll applies Split and Validate per symbol. Symbols whose validation
// fails are excluded from the returned partitions and reported as warnings;
// one bad symbol does not fail the batch.
func (p *Partitioner) SplitAll(histories map[string]dto.PriceSeries, splitDate time.Time) (map[string]Partition, []string) {
	partitions := make(map[string]Partition, len(histories))
	var warnings []string

	for symbol, series := range histories {
		inSample, outOfSample := p.Split(series, splitDate)
		validation := p.Validate(inSample, outOfSample)

		if !validation.Passed {
			for _, issue := range validation.Issues {
				warnings = append(warnings, fmt.Sprintf("%s: %s", symbol, issue))
			}
			continue
		}

		partitions[symbol] = Partition{
			Symbol:      symbol,
			SplitDate:   utils.NormalizeDate(splitDate),
			InSample:    inSample,
			OutOfSample: outOfSample,
			Validation:  validation,
		}
	}

	return partitions, warnings
}
