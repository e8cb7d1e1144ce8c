package report

import (
	"math"
	"slices"
	"time"

	"github.com/nao1215/benchdist/internal/model"
)

// Metric names one of the two score kinds of a series.
type Metric string

const (
	// SingleCore selects single-core scores.
	SingleCore Metric = "single-core"

	// MultiCore selects multi-core scores.
	MultiCore Metric = "multi-core"
)

// Metrics lists the metrics in report order.
var Metrics = []Metric{SingleCore, MultiCore}

// Summary holds descriptive statistics of one score sequence.
// All fields are zero for an empty sequence.
type Summary struct {
	Count  int     `json:"count"`
	Min    uint32  `json:"min"`
	Max    uint32  `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
}

// Summarize computes the summary of values. StdDev is the population
// standard deviation.
func Summarize(values []uint32) Summary {
	if len(values) == 0 {
		return Summary{}
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	var sum float64
	for _, v := range sorted {
		sum += float64(v)
	}
	mean := sum / float64(len(sorted))

	var sq float64
	for _, v := range sorted {
		d := float64(v) - mean
		sq += d * d
	}

	mid := len(sorted) / 2
	median := float64(sorted[mid])
	if len(sorted)%2 == 0 {
		median = (float64(sorted[mid-1]) + float64(sorted[mid])) / 2
	}

	return Summary{
		Count:  len(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   mean,
		Median: median,
		StdDev: math.Sqrt(sq / float64(len(sorted))),
	}
}

// Bin is one histogram bucket covering [Lower, Upper).
// The last bin of a histogram also includes Upper.
type Bin struct {
	Lower   float64 `json:"lower"`
	Upper   float64 `json:"upper"`
	Count   int     `json:"count"`
	Density float64 `json:"density"`
}

// Histogram is a fixed-width histogram. Density is normalized so that the
// bins of a non-empty histogram integrate to 1, which keeps series of very
// different sample sizes comparable.
type Histogram struct {
	Bins []Bin `json:"bins"`
}

// NewHistogram buckets values into n equal-width bins over [lo, hi].
// Values outside the range are clamped into the first or last bin.
// A degenerate range (hi <= lo) is widened to one unit.
func NewHistogram(values []uint32, lo, hi float64, n int) Histogram {
	if n <= 0 {
		n = 1
	}
	if hi <= lo {
		hi = lo + 1
	}
	width := (hi - lo) / float64(n)

	bins := make([]Bin, n)
	for i := range bins {
		bins[i].Lower = lo + float64(i)*width
		bins[i].Upper = lo + float64(i+1)*width
	}
	bins[n-1].Upper = hi

	for _, v := range values {
		idx := int((float64(v) - lo) / width)
		idx = max(0, min(idx, n-1))
		bins[idx].Count++
	}

	if len(values) > 0 {
		for i := range bins {
			bins[i].Density = float64(bins[i].Count) / (float64(len(values)) * width)
		}
	}

	return Histogram{Bins: bins}
}

// MaxCount returns the largest bin count.
func (h Histogram) MaxCount() int {
	var m int
	for _, b := range h.Bins {
		m = max(m, b.Count)
	}
	return m
}

// Distribution holds the statistics of one series.
type Distribution struct {
	Name       string `json:"name"`
	Identifier string `json:"identifier"`
	Key        string `json:"key"`
	Samples    int    `json:"samples"`

	SingleCore Summary `json:"single_core"`
	MultiCore  Summary `json:"multi_core"`

	SingleCoreHistogram Histogram `json:"single_core_histogram"`
	MultiCoreHistogram  Histogram `json:"multi_core_histogram"`
}

// SummaryOf returns the summary of metric m.
func (d *Distribution) SummaryOf(m Metric) Summary {
	if m == MultiCore {
		return d.MultiCore
	}
	return d.SingleCore
}

// HistogramOf returns the histogram of metric m.
func (d *Distribution) HistogramOf(m Metric) Histogram {
	if m == MultiCore {
		return d.MultiCoreHistogram
	}
	return d.SingleCoreHistogram
}

// Comparison is the rendered view of a run: one distribution per series, in
// input order.
//
// Design decision: histograms of the same metric share one value range
// across all series so that bins line up when distributions are compared
// side by side.
type Comparison struct {
	GeneratedAt   time.Time      `json:"generated_at"`
	Bins          int            `json:"bins"`
	Distributions []Distribution `json:"distributions"`
}

// NewComparison computes the statistics of series.
func NewComparison(series []*model.Series, bins int, now time.Time) *Comparison {
	scLo, scHi := valueRange(series, (*model.Series).SingleCore)
	mcLo, mcHi := valueRange(series, (*model.Series).MultiCore)

	c := &Comparison{
		GeneratedAt:   now,
		Bins:          bins,
		Distributions: make([]Distribution, 0, len(series)),
	}
	for _, s := range series {
		sc := s.SingleCore()
		mc := s.MultiCore()
		c.Distributions = append(c.Distributions, Distribution{
			Name:                s.Name,
			Identifier:          s.Identifier,
			Key:                 s.Key,
			Samples:             s.Len(),
			SingleCore:          Summarize(sc),
			MultiCore:           Summarize(mc),
			SingleCoreHistogram: NewHistogram(sc, scLo, scHi, bins),
			MultiCoreHistogram:  NewHistogram(mc, mcLo, mcHi, bins),
		})
	}
	return c
}

// TotalSamples returns the number of score pairs across all series.
func (c *Comparison) TotalSamples() int {
	var n int
	for _, d := range c.Distributions {
		n += d.Samples
	}
	return n
}

// valueRange returns the smallest and largest value of get over all series.
func valueRange(series []*model.Series, get func(*model.Series) []uint32) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range get(s) {
			lo = math.Min(lo, float64(v))
			hi = math.Max(hi, float64(v))
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return lo, hi
}
