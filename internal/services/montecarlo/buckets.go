package montecarlo

import (
	"fmt"

	"github.com/shopspring/decimal"

	"finplan/internal/models"
)

// boundaries picks histogram edges that fit the largest final value
func boundaries(maxVal float64) []float64 {
	switch {
	case maxVal <= 0:
		return []float64{0}
	case maxVal < 100_000:
		return []float64{0, 10_000, 25_000, 50_000, 75_000, 100_000}
	case maxVal < 1_000_000:
		return []float64{0, 100_000, 250_000, 500_000, 750_000, 1_000_000}
	case maxVal < 3_000_000:
		return []float64{0, 250_000, 500_000, 1_000_000, 1_500_000, 2_000_000, 2_500_000, 3_000_000}
	case maxVal <= 10_000_000:
		return []float64{0, 250_000, 500_000, 1_000_000, 2_000_000, 3_000_000, 5_000_000, 10_000_000}
	default:
		return []float64{0, 500_000, 1_000_000, 3_000_000, 5_000_000, 10_000_000, 20_000_000}
	}
}

// buckets groups sorted final values into histogram bars. Empty bars are
// dropped except the first, and negative outcomes get a bar of their own.
func buckets(sorted []decimal.Decimal) []models.DistBucket {
	total := len(sorted)
	if total == 0 {
		return nil
	}
	values := make([]float64, total)
	for i, v := range sorted {
		values[i] = v.InexactFloat64()
	}
	edges := boundaries(values[total-1])

	var out []models.DistBucket
	add := func(label string, count int, always bool) {
		if count == 0 && !always {
			return
		}
		out = append(out, models.DistBucket{
			Label:      label,
			Count:      count,
			Percentage: float64(count) / float64(total) * 100,
		})
	}

	negative := 0
	for _, v := range values {
		if v < 0 {
			negative++
		}
	}
	add("<$0", negative, false)

	for i := 0; i < len(edges)-1; i++ {
		count := 0
		for _, v := range values {
			if v >= edges[i] && v < edges[i+1] {
				count++
			}
		}
		add(bucketLabel(edges[i], edges[i+1]), count, i == 0)
	}

	last := edges[len(edges)-1]
	count := 0
	for _, v := range values {
		if v >= last {
			count++
		}
	}
	add(bucketLabel(last, -1), count, false)
	return out
}

// bucketLabel renders a range such as "$250K-$500K"; a negative high means open ended
func bucketLabel(low, high float64) string {
	format := func(v float64) string {
		if v >= 1_000_000 {
			return fmt.Sprintf("$%.1fM", v/1_000_000)
		}
		return fmt.Sprintf("$%.0fK", v/1000)
	}
	if high < 0 {
		return format(low) + "+"
	}
	return format(low) + "-" + format(high)
}
