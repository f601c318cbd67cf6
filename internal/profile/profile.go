// Package profile summarizes the columns of a dataset for preview screens.
package profile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nconklindev/tidysheet/internal/types"

	"github.com/montanaflynn/stats"
)

// ColumnProfile describes the values found under one header.
type ColumnProfile struct {
	Index  int
	Header string
	Filled int
	Blank  int
	// Kind is the most common non-empty cell kind, Empty if the column is blank.
	Kind types.Kind
	// Numeric is set when every non-empty value reads as a number.
	Numeric bool
	Min     float64
	Max     float64
	Mean    float64
}

// Summarize profiles every header column of ds. Cells beyond the header
// width are not attributed to any column.
func Summarize(ds *types.Dataset) []ColumnProfile {
	profiles := make([]ColumnProfile, len(ds.Headers))

	for i, h := range ds.Headers {
		p := ColumnProfile{Index: i, Header: h}
		kinds := make(map[types.Kind]int)
		var values stats.Float64Data
		numeric := true

		for _, row := range ds.Rows {
			cell := row.At(i)
			if cell.IsEmpty() {
				p.Blank++
				continue
			}
			p.Filled++
			kinds[cell.Kind]++

			if v, ok := numericValue(cell); ok {
				values = append(values, v)
			} else {
				numeric = false
			}
		}

		p.Kind = dominantKind(kinds)
		if numeric && len(values) > 0 {
			p.Numeric = true
			p.Min, _ = stats.Min(values)
			p.Max, _ = stats.Max(values)
			p.Mean, _ = stats.Mean(values)
		}

		profiles[i] = p
	}

	return profiles
}

// Describe renders a short human-readable summary of p.
func (p ColumnProfile) Describe() string {
	if p.Filled == 0 {
		return "empty"
	}
	if p.Numeric {
		return fmt.Sprintf("%d filled, min %s, max %s, mean %s",
			p.Filled, formatNumber(p.Min), formatNumber(p.Max), formatNumber(p.Mean))
	}
	return fmt.Sprintf("%d filled, %s", p.Filled, p.Kind)
}

func numericValue(c types.Cell) (float64, bool) {
	switch c.Kind {
	case types.Number:
		return c.Num, true
	case types.Text:
		v, err := strconv.ParseFloat(strings.TrimSpace(c.Str), 64)
		return v, err == nil
	}
	return 0, false
}

// dominantKind picks the most frequent kind, breaking ties by Kind order so
// the result does not depend on map iteration.
func dominantKind(counts map[types.Kind]int) types.Kind {
	best, bestCount := types.Empty, 0
	for _, k := range []types.Kind{types.Text, types.Number, types.Boolean, types.DateTime} {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	return best
}

func formatNumber(v float64) string {
	rounded, err := stats.Round(v, 2)
	if err != nil {
		rounded = v
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
