package chart

import (
	"sort"
	"strconv"

	"github.com/minimalprod/erpctl/internal/erp"
)

// Series ids of the depreciation chart
const (
	SeriesBookValue    = "valorEnLibros"
	SeriesDepreciation = "valorDepreciacion"
	SeriesAccumulated  = "valorAcumulado"
)

// DepreciationSeries are the lines drawn for a machine's depreciation curve
var DepreciationSeries = []Series{
	{ID: SeriesBookValue, Name: "Book value", Color: "#3b82f6"},
	{ID: SeriesDepreciation, Name: "Depreciation", Color: "#ef4444"},
	{ID: SeriesAccumulated, Name: "Accumulated", Color: "#10b981"},
}

// DepreciationChart builds a chart from a depreciation curve, one point
// per year in ascending order. The point label carries the kind (actual or
// projected).
func DepreciationChart(points []erp.DepreciationPoint) *Chart {
	sorted := append([]erp.DepreciationPoint(nil), points...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Year < sorted[j].Year })

	data := make([]DataPoint, 0, len(sorted))
	for _, p := range sorted {
		data = append(data, DataPoint{
			X:     strconv.Itoa(p.Year),
			Label: p.Kind,
			Values: map[string]float64{
				SeriesBookValue:    p.BookValue,
				SeriesDepreciation: p.DepreciationValue,
				SeriesAccumulated:  p.AccumulatedValue,
			},
		})
	}

	c := New(data...)
	c.SetSeries(DepreciationSeries)
	return c
}
