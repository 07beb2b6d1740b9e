// Package chart adapts ERP series data into a shape that can be plotted or
// printed: a set of named, coloured series and the data points that carry a
// value per series.
package chart

// Series is one line of a chart
type Series struct {
	ID    string `json:"id"`
	Name  string `json:"nombre"`
	Color string `json:"color"`
}

// DataPoint is one x position with a value per series id. A series without
// an entry in Values has no value at this point.
type DataPoint struct {
	X      string
	Label  string
	Values map[string]float64
}

// Value returns the value of series id at this point
func (p DataPoint) Value(id string) (float64, bool) {
	v, ok := p.Values[id]
	return v, ok
}

// YAccessor reads one series' value from a data point
type YAccessor func(DataPoint) (float64, bool)

// Chart holds the series definitions, the data and the display toggles
type Chart struct {
	series []Series
	data   []DataPoint

	// Fallback is used for missing values when set; nil leaves gaps.
	Fallback *float64
	// Interpolation bridges gaps between known values linearly.
	Interpolation bool
	// ShowScatter marks the observed points.
	ShowScatter bool
}

// New returns a chart with interpolation and scatter markers enabled and
// no fallback value.
func New(data ...DataPoint) *Chart {
	return &Chart{
		data:          data,
		Interpolation: true,
		ShowScatter:   true,
	}
}

// Fallbacks are the supported fallback values: none or zero
func Fallbacks() []*float64 {
	zero := 0.0
	return []*float64{nil, &zero}
}

// SetSeries replaces the series definitions
func (c *Chart) SetSeries(series []Series) {
	c.series = append([]Series(nil), series...)
}

// SetData replaces the data points
func (c *Chart) SetData(data []DataPoint) {
	c.data = append([]DataPoint(nil), data...)
}

// Series returns the series definitions
func (c *Chart) Series() []Series {
	return append([]Series(nil), c.series...)
}

// Data returns the data points
func (c *Chart) Data() []DataPoint {
	return append([]DataPoint(nil), c.data...)
}

// Colors returns the series colours in series order
func (c *Chart) Colors() []string {
	colors := make([]string, len(c.series))
	for i, s := range c.series {
		colors[i] = s.Color
	}
	return colors
}

// CrosshairColors are the colours used for the hover markers
func (c *Chart) CrosshairColors() []string {
	return c.Colors()
}

// XValue returns the x position of a data point
func (c *Chart) XValue(p DataPoint) string {
	return p.X
}

// YAccessors returns one accessor per series, in series order. Missing
// values resolve to the fallback when one is set.
func (c *Chart) YAccessors() []YAccessor {
	accessors := make([]YAccessor, len(c.series))
	for i, s := range c.series {
		id := s.ID
		accessors[i] = func(p DataPoint) (float64, bool) {
			if v, ok := p.Value(id); ok {
				return v, true
			}
			if c.Fallback != nil {
				return *c.Fallback, true
			}
			return 0, false
		}
	}
	return accessors
}

// Cell is a resolved value of a series at a data point
type Cell struct {
	Value        float64
	Present      bool
	Interpolated bool
}

// Resolve computes the value of every series at every data point, applying
// interpolation and the fallback. The result is indexed [point][series].
func (c *Chart) Resolve() [][]Cell {
	cells := make([][]Cell, len(c.data))
	for i := range cells {
		cells[i] = make([]Cell, len(c.series))
	}

	for j, s := range c.series {
		for i, p := range c.data {
			if v, ok := p.Value(s.ID); ok {
				cells[i][j] = Cell{Value: v, Present: true}
			}
		}
		if c.Interpolation {
			c.interpolate(cells, j)
		}
		if c.Fallback != nil {
			for i := range cells {
				if !cells[i][j].Present {
					cells[i][j] = Cell{Value: *c.Fallback, Present: true}
				}
			}
		}
	}
	return cells
}

// interpolate fills interior gaps of column j. Leading and trailing gaps
// stay empty.
func (c *Chart) interpolate(cells [][]Cell, j int) {
	prev := -1
	for i := range cells {
		if !cells[i][j].Present {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			from, to := cells[prev][j].Value, cells[i][j].Value
			steps := float64(i - prev)
			for k := prev + 1; k < i; k++ {
				frac := float64(k-prev) / steps
				cells[k][j] = Cell{Value: from + (to-from)*frac, Present: true, Interpolated: true}
			}
		}
		prev = i
	}
}
