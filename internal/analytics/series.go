package analytics

// SeriesKind selects how a series is drawn.
type SeriesKind int

const (
	// KindBar draws the series as columns.
	KindBar SeriesKind = iota
	// KindLine draws the series as a line.
	KindLine
)

// String returns the chart type name for a series kind.
func (k SeriesKind) String() string {
	if k == KindLine {
		return "line"
	}
	return "column"
}

// YAxis selects which vertical axis a series is measured against.
type YAxis int

const (
	// AxisLeft is the primary axis.
	AxisLeft YAxis = iota
	// AxisRight is the secondary axis on the opposite side.
	AxisRight
)

// Series is a named list of values aligned index-for-index with a DateAxis.
type Series struct {
	Name       string
	Data       []float64
	Kind       SeriesKind
	Axis       YAxis
	Dashed     bool
	DataLabels bool
}

// Sum returns the sum of all values in the series.
func (s Series) Sum() float64 {
	var total float64
	for _, v := range s.Data {
		total += v
	}
	return total
}

// SeriesGroup holds one Series per category in first-seen order.
type SeriesGroup struct {
	index  map[string]int
	series []Series
	length int
}

func newSeriesGroup(length int) *SeriesGroup {
	return &SeriesGroup{
		index:  make(map[string]int),
		length: length,
	}
}

// get returns the series for name, creating a zero-filled one on first use.
func (g *SeriesGroup) get(name string) *Series {
	if i, ok := g.index[name]; ok {
		return &g.series[i]
	}
	g.index[name] = len(g.series)
	g.series = append(g.series, Series{Name: name, Data: make([]float64, g.length)})
	return &g.series[len(g.series)-1]
}

// Names returns the category names in first-seen order.
func (g *SeriesGroup) Names() []string {
	names := make([]string, len(g.series))
	for i, s := range g.series {
		names[i] = s.Name
	}
	return names
}

// Series returns the series in first-seen order.
func (g *SeriesGroup) Series() []Series {
	out := make([]Series, len(g.series))
	copy(out, g.series)
	return out
}

// ChartBundle is a titled set of aligned series ready to render.
type ChartBundle struct {
	Title    string
	Unit     string
	Dates    DateAxis
	Series   []Series
	Total    float64
	Decimals int
	Kind     SeriesKind
	// DualAxis is set when any series is measured on the right axis.
	DualAxis bool
}

// Empty reports whether the bundle has nothing to draw.
func (b *ChartBundle) Empty() bool {
	return b == nil || len(b.Series) == 0 || len(b.Dates) == 0
}
