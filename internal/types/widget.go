package types

import (
	"time"
)

type WidgetType string

const (
	WidgetTypeNumber   WidgetType = "number"
	WidgetTypeText     WidgetType = "text"
	WidgetTypeGraph    WidgetType = "graph"
	WidgetTypeGauge    WidgetType = "gauge"
	WidgetTypeImage    WidgetType = "image"
	WidgetTypeDatagrid WidgetType = "datagrid"
)

// AllWidgetTypes lists every widget type. Exhaustive switches over
// WidgetType must cover exactly this set.
var AllWidgetTypes = []WidgetType{
	WidgetTypeNumber,
	WidgetTypeText,
	WidgetTypeGraph,
	WidgetTypeGauge,
	WidgetTypeImage,
	WidgetTypeDatagrid,
}

func (t WidgetType) Valid() bool {
	switch t {
	case WidgetTypeNumber, WidgetTypeText, WidgetTypeGraph,
		WidgetTypeGauge, WidgetTypeImage, WidgetTypeDatagrid:
		return true
	}
	return false
}

// GridColumns is the fixed width of the layout grid.
const GridColumns = 12

// Binding references the measurement a widget reads live values from.
type Binding struct {
	PlantID     string `json:"plant_id,omitempty"`
	TerminalID  string `json:"terminal_id,omitempty"`
	MeasurandID string `json:"measurand_id,omitempty"`
}

// Live reports whether the binding points at a measurement.
func (b Binding) Live() bool {
	return b.PlantID != "" && b.TerminalID != "" && b.MeasurandID != ""
}

// GridCell is a widget's position on the 12-column grid.
// I is the stable layout key, identical to the owning widget's ID.
type GridCell struct {
	I string `json:"i"`
	X int    `json:"x"`
	Y int    `json:"y"`
	W int    `json:"w"`
	H int    `json:"h"`
}

// GaugeRange is one colored segment of a gauge scale. The three ranges of
// a gauge must be contiguous and together span [MinRange, MaxRange].
type GaugeRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Color string  `json:"color"`
}

type NumberPayload struct {
	Decimals int `json:"decimals"`
}

type TextPayload struct {
	Content string `json:"content"`
}

type ImagePayload struct {
	URL string `json:"url,omitempty"`
}

type GaugePayload struct {
	MinRange float64      `json:"min_range"`
	MaxRange float64      `json:"max_range"`
	Ranges   []GaugeRange `json:"ranges"`
}

type GraphType string

const (
	GraphTypeLine GraphType = "line"
	GraphTypeBar  GraphType = "bar"
	GraphTypeArea GraphType = "area"
)

// MaxComparisonSeries caps the number of series one graph widget fetches
// per tick.
const MaxComparisonSeries = 3

type GraphPayload struct {
	GraphType     GraphType `json:"graph_type"`
	Series        []Binding `json:"series,omitempty"`
	Decimals      int       `json:"decimals,omitempty"`
	ResetInterval int       `json:"reset_interval,omitempty"`
	ThresholdPct  float64   `json:"threshold_pct,omitempty"`
}

type DatagridPayload struct {
	Rows    int       `json:"rows"`
	Columns int       `json:"columns"`
	Cells   []Binding `json:"cells,omitempty"`
}

// Widget is one dashboard tile. Exactly one payload field is set,
// matching Type.
type Widget struct {
	ID       string     `json:"id"`
	Type     WidgetType `json:"type"`
	Name     string     `json:"name,omitempty"`
	Binding  Binding    `json:"binding"`
	Settings Settings   `json:"settings"`
	Layout   GridCell   `json:"layout"`

	Number   *NumberPayload   `json:"number,omitempty"`
	Text     *TextPayload     `json:"text,omitempty"`
	Graph    *GraphPayload    `json:"graph,omitempty"`
	Gauge    *GaugePayload    `json:"gauge,omitempty"`
	Image    *ImagePayload    `json:"image,omitempty"`
	Datagrid *DatagridPayload `json:"datagrid,omitempty"`
}

// Dashboard is a named, ordered collection of widgets. The name is the
// identity and is immutable once saved; renaming means saving as new.
type Dashboard struct {
	Name        string    `json:"name"`
	Widgets     []Widget  `json:"widgets"`
	IsPublished bool      `json:"is_published"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DashboardSummary is the list representation served by GET /dashboards.
type DashboardSummary struct {
	Name        string    `json:"name"`
	IsPublished bool      `json:"is_published"`
	WidgetCount int       `json:"widget_count"`
	UpdatedAt   time.Time `json:"updated_at"`
}
